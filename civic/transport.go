// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package civic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultTimeout is the request timeout of the default HTTP client
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 10 << 20
	maxErrorBytes    = 1024
)

// transport performs keyed JSON GET requests against one base URL
type transport struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *requestMetrics
}

func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
	}
}

// getJSON sends GET <baseURL>/<endpoint>?<query>&key=<apiKey> and decodes
// the response body into dst
func (t *transport) getJSON(
	ctx context.Context,
	endpoint string,
	query url.Values,
	dst any,
) (err error) {
	start := time.Now()
	defer func() {
		t.metrics.observe(endpoint, start, err)
	}()
	body, err := t.doGet(ctx, endpoint, query)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}

// doGet performs an HTTP GET request and returns the response body.
// The caller is responsible for closing the returned ReadCloser.
func (t *transport) doGet(
	ctx context.Context,
	endpoint string,
	query url.Values,
) (io.ReadCloser, error) {
	if query == nil {
		query = url.Values{}
	}
	if t.apiKey != "" {
		query.Set("key", t.apiKey)
	}
	reqURL := t.baseURL + "/" + endpoint
	if encoded := query.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		reqURL,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	t.logger.Debug(
		"sending request",
		"component", "civic",
		"endpoint", endpoint,
	)
	resp, err := t.httpClient.Do(req) //nolint:gosec // URL is built from the configured base URL
	if err != nil {
		// url.Error embeds the request URL, which carries the key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = t.baseURL + "/" + endpoint
		}
		return nil, fmt.Errorf("executing request: %w", err)
	}
	if resp == nil || resp.Body == nil {
		return nil, errors.New("nil response from server")
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(
			io.LimitReader(resp.Body, maxErrorBytes),
		)
		return nil, newAPIError(resp.StatusCode, bodyBytes)
	}

	return &limitedReadCloser{
		Reader: io.LimitReader(resp.Body, maxResponseBytes),
		Closer: resp.Body,
	}, nil
}

// limitedReadCloser caps how much of a response body is read
type limitedReadCloser struct {
	io.Reader
	io.Closer
}
