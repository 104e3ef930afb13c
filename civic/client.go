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

// Package civic is a client for the Google Civic Information API and holds
// the election, voter information and representative types it returns.
package civic

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultBaseURL is the civic information API root
const DefaultBaseURL = "https://www.googleapis.com/civicinfo/v2"

// Client is an HTTP client for the civic information API. Every call is
// single-shot: there is no retry and no backoff.
type Client struct {
	transport
	promRegistry prometheus.Registerer
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API root
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom *http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) ClientOption {
	return func(c *Client) {
		c.promRegistry = registry
	}
}

// NewClient creates a new civic information API client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		transport: transport{
			baseURL:    DefaultBaseURL,
			apiKey:     apiKey,
			httpClient: defaultHTTPClient(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	c.metrics = newRequestMetrics(c.promRegistry, "civicprep_api")
	return c
}

type electionsResponse struct {
	Elections []Election `json:"elections"`
}

// Elections returns every election known to the API.
// Corresponds to GET /elections.
func (c *Client) Elections(ctx context.Context) ([]Election, error) {
	var resp electionsResponse
	if err := c.getJSON(ctx, "elections", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing elections: %w", err)
	}
	return resp.Elections, nil
}

// VoterInfo returns the voter information for an election and address.
// Corresponds to GET /voterinfo.
func (c *Client) VoterInfo(
	ctx context.Context,
	electionID int64,
	address string,
) (*VoterInfo, error) {
	if isBlankAddress(address) {
		return nil, fmt.Errorf(
			"getting voter info for election %d: %w",
			electionID,
			ErrEmptyAddress,
		)
	}
	query := url.Values{}
	query.Set("address", address)
	query.Set("electionId", strconv.FormatInt(electionID, 10))
	var info VoterInfo
	if err := c.getJSON(ctx, "voterinfo", query, &info); err != nil {
		return nil, fmt.Errorf(
			"getting voter info for election %d: %w",
			electionID,
			err,
		)
	}
	return &info, nil
}

// RepresentativesResponse returns the offices and officials for an address
// without flattening them. Corresponds to GET /representatives.
func (c *Client) RepresentativesResponse(
	ctx context.Context,
	address string,
) (*RepresentativesResponse, error) {
	if isBlankAddress(address) {
		return nil, fmt.Errorf("getting representatives: %w", ErrEmptyAddress)
	}
	query := url.Values{}
	query.Set("address", address)
	var resp RepresentativesResponse
	if err := c.getJSON(ctx, "representatives", query, &resp); err != nil {
		return nil, fmt.Errorf("getting representatives: %w", err)
	}
	return &resp, nil
}

// Representatives returns one entry per (office, official) pair for an
// address
func (c *Client) Representatives(
	ctx context.Context,
	address string,
) ([]Representative, error) {
	resp, err := c.RepresentativesResponse(ctx, address)
	if err != nil {
		return nil, err
	}
	reps, skipped := FlattenRepresentatives(resp.Offices, resp.Officials)
	if skipped > 0 {
		c.logger.Warn(
			"office references unknown officials",
			"component", "civic",
			"skipped", skipped,
		)
	}
	return reps, nil
}
