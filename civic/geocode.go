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
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
)

// DefaultGeocodeBaseURL is the geocoding API root
const DefaultGeocodeBaseURL = "https://maps.googleapis.com/maps/api"

// Geocoder turns a coordinate into candidate addresses, best match first
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) ([]Address, error)
}

// GeocodeClient is a Geocoder backed by the Google geocoding API
type GeocodeClient struct {
	transport
}

// NewGeocodeClient creates a geocoding client. It accepts the same options
// as NewClient; WithBaseURL overrides DefaultGeocodeBaseURL.
func NewGeocodeClient(apiKey string, opts ...ClientOption) *GeocodeClient {
	c := &Client{
		transport: transport{
			baseURL:    DefaultGeocodeBaseURL,
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
	c.metrics = newRequestMetrics(c.promRegistry, "civicprep_geocode")
	return &GeocodeClient{transport: c.transport}
}

type geocodeComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type geocodeResult struct {
	AddressComponents []geocodeComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
}

type geocodeResponse struct {
	Results      []geocodeResult `json:"results"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
}

const (
	geocodeStatusOK          = "OK"
	geocodeStatusZeroResults = "ZERO_RESULTS"
)

// ReverseGeocode returns the addresses found at a coordinate. No match is
// an empty list, not an error.
func (g *GeocodeClient) ReverseGeocode(
	ctx context.Context,
	lat, lng float64,
) ([]Address, error) {
	query := url.Values{}
	query.Set(
		"latlng",
		strconv.FormatFloat(lat, 'f', -1, 64)+","+
			strconv.FormatFloat(lng, 'f', -1, 64),
	)
	var resp geocodeResponse
	if err := g.getJSON(ctx, "geocode/json", query, &resp); err != nil {
		return nil, fmt.Errorf("reverse geocoding: %w", err)
	}
	switch resp.Status {
	case geocodeStatusOK:
	case geocodeStatusZeroResults:
		return nil, nil
	default:
		return nil, fmt.Errorf(
			"reverse geocoding: status %s: %s",
			resp.Status,
			resp.ErrorMessage,
		)
	}
	ret := make([]Address, 0, len(resp.Results))
	for _, result := range resp.Results {
		ret = append(ret, addressFromComponents(result.AddressComponents))
	}
	return ret, nil
}

// addressFromComponents maps street name to line 1 and street number to
// line 2
func addressFromComponents(components []geocodeComponent) Address {
	var a Address
	for _, c := range components {
		switch {
		case slices.Contains(c.Types, "route"):
			a.Line1 = c.LongName
		case slices.Contains(c.Types, "street_number"):
			a.Line2 = c.LongName
		case slices.Contains(c.Types, "locality"):
			a.City = c.LongName
		case slices.Contains(c.Types, "administrative_area_level_1"):
			a.State = c.ShortName
		case slices.Contains(c.Types, "postal_code"):
			a.Zip = c.LongName
		}
	}
	return a
}
