// Package safebrowsing provides a threatintel.Client implementation backed by
// the Google Safe Browsing v4 Lookup API.
package safebrowsing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"linkexpander/pkg/domain"
	"linkexpander/pkg/serrors"
	"linkexpander/pkg/threatintel"
	"net/http"
	"net/url"
	"strings"
)

const (
	// DefaultEndpoint is the v4 threatMatches:find endpoint.
	DefaultEndpoint = "https://safebrowsing.googleapis.com/v4/threatMatches:find"
	// DefaultClientVersion is reported in the client block of every lookup.
	DefaultClientVersion = "1.0.0"
)

// Enumerations sent with every lookup.
var (
	threatTypes      = []string{"MALWARE", "SOCIAL_ENGINEERING"} //nolint: gochecknoglobals
	platformTypes    = []string{"ANY_PLATFORM"}                  //nolint: gochecknoglobals
	threatEntryTypes = []string{"URL"}                           //nolint: gochecknoglobals
)

// Options identify this deployment to the Safe Browsing API.
type Options struct {
	// Endpoint overrides DefaultEndpoint, mostly for tests.
	Endpoint string
	// APIKey is sent as the "key" query parameter.
	APIKey string
	// ClientID and ClientVersion fill the request's client block.
	ClientID      string
	ClientVersion string
}

// Client talks to the Safe Browsing Lookup API. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	options    Options
}

type lookupRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string      `json:"threatTypes"`
		PlatformTypes    []string      `json:"platformTypes"`
		ThreatEntryTypes []string      `json:"threatEntryTypes"`
		ThreatEntries    []threatEntry `json:"threatEntries"`
	} `json:"threatInfo"`
}

type threatEntry struct {
	URL string `json:"url"`
}

type lookupResponse struct {
	Matches []struct {
		ThreatType   string      `json:"threatType"`
		PlatformType string      `json:"platformType"`
		Threat       threatEntry `json:"threat"`
	} `json:"matches"`
}

// newLookupRequest builds the request body for a single candidate URL.
func (c *Client) newLookupRequest(URL string) lookupRequest {
	var req lookupRequest
	req.Client.ClientID = c.options.ClientID
	req.Client.ClientVersion = c.options.ClientVersion
	req.ThreatInfo.ThreatTypes = threatTypes
	req.ThreatInfo.PlatformTypes = platformTypes
	req.ThreatInfo.ThreatEntryTypes = threatEntryTypes
	req.ThreatInfo.ThreatEntries = []threatEntry{{URL: URL}}

	return req
}

// FindMatches submits URL to the lookup endpoint and returns the reported
// matches. A response body that is not JSON is an error, as is any non-2xx
// status; 429 is reported as serrors.ErrRateLimited.
func (c *Client) FindMatches(ctx context.Context, URL string) ([]domain.ThreatMatch, error) {
	// https://developers.google.com/safe-browsing/v4/lookup-api
	bodyBytes, err := json.Marshal(c.newLookupRequest(URL))
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	endpoint, err := url.Parse(c.options.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("could not parse endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("key", c.options.APIKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, serrors.With(serrors.ErrRateLimited, "rate limited: %s", strings.TrimSpace(string(b)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serrors.With(serrors.ErrUnavailable,
			"lookup failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var lr lookupResponse
	if err := json.Unmarshal(b, &lr); err != nil {
		return nil, fmt.Errorf("could not decode response: %w", err)
	}

	matches := make([]domain.ThreatMatch, 0, len(lr.Matches))
	for _, m := range lr.Matches {
		matches = append(matches, domain.ThreatMatch{
			ThreatType:   m.ThreatType,
			PlatformType: m.PlatformType,
			URL:          m.Threat.URL,
		})
	}

	return matches, nil
}

// Ensure Client conforms to the threatintel.Client interface at compile time.
var _ threatintel.Client = (*Client)(nil)

// New constructs a Client that uses httpClient for every lookup. Empty
// Endpoint and ClientVersion fall back to the package defaults.
func New(httpClient *http.Client, options Options) *Client {
	if options.Endpoint == "" {
		options.Endpoint = DefaultEndpoint
	}
	if options.ClientVersion == "" {
		options.ClientVersion = DefaultClientVersion
	}

	return &Client{
		httpClient: httpClient,
		options:    options,
	}
}
