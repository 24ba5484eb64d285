// Package nav fetches published mutual-fund NAVs from an external JSON API.
// The engine never talks to this package directly; a sync job copies quotes
// into the nav_price table and the engine reads from there.
package nav

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/fundsim/Paper-Trading-Backend/internal/calendar"
)

// providerDateFormat is the DD-MM-YYYY form the NAV API publishes.
const providerDateFormat = "02-01-2006"

// Client provides methods for fetching NAV data from the external API.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a NAV API client for the given base URL. token may be
// empty for providers that do not require one.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:  baseURL,
		apiToken: token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetLatestQuote fetches the most recent published NAV for one scheme.
func (c *Client) GetLatestQuote(ctx context.Context, schemeCode string) (Quote, error) {
	url := fmt.Sprintf("%s/mf/%s/latest", c.baseURL, schemeCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to build nav request: %w", err)
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("nav request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("nav api returned status %d for scheme %s", resp.StatusCode, schemeCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to read nav response: %w", err)
	}

	var navResp Response
	if err := json.Unmarshal(body, &navResp); err != nil {
		return Quote{}, fmt.Errorf("failed to decode nav response: %w", err)
	}

	return ParseLatest(navResp)
}

// ParseLatest converts a raw API response into a Quote. The response's
// newest observation is first in the data array.
func ParseLatest(resp Response) (Quote, error) {
	if len(resp.Data) == 0 {
		return Quote{}, fmt.Errorf("no nav data returned for scheme %d", resp.Meta.SchemeCode)
	}

	point := resp.Data[0]

	navValue, err := strconv.ParseFloat(point.Nav, 64)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to parse nav value %q: %w", point.Nav, err)
	}

	published, err := time.Parse(providerDateFormat, point.Date)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to parse nav date %q: %w", point.Date, err)
	}

	return Quote{
		SchemeCode: strconv.Itoa(resp.Meta.SchemeCode),
		SchemeName: resp.Meta.SchemeName,
		FundHouse:  resp.Meta.FundHouse,
		Category:   resp.Meta.SchemeCategory,
		Date:       published.Format(calendar.DateFormat),
		Nav:        navValue,
	}, nil
}
