package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client is a thin wrapper over an external geocoding provider. It resolves
// free-form addresses to coordinates and nothing else.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a geocoding client. An empty baseURL produces a disabled
// client whose lookups always fail; callers treat that as "address not
// geocoded" rather than a hard error.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type geocodeResponse struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Geocode resolves an address to (latitude, longitude).
func (c *Client) Geocode(ctx context.Context, address string) (float64, float64, error) {
	if c.baseURL == "" {
		return 0, 0, fmt.Errorf("geocode: provider not configured")
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json", c.baseURL, url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode: build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocode: provider returned status %d", resp.StatusCode)
	}

	var results []geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, fmt.Errorf("geocode: decode response: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("geocode: no match for address")
	}

	return results[0].Latitude, results[0].Longitude, nil
}
