// Package meta fetches commander meta data from the companion API.
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 15 * time.Second

// CommanderRank is one row of the top-commanders listing.
type CommanderRank struct {
	Rank    int     `json:"rank"`
	Name    string  `json:"name"`
	Decks   int     `json:"decks"`
	Share   float64 `json:"share"` // fraction of tracked decks
	Colors  string  `json:"colors"`
	AvgWins float64 `json:"avg_wins"`
}

// FormatMeta is meta data for one format.
type FormatMeta struct {
	Format      string           `json:"format"`
	Commanders  []*CommanderRank `json:"commanders"`
	TotalDecks  int              `json:"total_decks"`
	LastUpdated time.Time        `json:"last_updated"`
}

// Client talks to the companion meta API.
type Client struct {
	baseURL    string
	apiKey     string
	clientID   string
	httpClient *http.Client
}

// NewClient creates a meta client. Credentials may be empty for
// unauthenticated endpoints.
func NewClient(baseURL, apiKey, clientID string) *Client {
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		clientID: clientID,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// TopCommanders fetches the current top-commanders listing.
func (c *Client) TopCommanders(ctx context.Context) ([]*CommanderRank, error) {
	var out struct {
		Commanders []*CommanderRank `json:"commanders"`
	}
	if err := c.get(ctx, "/api/meta/top-commanders", &out); err != nil {
		return nil, fmt.Errorf("failed to fetch top commanders: %w", err)
	}
	return out.Commanders, nil
}

// Format fetches the meta snapshot for one format.
func (c *Client) Format(ctx context.Context, format string) (*FormatMeta, error) {
	var out FormatMeta
	if err := c.get(ctx, "/api/meta/"+url.PathEscape(format), &out); err != nil {
		return nil, fmt.Errorf("failed to fetch %s meta: %w", format, err)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	if c.baseURL == "" {
		return fmt.Errorf("meta API URL is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("x-client-id", c.clientID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("meta API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
