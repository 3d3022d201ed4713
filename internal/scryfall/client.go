// Package scryfall implements the card-data provider client.
//
// The client owns its own rate limiting and retry policy; callers only
// see a resolved card or an error.
package scryfall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.scryfall.com"
	rateLimitDelay = 100 * time.Millisecond // 10 req/sec, per Scryfall guidance
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second

	// CollectionBatchSize is the Scryfall limit per collection request.
	CollectionBatchSize = 75
)

// ErrNotFound is returned when Scryfall has no card for the query.
var ErrNotFound = errors.New("card not found")

// Client is a rate-limited Scryfall API client.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
}

// NewClient creates a new Scryfall client. baseURL is overridable for
// tests and self-hosted mirrors; empty means the public API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		userAgent:   "deckforge/1.0",
	}
}

// GetCardByName retrieves a card by name, trying an exact match first
// and falling back to Scryfall's fuzzy matching.
func (c *Client) GetCardByName(ctx context.Context, name string) (*Card, error) {
	var card Card
	err := c.get(ctx, fmt.Sprintf("%s/cards/named?exact=%s", c.baseURL, url.QueryEscape(name)), &card)
	if err == nil {
		return &card, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to get card %q: %w", name, err)
	}

	err = c.get(ctx, fmt.Sprintf("%s/cards/named?fuzzy=%s", c.baseURL, url.QueryEscape(name)), &card)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("card %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get card %q: %w", name, err)
	}
	return &card, nil
}

// Autocomplete returns up to 20 card names matching the partial name.
func (c *Client) Autocomplete(ctx context.Context, partial string) ([]string, error) {
	var catalog Catalog
	err := c.get(ctx, fmt.Sprintf("%s/cards/autocomplete?q=%s", c.baseURL, url.QueryEscape(partial)), &catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to autocomplete %q: %w", partial, err)
	}
	return catalog.Data, nil
}

// GetCollection resolves many cards by name in batches. The returned
// response aggregates found cards and not-found identifiers across
// batches; partial results are expected and the caller reconciles.
func (c *Client) GetCollection(ctx context.Context, names []string) (*CollectionResponse, error) {
	result := &CollectionResponse{Object: "list"}

	for start := 0; start < len(names); start += CollectionBatchSize {
		end := start + CollectionBatchSize
		if end > len(names) {
			end = len(names)
		}

		req := CollectionRequest{}
		for _, name := range names[start:end] {
			req.Identifiers = append(req.Identifiers, CollectionIdentifier{Name: name})
		}

		var batch CollectionResponse
		if err := c.post(ctx, c.baseURL+"/cards/collection", req, &batch); err != nil {
			return nil, fmt.Errorf("failed to fetch collection batch: %w", err)
		}

		result.Data = append(result.Data, batch.Data...)
		result.NotFound = append(result.NotFound, batch.NotFound...)
	}

	return result, nil
}

func (c *Client) get(ctx context.Context, url string, result any) error {
	return c.doRequest(ctx, http.MethodGet, url, nil, result)
}

func (c *Client) post(ctx context.Context, url string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.doRequest(ctx, http.MethodPost, url, payload, result)
}

// doRequest performs an HTTP request with rate limiting and retry logic.
// 404 maps to ErrNotFound without retrying; 429 and 5xx are retried with
// exponential backoff.
func (c *Client) doRequest(ctx context.Context, method, url string, body []byte, result any) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
		} else {
			done, err := c.handleResponse(resp, result)
			if done {
				return err
			}
			lastErr = err
		}

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}

	return fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

// handleResponse consumes the response body. done reports whether the
// request should not be retried.
func (c *Client) handleResponse(resp *http.Response, result any) (done bool, err error) {
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return true, fmt.Errorf("failed to read response body: %w", err)
		}
		if err := json.Unmarshal(data, result); err != nil {
			return true, fmt.Errorf("failed to parse response: %w", err)
		}
		return true, nil

	case resp.StatusCode == http.StatusNotFound:
		var apiErr apiError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Details != "" {
			return true, fmt.Errorf("%w: %s", ErrNotFound, apiErr.Details)
		}
		return true, ErrNotFound

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return false, fmt.Errorf("scryfall returned status %d", resp.StatusCode)

	default:
		return true, fmt.Errorf("scryfall returned status %d", resp.StatusCode)
	}
}
