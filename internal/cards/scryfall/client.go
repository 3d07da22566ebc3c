// Package scryfall is a minimal rate-limited client for the Scryfall card
// API.
package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.scryfall.com"
	rateLimitDelay = 100 * time.Millisecond // 100ms between requests (10 req/sec)
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// Client represents a Scryfall API client with rate limiting.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	userAgent   string
}

// NewClient creates a new Scryfall API client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		// Rate limiter: 1 request per 100ms = 10 req/sec
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		baseURL:     defaultBaseURL,
		userAgent:   "manalysis/1.0",
	}
}

// GetCardNamed retrieves a card by its exact name.
func (c *Client) GetCardNamed(ctx context.Context, name string) (*Card, error) {
	endpoint := fmt.Sprintf("%s/cards/named?exact=%s", c.baseURL, url.QueryEscape(name))

	var card Card
	if err := c.doRequest(ctx, endpoint, &card); err != nil {
		return nil, fmt.Errorf("failed to get card %q: %w", name, err)
	}

	return &card, nil
}

// GetCard retrieves a card by its Scryfall ID.
func (c *Client) GetCard(ctx context.Context, id string) (*Card, error) {
	endpoint := fmt.Sprintf("%s/cards/%s", c.baseURL, id)

	var card Card
	if err := c.doRequest(ctx, endpoint, &card); err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", id, err)
	}

	return &card, nil
}

// doRequest performs an HTTP request with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)

			// Retry on network errors
			if attempt < maxRetries {
				time.Sleep(backoff)
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return lastErr
		}

		defer func() { _ = resp.Body.Close() }()

		switch resp.StatusCode {
		case http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read response body: %w", err)
			}

			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("failed to parse JSON response: %w", err)
			}

			return nil

		case http.StatusTooManyRequests:
			// Rate limited - exponential backoff
			lastErr = fmt.Errorf("rate limited (HTTP 429)")

			if attempt < maxRetries {
				// Honor Retry-After when the server sends one
				retryAfter := resp.Header.Get("Retry-After")
				if retryAfter != "" {
					if duration, err := time.ParseDuration(retryAfter + "s"); err == nil {
						time.Sleep(duration)
					} else {
						time.Sleep(backoff)
					}
				} else {
					time.Sleep(backoff)
				}
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return lastErr

		case http.StatusNotFound:
			return &NotFoundError{URL: endpoint}

		default:
			body, _ := io.ReadAll(resp.Body)

			var apiErr APIError
			if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
				return &apiErr
			}

			return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
