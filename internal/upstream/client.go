// Package upstream talks to the external price feed: a direct HTTP client
// with bounded retry, a Redis snapshot cache, and the scope filter applied
// to proxied payloads.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/config"
	"github.com/arzfeed/pricegate-api/internal/ierr"
)

// Snapshot is the feed payload, returned to clients verbatim apart from
// scope filtering.
type Snapshot struct {
	Data        map[string]string `json:"data"`
	LastUpdated string            `json:"last_updated"`
	Status      string            `json:"status"`
	FetchedAt   time.Time         `json:"-"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

func NewClient(cfg *config.UpstreamConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
		logger:     logger.Named("UpstreamClient"),
	}
}

// FetchPrices pulls the current feed, retrying transient failures up to the
// configured attempt count before surfacing ErrUpstreamUnavailable.
func (c *Client) FetchPrices(ctx context.Context) (*Snapshot, error) {
	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ierr.ErrUpstreamUnavailable, ctx.Err())
			case <-time.After(c.backoff * time.Duration(attempt-1)):
			}
		}

		snap, err := c.fetchOnce(ctx)
		if err == nil {
			return snap, nil
		}
		lastErr = err
		c.logger.Warn("Upstream fetch attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)
	}

	return nil, fmt.Errorf("%w: %v", ierr.ErrUpstreamUnavailable, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/prices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode upstream payload: %w", err)
	}
	snap.FetchedAt = time.Now().UTC()

	return &snap, nil
}
