package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/notifications-monitor/internal/feed"
)

// Client interface for testability
type Client interface {
	FetchPage(ctx context.Context, cursor feed.Cursor) (*feed.Page, error)
}

type HTTPClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	limiter    *rate.Limiter
	retryCount int
	retryDelay time.Duration
	logger     *zap.Logger
}

// Options configures an HTTPClient.
type Options struct {
	BaseURL       string
	Path          string
	APIKey        string
	RatePerSecond int
	Timeout       time.Duration
	RetryDelay    time.Duration
	RetryCount    int
}

func NewClient(opts Options, logger *zap.Logger) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:       100,
		MaxConnsPerHost:    10,
		IdleConnTimeout:    90 * time.Second,
		DisableCompression: true, // gzhttp negotiates and decodes
	}

	ratePerSec := opts.RatePerSecond
	if ratePerSec < 1 {
		ratePerSec = 1
	}

	return &HTTPClient{
		httpClient: &http.Client{
			Transport: gzhttp.Transport(transport),
			Timeout:   opts.Timeout,
		},
		endpoint:   strings.TrimSuffix(opts.BaseURL, "/") + "/" + strings.TrimPrefix(opts.Path, "/"),
		apiKey:     opts.APIKey,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec*2),
		retryCount: opts.RetryCount,
		retryDelay: opts.RetryDelay,
		logger:     logger,
	}
}

// Endpoint returns the notifications URL without a query.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// FetchPage requests the page of notifications that follows cursor.
func (c *HTTPClient) FetchPage(ctx context.Context, cursor feed.Cursor) (*feed.Page, error) {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := c.endpoint
	if q := cursor.Encode(); q != "" {
		url += "?" + q
	}
	c.logger.Debug("requesting", zap.String("url", url))

	var lastErr error
	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1)) // Exponential backoff
			c.logger.Debug("retrying request", zap.Int("attempt", attempt), zap.Duration("delay", delay))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		if c.apiKey != "" {
			req.Header.Set("Authorization", "Basic "+c.apiKey)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		// Read body before closing for error messages
		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if readErr != nil {
			lastErr = readErr
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			return nil, ErrAuthFailed
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = ErrRateLimited
			continue
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}

		return feed.DecodePage(body)
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
