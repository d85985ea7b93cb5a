// Package waze fetches alert batches from a Waze Partner Hub feed.
package waze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/trafficpulse/waze-incident-service/internal/domain"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Client polls the partner feed over HTTP. It implements poller.BatchFetcher.
type Client struct {
	feedURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a feed client. The limiter allows one request per 10
// seconds with a small burst, a floor well under any sane poll interval that
// still protects the feed from manual-trigger storms.
func NewClient(feedURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		feedURL:    feedURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(10*time.Second), 2),
		logger:     logger,
	}
}

// FetchBatch performs one feed request and returns the raw alert records.
// The envelope shape varies across partner feed versions; see the domain
// package doc for the accepted shapes.
func (c *Client) FetchBatch(ctx context.Context) ([]domain.RawRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, body)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}

	records := extractAlerts(payload)
	c.logger.Debug("feed fetched", "records", len(records))
	return records, nil
}

// extractAlerts pulls the alert array out of whichever envelope the feed
// used. Non-object elements are dropped.
func extractAlerts(payload any) []domain.RawRecord {
	var alerts []any

	switch data := payload.(type) {
	case map[string]any:
		if a, ok := data["alerts"].([]any); ok {
			alerts = a
			break
		}
		if inner, ok := data["data"].(map[string]any); ok {
			if a, ok := inner["alerts"].([]any); ok {
				alerts = a
				break
			}
		}
		if a, ok := data["items"].([]any); ok {
			alerts = a
		}
	case []any:
		alerts = data
	}

	records := make([]domain.RawRecord, 0, len(alerts))
	for _, a := range alerts {
		if rec, ok := a.(map[string]any); ok {
			records = append(records, domain.RawRecord(rec))
		}
	}
	return records
}
