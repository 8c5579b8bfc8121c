package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"

	"github.com/kit2552/tadka-cms-final-sub001/internal/config"
	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
	"github.com/kit2552/tadka-cms-final-sub001/internal/pkg/logger"
)

// FeedAdapter pulls a JSON feed of candidate items over HTTP. Transient
// failures are retried with exponential backoff behind a circuit breaker.
// Breakers are keyed by upstream host, so one flapping feed cannot open
// the breaker for agents reading from other hosts.
type FeedAdapter struct {
	client *http.Client
	config config.ScraperConfig
	logger *logger.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

type feedItem struct {
	ExternalKey string `json:"external_key"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	PublishedAt string `json:"published_at"`
	Year        int    `json:"year"`
	Team1       string `json:"team1"`
	Team2       string `json:"team2"`
	MatchDate   string `json:"match_date"`
	Source      string `json:"source"`
	Language    string `json:"language"`
}

type feedEnvelope struct {
	Items []feedItem `json:"items"`
}

func NewFeedAdapter(cfg config.ScraperConfig, log *logger.Logger) *FeedAdapter {
	return &FeedAdapter{
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		config:   cfg,
		logger:   log,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (adapter *FeedAdapter) breakerFor(sourceURL string) *gobreaker.CircuitBreaker {
	host := sourceURL
	if parsed, err := url.Parse(sourceURL); err == nil && parsed.Host != "" {
		host = parsed.Host
	}

	adapter.mu.Lock()
	defer adapter.mu.Unlock()

	if breaker, ok := adapter.breakers[host]; ok {
		return breaker
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "feed:" + host,
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			adapter.logger.Warn("Feed circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
	adapter.breakers[host] = breaker
	return breaker
}

func (adapter *FeedAdapter) Fetch(ctx context.Context, def models.AgentDefinition) ([]models.ContentItem, error) {
	startTime := time.Now()
	breaker := adapter.breakerFor(def.SourceURL)

	operation := func() ([]byte, error) {
		raw, err := breaker.Execute(func() (any, error) {
			return adapter.fetchOnce(ctx, def.SourceURL)
		})
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		if err != nil {
			return nil, err
		}
		return raw.([]byte), nil
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(adapter.config.RetryAttempts)))
	if err != nil {
		adapter.logger.LogService("feed_adapter", "fetch", time.Since(startTime), map[string]any{
			"agent_id": def.ID,
			"url":      def.SourceURL,
		}, err)
		return nil, models.NewSourceError("FEED_FETCH_FAILED", "Failed to fetch source feed").WithCause(err)
	}

	var envelope feedEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, models.NewSourceError("FEED_DECODE_FAILED", "Source feed is not valid JSON").WithCause(err)
	}

	items := make([]models.ContentItem, 0, len(envelope.Items))
	for _, raw := range envelope.Items {
		item := models.ContentItem{
			ExternalKey: raw.ExternalKey,
			Title:       raw.Title,
			URL:         raw.URL,
			Description: raw.Description,
			ImageURL:    raw.ImageURL,
			Year:        raw.Year,
			Team1:       raw.Team1,
			Team2:       raw.Team2,
			MatchDate:   raw.MatchDate,
			Source:      raw.Source,
			Language:    raw.Language,
		}
		if raw.PublishedAt != "" {
			if publishedAt, err := time.Parse(time.RFC3339, raw.PublishedAt); err == nil {
				item.PublishedAt = publishedAt
			}
		}
		items = append(items, item)
	}

	adapter.logger.LogService("feed_adapter", "fetch", time.Since(startTime), map[string]any{
		"agent_id": def.ID,
		"items":    len(items),
	}, nil)

	return items, nil
}

func (adapter *FeedAdapter) fetchOnce(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", adapter.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := adapter.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
