package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/kit2552/tadka-cms-final-sub001/internal/config"
	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
	"github.com/kit2552/tadka-cms-final-sub001/internal/pkg/logger"
)

// ChannelAdapter scrapes a video channel listing page. Each card on the
// page becomes one candidate; cards missing a video link are skipped and
// reported, so one broken card cannot sink the batch.
type ChannelAdapter struct {
	client *http.Client
	config config.ScraperConfig
	logger *logger.Logger
}

func NewChannelAdapter(cfg config.ScraperConfig, log *logger.Logger) *ChannelAdapter {
	return &ChannelAdapter{
		client: &http.Client{Timeout: cfg.RequestTimeout},
		config: cfg,
		logger: log,
	}
}

func (adapter *ChannelAdapter) Fetch(ctx context.Context, def models.AgentDefinition) ([]models.ContentItem, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, def.SourceURL, nil)
	if err != nil {
		return nil, models.NewSourceError("CHANNEL_REQUEST_FAILED", "Failed to build channel request").WithCause(err)
	}
	req.Header.Set("User-Agent", adapter.config.UserAgent)

	resp, err := adapter.client.Do(req)
	if err != nil {
		return nil, models.NewSourceError("CHANNEL_FETCH_FAILED", "Failed to fetch channel page").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, models.NewSourceError("CHANNEL_BAD_STATUS", "Channel page returned a non-200 status").
			WithMetadata("status", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, models.NewSourceError("CHANNEL_PARSE_FAILED", "Failed to parse channel page").WithCause(err)
	}

	base, _ := url.Parse(def.SourceURL)
	var items []models.ContentItem
	skipped := 0

	doc.Find(".video-card, article.video, li.video-item").Each(func(_ int, selection *goquery.Selection) {
		href, ok := selection.Find("a").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			skipped++
			return
		}
		videoURL := href
		if base != nil {
			if resolved, err := base.Parse(href); err == nil {
				videoURL = resolved.String()
			}
		}

		title := strings.TrimSpace(selection.Find(".video-title, h3, h2").First().Text())
		if title == "" {
			title = strings.TrimSpace(selection.Find("a").First().AttrOr("title", ""))
		}

		item := models.ContentItem{
			ExternalKey: videoURL,
			Title:       title,
			URL:         videoURL,
			ImageURL:    selection.Find("img").First().AttrOr("src", ""),
			Source:      def.SourceURL,
		}
		if published := selection.Find("time").First().AttrOr("datetime", ""); published != "" {
			if publishedAt, err := time.Parse(time.RFC3339, published); err == nil {
				item.PublishedAt = publishedAt
			}
		}
		items = append(items, item)
	})

	adapter.logger.LogService("channel_adapter", "fetch", time.Since(startTime), map[string]any{
		"agent_id": def.ID,
		"items":    len(items),
		"skipped":  skipped,
	}, nil)

	if skipped > 0 {
		return items, models.NewSourceError("CHANNEL_PARTIAL_PARSE",
			fmt.Sprintf("%d cards on the channel page had no video link", skipped))
	}
	return items, nil
}
