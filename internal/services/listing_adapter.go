package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/kit2552/tadka-cms-final-sub001/internal/config"
	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
	"github.com/kit2552/tadka-cms-final-sub001/internal/pkg/logger"
)

// ListingAdapter crawls release listings and match schedule tables with a
// shared colly collector. Release rows and schedule rows map onto the same
// ContentItem shape; the pipeline decides which fields matter.
type ListingAdapter struct {
	config config.ScraperConfig
	logger *logger.Logger
}

func NewListingAdapter(cfg config.ScraperConfig, log *logger.Logger) *ListingAdapter {
	return &ListingAdapter{config: cfg, logger: log}
}

func (adapter *ListingAdapter) newCollector() *colly.Collector {
	collector := colly.NewCollector(
		colly.UserAgent(adapter.config.UserAgent),
	)
	collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: adapter.config.Parallelism,
		Delay:       adapter.config.Delay,
	})
	collector.SetRequestTimeout(adapter.config.RequestTimeout)
	return collector
}

func (adapter *ListingAdapter) Fetch(ctx context.Context, def models.AgentDefinition) ([]models.ContentItem, error) {
	startTime := time.Now()

	var items []models.ContentItem
	var fetchErr error

	collector := adapter.newCollector()

	collector.OnHTML(".release-item, tr.release-row", func(element *colly.HTMLElement) {
		title := strings.TrimSpace(element.ChildText(".release-title, .title, td.title"))
		if title == "" {
			return
		}
		item := models.ContentItem{
			Title:       title,
			URL:         element.Request.AbsoluteURL(element.ChildAttr("a", "href")),
			Description: strings.TrimSpace(element.ChildText(".release-synopsis, .synopsis")),
			ImageURL:    element.ChildAttr("img", "src"),
			Source:      def.SourceURL,
			Language:    strings.TrimSpace(element.ChildText(".release-language, .language")),
		}
		if year := strings.TrimSpace(element.ChildText(".release-year, .year, td.year")); year != "" {
			if parsed, err := strconv.Atoi(year); err == nil {
				item.Year = parsed
			}
		}
		if date := strings.TrimSpace(element.ChildAttr("time", "datetime")); date != "" {
			if publishedAt, err := time.Parse(time.RFC3339, date); err == nil {
				item.PublishedAt = publishedAt
			}
		}
		items = append(items, item)
	})

	collector.OnHTML("tr.match-row, .schedule-item", func(element *colly.HTMLElement) {
		team1 := strings.TrimSpace(element.ChildText(".team1, td.team-a"))
		team2 := strings.TrimSpace(element.ChildText(".team2, td.team-b"))
		if team1 == "" || team2 == "" {
			return
		}
		items = append(items, models.ContentItem{
			Title:     team1 + " vs " + team2,
			Team1:     team1,
			Team2:     team2,
			MatchDate: strings.TrimSpace(element.ChildText(".match-date, td.date")),
			Source:    def.SourceURL,
		})
	})

	collector.OnError(func(response *colly.Response, err error) {
		fetchErr = models.NewSourceError("LISTING_FETCH_FAILED", "Listing crawl failed").WithCause(err)
	})

	if err := collector.Visit(def.SourceURL); err != nil && fetchErr == nil {
		fetchErr = models.NewSourceError("LISTING_VISIT_FAILED", "Failed to start listing crawl").WithCause(err)
	}
	collector.Wait()

	adapter.logger.LogService("listing_adapter", "fetch", time.Since(startTime), map[string]any{
		"agent_id": def.ID,
		"url":      def.SourceURL,
		"items":    len(items),
	}, fetchErr)

	// items collected before the failure still count: truncated batch plus
	// the error is a partial success for the pipeline
	return items, fetchErr
}
