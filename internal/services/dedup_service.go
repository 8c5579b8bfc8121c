package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
	"github.com/kit2552/tadka-cms-final-sub001/internal/pkg/logger"
	"github.com/kit2552/tadka-cms-final-sub001/internal/store"
)

// DedupService decides candidate-is-new vs candidate-is-duplicate and
// idempotently materializes canonical records. Lookup is an exact match on
// the normalized dedup key within a domain; near-duplicate titles are a
// known limitation, not something this engine tries to solve.
type DedupService struct {
	store  store.ContentStore
	logger *logger.Logger
}

func NewDedupService(contentStore store.ContentStore, log *logger.Logger) *DedupService {
	return &DedupService{store: contentStore, logger: log}
}

type MaterializeResult struct {
	RecordID string
	Created  bool
}

// MaterializeRelease resolves a release listing candidate. Key: normalized
// title, plus the year when present.
func (service *DedupService) MaterializeRelease(ctx context.Context, item models.ContentItem, def models.AgentDefinition) (*MaterializeResult, error) {
	if models.NormalizeText(item.Title) == "" {
		return nil, models.NewValidationError("EMPTY_TITLE", "Release candidate has no usable title")
	}
	key := models.ReleaseDedupKey(item.Title, item.Year)
	return service.resolveOrCreate(ctx, models.DomainRelease, key, item, def)
}

// MaterializeSchedule resolves a match schedule candidate. Key: the
// (team1, team2, match_date, source) tuple, each side case-normalized.
func (service *DedupService) MaterializeSchedule(ctx context.Context, item models.ContentItem, def models.AgentDefinition) (*MaterializeResult, error) {
	if item.Team1 == "" || item.Team2 == "" || item.MatchDate == "" {
		return nil, models.NewValidationError("INCOMPLETE_MATCH", "Schedule candidate is missing teams or date").
			WithMetadata("title", item.Title)
	}
	key := models.ScheduleDedupKey(item.Team1, item.Team2, item.MatchDate, item.Source)
	return service.resolveOrCreate(ctx, models.DomainSchedule, key, item, def)
}

// MaterializeArticle resolves a video candidate into an article. Key: the
// (external_video_url, category) pair, treated as exact.
func (service *DedupService) MaterializeArticle(ctx context.Context, item models.ContentItem, def models.AgentDefinition) (*MaterializeResult, error) {
	if item.ExternalKey == "" && item.URL == "" {
		return nil, models.NewValidationError("MISSING_VIDEO_URL", "Video candidate has no external URL").
			WithMetadata("title", item.Title)
	}
	externalURL := item.ExternalKey
	if externalURL == "" {
		externalURL = item.URL
	}
	key := models.VideoDedupKey(externalURL, def.Category)
	return service.resolveOrCreate(ctx, models.DomainArticle, key, item, def)
}

func (service *DedupService) resolveOrCreate(ctx context.Context, domain models.ContentDomain, key string, item models.ContentItem, def models.AgentDefinition) (*MaterializeResult, error) {
	startTime := time.Now()

	existingID, err := service.store.LookupDedupKey(ctx, domain, key)
	if err != nil {
		return nil, err
	}
	if existingID != "" {
		// duplicate: resolve to the existing record, mutate nothing
		return &MaterializeResult{RecordID: existingID, Created: false}, nil
	}

	status := models.WorkflowStatus(def.WorkflowStatus)
	now := time.Now()
	record := &models.CanonicalRecord{
		ID:          uuid.New().String(),
		Domain:      domain,
		DedupKey:    key,
		Title:       item.Title,
		Slug:        models.Slugify(item.Title),
		Category:    def.Category,
		Status:      status,
		Published:   status == models.WorkflowStatusPublished,
		SourceRef:   item.Source,
		PublishedAt: item.PublishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := service.store.CreateRecord(ctx, record); err != nil {
		return nil, err
	}

	service.logger.LogService("dedup", "materialize", time.Since(startTime), map[string]any{
		"domain":    string(domain),
		"record_id": record.ID,
		"category":  record.Category,
		"status":    string(record.Status),
	}, nil)

	return &MaterializeResult{RecordID: record.ID, Created: true}, nil
}
