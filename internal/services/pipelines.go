package services

import (
	"context"

	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
	"github.com/kit2552/tadka-cms-final-sub001/internal/pkg/logger"
)

// Pipeline is one agent-type variant of the ingest flow. The set of
// variants is closed at construction time in NewDispatcher; adding one
// never touches the single-flight logic.
type Pipeline interface {
	Execute(ctx context.Context, def models.AgentDefinition, summary *models.RunSummary) error
}

// AdapterSet holds the configured source adapters, one per source kind.
type AdapterSet struct {
	Feed    SourceAdapter
	Channel SourceAdapter
	Listing SourceAdapter
}

func (set AdapterSet) ForKind(kind models.SourceKind) SourceAdapter {
	switch kind {
	case models.SourceKindChannel:
		return set.Channel
	case models.SourceKindListing:
		return set.Listing
	default:
		return set.Feed
	}
}

type materializeFunc func(ctx context.Context, item models.ContentItem, def models.AgentDefinition) (*MaterializeResult, error)

// contentPipeline is the shared fetch → dedup → aggregate flow. Grouping
// is optional: release and schedule variants leave groups nil.
type contentPipeline struct {
	adapters    AdapterSet
	materialize materializeFunc
	groups      *GroupService
	logger      *logger.Logger
}

func (pipeline *contentPipeline) Execute(ctx context.Context, def models.AgentDefinition, summary *models.RunSummary) error {
	items, fetchErr := pipeline.adapters.ForKind(def.SourceKind).Fetch(ctx, def)
	if fetchErr != nil && len(items) == 0 {
		// nothing retrieved at all: the run has no partial result to keep
		return fetchErr
	}
	if fetchErr != nil {
		summary.AddError(def.SourceURL, fetchErr.Error())
	}
	summary.Fetched = len(items)

	var memberIDs []string
	for _, item := range items {
		result, err := pipeline.materialize(ctx, item, def)
		if err != nil {
			// per-item fault: record it with the item title and move on
			summary.AddError(item.Title, err.Error())
			continue
		}
		if result.Created {
			summary.Created++
		} else {
			summary.Skipped++
		}
		memberIDs = append(memberIDs, result.RecordID)
	}

	if pipeline.groups != nil && len(memberIDs) > 0 {
		if _, err := pipeline.groups.BulkReconcile(ctx, def.Category, def.GroupTitle, memberIDs); err != nil {
			return err
		}
	}
	return nil
}
