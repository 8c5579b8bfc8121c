package services

import (
	"context"

	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
)

// SourceAdapter produces a finite batch of normalized candidates from an
// external source. Returning items together with a non-nil error means the
// fetch was truncated partway; the pipeline treats that as partial success,
// not total failure.
type SourceAdapter interface {
	Fetch(ctx context.Context, def models.AgentDefinition) ([]models.ContentItem, error)
}
