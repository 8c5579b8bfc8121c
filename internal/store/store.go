package store

import (
	"context"

	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
)

// ContentStore is the boundary the engines talk to. It is a plain keyed
// document store: point lookups, set-based updates and counts. No
// cross-document transactions are assumed anywhere above it.
type ContentStore interface {
	GetRecord(ctx context.Context, id string) (*models.CanonicalRecord, error)
	PutRecord(ctx context.Context, record *models.CanonicalRecord) error
	// CreateRecord writes the record and binds its DedupKey in one atomic
	// step, so a fault can never leave a record without its binding.
	CreateRecord(ctx context.Context, record *models.CanonicalRecord) error
	CountRecords(ctx context.Context, domain models.ContentDomain) (int64, error)

	// LookupDedupKey returns the bound record id, or "" when the key is free.
	LookupDedupKey(ctx context.Context, domain models.ContentDomain, key string) (string, error)

	GetGroup(ctx context.Context, id string) (*models.Group, error)
	PutGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, id string) error
	// FindGroupByKey returns (nil, nil) when no group holds the key.
	FindGroupByKey(ctx context.Context, category, titleKey string) (*models.Group, error)
	GroupsByCategory(ctx context.Context, category string) ([]*models.Group, error)
	UnbindGroupKey(ctx context.Context, category, titleKey string) error

	SaveAgentRun(ctx context.Context, run *models.AgentRun) error
	GetAgentRun(ctx context.Context, agentID string) (*models.AgentRun, error)
}
