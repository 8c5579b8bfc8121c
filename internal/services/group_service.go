package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
	"github.com/kit2552/tadka-cms-final-sub001/internal/pkg/logger"
	"github.com/kit2552/tadka-cms-final-sub001/internal/store"
)

// GroupService maintains (category, title)-keyed aggregates of canonical
// records. Counts and the representative are always recomputed from the
// member set after a mutation, never incremented on the side: the store
// offers no cross-document transactions, so a partial failure can leave a
// group transiently wrong, and the next successful mutation heals it.
type GroupService struct {
	store  store.ContentStore
	logger *logger.Logger
}

func NewGroupService(contentStore store.ContentStore, log *logger.Logger) *GroupService {
	return &GroupService{store: contentStore, logger: log}
}

// AddMember puts recordID into the (category, title) group, first removing
// it from every other group in the same category. A record belongs to at
// most one group per category; cross-category membership is independent.
func (service *GroupService) AddMember(ctx context.Context, category, title, recordID string) (*models.Group, error) {
	if _, err := service.store.GetRecord(ctx, recordID); err != nil {
		return nil, err
	}
	return service.reconcile(ctx, category, title, []string{recordID})
}

// BulkReconcile is AddMember for a whole batch: the exclusivity pass and
// the target-set union run once, and the observable result is identical to
// calling AddMember once per id in any order.
func (service *GroupService) BulkReconcile(ctx context.Context, category, title string, recordIDs []string) (*models.Group, error) {
	if len(recordIDs) == 0 {
		// zero addMember calls: nothing to mutate
		return service.store.FindGroupByKey(ctx, category, models.GroupTitleKey(title))
	}
	return service.reconcile(ctx, category, title, recordIDs)
}

func (service *GroupService) reconcile(ctx context.Context, category, title string, recordIDs []string) (*models.Group, error) {
	startTime := time.Now()
	titleKey := models.GroupTitleKey(title)

	incoming := make(map[string]struct{}, len(recordIDs))
	for _, id := range recordIDs {
		incoming[id] = struct{}{}
	}

	// Exclusivity pass: strip the incoming members out of every other group
	// in this category, recomputing each touched group from its member set.
	others, err := service.store.GroupsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	for _, other := range others {
		if models.GroupTitleKey(other.Title) == titleKey {
			continue
		}
		touched := false
		for id := range incoming {
			if other.HasMember(id) {
				other.RemoveMember(id)
				touched = true
			}
		}
		if !touched {
			continue
		}
		service.recompute(ctx, other)
		if err := service.store.PutGroup(ctx, other); err != nil {
			return nil, err
		}
	}

	// Target pass: locate or create the group, union in the batch.
	group, err := service.store.FindGroupByKey(ctx, category, titleKey)
	if err != nil {
		return nil, err
	}
	if group == nil {
		group = &models.Group{
			ID:        uuid.New().String(),
			Category:  category,
			Title:     title,
			MemberIDs: []string{},
		}
	}
	for _, id := range recordIDs {
		if !group.HasMember(id) {
			group.MemberIDs = append(group.MemberIDs, id)
		}
	}
	service.recompute(ctx, group)
	if err := service.store.PutGroup(ctx, group); err != nil {
		return nil, err
	}

	service.logger.LogService("groups", "reconcile", time.Since(startTime), map[string]any{
		"category":     category,
		"group_id":     group.ID,
		"member_count": group.MemberCount,
		"batch_size":   len(recordIDs),
	}, nil)

	return group, nil
}

// recompute derives member count and representative from the member set.
// The representative is the member with the latest published_at, ties
// broken by highest record id. Members whose records cannot be loaded are
// kept in the set but cannot win the representative slot.
func (service *GroupService) recompute(ctx context.Context, group *models.Group) {
	group.MemberCount = len(group.MemberIDs)
	group.UpdatedAt = time.Now()

	var bestID string
	var bestPublishedAt time.Time
	for _, memberID := range group.MemberIDs {
		record, err := service.store.GetRecord(ctx, memberID)
		if err != nil {
			service.logger.WithError(err).Warn("Skipping unreadable member during representative recompute",
				"group_id", group.ID, "record_id", memberID)
			continue
		}
		if bestID == "" ||
			record.PublishedAt.After(bestPublishedAt) ||
			(record.PublishedAt.Equal(bestPublishedAt) && record.ID > bestID) {
			bestID = record.ID
			bestPublishedAt = record.PublishedAt
		}
	}
	group.RepresentativeID = bestID
}

// CreateGroup makes an empty aggregate; duplicate (category, title) is a
// conflict.
func (service *GroupService) CreateGroup(ctx context.Context, category, title string) (*models.Group, error) {
	existing, err := service.store.FindGroupByKey(ctx, category, models.GroupTitleKey(title))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrGroupExists.WithMetadata("category", category).WithMetadata("title", title)
	}

	group := &models.Group{
		ID:        uuid.New().String(),
		Category:  category,
		Title:     title,
		MemberIDs: []string{},
		UpdatedAt: time.Now(),
	}
	if err := service.store.PutGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (service *GroupService) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	return service.store.GetGroup(ctx, id)
}

func (service *GroupService) ListByCategory(ctx context.Context, category string) ([]*models.Group, error) {
	return service.store.GroupsByCategory(ctx, category)
}

// RenameGroup changes the title only; membership is untouched and the new
// (category, title) key is re-validated for uniqueness.
func (service *GroupService) RenameGroup(ctx context.Context, id, newTitle string) (*models.Group, error) {
	group, err := service.store.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	oldKey := models.GroupTitleKey(group.Title)
	newKey := models.GroupTitleKey(newTitle)

	if newKey != oldKey {
		existing, err := service.store.FindGroupByKey(ctx, group.Category, newKey)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != group.ID {
			return nil, models.ErrGroupExists.
				WithMetadata("category", group.Category).WithMetadata("title", newTitle)
		}
	}

	// write under the new title first: if the write fails the old binding
	// still resolves, and a leftover old binding is just a stale alias
	group.Title = newTitle
	group.UpdatedAt = time.Now()
	if err := service.store.PutGroup(ctx, group); err != nil {
		return nil, err
	}
	if newKey != oldKey {
		if err := service.store.UnbindGroupKey(ctx, group.Category, oldKey); err != nil {
			return nil, err
		}
	}
	return group, nil
}

// DeleteGroup removes only the aggregate; member records are untouched.
func (service *GroupService) DeleteGroup(ctx context.Context, id string) error {
	return service.store.DeleteGroup(ctx, id)
}
