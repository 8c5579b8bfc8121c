package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
	"github.com/kit2552/tadka-cms-final-sub001/internal/pkg/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New failed: %v", err)
	}
	return log
}

// memStore is an in-memory ContentStore used by the engine tests. It copies
// documents on the way in and out, the way a real document store would.
type memStore struct {
	mu        sync.Mutex
	records   map[string]*models.CanonicalRecord
	dedup     map[string]string
	groups    map[string]*models.Group
	groupKeys map[string]string
	runs      map[string]*models.AgentRun

	// when set, CreateRecord fails for records with this title
	failPutTitle string
}

func newMemStore() *memStore {
	return &memStore{
		records:   make(map[string]*models.CanonicalRecord),
		dedup:     make(map[string]string),
		groups:    make(map[string]*models.Group),
		groupKeys: make(map[string]string),
		runs:      make(map[string]*models.AgentRun),
	}
}

func copyRecord(record *models.CanonicalRecord) *models.CanonicalRecord {
	copied := *record
	return &copied
}

func copyGroup(group *models.Group) *models.Group {
	copied := *group
	copied.MemberIDs = append([]string(nil), group.MemberIDs...)
	return &copied
}

func (mem *memStore) GetRecord(_ context.Context, id string) (*models.CanonicalRecord, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	record, ok := mem.records[id]
	if !ok {
		return nil, models.ErrRecordNotFound.WithMetadata("record_id", id)
	}
	return copyRecord(record), nil
}

func (mem *memStore) PutRecord(_ context.Context, record *models.CanonicalRecord) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	mem.records[record.ID] = copyRecord(record)
	return nil
}

func (mem *memStore) CreateRecord(_ context.Context, record *models.CanonicalRecord) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	if mem.failPutTitle != "" && record.Title == mem.failPutTitle {
		// fail before touching any state, like the transactional store
		return models.NewPersistenceError("RECORD_CREATE_FAILED", "Failed to create canonical record").
			WithCause(errors.New("simulated write failure"))
	}
	mem.records[record.ID] = copyRecord(record)
	mem.dedup[string(record.Domain)+"|"+record.DedupKey] = record.ID
	return nil
}

func (mem *memStore) CountRecords(_ context.Context, domain models.ContentDomain) (int64, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	var count int64
	for _, record := range mem.records {
		if record.Domain == domain {
			count++
		}
	}
	return count, nil
}

func (mem *memStore) LookupDedupKey(_ context.Context, domain models.ContentDomain, key string) (string, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	return mem.dedup[string(domain)+"|"+key], nil
}

func (mem *memStore) GetGroup(_ context.Context, id string) (*models.Group, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	group, ok := mem.groups[id]
	if !ok {
		return nil, models.ErrGroupNotFound.WithMetadata("group_id", id)
	}
	return copyGroup(group), nil
}

func (mem *memStore) PutGroup(_ context.Context, group *models.Group) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	mem.groups[group.ID] = copyGroup(group)
	mem.groupKeys[group.Category+"|"+models.GroupTitleKey(group.Title)] = group.ID
	return nil
}

func (mem *memStore) DeleteGroup(_ context.Context, id string) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	group, ok := mem.groups[id]
	if !ok {
		return models.ErrGroupNotFound.WithMetadata("group_id", id)
	}
	delete(mem.groups, id)
	delete(mem.groupKeys, group.Category+"|"+models.GroupTitleKey(group.Title))
	return nil
}

func (mem *memStore) FindGroupByKey(_ context.Context, category, titleKey string) (*models.Group, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	id, ok := mem.groupKeys[category+"|"+titleKey]
	if !ok {
		return nil, nil
	}
	group, ok := mem.groups[id]
	if !ok {
		return nil, nil
	}
	return copyGroup(group), nil
}

func (mem *memStore) GroupsByCategory(_ context.Context, category string) ([]*models.Group, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	var groups []*models.Group
	for _, group := range mem.groups {
		if group.Category == category {
			groups = append(groups, copyGroup(group))
		}
	}
	return groups, nil
}

func (mem *memStore) UnbindGroupKey(_ context.Context, category, titleKey string) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	delete(mem.groupKeys, category+"|"+titleKey)
	return nil
}

func (mem *memStore) SaveAgentRun(_ context.Context, run *models.AgentRun) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	copied := *run
	mem.runs[run.AgentID] = &copied
	return nil
}

func (mem *memStore) GetAgentRun(_ context.Context, agentID string) (*models.AgentRun, error) {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	run, ok := mem.runs[agentID]
	if !ok {
		return nil, models.NewNotFoundError("RUN_NOT_FOUND", "No recorded run for this agent").
			WithMetadata("agent_id", agentID)
	}
	copied := *run
	return &copied, nil
}
