package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kit2552/tadka-cms-final-sub001/internal/config"
	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
	"github.com/kit2552/tadka-cms-final-sub001/internal/pkg/logger"
)

// RedisStore keeps canonical records, groups and run summaries as JSON
// documents, with string keys as the dedup index and sets as the category
// indexes. Layout:
//
//	record:<id>                     JSON CanonicalRecord
//	records:<domain>                set of record ids
//	dedup:<domain>:<key>            record id
//	group:<id>                      JSON Group
//	groups:<category>               set of group ids
//	groupkey:<category>:<titlekey>  group id
//	agent:<id>:last_run             JSON AgentRun
type RedisStore struct {
	client *redis.Client
	logger *logger.Logger
	config config.RedisConfig
}

func NewRedisStore(cfg config.RedisConfig, log *logger.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	opt.PoolSize = cfg.PoolSize
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout

	redisStore := &RedisStore{
		client: redis.NewClient(opt),
		logger: log,
		config: cfg,
	}

	if err := redisStore.testConnection(); err != nil {
		return nil, fmt.Errorf("connection to Redis failed: %w", err)
	}

	log.Info("Content store initialized successfully",
		"redis_url", cfg.URL,
		"pool_size", cfg.PoolSize)

	return redisStore, nil
}

func (redisStore *RedisStore) testConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return redisStore.client.Ping(ctx).Err()
}

func (redisStore *RedisStore) Close() error {
	redisStore.logger.Info("Closing content store")
	return redisStore.client.Close()
}

func (redisStore *RedisStore) HealthCheck(ctx context.Context) error {
	if err := redisStore.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("content store unhealthy: %w", err)
	}
	return nil
}

func recordKey(id string) string { return "record:" + id }
func recordSetKey(domain models.ContentDomain) string {
	return "records:" + string(domain)
}
func dedupKey(domain models.ContentDomain, key string) string {
	return fmt.Sprintf("dedup:%s:%s", domain, key)
}
func groupKey(id string) string            { return "group:" + id }
func groupSetKey(category string) string   { return "groups:" + category }
func groupIndexKey(category, titleKey string) string {
	return fmt.Sprintf("groupkey:%s:%s", category, titleKey)
}
func agentRunKey(agentID string) string { return "agent:" + agentID + ":last_run" }

func (redisStore *RedisStore) GetRecord(ctx context.Context, id string) (*models.CanonicalRecord, error) {
	startTime := time.Now()

	raw, err := redisStore.client.Get(ctx, recordKey(id)).Result()
	if err == redis.Nil {
		return nil, models.ErrRecordNotFound.WithMetadata("record_id", id)
	}
	if err != nil {
		redisStore.logger.LogService("store", "get_record", time.Since(startTime), map[string]any{"record_id": id}, err)
		return nil, models.NewPersistenceError("RECORD_GET_FAILED", "Failed to read canonical record").WithCause(err)
	}

	var record models.CanonicalRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, models.NewInternalError("RECORD_DECODE_FAILED", "Failed to decode canonical record").WithCause(err)
	}
	return &record, nil
}

func (redisStore *RedisStore) PutRecord(ctx context.Context, record *models.CanonicalRecord) error {
	startTime := time.Now()

	raw, err := json.Marshal(record)
	if err != nil {
		return models.NewInternalError("RECORD_ENCODE_FAILED", "Failed to encode canonical record").WithCause(err)
	}

	pipe := redisStore.client.Pipeline()
	pipe.Set(ctx, recordKey(record.ID), raw, 0)
	pipe.SAdd(ctx, recordSetKey(record.Domain), record.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		redisStore.logger.LogService("store", "put_record", time.Since(startTime), map[string]any{
			"record_id": record.ID,
			"domain":    string(record.Domain),
		}, err)
		return models.NewPersistenceError("RECORD_PUT_FAILED", "Failed to write canonical record").WithCause(err)
	}

	redisStore.logger.LogService("store", "put_record", time.Since(startTime), map[string]any{
		"record_id": record.ID,
		"domain":    string(record.Domain),
	}, nil)
	return nil
}

func (redisStore *RedisStore) CreateRecord(ctx context.Context, record *models.CanonicalRecord) error {
	startTime := time.Now()

	raw, err := json.Marshal(record)
	if err != nil {
		return models.NewInternalError("RECORD_ENCODE_FAILED", "Failed to encode canonical record").WithCause(err)
	}

	// record, domain index and dedup binding must land together: a record
	// without its binding would let a later run create a duplicate
	pipe := redisStore.client.TxPipeline()
	pipe.Set(ctx, recordKey(record.ID), raw, 0)
	pipe.SAdd(ctx, recordSetKey(record.Domain), record.ID)
	pipe.Set(ctx, dedupKey(record.Domain, record.DedupKey), record.ID, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		redisStore.logger.LogService("store", "create_record", time.Since(startTime), map[string]any{
			"record_id": record.ID,
			"domain":    string(record.Domain),
		}, err)
		return models.NewPersistenceError("RECORD_CREATE_FAILED", "Failed to create canonical record").WithCause(err)
	}

	redisStore.logger.LogService("store", "create_record", time.Since(startTime), map[string]any{
		"record_id": record.ID,
		"domain":    string(record.Domain),
	}, nil)
	return nil
}

func (redisStore *RedisStore) CountRecords(ctx context.Context, domain models.ContentDomain) (int64, error) {
	count, err := redisStore.client.SCard(ctx, recordSetKey(domain)).Result()
	if err != nil {
		return 0, models.NewPersistenceError("RECORD_COUNT_FAILED", "Failed to count canonical records").WithCause(err)
	}
	return count, nil
}

func (redisStore *RedisStore) LookupDedupKey(ctx context.Context, domain models.ContentDomain, key string) (string, error) {
	id, err := redisStore.client.Get(ctx, dedupKey(domain, key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", models.NewPersistenceError("DEDUP_LOOKUP_FAILED", "Failed to look up dedup key").WithCause(err)
	}
	return id, nil
}

func (redisStore *RedisStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	raw, err := redisStore.client.Get(ctx, groupKey(id)).Result()
	if err == redis.Nil {
		return nil, models.ErrGroupNotFound.WithMetadata("group_id", id)
	}
	if err != nil {
		return nil, models.NewPersistenceError("GROUP_GET_FAILED", "Failed to read group").WithCause(err)
	}

	var group models.Group
	if err := json.Unmarshal([]byte(raw), &group); err != nil {
		return nil, models.NewInternalError("GROUP_DECODE_FAILED", "Failed to decode group").WithCause(err)
	}
	return &group, nil
}

func (redisStore *RedisStore) PutGroup(ctx context.Context, group *models.Group) error {
	startTime := time.Now()

	raw, err := json.Marshal(group)
	if err != nil {
		return models.NewInternalError("GROUP_ENCODE_FAILED", "Failed to encode group").WithCause(err)
	}

	pipe := redisStore.client.Pipeline()
	pipe.Set(ctx, groupKey(group.ID), raw, 0)
	pipe.SAdd(ctx, groupSetKey(group.Category), group.ID)
	pipe.Set(ctx, groupIndexKey(group.Category, models.GroupTitleKey(group.Title)), group.ID, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		redisStore.logger.LogService("store", "put_group", time.Since(startTime), map[string]any{
			"group_id": group.ID,
			"category": group.Category,
		}, err)
		return models.NewPersistenceError("GROUP_PUT_FAILED", "Failed to write group").WithCause(err)
	}

	redisStore.logger.LogService("store", "put_group", time.Since(startTime), map[string]any{
		"group_id":     group.ID,
		"category":     group.Category,
		"member_count": group.MemberCount,
	}, nil)
	return nil
}

func (redisStore *RedisStore) DeleteGroup(ctx context.Context, id string) error {
	group, err := redisStore.GetGroup(ctx, id)
	if err != nil {
		return err
	}

	pipe := redisStore.client.Pipeline()
	pipe.Del(ctx, groupKey(id))
	pipe.SRem(ctx, groupSetKey(group.Category), id)
	pipe.Del(ctx, groupIndexKey(group.Category, models.GroupTitleKey(group.Title)))
	if _, err := pipe.Exec(ctx); err != nil {
		return models.NewPersistenceError("GROUP_DELETE_FAILED", "Failed to delete group").WithCause(err)
	}
	return nil
}

func (redisStore *RedisStore) FindGroupByKey(ctx context.Context, category, titleKey string) (*models.Group, error) {
	id, err := redisStore.client.Get(ctx, groupIndexKey(category, titleKey)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewPersistenceError("GROUP_FIND_FAILED", "Failed to look up group by key").WithCause(err)
	}
	return redisStore.GetGroup(ctx, id)
}

func (redisStore *RedisStore) GroupsByCategory(ctx context.Context, category string) ([]*models.Group, error) {
	ids, err := redisStore.client.SMembers(ctx, groupSetKey(category)).Result()
	if err != nil {
		return nil, models.NewPersistenceError("GROUP_LIST_FAILED", "Failed to list groups").WithCause(err)
	}

	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := redisStore.GetGroup(ctx, id)
		if err != nil {
			// stale index entry, skip
			if models.KindOf(err) == models.ErrorKindNotFound {
				continue
			}
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (redisStore *RedisStore) UnbindGroupKey(ctx context.Context, category, titleKey string) error {
	if err := redisStore.client.Del(ctx, groupIndexKey(category, titleKey)).Err(); err != nil {
		return models.NewPersistenceError("GROUP_UNBIND_FAILED", "Failed to unbind group key").WithCause(err)
	}
	return nil
}

func (redisStore *RedisStore) SaveAgentRun(ctx context.Context, run *models.AgentRun) error {
	raw, err := json.Marshal(run)
	if err != nil {
		return models.NewInternalError("RUN_ENCODE_FAILED", "Failed to encode agent run").WithCause(err)
	}
	if err := redisStore.client.Set(ctx, agentRunKey(run.AgentID), raw, 0).Err(); err != nil {
		return models.NewPersistenceError("RUN_SAVE_FAILED", "Failed to save agent run").WithCause(err)
	}
	return nil
}

func (redisStore *RedisStore) GetAgentRun(ctx context.Context, agentID string) (*models.AgentRun, error) {
	raw, err := redisStore.client.Get(ctx, agentRunKey(agentID)).Result()
	if err == redis.Nil {
		return nil, models.NewNotFoundError("RUN_NOT_FOUND", "No recorded run for this agent").
			WithMetadata("agent_id", agentID)
	}
	if err != nil {
		return nil, models.NewPersistenceError("RUN_GET_FAILED", "Failed to read agent run").WithCause(err)
	}

	var run models.AgentRun
	if err := json.Unmarshal([]byte(raw), &run); err != nil {
		return nil, models.NewInternalError("RUN_DECODE_FAILED", "Failed to decode agent run").WithCause(err)
	}
	return &run, nil
}
