package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/resume-analyzer/internal/common"
)

// RecordTTL keeps finished job records pollable well past the artifact
// window.
const RecordTTL = 24 * time.Hour

// RecordStore persists job status records, keyed by task id.
type RecordStore interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, taskID string) (*Record, error)
}

func recordKey(taskID string) string {
	return "resume:task:" + taskID + ":v1"
}

// RedisRecordStore shares records between the API process and workers.
type RedisRecordStore struct {
	rdb *redis.Client
}

func NewRedisRecordStore(ctx context.Context, url string) (*RedisRecordStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisRecordStore{rdb: rdb}, nil
}

func (s *RedisRecordStore) Save(ctx context.Context, rec *Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal status record: %w", err)
	}
	if err := s.rdb.Set(ctx, recordKey(rec.TaskID), b, RecordTTL).Err(); err != nil {
		return fmt.Errorf("save status record %s: %w", rec.TaskID, err)
	}
	return nil
}

func (s *RedisRecordStore) Get(ctx context.Context, taskID string) (*Record, error) {
	b, err := s.rdb.Get(ctx, recordKey(taskID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("task %s: %w", taskID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load status record %s: %w", taskID, err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal status record %s: %w", taskID, err)
	}
	return &rec, nil
}

func (s *RedisRecordStore) Close() error {
	return s.rdb.Close()
}

// MemoryRecordStore is the in-process variant used by tests.
type MemoryRecordStore struct {
	mu      sync.Mutex
	records map[string][]byte
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[string][]byte)}
}

func (s *MemoryRecordStore) Save(_ context.Context, rec *Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.TaskID] = b
	return nil
}

func (s *MemoryRecordStore) Get(_ context.Context, taskID string) (*Record, error) {
	s.mu.Lock()
	b, ok := s.records[taskID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("task %s: %w", taskID, common.ErrNotFound)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
