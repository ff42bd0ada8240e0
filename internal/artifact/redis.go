package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/resume-analyzer/internal/common"
)

// RedisStore implements Store on a shared Redis instance so stages running on
// different worker processes see the same artifacts.
type RedisStore struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewRedisStore parses a redis URL ("redis://host:port/db") and pings the
// server once so a bad address fails at startup, not on first stage.
func NewRedisStore(ctx context.Context, url string, logger *slog.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{rdb: rdb, logger: logger}, nil
}

func (s *RedisStore) Put(ctx context.Context, fileID, kind string, version int, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	key := Key(fileID, kind, version)
	if err := s.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store artifact %s: %w", key, err)
	}
	s.logger.Debug("artifact.put", "key", key, "bytes", len(payload), "ttl_s", int(ttl.Seconds()))
	return nil
}

func (s *RedisStore) Get(ctx context.Context, fileID, kind string, version int) ([]byte, error) {
	key := Key(fileID, kind, version)
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", key, common.ErrArtifactMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w", key, err)
	}
	return b, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
