package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

const DefaultRedisKey = "guidance:recent"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	Capacity int
}

type redisStore struct {
	log      *logger.Logger
	rdb      goredis.UniversalClient
	key      string
	capacity int64
}

// NewRedis shares the history between replicas through one redis list.
func NewRedis(rdb goredis.UniversalClient, key string, capacity int, log *logger.Logger) (Store, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(key) == "" {
		key = DefaultRedisKey
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &redisStore{
		log:      log.With("service", "RedisHistory"),
		rdb:      rdb,
		key:      key,
		capacity: int64(capacity),
	}, nil
}

// DialRedis connects and pings before handing the client to NewRedis.
func DialRedis(ctx context.Context, cfg RedisConfig, log *logger.Logger) (Store, func() error, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	store, err := NewRedis(rdb, cfg.Key, cfg.Capacity, log)
	if err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return store, rdb.Close, nil
}

// Ping reports whether the backing redis answers.
func (s *redisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *redisStore) Recent(ctx context.Context) ([]string, error) {
	items, err := s.rdb.LRange(ctx, s.key, 0, s.capacity-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}
	return items, nil
}

func (s *redisStore) Remember(ctx context.Context, text string) error {
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, s.key, text)
	pipe.LTrim(ctx, s.key, 0, s.capacity-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis remember: %w", err)
	}
	return nil
}
