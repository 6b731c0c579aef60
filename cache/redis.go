package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisStore connects and pings redis.
func NewRedisStore(ctx context.Context, cfg RedisConfig, log *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisStore{client: client, ttl: cfg.TTL, log: log}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		s.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context, userID uuid.UUID, entities ...string) error {
	for _, entity := range entities {
		iter := s.client.Scan(ctx, 0, listPattern(entity, userID), 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			s.log.Warn("cache scan failed", zap.String("entity", entity), zap.Error(err))
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
