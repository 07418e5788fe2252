package denylist

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"caplock/pkg/domain"
)

const denylistKeyPrefix = "denylist:addr:"

// RedisStore shares the blocked-account set across replicas. This is the
// production-recommended implementation for distributed deployments: every
// replica must observe a blacklist flip before its next transfer.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, addr domain.Address, blocked bool) error {
	key := denylistKeyPrefix + addr.String()
	if blocked {
		// Store "1" as a simple marker; key existence is what matters.
		if err := s.client.Set(ctx, key, "1", 0).Err(); err != nil {
			return fmt.Errorf("set denylist flag: %w", err)
		}
		return nil
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("clear denylist flag: %w", err)
	}
	return nil
}

func (s *RedisStore) IsBlocked(ctx context.Context, addr domain.Address) (bool, error) {
	n, err := s.client.Exists(ctx, denylistKeyPrefix+addr.String()).Result()
	if err != nil {
		return false, fmt.Errorf("check denylist flag: %w", err)
	}
	return n > 0, nil
}
