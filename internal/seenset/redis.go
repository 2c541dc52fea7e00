package seenset

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of Redis set commands, keyed
// "ids:<category>".
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-connected client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func setKey(category string) string {
	return "ids:" + category
}

// AreKnown checks membership for all ids in one SMISMEMBER round trip.
func (s *RedisStore) AreKnown(ctx context.Context, category string, ids []string) ([]bool, error) {
	if len(ids) == 0 {
		return []bool{}, nil
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	known, err := s.client.SMIsMember(ctx, setKey(category), members...).Result()
	if err != nil {
		return nil, fmt.Errorf("smismember %s: %w", setKey(category), err)
	}
	return known, nil
}

// MarkKnown adds ids with a single SADD.
func (s *RedisStore) MarkKnown(ctx context.Context, category string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	if err := s.client.SAdd(ctx, setKey(category), members...).Err(); err != nil {
		return fmt.Errorf("sadd %s: %w", setKey(category), err)
	}
	return nil
}

// Unmark removes ids with a single SREM.
func (s *RedisStore) Unmark(ctx context.Context, category string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	if err := s.client.SRem(ctx, setKey(category), members...).Err(); err != nil {
		return fmt.Errorf("srem %s: %w", setKey(category), err)
	}
	return nil
}
