// Package redisqueue implements the durable queue on Redis lists.
package redisqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Queue is the production queue implementation. Publish LPUSHes onto
// main; Claim BLMOVEs from the right end of main to the left end of
// processing, which is the atomic claim primitive the design depends on.
type Queue struct {
	client     *redis.Client
	main       string
	processing string
}

// New wraps an already-connected client with the two list names.
func New(client *redis.Client, mainList, processingList string) *Queue {
	return &Queue{client: client, main: mainList, processing: processingList}
}

// Publish appends a payload to main.
func (q *Queue) Publish(ctx context.Context, payload []byte) error {
	if err := q.client.LPush(ctx, q.main, payload).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", q.main, err)
	}
	return nil
}

// Claim blocks up to timeout for a payload, moving it into processing
// in the same server-side operation. Timeout returns (nil, nil).
func (q *Queue) Claim(ctx context.Context, timeout time.Duration) ([]byte, error) {
	payload, err := q.client.BLMove(ctx, q.main, q.processing, "RIGHT", "LEFT", timeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("blmove %s -> %s: %w", q.main, q.processing, err)
	}
	return []byte(payload), nil
}

// Release removes one matching instance of payload from processing.
func (q *Queue) Release(ctx context.Context, payload []byte) error {
	if err := q.client.LRem(ctx, q.processing, 1, payload).Err(); err != nil {
		return fmt.Errorf("lrem %s: %w", q.processing, err)
	}
	return nil
}

// Requeue moves one matching instance of payload from processing back to
// the consuming end of main. The two steps are not a transaction; this
// path runs only during single-operator startup recovery.
func (q *Queue) Requeue(ctx context.Context, payload []byte) error {
	removed, err := q.client.LRem(ctx, q.processing, 1, payload).Result()
	if err != nil {
		return fmt.Errorf("lrem %s: %w", q.processing, err)
	}
	if removed == 0 {
		return fmt.Errorf("requeue: payload not found in %s", q.processing)
	}
	if err := q.client.RPush(ctx, q.main, payload).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", q.main, err)
	}
	return nil
}

// ProcessingEntries returns the processing list, oldest claim first.
func (q *Queue) ProcessingEntries(ctx context.Context) ([][]byte, error) {
	entries, err := q.client.LRange(ctx, q.processing, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", q.processing, err)
	}
	// Claims are LPUSHed, so index 0 is the newest; reverse for
	// oldest-first reporting.
	out := make([][]byte, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = []byte(e)
	}
	return out, nil
}

// Depths reports current list lengths.
func (q *Queue) Depths(ctx context.Context) (int64, int64, error) {
	mainLen, err := q.client.LLen(ctx, q.main).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("llen %s: %w", q.main, err)
	}
	processingLen, err := q.client.LLen(ctx, q.processing).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("llen %s: %w", q.processing, err)
	}
	return mainLen, processingLen, nil
}
