// Package memory provides an in-process queue implementation for local
// development and tests. It mirrors the production claim/release
// semantics, including the processing list.
package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Queue is a two-list queue guarded by a mutex.
type Queue struct {
	mu         sync.Mutex
	main       [][]byte
	processing [][]byte
	arrivals   chan struct{}
}

// NewQueue constructs an empty Queue.
func NewQueue() *Queue {
	return &Queue{arrivals: make(chan struct{}, 1)}
}

// Publish appends a payload to the tail of main.
func (q *Queue) Publish(_ context.Context, payload []byte) error {
	q.mu.Lock()
	q.main = append(q.main, append([]byte(nil), payload...))
	q.mu.Unlock()
	select {
	case q.arrivals <- struct{}{}:
	default:
	}
	return nil
}

// Claim moves the oldest payload from main into processing, blocking up
// to timeout when main is empty. Timeout returns (nil, nil).
func (q *Queue) Claim(ctx context.Context, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		q.mu.Lock()
		if len(q.main) > 0 {
			payload := q.main[0]
			q.main = q.main[1:]
			q.processing = append(q.processing, payload)
			q.mu.Unlock()
			return payload, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("claim canceled: %w", ctx.Err())
		case <-timer.C:
			return nil, nil
		case <-q.arrivals:
		}
	}
}

// Release removes one matching instance of payload from processing.
func (q *Queue) Release(_ context.Context, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, p := range q.processing {
		if bytes.Equal(p, payload) {
			q.processing = append(q.processing[:i], q.processing[i+1:]...)
			return nil
		}
	}
	return nil
}

// Requeue moves one matching instance of payload from processing back to
// the head of main.
func (q *Queue) Requeue(_ context.Context, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, p := range q.processing {
		if bytes.Equal(p, payload) {
			q.processing = append(q.processing[:i], q.processing[i+1:]...)
			q.main = append([][]byte{payload}, q.main...)
			select {
			case q.arrivals <- struct{}{}:
			default:
			}
			return nil
		}
	}
	return errors.New("requeue: payload not found in processing")
}

// ProcessingEntries returns a copy of the processing list, oldest claim
// first.
func (q *Queue) ProcessingEntries(_ context.Context) ([][]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([][]byte, len(q.processing))
	for i, p := range q.processing {
		out[i] = append([]byte(nil), p...)
	}
	return out, nil
}

// Depths reports current list lengths.
func (q *Queue) Depths(_ context.Context) (int64, int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.main)), int64(len(q.processing)), nil
}
