// Package queue defines the durable work queue contract used between the
// scraper (producer) and the consumer loop. The queue is two named lists:
// "main" holds pending envelopes, "processing" holds claimed, in-flight
// envelopes. An envelope left in processing marks work that was claimed
// but never completed; recovery is an explicit operator decision, never
// an automatic replay.
package queue

import (
	"context"
	"time"
)

// Queue abstracts the two-list durable queue. Implementations must make
// Claim atomic so that concurrent consumers never double-claim.
type Queue interface {
	// Publish appends a payload to the tail of main.
	Publish(ctx context.Context, payload []byte) error

	// Claim atomically moves one payload from the consuming end of main
	// into processing, blocking up to timeout when main is empty. A nil
	// payload with nil error means the wait timed out; callers loop.
	Claim(ctx context.Context, timeout time.Duration) ([]byte, error)

	// Release removes one matching instance of payload from processing.
	// Called only after the payload has been fully processed, or to
	// drop a malformed payload that can never be processed.
	Release(ctx context.Context, payload []byte) error

	// Requeue moves one matching instance of payload from processing
	// back to main. Used by startup recovery, never by the normal path.
	Requeue(ctx context.Context, payload []byte) error

	// ProcessingEntries returns a snapshot of everything currently in
	// the processing list, oldest claim first.
	ProcessingEntries(ctx context.Context) ([][]byte, error)

	// Depths reports the current lengths of main and processing.
	Depths(ctx context.Context) (main int64, processing int64, err error)
}
