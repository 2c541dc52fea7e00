// Package publisher pushes normalized job records onto the durable queue.
package publisher

import (
	"context"

	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/jobs"
	"github.com/alshabili/first-backend/internal/metrics"
	"github.com/alshabili/first-backend/internal/queue"
	"github.com/alshabili/first-backend/internal/seenset"
)

// Publisher encodes records into envelopes and enqueues them. A record
// that cannot be enqueued has its seen-set entry rolled back so the next
// listing pass retries it; the rest of the batch proceeds.
type Publisher struct {
	queue  queue.Queue
	seen   seenset.Store
	logger *zap.Logger
}

// New constructs a Publisher.
func New(q queue.Queue, seen seenset.Store, logger *zap.Logger) *Publisher {
	return &Publisher{queue: q, seen: seen, logger: logger}
}

// PublishBatch enqueues every record for a category and returns how many
// made it onto the queue.
func (p *Publisher) PublishBatch(ctx context.Context, category string, records []jobs.JobRecord) int {
	published := 0
	for _, record := range records {
		if err := p.publishOne(ctx, category, record); err != nil {
			p.logger.Error("publish job failed",
				zap.String("category", category),
				zap.String("external_id", record.ExternalID),
				zap.Error(err),
			)
			p.rollback(ctx, category, record.ExternalID)
			continue
		}
		metrics.ObservePublished(category)
		published++
	}
	return published
}

func (p *Publisher) publishOne(ctx context.Context, category string, record jobs.JobRecord) error {
	payload, err := jobs.Envelope{Category: category, Record: record}.Encode()
	if err != nil {
		return err
	}
	return p.queue.Publish(ctx, payload)
}

// rollback removes the record's seen-set membership so the job is not
// permanently dropped by a transient enqueue failure.
func (p *Publisher) rollback(ctx context.Context, category, externalID string) {
	if externalID == "" {
		return
	}
	if err := p.seen.Unmark(ctx, category, []string{externalID}); err != nil {
		p.logger.Error("seen-set rollback failed",
			zap.String("category", category),
			zap.String("external_id", externalID),
			zap.Error(err),
		)
	}
}
