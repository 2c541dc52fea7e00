// Package noop provides database stand-ins for running without Postgres.
// Jobs are logged instead of persisted and no subscriptions exist, so the
// consumer drains the queue without delivering anything.
package noop

import (
	"context"

	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/jobs"
)

// JobStore drops every record after logging it.
type JobStore struct {
	logger *zap.Logger
}

// NewJobStore constructs a JobStore.
func NewJobStore(logger *zap.Logger) *JobStore {
	return &JobStore{logger: logger}
}

// PersistJob logs the record and succeeds.
func (s *JobStore) PersistJob(_ context.Context, record jobs.JobRecord) error {
	s.logger.Debug("noop store dropping job",
		zap.String("category", record.Category),
		zap.String("external_id", record.ExternalID))
	return nil
}

// SubscriptionStore lists no subscriptions.
type SubscriptionStore struct{}

// NewSubscriptionStore constructs a SubscriptionStore.
func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{}
}

// ListActive always returns an empty list.
func (s *SubscriptionStore) ListActive(context.Context, string) ([]jobs.Subscription, error) {
	return nil, nil
}
