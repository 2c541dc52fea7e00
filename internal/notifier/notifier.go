// Package notifier fans one job out to every active subscriber of its
// category and persists the job record.
package notifier

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/jobs"
	"github.com/alshabili/first-backend/internal/metrics"
	"github.com/alshabili/first-backend/internal/notify"
)

// SubscriptionLister returns active subscriptions for a category,
// ordered by subscriber priority descending.
type SubscriptionLister interface {
	ListActive(ctx context.Context, category string) ([]jobs.Subscription, error)
}

// JobPersister stores the job record. Persisting a duplicate external id
// must be a benign no-op, not an error.
type JobPersister interface {
	PersistJob(ctx context.Context, record jobs.JobRecord) error
}

// Sender delivers one formatted message to one subscriber target.
type Sender interface {
	Send(ctx context.Context, platform jobs.Platform, target string, msg notify.Message) bool
}

// Notifier implements the fan-out step of the consumer loop.
type Notifier struct {
	subs      SubscriptionLister
	store     JobPersister
	formatter notify.Formatter
	sender    Sender
	logger    *zap.Logger
}

// New constructs a Notifier.
func New(
	subs SubscriptionLister,
	store JobPersister,
	formatter notify.Formatter,
	sender Sender,
	logger *zap.Logger,
) *Notifier {
	return &Notifier{
		subs:      subs,
		store:     store,
		formatter: formatter,
		sender:    sender,
		logger:    logger,
	}
}

// Notify dispatches the job to every active subscriber concurrently and
// persists the record. The returned error reflects only the subscription
// query and the persistence write: per-subscriber delivery failures are
// logged and swallowed, because delivery is best-effort while losing the
// job record is the one unacceptable failure mode. All dispatch
// goroutines are joined before Notify returns; none outlive the call.
func (n *Notifier) Notify(ctx context.Context, category string, record jobs.JobRecord) error {
	subscriptions, err := n.subs.ListActive(ctx, category)
	if err != nil {
		return fmt.Errorf("list subscriptions for %s: %w", category, err)
	}
	n.logger.Info("notifying subscribers",
		zap.String("category", category),
		zap.String("external_id", record.ExternalID),
		zap.Int("subscribers", len(subscriptions)),
	)

	var wg sync.WaitGroup
	for _, sub := range subscriptions {
		if !sub.IsActive {
			continue
		}
		wg.Add(1)
		go func(sub jobs.Subscription) {
			defer wg.Done()
			n.dispatch(ctx, sub, category, record)
		}(sub)
	}
	defer wg.Wait()

	if err := n.store.PersistJob(ctx, record); err != nil {
		return fmt.Errorf("persist job %s: %w", record.ExternalID, err)
	}
	return nil
}

func (n *Notifier) dispatch(ctx context.Context, sub jobs.Subscription, category string, record jobs.JobRecord) {
	msg, err := n.formatter.Format(sub.Platform, category, record)
	if err != nil {
		n.logger.Warn("format notification failed",
			zap.String("platform", sub.Platform.String()),
			zap.Int64("user_id", sub.UserID),
			zap.Error(err),
		)
		metrics.ObserveDispatch(sub.Platform.String(), false)
		return
	}
	ok := n.sender.Send(ctx, sub.Platform, sub.TargetAddress, msg)
	metrics.ObserveDispatch(sub.Platform.String(), ok)
	if !ok {
		n.logger.Warn("notification delivery failed",
			zap.String("platform", sub.Platform.String()),
			zap.Int64("user_id", sub.UserID),
			zap.String("external_id", record.ExternalID),
		)
	}
}
