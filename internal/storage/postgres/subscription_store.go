package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/jobs"
)

// SubscriptionStore reads active subscriptions for the notifier fan-out.
// It never mutates subscription rows.
type SubscriptionStore struct {
	pool   pool
	logger *zap.Logger
}

// NewSubscriptionStore constructs a SubscriptionStore over an existing
// pool.
func NewSubscriptionStore(p pool, logger *zap.Logger) (*SubscriptionStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &SubscriptionStore{pool: p, logger: logger}, nil
}

// ListActive returns the active subscriptions for a category, higher-tier
// subscribers first (users.max_categories is the tier proxy). Ordering
// affects dispatch sequence only; dispatch itself is concurrent.
func (s *SubscriptionStore) ListActive(ctx context.Context, category string) ([]jobs.Subscription, error) {
	rows, err := s.pool.Query(ctx, `
SELECT s.user_id, s.category, s.platform, s.target_address, s.is_active
FROM subscriptions s
JOIN users u ON u.id = s.user_id
WHERE s.category = $1 AND s.is_active = TRUE
ORDER BY u.max_categories DESC`,
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions for %s: %w", category, err)
	}
	defer rows.Close()

	var subs []jobs.Subscription
	for rows.Next() {
		var (
			sub      jobs.Subscription
			platform string
		)
		if err := rows.Scan(&sub.UserID, &sub.Category, &platform, &sub.TargetAddress, &sub.IsActive); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		sub.Platform, err = jobs.ParsePlatform(platform)
		if err != nil {
			// One bad row must not block the whole fan-out.
			s.logger.Warn("skipping subscription with unknown platform",
				zap.Int64("user_id", sub.UserID),
				zap.String("platform", platform),
			)
			continue
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}
