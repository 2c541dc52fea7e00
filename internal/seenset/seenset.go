// Package seenset provides persistent set membership per category, used
// to deduplicate job ids across scrape cycles. Entries are never expired;
// growth is bounded only by the number of distinct jobs ever observed.
package seenset

import "context"

// Store is the seen-set contract. Implementations must be safe for
// concurrent use by multiple producer instances.
type Store interface {
	// AreKnown reports membership for each id, order-preserving and
	// parallel to ids. An empty id slice returns an empty result.
	AreKnown(ctx context.Context, category string, ids []string) ([]bool, error)

	// MarkKnown adds ids to the category's set. Marking an already-known
	// id is a no-op.
	MarkKnown(ctx context.Context, category string, ids []string) error

	// Unmark removes ids from the category's set so they can be retried
	// on a future listing pass. Unmarking an unknown id is a no-op.
	Unmark(ctx context.Context, category string, ids []string) error
}
