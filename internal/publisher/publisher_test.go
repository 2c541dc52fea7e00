package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/jobs"
	"github.com/alshabili/first-backend/internal/metrics"
	"github.com/alshabili/first-backend/internal/queue/memory"
	"github.com/alshabili/first-backend/internal/seenset"
)

func TestMain(m *testing.M) {
	metrics.Init()
	m.Run()
}

type flakyQueue struct {
	*memory.Queue
	failIDs map[string]bool
}

func (q *flakyQueue) Publish(ctx context.Context, payload []byte) error {
	env, err := jobs.DecodeEnvelope(payload)
	if err == nil && q.failIDs[env.Record.ExternalID] {
		return errors.New("redis unavailable")
	}
	return q.Queue.Publish(ctx, payload)
}

func TestPublishBatchEnqueuesEnvelopes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := memory.NewQueue()
	seen := seenset.NewMemoryStore()
	p := New(q, seen, zap.NewNop())

	records := []jobs.JobRecord{{ExternalID: "1"}, {ExternalID: "2"}}
	require.Equal(t, 2, p.PublishBatch(ctx, "design", records))

	payload, err := q.Claim(ctx, time.Second)
	require.NoError(t, err)
	env, err := jobs.DecodeEnvelope(payload)
	require.NoError(t, err)
	require.Equal(t, "design", env.Category)
	require.Equal(t, "1", env.Record.ExternalID)
}

func TestPublishFailureRollsBackSeenSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seen := seenset.NewMemoryStore()
	require.NoError(t, seen.MarkKnown(ctx, "design", []string{"ok", "bad"}))

	q := &flakyQueue{Queue: memory.NewQueue(), failIDs: map[string]bool{"bad": true}}
	p := New(q, seen, zap.NewNop())

	published := p.PublishBatch(ctx, "design", []jobs.JobRecord{{ExternalID: "ok"}, {ExternalID: "bad"}})
	require.Equal(t, 1, published)

	known, err := seen.AreKnown(ctx, "design", []string{"ok", "bad"})
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, known)
}
