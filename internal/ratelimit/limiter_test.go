package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimiter_WaitUnlimited(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 0})
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(ctx, "https://mostaql.com/projects"))
	}
}

func TestLimiter_WaitThrottles(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 20, DefaultBurst: 1})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(ctx, "https://mostaql.com/project/1000"))
	}
	// burst of 1 at 20 rps means the second and third waits each take ~50ms
	require.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestLimiter_DomainsIndependent(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 1, DefaultBurst: 1})
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, l.Wait(ctx, "https://one.example/a"))
	require.NoError(t, l.Wait(ctx, "https://two.example/a"))
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestLimiter_WaitContextCancelled(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 0.001, DefaultBurst: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// exhaust the burst
	require.NoError(t, l.Wait(ctx, "https://slow.example/a"))
	err := l.Wait(ctx, "https://slow.example/a")
	require.Error(t, err)
}
