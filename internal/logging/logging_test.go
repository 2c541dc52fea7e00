package logging

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Parallel()

	for _, development := range []bool{true, false} {
		logger, err := New(development)
		require.NoError(t, err)
		require.NotNil(t, logger)
	}
}

func TestWithAlerts_EmptyURLIsNoOp(t *testing.T) {
	t.Parallel()

	logger := zap.NewNop()
	require.Same(t, logger, WithAlerts(logger, ""))
}

func TestWithAlerts_PostsOnError(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		bodies [][]byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	logger := WithAlerts(zap.NewNop(), srv.URL)
	logger.Info("routine message")
	logger.Error("consumer crashed")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(bodies) == 1
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	var payload struct {
		Username string `json:"username"`
		Embeds   []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"embeds"`
	}
	require.NoError(t, json.Unmarshal(bodies[0], &payload))
	require.Equal(t, "First Monitor", payload.Username)
	require.Len(t, payload.Embeds, 1)
	require.Equal(t, "CRITICAL ERROR", payload.Embeds[0].Title)
	require.Contains(t, payload.Embeds[0].Description, "consumer crashed")
}
