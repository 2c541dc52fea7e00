package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alshabili/first-backend/internal/config"
)

func devConfig() config.Config {
	return config.Config{
		Server:   config.ServerConfig{Port: 8080},
		Queue:    config.QueueConfig{Provider: "memory", Main: "task_queue", Processing: "task_queue:processing"},
		Database: config.DatabaseConfig{Provider: "noop"},
		Scraper:  config.ScraperConfig{Categories: []string{"design"}, IntervalSeconds: 60},
		Consumer: config.ConsumerConfig{ClaimTimeoutSeconds: 30, BackoffSeconds: 5},
	}
}

func TestNew_MemoryAndNoopProviders(t *testing.T) {
	a, err := New(context.Background(), devConfig())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.GetLogger())
	require.NotNil(t, a.GetQueue())
	require.NotNil(t, a.GetSeenSet())
	require.NotNil(t, a.GetJobStore())
	require.NotNil(t, a.GetSubscriptionStore())

	// memory/noop providers have no backing services to probe
	require.Empty(t, a.Pingers())
}

func TestNew_UnknownQueueProvider(t *testing.T) {
	cfg := devConfig()
	cfg.Queue.Provider = "rabbitmq"

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown queue provider")
}

func TestNew_UnknownDatabaseProvider(t *testing.T) {
	cfg := devConfig()
	cfg.Database.Provider = "sqlite"

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown database provider")
}
