// Package cmd defines and implements the CLI commands for the firstd
// executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/api"
	"github.com/alshabili/first-backend/internal/app"
	"github.com/alshabili/first-backend/internal/config"
	"github.com/alshabili/first-backend/internal/notifier"
	"github.com/alshabili/first-backend/internal/queue"
	"github.com/alshabili/first-backend/internal/seenset"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application surface the commands use. The interface
// lets tests inject a mock app.
type App interface {
	Close()
	GetConfig() config.Config
	GetLogger() *zap.Logger
	GetQueue() queue.Queue
	GetSeenSet() seenset.Store
	GetJobStore() notifier.JobPersister
	GetSubscriptionStore() notifier.SubscriptionLister
	Pingers() map[string]api.Pinger
}

// newApp is the application factory, replaceable in tests.
var newApp = func(ctx context.Context) (App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firstd",
		Short: "Freelance job alert pipeline for mostaql.com",
		Long: `firstd watches mostaql.com categories for freshly posted projects,
queues each new one exactly once, and notifies subscribers over Telegram
and Discord.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults plus FIRST_* env vars)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newConsumeCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// startServerIfEnabled runs the operational HTTP server in the
// background when server.enabled is set, so scrape and consume expose
// health and metrics without a separate serve process. The returned
// function shuts it down.
func startServerIfEnabled(appInstance App) func() {
	cfg := appInstance.GetConfig()
	if !cfg.Server.Enabled {
		return func() {}
	}
	srv := api.NewServer(cfg.Server.Port, appInstance.Pingers(), appInstance.GetLogger())
	go func() {
		if err := srv.Start(); err != nil {
			appInstance.GetLogger().Error("operational server failed", zap.Error(err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point. It installs signal handling so every
// command shuts down cleanly on SIGINT/SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
