package cmd

import (
	"github.com/spf13/cobra"

	"github.com/alshabili/first-backend/internal/clock/system"
	"github.com/alshabili/first-backend/internal/consumer"
	"github.com/alshabili/first-backend/internal/notifier"
	"github.com/alshabili/first-backend/internal/notify"
)

// newConsumeCmd creates the 'consume' subcommand, the delivery half of
// the pipeline: claim queued jobs, notify subscribers, persist.
func newConsumeCmd() *cobra.Command {
	var requeue bool

	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Runs the queue consumer",
		Long: `Claims queued jobs one at a time, notifies every active subscriber of
the job's category over Telegram and Discord, persists the job, and
releases it from the processing list. Runs until interrupted.

Jobs stranded on the processing list by an earlier crash are reported at
startup; pass --requeue to move them back onto the main queue first.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConsumeCommand(cmd, requeue)
		},
	}
	cmd.Flags().BoolVar(&requeue, "requeue", false, "requeue stranded processing entries before consuming")
	return cmd
}

func runConsumeCommand(cmd *cobra.Command, requeue bool) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := appInstance.GetConfig()
	logger := appInstance.GetLogger()

	stopServer := startServerIfEnabled(appInstance)
	defer stopServer()

	dispatcher := notify.NewDispatcher(
		notify.NewTelegramChannel(cfg.Notify.TelegramToken, logger),
		notify.NewDiscordChannel(logger),
		logger,
	)
	n := notifier.New(
		appInstance.GetSubscriptionStore(),
		appInstance.GetJobStore(),
		notify.NewFormatter(system.New()),
		dispatcher,
		logger,
	)

	loop := consumer.New(appInstance.GetQueue(), n, consumer.Config{
		ClaimTimeout: cfg.ClaimTimeout(),
		Backoff:      cfg.Backoff(),
	}, logger)

	if err := loop.RecoverProcessing(cmd.Context(), requeue); err != nil {
		return err
	}

	loop.Run(cmd.Context())
	logger.Info("consumer stopped")
	return nil
}
