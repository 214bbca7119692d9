package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/payflow/payflow-api/internal/config"
	"github.com/payflow/payflow-api/internal/domain/notification"
	"github.com/payflow/payflow-api/internal/domain/reminder"
	"github.com/payflow/payflow-api/internal/pkg/database"
	"github.com/payflow/payflow-api/internal/pkg/email"
	"github.com/payflow/payflow-api/internal/pkg/logger"
)

func newRemindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Reminder maintenance",
	}
	cmd.AddCommand(newRemindersRunCmd())
	return cmd
}

func newRemindersRunCmd() *cobra.Command {
	var deliver bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one reminder pass against the configured database",
		Long: `Generates today's due-soon and overdue reminders for every merchant with
reminders enabled. Reminders already recorded are skipped, so the command is
safe to run next to the worker. With --deliver the pending outbound queue is
drained once as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, Service: "payflowctl"})
			ctx := cmd.Context()

			db, err := database.NewPostgres(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer database.ClosePostgres(db)

			// Redis is optional here: without it notifications are stored but not pushed.
			var hub *notification.Hub
			if redisClient, err := database.NewRedis(cfg.RedisURL); err == nil {
				defer database.CloseRedis(redisClient)
				hub = notification.NewHub(redisClient)
				defer hub.Shutdown()
			}

			var publisher notification.Publisher
			if hub != nil {
				publisher = hub
			}
			notifications := notification.NewService(notification.NewRepository(db), publisher)
			repo := reminder.NewRepository(db)

			summary, err := reminder.NewScheduler(repo, notifications).RunOnce(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "merchants: %d\ncreated: %d\nskipped: %d\n",
				summary.Merchants, summary.Created, summary.Skipped)

			if !deliver {
				return nil
			}
			var mailer reminder.Mailer
			if cfg.SendGridAPIKey != "" {
				mailer = email.NewSendGridClient(email.SendGridConfig{
					APIKey:    cfg.SendGridAPIKey,
					FromEmail: cfg.EmailFrom,
					FromName:  cfg.EmailFromName,
				})
			}
			attempted, err := reminder.NewDeliveryWorker(repo, mailer, cfg.DeliveryBatchSize).ProcessBatch(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "attempted: %d\n", attempted)
			return nil
		},
	}

	cmd.Flags().BoolVar(&deliver, "deliver", false, "also process one batch of pending deliveries")
	return cmd
}
