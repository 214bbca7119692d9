package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/payflow/payflow-api/internal/config"
	"github.com/payflow/payflow-api/internal/domain/notification"
	"github.com/payflow/payflow-api/internal/domain/reminder"
	"github.com/payflow/payflow-api/internal/pkg/database"
	"github.com/payflow/payflow-api/internal/pkg/email"
	"github.com/payflow/payflow-api/internal/pkg/logger"
	"github.com/payflow/payflow-api/internal/pkg/metrics"
)

const cleanupInterval = 6 * time.Hour

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, Service: "payflow-worker"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	// The hub has no local sockets here; it publishes to the API instances and
	// drains the shared channel.
	hub := notification.NewHub(redisClient)
	go hub.Run()
	defer hub.Shutdown()

	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo, hub)
	reminderRepo := reminder.NewRepository(db)

	var mailer reminder.Mailer
	if cfg.SendGridAPIKey != "" {
		mailer = email.NewSendGridClient(email.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		})
	} else {
		log.Warn().Msg("SENDGRID_API_KEY not set, email reminders will fail")
	}

	scheduler := reminder.NewScheduler(reminderRepo, notificationService)
	delivery := reminder.NewDeliveryWorker(reminderRepo, mailer, cfg.DeliveryBatchSize)
	cleanup := notification.NewCleanupJob(notificationRepo, cfg.NotificationRetentionDays)
	hour, minute := cfg.ReminderClock()

	log.Info().
		Str("reminder_run_at", cfg.ReminderRunAt).
		Dur("delivery_interval", cfg.DeliveryInterval).
		Int("batch_size", cfg.DeliveryBatchSize).
		Msg("Starting PayFlow worker")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return scheduler.Start(ctx, hour, minute) })
	g.Go(func() error { return delivery.Start(ctx, cfg.DeliveryInterval) })
	g.Go(func() error { return cleanup.Start(ctx, cleanupInterval) })

	if cfg.MetricsEnabled {
		server := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: metrics.Handler()}
		g.Go(func() error {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker stopped with error")
		return
	}
	log.Info().Msg("Worker exited properly")
}
