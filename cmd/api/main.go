package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/payflow/payflow-api/internal/config"
	"github.com/payflow/payflow-api/internal/domain/auth"
	"github.com/payflow/payflow-api/internal/domain/customer"
	"github.com/payflow/payflow-api/internal/domain/merchant"
	"github.com/payflow/payflow-api/internal/domain/notification"
	"github.com/payflow/payflow-api/internal/domain/reminder"
	"github.com/payflow/payflow-api/internal/domain/stats"
	"github.com/payflow/payflow-api/internal/domain/transaction"
	"github.com/payflow/payflow-api/internal/pkg/database"
	"github.com/payflow/payflow-api/internal/pkg/jwt"
	"github.com/payflow/payflow-api/internal/pkg/logger"
	"github.com/payflow/payflow-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, Service: "payflow-api"})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting PayFlow API")

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

	store, err := storage.New(storage.Config{
		Driver:      cfg.StorageDriver,
		LocalPath:   cfg.LocalStoragePath,
		LocalURL:    cfg.LocalStorageURL,
		S3Endpoint:  cfg.S3Endpoint,
		S3Region:    cfg.S3Region,
		S3Bucket:    cfg.S3Bucket,
		S3AccessKey: cfg.S3AccessKey,
		S3SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage")
	}

	hub := notification.NewHub(redisClient)
	go hub.Run()

	a := buildApp(cfg, db, redisClient, hub, store)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(a),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Shutdown()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func buildApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, hub *notification.Hub, store storage.Storage) *app {
	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// ---------- Repositories ----------
	merchantRepo := merchant.NewRepository(db)
	customerRepo := customer.NewRepository(db)
	transactionRepo := transaction.NewRepository(db)
	statsRepo := stats.NewRepository(db)
	notificationRepo := notification.NewRepository(db)
	reminderRepo := reminder.NewRepository(db)

	// ---------- Services ----------
	authService := auth.NewService(merchantRepo, jwtService, auth.NewRedisRefreshStore(redisClient))
	customerService := customer.NewService(customerRepo)
	statsService := stats.NewService(statsRepo, stats.NewCache(redisClient, cfg.StatsCacheTTL))
	transactionService := transaction.NewService(transactionRepo, customerRepo, statsService, store)
	notificationService := notification.NewService(notificationRepo, hub)
	reminderService := reminder.NewService(reminderRepo, customerRepo)

	return &app{
		jwt:            jwtService,
		auth:           auth.NewHandler(authService),
		customers:      customer.NewHandler(customerService),
		transactions:   transaction.NewHandler(transactionService),
		stats:          stats.NewHandler(statsService),
		notifications:  notification.NewHandler(notificationService),
		reminders:      reminder.NewHandler(reminderService),
		ws:             notification.NewWSHandler(hub, cfg.AllowedOrigins),
		allowedOrigins: cfg.AllowedOrigins,
		metricsEnabled: cfg.MetricsEnabled,
	}
}
