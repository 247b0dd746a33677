package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/haulhub-backend/internal/cron"
	"github.com/angelmondragon/haulhub-backend/internal/notifications"
	"github.com/angelmondragon/haulhub-backend/pkg/config"
	"github.com/angelmondragon/haulhub-backend/pkg/db"
	"github.com/angelmondragon/haulhub-backend/pkg/logger"
	"github.com/angelmondragon/haulhub-backend/pkg/metrics"
	"github.com/angelmondragon/haulhub-backend/pkg/migrate"
	"github.com/angelmondragon/haulhub-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})
	ctx := context.Background()

	fatal := func(msg string, err error) {
		logg.Error(ctx, msg, err)
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("failed to load config", err)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		fatal("failed to bootstrap database", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		fatal("failed to run dev migrations", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		fatal("failed to bootstrap redis", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	env := cfg.App.Env
	if env == "" {
		env = "local"
	}

	// One worker per environment holds the lock at a time. Extra replicas
	// idle until the leader releases or its TTL lapses.
	lock, err := cron.NewLeaderLock(redisClient, redisClient.LockKey("cron-worker:"+env), cfg.Cron.LockTTL)
	if err != nil {
		fatal("failed to create cron lock", err)
	}

	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:        logg,
		Repository:    notifications.NewRepository(dbClient.DB()),
		RetentionDays: cfg.Cron.NotificationRetentionDays,
	})
	if err != nil {
		fatal("failed to create notification cleanup job", err)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(cleanupJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		fatal("failed to create cron service", err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithField(runCtx, "env", cfg.App.Env)
	logg.Info(runCtx, "starting cron worker")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "cron worker shutting down gracefully")
}
