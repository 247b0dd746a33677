package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/haulhub-backend/api/routes"
	"github.com/angelmondragon/haulhub-backend/internal/bids"
	"github.com/angelmondragon/haulhub-backend/internal/bookings"
	"github.com/angelmondragon/haulhub-backend/internal/loads"
	"github.com/angelmondragon/haulhub-backend/internal/notifications"
	"github.com/angelmondragon/haulhub-backend/internal/users"
	"github.com/angelmondragon/haulhub-backend/internal/vehicles"
	"github.com/angelmondragon/haulhub-backend/pkg/config"
	"github.com/angelmondragon/haulhub-backend/pkg/db"
	"github.com/angelmondragon/haulhub-backend/pkg/logger"
	"github.com/angelmondragon/haulhub-backend/pkg/metrics"
	"github.com/angelmondragon/haulhub-backend/pkg/migrate"
	"github.com/angelmondragon/haulhub-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()
	loadRepo := loads.NewRepository(gormDB)
	bidRepo := bids.NewRepository(gormDB)
	userRepo := users.NewRepository(gormDB)
	vehicleRepo := vehicles.NewRepository(gormDB)
	notificationRepo := notifications.NewRepository(gormDB)

	notificationTTL := time.Duration(cfg.Cron.NotificationRetentionDays) * 24 * time.Hour
	dispatcher := notifications.NewDispatcher(notificationRepo, logg, notificationTTL)
	marketMetrics := metrics.NewMarketplaceMetrics(prometheus.DefaultRegisterer)

	loadService, err := loads.NewService(loadRepo, dbClient, bidRepo, dispatcher, loads.Options{
		TrackingCodePrefix:  cfg.Marketplace.TrackingCodePrefix,
		TrackingCodeRetries: cfg.Marketplace.TrackingCodeRetries,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create loads service", err)
		os.Exit(1)
	}

	bidService, err := bids.NewService(bidRepo, loadRepo, userRepo, vehicleRepo, dbClient, dispatcher, marketMetrics, bids.Options{
		PlatformFeePercent: cfg.Marketplace.PlatformFeePercent,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bids service", err)
		os.Exit(1)
	}

	bookingService, err := bookings.NewService(bidRepo, loadRepo, dbClient, dispatcher)
	if err != nil {
		logg.Error(context.Background(), "failed to create bookings service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Loads:         loadService,
			Bids:          bidService,
			Bookings:      bookingService,
			Notifications: notificationService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
