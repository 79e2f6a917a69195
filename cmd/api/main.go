package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pniceshipping/portal/internal/api"
	"github.com/pniceshipping/portal/internal/core/domain"
	"github.com/pniceshipping/portal/internal/core/pricing"
	"github.com/pniceshipping/portal/internal/core/service"
	"github.com/pniceshipping/portal/internal/infrastructure/config"
	mongodb "github.com/pniceshipping/portal/internal/infrastructure/db/mongo"
	redisdb "github.com/pniceshipping/portal/internal/infrastructure/db/redis"
	"github.com/pniceshipping/portal/internal/infrastructure/notification"
	"github.com/pniceshipping/portal/internal/infrastructure/queue"
	"github.com/pniceshipping/portal/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	shipmentRepo := mongodb.NewShipmentRepository(db)
	deliveryRepo := mongodb.NewDeliveryRepository(db)
	if err := shipmentRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("shipment index creation failed")
	}
	if err := deliveryRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("delivery index creation failed")
	}

	// --- Notification pipeline ---
	mailer := notification.NewMailer(cfg.Notify.BaseURL, log)
	suppressor := redisdb.NewNotificationSuppressor(rdb)
	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, mailer, suppressor, log)
	dispatcher.Start(ctx)

	blocking := make(map[domain.ShipmentStatus]bool, len(cfg.Notify.BlockingStatuses))
	for _, s := range cfg.Notify.BlockingStatuses {
		status, err := domain.ParseStatus(s)
		if err != nil {
			log.Fatal().Str("status", s).Msg("unknown status in NOTIFY_BLOCKING_STATUSES")
		}
		blocking[status] = true
	}
	policy := service.NotificationPolicy{
		Blocking:           blocking,
		NotifyBeforeCommit: cfg.Notify.BeforeCommit,
	}

	// --- Services ---
	rates := pricing.NewResolver(cfg.Pricing.FixedPrices, cfg.Pricing.PerPoundRates)
	shipmentService := service.NewShipmentService(shipmentRepo, mailer, dispatcher, policy, log)
	deliveryService := service.NewDeliveryService(shipmentRepo, deliveryRepo, rates, cfg.Pricing.ServiceFee, log)

	// --- HTTP server ---
	e := api.NewRouter(db, rdb, shipmentService, deliveryService, dispatcher)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		os.Exit(1)
	}

	log.Info().Msg("server shutdown complete")
}
