package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stayhub/internal/api"
	"stayhub/internal/auth"
	"stayhub/internal/config"
	"stayhub/internal/database"
	"stayhub/internal/domain"
	"stayhub/internal/events"
	"stayhub/internal/logging"
	"stayhub/internal/metrics"
	"stayhub/internal/payment"
	"stayhub/internal/repository"
	"stayhub/internal/service"
	"stayhub/internal/storage"
	"stayhub/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const sweepInterval = time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	go database.NewBackupService(db, cfg.Backup, logging.Component(logger, "backup")).Start(ctx)

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	intents := initIntentStore(ctx, cfg, redisClient, logger)

	eventBus := events.NewEventBus()
	publisher, err := initEventForwarding(ctx, cfg, eventBus, redisClient, logger)
	if err != nil {
		return err
	}
	if publisher != nil {
		defer publisher.Close()
	}

	images, err := storage.New(ctx, cfg.Storage, logging.Component(logger, "storage"))
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("init image storage")
		return err
	}

	gateway := payment.NewGateway(payment.NewStripeSessions(cfg.Payment.SecretKey), payment.Config{
		SuccessURL:    cfg.Payment.SuccessURL,
		CancelURL:     cfg.Payment.CancelURL,
		Currency:      cfg.Payment.Currency,
		WebhookSecret: cfg.Payment.WebhookSecret,
		Retry:         worker.RetryPolicy{MaxRetries: cfg.Payment.MaxRetries, BackoffFactor: 2},
	}, logging.Component(logger, "payment"))

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTL)*time.Hour)
	svcLogger := logging.Component(logger, "service")

	svc := api.Services{
		Listings: service.NewListingService(db, images, svcLogger),
		Booking: service.NewBookingService(db, intents, gateway,
			cfg.RateLimit.BookingAttempts,
			time.Duration(cfg.RateLimit.BookingWindow)*time.Second,
			svcLogger),
		Reconciler: service.NewReconciler(db, gateway, eventBus, svcLogger),
		Reviews:    service.NewReviewService(db, svcLogger),
		Favorites:  service.NewFavoriteService(db, svcLogger),
		Users:      service.NewUserService(db, tokens, svcLogger),
		Admin:      service.NewAdminListingService(db, images, svcLogger),
		Faqs:       service.NewFaqService(db, svcLogger),
	}

	httpServer := api.NewServer(cfg, svc, tokens, logging.Component(logger, "http"))

	startMetrics(ctx, cfg, logger)

	return startServer(ctx, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logging.Component(baseLogger, "api-main"), closer, nil
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logging.Component(logger, "database"))
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	if err := db.SeedListings(ctx, cfg.Listings); err != nil {
		db.Close()
		logger.Error().Err(err).Msg("seed listings")
		return nil, err
	}
	if err := db.SeedFaqs(ctx, cfg.Faqs); err != nil {
		db.Close()
		logger.Error().Err(err).Msg("seed faqs")
		return nil, err
	}
	return db, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

// initIntentStore keeps intents in memory, fronted by redis when it is reachable.
func initIntentStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.IntentStore {
	ttl := time.Duration(cfg.Session.TTL) * time.Second
	memory := repository.NewMemoryIntentStore(ttl)
	go worker.RunSweeper(ctx, memory, sweepInterval, logging.Component(logger, "sweeper"))

	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverIntentStore(
		repository.NewRedisIntentStore(redisClient, ttl),
		memory,
		logging.Component(logger, "intents"),
	)
}

// initEventForwarding relays reservation events to kafka when brokers are configured.
func initEventForwarding(
	ctx context.Context,
	cfg *config.Config,
	bus *events.EventBus,
	redisClient *redis.Client,
	logger *zerolog.Logger,
) (*events.KafkaPublisher, error) {
	if len(cfg.Events.KafkaBrokers) == 0 {
		return nil, nil
	}

	publisher, err := events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic, logging.Component(logger, "kafka"))
	if err != nil {
		logger.Error().Err(err).Strs("brokers", cfg.Events.KafkaBrokers).Msg("init kafka publisher")
		return nil, err
	}

	forwarder := worker.NewEventForwarder(publisher, redisClient, worker.RetryPolicy{}, logging.Component(logger, "forwarder"))
	bus.Subscribe(events.EventReservationCommitted, forwarder.Handle)
	bus.Subscribe(events.EventReservationRejected, forwarder.Handle)
	go forwarder.Start(ctx)

	logger.Info().Str("topic", cfg.Events.KafkaTopic).Msg("event forwarding enabled")
	return publisher, nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServer(ctx context.Context, httpServer *api.Server, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.HTTP.Port).Msg("API server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
