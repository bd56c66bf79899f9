package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockpulse/internal/adapters/ai"
	"stockpulse/internal/adapters/config"
	"stockpulse/internal/adapters/errors/noop"
	"stockpulse/internal/adapters/errors/sentry"
	"stockpulse/internal/adapters/marketdata"
	"stockpulse/internal/adapters/messaging"
	"stockpulse/internal/adapters/postgres"
	"stockpulse/internal/adapters/redis"
	"stockpulse/internal/agent"
	"stockpulse/internal/api"
	"stockpulse/internal/domain/conversation"
	"stockpulse/internal/domain/holding"
	"stockpulse/internal/domain/watchlist"
	repo "stockpulse/internal/repository/postgres"
	"stockpulse/internal/tools"
	"stockpulse/internal/workers"
	"stockpulse/pkg/errors"
	"stockpulse/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Repositories and domain services
	holdingRepo := repo.NewHoldingRepository(pgClient.DB())
	watchlistRepo := repo.NewWatchlistRepository(pgClient.DB())
	conversationRepo := repo.NewConversationRepository(pgClient.DB())
	userRepo := repo.NewUserRepository(pgClient.DB())

	holdingService := holding.NewService(holdingRepo)
	watchlistService := watchlist.NewService(watchlistRepo)
	conversationService := conversation.NewService(conversationRepo, cfg.Agent.HistoryWindow)

	// Market data gateway
	quoteClient := marketdata.NewClient(cfg.MarketData)

	// AI provider and tool catalog
	provider, err := ai.NewOpenAIProvider(cfg.AI.OpenAIKey, cfg.AI.Timeout)
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}

	registry := tools.BuildRegistry(tools.Deps{
		Holdings:  holdingService,
		Watchlist: watchlistService,
		Users:     userRepo,
		Quotes:    quoteClient,
		Log:       log.With("component", "tools"),
	})
	log.Infow("Tool catalog registered", "tools", registry.List())

	orchestrator := agent.NewOrchestrator(
		provider,
		registry,
		conversationService,
		redis.NewTurnLocker(redisClient),
		cfg.AI,
		cfg.Agent,
	)

	// Outbound messaging
	sender, err := initSender(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize messaging: %v", err)
	}

	// Background workers
	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewDailyUpdateWorker(
		userRepo, orchestrator, sender, cfg.DailyUpdate,
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	// HTTP server
	webhook := api.NewWebhookHandler(orchestrator)
	server := api.NewServer(cfg.Server, webhook, map[string]api.HealthChecker{
		"postgres": pgClient,
		"redis":    redisClient,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Info("System initialized successfully")

	waitForShutdown(ctx, cancel, serverErr, server, scheduler, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initSender selects the outbound delivery channel
func initSender(cfg *config.Config, log *logger.Logger) (messaging.Sender, error) {
	switch cfg.Messaging.Provider {
	case "telegram":
		log.Info("Messaging via Telegram")
		return messaging.NewTelegramSender(cfg.Messaging)
	case "twilio":
		log.Info("Messaging via Twilio WhatsApp")
		return messaging.NewTwilioSender(cfg.Messaging)
	default:
		return nil, errors.Newf("unknown messaging provider %q", cfg.Messaging.Provider)
	}
}

// waitForShutdown blocks until a signal or server failure, then drains
func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	serverErr <-chan error,
	server *api.Server,
	scheduler *workers.Scheduler,
	tracker errors.Tracker,
	log *logger.Logger,
) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("Received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil {
			log.Errorf("HTTP server failed: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP shutdown error: %v", err)
	}
	cancel()
	if scheduler.IsRunning() {
		if err := scheduler.Stop(); err != nil {
			log.Warnf("Worker shutdown error: %v", err)
		}
	}
	tracker.Flush(shutdownCtx)

	log.Info("Shutdown complete")
}
