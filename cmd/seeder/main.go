package main

import (
	"context"
	"flag"

	"github.com/shopspring/decimal"

	"stockpulse/internal/adapters/config"
	"stockpulse/internal/adapters/postgres"
	"stockpulse/internal/domain/holding"
	"stockpulse/internal/domain/watchlist"
	repo "stockpulse/internal/repository/postgres"
	"stockpulse/pkg/logger"
)

// Seeds a demo account so the agent has something to talk about in
// local development.

type seedLot struct {
	symbol   string
	quantity float64
	price    float64
}

var demoLots = []seedLot{
	{"AAPL", 5, 175.00},
	{"AAPL", 5, 185.00},
	{"MSFT", 3, 402.50},
	{"NVDA", 2, 487.30},
}

var demoWatch = []string{"TSLA", "AMZN", "GOOG"}

func main() {
	userID := flag.String("user", "+15551234567", "User id (phone number) to seed")
	dryRun := flag.Bool("dry-run", false, "List seed data without writing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infow("Starting seeder",
		"user", *userID,
		"dry_run", *dryRun,
		"database", cfg.Postgres.Database,
	)

	if *dryRun {
		for _, lot := range demoLots {
			log.Infow("Would buy", "symbol", lot.symbol, "quantity", lot.quantity, "price", lot.price)
		}
		for _, symbol := range demoWatch {
			log.Infow("Would watch", "symbol", symbol)
		}
		return
	}

	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()
	userRepo := repo.NewUserRepository(pgClient.DB())
	holdings := holding.NewService(repo.NewHoldingRepository(pgClient.DB()))
	watch := watchlist.NewService(repo.NewWatchlistRepository(pgClient.DB()))

	if err := userRepo.EnsureExists(ctx, *userID); err != nil {
		log.Fatalf("Failed to register user: %v", err)
	}

	for _, lot := range demoLots {
		h, err := holdings.Buy(ctx, *userID,
			lot.symbol,
			decimal.NewFromFloat(lot.quantity),
			decimal.NewFromFloat(lot.price),
		)
		if err != nil {
			log.Fatalf("Failed to seed holding %s: %v", lot.symbol, err)
		}
		log.Infow("Seeded holding",
			"symbol", h.Symbol,
			"quantity", h.Quantity.String(),
			"cost_basis", h.CostBasis.String(),
		)
	}

	for _, symbol := range demoWatch {
		if _, err := watch.Add(ctx, *userID, symbol); err != nil {
			log.Fatalf("Failed to seed watchlist entry %s: %v", symbol, err)
		}
		log.Infow("Seeded watchlist entry", "symbol", symbol)
	}

	log.Info("All seeds applied successfully")
}
