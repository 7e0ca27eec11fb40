package main

import (
	"context"
	"flag"
	"log"
	"time"

	"persona-match/internal/app"
	"persona-match/internal/config"
	"persona-match/internal/database/migration"
	"persona-match/internal/database/seeder"
	"persona-match/internal/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	count := flag.Int("count", 50, "number of synthetic users to seed")
	seed := flag.Int64("seed", 1, "rng seed for the synthetic population")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.App.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	container, err := app.NewContainer(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect", zap.Error(err))
	}
	defer func() { _ = container.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := migration.Run(ctx, container.DB); err != nil {
		zlog.Fatal("migrations failed", zap.Error(err))
	}

	runner := seeder.Runner{Seeders: []seeder.Seeder{
		seeder.PopulationSeeder{Count: *count, Seed: *seed},
	}}
	if err := runner.Run(ctx, container.DB); err != nil {
		zlog.Fatal("seeding failed", zap.Error(err))
	}

	zlog.Info("seed complete", zap.Int("users", *count))
}
