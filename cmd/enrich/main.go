package main

import (
	"context"
	"flag"
	"log"
	"time"

	"persona-match/internal/app"
	"persona-match/internal/config"
	"persona-match/internal/pkg/logger"
	"persona-match/internal/repository"
	"persona-match/internal/scraper"

	"go.uber.org/zap"
)

func main() {
	source := flag.String("source", "company-directory", "label recorded on the stored signal")
	lookupURL := flag.String("lookup-url", "", "directory lookup url, with %s for the company name")
	selector := flag.String("selector", ".industry", "css selector holding the industry label")
	workers := flag.Int("workers", 4, "parallel company lookups")
	flag.Parse()

	if *lookupURL == "" {
		log.Fatal("missing -lookup-url")
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	social := repository.NewPostgresSocialRepository(container.DB)
	s := scraper.NewIndustryScraper(social, zlog)

	updated, err := s.Scrape(ctx, scraper.IndustryTarget{
		SourceName:       *source,
		LookupURL:        *lookupURL,
		IndustrySelector: *selector,
	}, *workers)
	if err != nil {
		zlog.Fatal("industry enrichment failed", zap.Error(err))
	}

	zlog.Info("industry enrichment finished", zap.Int("users_updated", updated))
}
