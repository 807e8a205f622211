// Command api runs the shopping recommendation backend: it scrapes storefront
// search results per derived category, ranks the candidates through the
// Gemini API and serves the assembled recommendations over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/aggregate"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/config"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/logging"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/metrics"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/ranking"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/recommend"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/scraper"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/server"
	"github.com/BharathSadineni/Eventually-Yours-shopping-app-Project/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "console").Fatal("configuration error", zap.Error(err))
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	if cfg.Gemini.APIKey == "" {
		log.Warn("gemini api key not set, category derivation and ranking will degrade to fallbacks")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	fetchClient := scraper.NewClient(scraper.ClientOptions{
		Timeout:     cfg.Scraper.RequestTimeout,
		MinInterval: cfg.Scraper.MinInterval,
		MaxRetries:  cfg.Scraper.MaxRetries,
		BackoffBase: cfg.Scraper.BackoffBase,
		Logger:      log.Named("fetch"),
		Metrics:     m,
	})
	categoryScraper := scraper.NewCategoryScraper(fetchClient, log.Named("scraper"), m)

	scheduler := aggregate.NewScheduler(categoryScraper, aggregate.Options{
		MaxConcurrency:     cfg.Profile.MaxConcurrency,
		PerCategoryTimeout: cfg.Profile.PerCategoryTimeout,
		GlobalTimeout:      cfg.Profile.GlobalTimeout,
		Logger:             log.Named("aggregate"),
		Metrics:            m,
	})

	ranker := ranking.NewClient(ranking.Options{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
		Logger:  log.Named("ranking"),
		Metrics: m,
	})

	assembler := recommend.NewAssembler(10, log.Named("assemble"))
	svc := recommend.NewService(ranker, scheduler, assembler, recommend.Options{
		MaxCategories:         cfg.Profile.MaxCategories,
		CandidatesPerCategory: cfg.Scraper.DesiredCount,
		Logger:                log.Named("recommend"),
		Metrics:               m,
	})

	store := session.NewStore()
	srv := server.New(store, svc, server.Options{
		Addr:           cfg.Server.Addr,
		RequestTimeout: cfg.Profile.GlobalTimeout + cfg.Gemini.Timeout,
		Gatherer:       registry,
		Logger:         log.Named("http"),
	})

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
