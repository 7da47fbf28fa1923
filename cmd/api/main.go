package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	server "goreview/internal/adapters/http_server"
	"goreview/internal/adapters/observability"
	"goreview/internal/adapters/serp"
	"goreview/internal/app"
	"goreview/internal/shared"
	"goreview/internal/storage"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// deps
	store, closeStore, err := storage.Open(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("record store init failed")
	}
	defer closeStore()

	provider, err := serp.New(cfg.SerpBase, cfg.SerpKey, cfg.SerpLang, cfg.PrimaryTimeout, cfg.ReviewsTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Serp client")
	}

	svc := app.NewEnrichmentService(store, provider, app.Options{
		Window:           cfg.FreshnessWindow,
		ReviewsThreshold: cfg.ReviewsThreshold,
		StoreTimeout:     cfg.StoreTimeout,
		Coalesce:         cfg.CoalesceMisses,
	})

	// http
	srv := server.New(cfg.HTTPTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{E: svc})

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Dur("freshness_window", cfg.FreshnessWindow).
		Bool("coalesce", cfg.CoalesceMisses).
		Msg("API listening")
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
