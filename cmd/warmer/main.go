package main

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"goreview/internal/adapters/observability"
	"goreview/internal/adapters/serp"
	"goreview/internal/app"
	"goreview/internal/domain"
	"goreview/internal/shared"
	"goreview/internal/storage"
)

// warmer refreshes stale accounts ahead of traffic. Account ids come from
// the arguments, else from WARM_ACCOUNT_IDS. Businesses must already be
// known to the store; fresh accounts cost no upstream call.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	runID := uuid.NewString()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel).With().Str("run_id", runID).Logger()

	ids := os.Args[1:]
	if len(ids) == 0 {
		ids = cfg.WarmAccountIDs
	}
	if len(ids) == 0 {
		log.Fatal().Msg("no account ids; pass them as arguments or set WARM_ACCOUNT_IDS")
	}
	workers := cfg.WarmWorkers
	if workers <= 0 {
		workers = 1
	}

	log.Info().
		Int("accounts", len(ids)).
		Int("workers", workers).
		Msg("warmer starting")

	store, closeStore, err := storage.Open(ctx, cfg)
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
	})

	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg                       sync.WaitGroup
		cachedN, refreshedN, bad atomic.Int64
	)

	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(accountID string) {
			defer wg.Done()
			defer sem.Release(1)

			view, err := svc.Enrich(ctx, app.EnrichRequest{AccountID: accountID})
			if err != nil {
				bad.Add(1)
				var ve *domain.ValidationError
				if errors.As(err, &ve) {
					log.Warn().Str("account_id", accountID).Str("reason", ve.Message).Msg("warm skipped")
					return
				}
				log.Warn().Str("account_id", accountID).Err(err).Msg("warm failed")
				return
			}
			if view.Cached {
				cachedN.Add(1)
			} else {
				refreshedN.Add(1)
			}
			log.Info().Str("account_id", accountID).Bool("cached", view.Cached).Msg("warm ok")
		}(id)
	}

	wg.Wait()
	log.Info().
		Int64("cached", cachedN.Load()).
		Int64("refreshed", refreshedN.Load()).
		Int64("failed", bad.Load()).
		Msg("warm completed")
}
