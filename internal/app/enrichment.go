package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"goreview/internal/adapters/observability"
	"goreview/internal/domain"
)

const (
	MsgAccountRequired  = "account_id parameter is required"
	MsgBusinessRequired = "business_id is required for Serp API"
)

type EnrichRequest struct {
	AccountID  string
	BusinessID string // optional; falls back to the stored value
}

// EnrichmentView is what a request resolves to, either from the stored
// record or from a fresh fetch round.
type EnrichmentView struct {
	Cached            bool
	Rating            *float64
	Reviews           *int64
	LastUpdated       string
	ReviewDataUpdated string // cached views only
	BusinessDetails   domain.BusinessDetails
	UserReviews       []domain.Review
}

type Options struct {
	Window           time.Duration
	ReviewsThreshold int // fetch the reviews endpoint below this many primary reviews
	StoreTimeout     time.Duration
	Coalesce         bool // share one fetch round between concurrent misses of an account
	Now              func() time.Time
}

type EnrichmentService struct {
	store            domain.AccountStore
	provider         domain.EnrichmentProvider
	writer           *CacheWriter
	window           time.Duration
	reviewsThreshold int
	storeTimeout     time.Duration
	coalesce         bool
	now              func() time.Time
	inflight         singleflight.Group
}

func NewEnrichmentService(store domain.AccountStore, provider domain.EnrichmentProvider, opts Options) *EnrichmentService {
	if opts.Window <= 0 {
		opts.Window = domain.DefaultFreshnessWindow
	}
	if opts.ReviewsThreshold <= 0 {
		opts.ReviewsThreshold = 5
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &EnrichmentService{
		store:            store,
		provider:         provider,
		writer:           NewCacheWriter(store, opts.StoreTimeout),
		window:           opts.Window,
		reviewsThreshold: opts.ReviewsThreshold,
		storeTimeout:     opts.StoreTimeout,
		coalesce:         opts.Coalesce,
		now:              opts.Now,
	}
}

// Enrich serves the account's enrichment data, going upstream only when
// one of the two cache domains is stale.
func (s *EnrichmentService) Enrich(ctx context.Context, req EnrichRequest) (EnrichmentView, error) {
	accountID := strings.TrimSpace(req.AccountID)
	if accountID == "" {
		observability.ObserveEnrichment("invalid")
		return EnrichmentView{}, &domain.ValidationError{Message: MsgAccountRequired}
	}

	// once issued, store and upstream calls run to completion or to their own timeout
	ctx = context.WithoutCancel(ctx)

	rec, found := s.load(ctx, accountID)
	now := s.now()
	fr := domain.EvaluateFreshness(rec, now, s.window)
	log.Debug().
		Str("account_id", accountID).
		Bool("found", found).
		Bool("details_fresh", fr.DetailsFresh).
		Bool("reviews_fresh", fr.ReviewsFresh).
		Msg("cache check")

	if found && fr.Both() {
		observability.ObserveEnrichment("cached")
		return cachedView(rec), nil
	}

	businessID := strings.TrimSpace(req.BusinessID)
	if businessID == "" {
		businessID = rec.BusinessID
	}
	if businessID == "" {
		observability.ObserveEnrichment("invalid")
		return EnrichmentView{}, &domain.ValidationError{
			Message:       MsgBusinessRequired,
			CachedRating:  rec.CurrentRating,
			CachedReviews: rec.TotalReviews,
		}
	}

	backfill := ""
	if rec.BusinessID == "" {
		backfill = businessID
	}

	if !s.coalesce {
		return s.refresh(ctx, accountID, businessID, backfill)
	}
	v, err, shared := s.inflight.Do(accountID+"\x00"+businessID, func() (any, error) {
		return s.refresh(ctx, accountID, businessID, backfill)
	})
	if shared {
		log.Debug().Str("account_id", accountID).Msg("joined in-flight refresh")
	}
	if err != nil {
		return EnrichmentView{}, err
	}
	return v.(EnrichmentView), nil
}

// load never fails the request: a store outage reads as "no record" and
// the request falls through to upstream.
func (s *EnrichmentService) load(ctx context.Context, accountID string) (domain.AccountRecord, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	rec, err := s.store.GetAccount(ctx, accountID)
	switch {
	case err == nil:
		return rec, true
	case errors.Is(err, domain.ErrNotFound):
		return domain.AccountRecord{AccountID: accountID}, false
	default:
		log.Warn().Err(err).Str("account_id", accountID).Msg("record lookup failed; treating as cache miss")
		return domain.AccountRecord{AccountID: accountID}, false
	}
}

func (s *EnrichmentService) refresh(ctx context.Context, accountID, businessID, backfill string) (EnrichmentView, error) {
	log.Info().Str("account_id", accountID).Str("business_id", businessID).Msg("fetching from provider")

	primary, err := s.provider.FetchPrimary(ctx, businessID)
	if err != nil {
		observability.ObserveEnrichment("upstream_error")
		log.Error().Err(err).Str("account_id", accountID).Str("business_id", businessID).Msg("primary fetch failed")
		return EnrichmentView{}, fmt.Errorf("fetch primary %s: %w", businessID, err)
	}

	var supplement *domain.ReviewsResult
	if len(primary.UserReviews) < s.reviewsThreshold {
		rr, err := s.provider.FetchReviews(ctx, businessID)
		if err != nil {
			log.Warn().Err(err).Str("business_id", businessID).Msg("reviews fetch failed; keeping primary reviews")
		} else {
			supplement = &rr
		}
	}

	details := Merge(primary, supplement)
	stamp := s.now().UTC()
	s.writer.Persist(ctx, accountID, stamp, details, primary.Rating, primary.Reviews, backfill)

	observability.ObserveEnrichment("refreshed")
	return EnrichmentView{
		Cached:          false,
		Rating:          primary.Rating,
		Reviews:         primary.Reviews,
		LastUpdated:     domain.FormatTimestamp(stamp),
		BusinessDetails: details,
		UserReviews:     details.UserReviews,
	}, nil
}

func cachedView(rec domain.AccountRecord) EnrichmentView {
	var details domain.BusinessDetails
	if rec.BusinessDetails != nil {
		details = *rec.BusinessDetails
	}
	rating := details.Rating
	if rating == nil {
		rating = rec.CurrentRating
	}
	reviews := details.Reviews
	if reviews == nil {
		reviews = rec.TotalReviews
	}
	return EnrichmentView{
		Cached:            true,
		Rating:            rating,
		Reviews:           reviews,
		LastUpdated:       rec.BusinessDetailsUpdatedAt,
		ReviewDataUpdated: rec.ReviewDataUpdatedAt,
		BusinessDetails:   details,
		UserReviews:       rec.ReviewData,
	}
}
