package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"goreview/internal/adapters/observability"
	"goreview/internal/domain"
)

// CacheWriter writes a fetch round back to the record store. Writes are
// best-effort: failures are logged and counted, never returned.
type CacheWriter struct {
	store   domain.AccountStore
	timeout time.Duration
}

func NewCacheWriter(store domain.AccountStore, timeout time.Duration) *CacheWriter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CacheWriter{store: store, timeout: timeout}
}

// Persist refreshes both cache pairs in one store call, stamped with
// fetchedAt. rating and
// totalReviews are only written when known; businessID is only written
// when non-empty.
func (w *CacheWriter) Persist(ctx context.Context, accountID string, fetchedAt time.Time, details domain.BusinessDetails,
	rating *float64, totalReviews *int64, businessID string) {
	stamp := fetchedAt.UTC()

	p := domain.AccountPatch{
		CurrentRating: rating,
		TotalReviews:  totalReviews,
	}
	if !details.IsEmpty() {
		p.BusinessDetails = &details
		p.BusinessDetailsUpdatedAt = &stamp
	}
	if len(details.UserReviews) > 0 {
		p.ReviewData = details.UserReviews
		p.ReviewDataUpdatedAt = &stamp
	}
	if businessID != "" {
		p.BusinessID = &businessID
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.store.PatchAccount(ctx, accountID, p); err != nil {
		perr := &domain.PersistenceError{AccountID: accountID, Err: err}
		observability.ObservePersistFailure()
		log.Warn().
			Err(perr).
			Str("account_id", accountID).
			Str("error_type", observability.LabelErr(err)).
			Msg("write-back failed; serving computed response anyway")
		return
	}
	log.Debug().
		Str("account_id", accountID).
		Int("reviews", len(details.UserReviews)).
		Msg("record updated with enriched data")
}
