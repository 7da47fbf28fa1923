package domain

import "context"

// AccountStore is the persistent record store.
type AccountStore interface {
	// GetAccount returns ErrNotFound when no record exists.
	GetAccount(ctx context.Context, accountID string) (AccountRecord, error)
	// PatchAccount applies p in a single write, creating the record if needed.
	PatchAccount(ctx context.Context, accountID string, p AccountPatch) error
}

// EnrichmentProvider is the paid place/reviews API.
type EnrichmentProvider interface {
	FetchPrimary(ctx context.Context, businessID string) (PlaceResult, error)
	FetchReviews(ctx context.Context, businessID string) (ReviewsResult, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
