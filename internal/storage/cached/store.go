// Package cached puts a short-lived read-through cache in front of an
// AccountStore so hot accounts don't cost a store round trip per request.
package cached

import (
	"context"

	"github.com/rs/zerolog/log"

	"goreview/internal/domain"
)

const keyPrefix = "account:"

type Store struct {
	next   domain.AccountStore
	cache  domain.Cache
	ttlSec int
}

func New(next domain.AccountStore, cache domain.Cache, ttlSec int) *Store {
	if ttlSec <= 0 {
		ttlSec = 300
	}
	return &Store{next: next, cache: cache, ttlSec: ttlSec}
}

var _ domain.AccountStore = (*Store)(nil)

func key(accountID string) string { return keyPrefix + accountID }

// GetAccount serves from cache when possible. Cache errors fall through to
// the underlying store; not-found results are never cached.
func (s *Store) GetAccount(ctx context.Context, accountID string) (domain.AccountRecord, error) {
	var rec domain.AccountRecord
	ok, err := s.cache.Get(ctx, key(accountID), &rec)
	if err != nil {
		log.Warn().Err(err).Str("account_id", accountID).Msg("record cache read failed")
	}
	if ok {
		return rec, nil
	}

	rec, err = s.next.GetAccount(ctx, accountID)
	if err != nil {
		return rec, err
	}
	if err := s.cache.Set(ctx, key(accountID), rec, s.ttlSec); err != nil {
		log.Warn().Err(err).Str("account_id", accountID).Msg("record cache write failed")
	}
	return rec, nil
}

// PatchAccount writes through and drops the cached copy, also when the
// write failed: the store may have applied it anyway.
func (s *Store) PatchAccount(ctx context.Context, accountID string, p domain.AccountPatch) error {
	err := s.next.PatchAccount(ctx, accountID, p)
	if derr := s.cache.Del(ctx, key(accountID)); derr != nil {
		log.Warn().Err(derr).Str("account_id", accountID).Msg("record cache invalidation failed")
	}
	return err
}
