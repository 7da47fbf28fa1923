package app_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"goreview/internal/domain"
)

// ---- fakes ----

type fakeStore struct {
	mu       sync.Mutex
	records  map[string]domain.AccountRecord
	patches  []domain.AccountPatch
	gets     int
	getErr   error
	patchErr error
}

func newFakeStore() *fakeStore { return &fakeStore{records: map[string]domain.AccountRecord{}} }

func (f *fakeStore) GetAccount(ctx context.Context, id string) (domain.AccountRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return domain.AccountRecord{}, f.getErr
	}
	rec, ok := f.records[id]
	if !ok {
		return domain.AccountRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (f *fakeStore) PatchAccount(ctx context.Context, id string, p domain.AccountPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, p)
	if f.patchErr != nil {
		return f.patchErr
	}
	rec := f.records[id]
	rec.AccountID = id
	if p.BusinessID != nil {
		rec.BusinessID = *p.BusinessID
	}
	if p.CurrentRating != nil {
		rec.CurrentRating = p.CurrentRating
	}
	if p.TotalReviews != nil {
		rec.TotalReviews = p.TotalReviews
	}
	rec.BusinessDetails = p.BusinessDetails
	rec.BusinessDetailsUpdatedAt = stamp(p.BusinessDetailsUpdatedAt)
	rec.ReviewData = p.ReviewData
	rec.ReviewDataUpdatedAt = stamp(p.ReviewDataUpdatedAt)
	f.records[id] = rec
	return nil
}

func (f *fakeStore) patchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.patches)
}

func (f *fakeStore) getCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets
}

func (f *fakeStore) record(id string) domain.AccountRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[id]
}

type fakeProvider struct {
	primary      domain.PlaceResult
	primaryErr   error
	reviews      domain.ReviewsResult
	reviewsErr   error
	release      chan struct{} // when set, FetchPrimary blocks until closed
	primaryCalls int32
	reviewsCalls int32
}

func (f *fakeProvider) FetchPrimary(ctx context.Context, businessID string) (domain.PlaceResult, error) {
	atomic.AddInt32(&f.primaryCalls, 1)
	if f.release != nil {
		<-f.release
	}
	return f.primary, f.primaryErr
}

func (f *fakeProvider) FetchReviews(ctx context.Context, businessID string) (domain.ReviewsResult, error) {
	atomic.AddInt32(&f.reviewsCalls, 1)
	return f.reviews, f.reviewsErr
}

func (f *fakeProvider) calls() (int32, int32) {
	return atomic.LoadInt32(&f.primaryCalls), atomic.LoadInt32(&f.reviewsCalls)
}

var errStoreDown = errors.New("store down")

// ---- helpers ----

func ptr[T any](v T) *T { return &v }

func stamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return domain.FormatTimestamp(*t)
}

func reviews(n int) []domain.Review {
	out := make([]domain.Review, n)
	for i := range out {
		out[i] = domain.Review{Author: "user", Rating: ptr(5.0), Images: []string{}}
	}
	return out
}
