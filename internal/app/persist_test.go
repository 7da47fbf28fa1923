package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goreview/internal/app"
	"goreview/internal/domain"
)

func TestPersist_StampsBothDomainsInOneWrite(t *testing.T) {
	store := newFakeStore()
	w := app.NewCacheWriter(store, time.Second)

	details := domain.BusinessDetails{Name: "X", UserReviews: reviews(2)}
	w.Persist(context.Background(), "acc", fixedNow, details, ptr(4.1), nil, "")

	require.Len(t, store.patches, 1)
	p := store.patches[0]
	require.NotNil(t, p.BusinessDetailsUpdatedAt)
	require.NotNil(t, p.ReviewDataUpdatedAt)
	assert.Equal(t, fixedNow, *p.BusinessDetailsUpdatedAt)
	assert.Equal(t, *p.BusinessDetailsUpdatedAt, *p.ReviewDataUpdatedAt)
	assert.Equal(t, 4.1, *p.CurrentRating)
	assert.Nil(t, p.TotalReviews)
	assert.Nil(t, p.BusinessID)
}

func TestPersist_NeverStampsAbsentData(t *testing.T) {
	store := newFakeStore()
	w := app.NewCacheWriter(store, time.Second)

	w.Persist(context.Background(), "acc", fixedNow, domain.BusinessDetails{Name: "X"}, nil, nil, "B1")

	p := store.patches[0]
	assert.NotNil(t, p.BusinessDetailsUpdatedAt)
	assert.Nil(t, p.ReviewData)
	assert.Nil(t, p.ReviewDataUpdatedAt)
	assert.Equal(t, "B1", *p.BusinessID)

	w.Persist(context.Background(), "acc", fixedNow, domain.BusinessDetails{}, nil, nil, "")
	p = store.patches[1]
	assert.Nil(t, p.BusinessDetails)
	assert.Nil(t, p.BusinessDetailsUpdatedAt)
}

func TestPersist_FailureDoesNotPanic(t *testing.T) {
	store := newFakeStore()
	store.patchErr = errStoreDown
	w := app.NewCacheWriter(store, time.Second)

	assert.NotPanics(t, func() {
		w.Persist(context.Background(), "acc", fixedNow, domain.BusinessDetails{Name: "X"}, nil, nil, "")
	})
}
