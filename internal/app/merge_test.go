package app_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"goreview/internal/app"
	"goreview/internal/domain"
)

func TestMerge_PrimaryOnly(t *testing.T) {
	primary := domain.PlaceResult{
		Name:        "Chez Paul",
		Phone:       "+33 1 23 45 67 89",
		Rating:      ptr(4.7),
		Reviews:     ptr(int64(1234)),
		UserReviews: reviews(2),
		Competitors: []domain.Competitor{{Name: "Rival"}},
	}
	got := app.Merge(primary, nil)

	assert.Equal(t, "Chez Paul", got.Name)
	assert.Equal(t, 4.7, *got.Rating)
	assert.Equal(t, int64(1234), *got.Reviews)
	assert.Len(t, got.UserReviews, 2)
	assert.Len(t, got.Competitors, 1)

	// absent upstream fields are omitted, not null-filled
	b, _ := json.Marshal(got)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	for _, k := range []string{"address", "website", "popularTimes", "ratingSummary", "extensions"} {
		_, ok := m[k]
		assert.False(t, ok, "unexpected key %q", k)
	}
}

func TestMerge_SupplementReplacesReviews(t *testing.T) {
	primary := domain.PlaceResult{
		UserReviews:   []domain.Review{{Author: "primary", Images: []string{}}},
		RatingSummary: json.RawMessage(`[{"stars":5,"amount":1}]`),
	}
	supp := &domain.ReviewsResult{
		Reviews:         []domain.Review{{Author: "a", Images: []string{}}, {Author: "b", Images: []string{}}},
		RatingHistogram: json.RawMessage(`{"5":2}`),
	}
	got := app.Merge(primary, supp)

	assert.Equal(t, supp.Reviews, got.UserReviews, "supplement list wins, no concatenation")
	assert.JSONEq(t, `{"5":2}`, string(got.RatingSummary))
}

func TestMerge_SupplementWithoutListKeepsPrimary(t *testing.T) {
	primary := domain.PlaceResult{
		UserReviews:   reviews(1),
		RatingSummary: json.RawMessage(`[1]`),
	}
	got := app.Merge(primary, &domain.ReviewsResult{})

	assert.Len(t, got.UserReviews, 1)
	assert.JSONEq(t, `[1]`, string(got.RatingSummary))
}

func TestMerge_EmptySupplementListStillReplaces(t *testing.T) {
	got := app.Merge(domain.PlaceResult{UserReviews: reviews(3)}, &domain.ReviewsResult{Reviews: []domain.Review{}})
	assert.Empty(t, got.UserReviews)
}
