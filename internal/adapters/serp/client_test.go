package serp_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goreview/internal/adapters/serp"
	"goreview/internal/domain"
)

func newClient(t *testing.T, url string) *serp.Client {
	t.Helper()
	cl, err := serp.New(url, "test-key", "fr", 2*time.Second, 2*time.Second)
	require.NoError(t, err)
	return cl
}

func jsonServer(t *testing.T, hits *int32, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := serp.New("http://example.invalid", "", "fr", time.Second, time.Second)
	require.Error(t, err)
}

func TestFetchPrimary_CoercesStringFields(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "GoReview/1.0", r.UserAgent())
		_, _ = w.Write([]byte(`{"place_results":{"title":"Chez Paul","rating":"4.7","reviews":"1,234","type":"Restaurant"}}`))
	}))
	defer ts.Close()

	got, err := newClient(t, ts.URL).FetchPrimary(context.Background(), "B123")
	require.NoError(t, err)

	require.NotNil(t, got.Rating)
	assert.Equal(t, 4.7, *got.Rating)
	require.NotNil(t, got.Reviews)
	assert.Equal(t, int64(1234), *got.Reviews)
	assert.Equal(t, "Chez Paul", got.Name)
	assert.Equal(t, []string{"Restaurant"}, got.Type)
	assert.Nil(t, got.UserReviews)

	assert.Contains(t, gotQuery, "engine=google_maps")
	assert.Contains(t, gotQuery, "place_id=B123")
	assert.Contains(t, gotQuery, "hl=fr")
	assert.Contains(t, gotQuery, "api_key=test-key")
}

func TestFetchPrimary_UnparsableRatingDegradesField(t *testing.T) {
	ts := jsonServer(t, nil, `{"place_results":{"title":"X","rating":"n/a","reviews":42}}`)

	got, err := newClient(t, ts.URL).FetchPrimary(context.Background(), "B1")
	require.NoError(t, err)
	assert.Nil(t, got.Rating)
	require.NotNil(t, got.Reviews)
	assert.Equal(t, int64(42), *got.Reviews)
}

func TestFetchPrimary_OutOfRangeCountDegradesField(t *testing.T) {
	ts := jsonServer(t, nil, `{"place_results":{"title":"X","rating":4.1,"reviews":1e20}}`)

	got, err := newClient(t, ts.URL).FetchPrimary(context.Background(), "B1")
	require.NoError(t, err)
	assert.Nil(t, got.Reviews)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 4.1, *got.Rating)
}

func TestFetchPrimary_ShapeSelection(t *testing.T) {
	t.Run("local results fallback", func(t *testing.T) {
		ts := jsonServer(t, nil, `{"local_results":[{"title":"First","rating":4.1},{"title":"Second"}]}`)
		got, err := newClient(t, ts.URL).FetchPrimary(context.Background(), "B1")
		require.NoError(t, err)
		assert.Equal(t, "First", got.Name)
		require.NotNil(t, got.Rating)
		assert.Equal(t, 4.1, *got.Rating)
	})

	t.Run("single place preferred", func(t *testing.T) {
		ts := jsonServer(t, nil, `{"place_results":{"title":"Single"},"local_results":[{"title":"List"}]}`)
		got, err := newClient(t, ts.URL).FetchPrimary(context.Background(), "B1")
		require.NoError(t, err)
		assert.Equal(t, "Single", got.Name)
	})

	t.Run("empty place falls through", func(t *testing.T) {
		ts := jsonServer(t, nil, `{"place_results":{},"local_results":[{"title":"List"}]}`)
		got, err := newClient(t, ts.URL).FetchPrimary(context.Background(), "B1")
		require.NoError(t, err)
		assert.Equal(t, "List", got.Name)
	})
}

func TestFetchPrimary_ReviewsAndCompetitors(t *testing.T) {
	ts := jsonServer(t, nil, `{
		"place_results": {
			"title": "Chez Paul",
			"user_reviews": {"most_relevant": [
				{"username": "Ana", "rating": 5, "description": "Top", "likes": 3, "images": ["a.jpg"]},
				{"rating": "4"}
			]},
			"people_also_search_for": [
				{"search_term": "x", "local_results": [{"title": "Rival", "rating": "4.0", "reviews": "1 020", "type": ["Bar", "Cafe"]}]}
			],
			"popular_times": {"graph_results": {}},
			"hours": [{"monday": "9-17"}]
		}
	}`)

	got, err := newClient(t, ts.URL).FetchPrimary(context.Background(), "B1")
	require.NoError(t, err)

	require.Len(t, got.UserReviews, 2)
	assert.Equal(t, "Ana", got.UserReviews[0].Author)
	assert.Equal(t, "Top", got.UserReviews[0].Text)
	assert.Equal(t, int64(3), got.UserReviews[0].LikeCount)
	assert.Equal(t, []string{"a.jpg"}, got.UserReviews[0].Images)
	assert.Equal(t, domain.AnonymousAuthor, got.UserReviews[1].Author)
	assert.Equal(t, []string{}, got.UserReviews[1].Images)
	assert.Equal(t, int64(0), got.UserReviews[1].LikeCount)

	require.Len(t, got.Competitors, 1)
	assert.Equal(t, "Rival", got.Competitors[0].Name)
	assert.Equal(t, int64(1020), *got.Competitors[0].Reviews)
	assert.Equal(t, "Bar, Cafe", got.Competitors[0].Type)

	assert.JSONEq(t, `{"graph_results":{}}`, string(got.PopularTimes))
	assert.JSONEq(t, `[{"monday":"9-17"}]`, string(got.WorkingHours))
}

func TestFetchPrimary_Non2xxIsNotRetried(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream overloaded"))
	}))
	defer ts.Close()

	_, err := newClient(t, ts.URL).FetchPrimary(context.Background(), "B1")
	require.Error(t, err)

	var ue *domain.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusServiceUnavailable, ue.Code)
	assert.Equal(t, "503", ue.Message)
	assert.Equal(t, "upstream overloaded", ue.Detail)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetchPrimary_ProviderErrorPayload(t *testing.T) {
	ts := jsonServer(t, nil, `{"error":"Invalid API key."}`)

	_, err := newClient(t, ts.URL).FetchPrimary(context.Background(), "B1")
	var ue *domain.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "Invalid API key.", ue.Message)
}

func TestFetchPrimary_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	cl, err := serp.New(ts.URL, "test-key", "fr", 50*time.Millisecond, time.Second)
	require.NoError(t, err)

	_, err = cl.FetchPrimary(context.Background(), "B1")
	var ue *domain.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "timeout", ue.Message)
	assert.Equal(t, 0, ue.Code)
}

func TestFetchPrimary_TransportErrorHidesKey(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := newClient(t, url).FetchPrimary(context.Background(), "B1")
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "test-key"), "error leaks api key: %v", err)
}

func TestFetchReviews_NormalizesEntries(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{
			"rating_histogram": {"5": 10, "4": 2},
			"reviews": [{
				"user": {"name": "Bob", "local_guide": true, "reviews": "1,204", "link": "https://u/bob"},
				"rating": 4,
				"iso_date": "2024-05-01T10:00:00Z",
				"snippet": "Très bien",
				"response": {"snippet": "Merci !"},
				"likes": 2,
				"link": "https://r/1",
				"review_id": "r1"
			}]
		}`))
	}))
	defer ts.Close()

	got, err := newClient(t, ts.URL).FetchReviews(context.Background(), "B1")
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "engine=google_maps_reviews")
	assert.Contains(t, gotQuery, "sort_by=newestFirst")

	require.Len(t, got.Reviews, 1)
	rv := got.Reviews[0]
	assert.Equal(t, "Bob", rv.Author)
	assert.Equal(t, 4.0, *rv.Rating)
	assert.Equal(t, "2024-05-01T10:00:00Z", rv.Date)
	assert.Equal(t, "2024-05-01T10:00:00Z", rv.ISODate)
	assert.Equal(t, "Très bien", rv.Text)
	require.NotNil(t, rv.OwnerResponse)
	assert.Equal(t, "Merci !", *rv.OwnerResponse)
	assert.True(t, rv.IsLocalGuide)
	assert.Equal(t, int64(1204), *rv.AuthorReviewCount)
	assert.Equal(t, "https://r/1", rv.Permalink)
	assert.Equal(t, "r1", rv.ReviewID)
	assert.Equal(t, "https://u/bob", rv.AuthorLink)
	assert.JSONEq(t, `{"5":10,"4":2}`, string(got.RatingHistogram))
}
