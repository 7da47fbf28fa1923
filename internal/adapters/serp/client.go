// Package serp talks to the SerpAPI Google Maps engines.
package serp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"goreview/internal/adapters/observability"
	"goreview/internal/domain"
)

const (
	enginePlace   = "google_maps"
	engineReviews = "google_maps_reviews"

	userAgent = "GoReview/1.0"

	// diagnostic bodies surfaced to callers are cut to this size
	maxDetail = 512
)

type Client struct {
	base           string
	hc             *http.Client
	key            string
	lang           string
	primaryTimeout time.Duration
	reviewsTimeout time.Duration
}

func New(base, key, lang string, primaryTimeout, reviewsTimeout time.Duration) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if lang == "" {
		lang = "fr"
	}
	if primaryTimeout <= 0 {
		primaryTimeout = 30 * time.Second
	}
	if reviewsTimeout <= 0 {
		reviewsTimeout = 30 * time.Second
	}
	return &Client{
		base:           strings.TrimRight(base, "/"),
		hc:             &http.Client{Timeout: max(primaryTimeout, reviewsTimeout)},
		key:            key,
		lang:           lang,
		primaryTimeout: primaryTimeout,
		reviewsTimeout: reviewsTimeout,
	}, nil
}

var _ domain.EnrichmentProvider = (*Client)(nil)

// FetchPrimary calls the place engine once. No retries.
func (c *Client) FetchPrimary(ctx context.Context, businessID string) (domain.PlaceResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.primaryTimeout)
	defer cancel()

	var root map[string]any
	if err := c.get(ctx, enginePlace, url.Values{"place_id": {businessID}}, &root); err != nil {
		return domain.PlaceResult{}, err
	}
	if msg := providerError(root); msg != "" && !hasPlace(root) {
		return domain.PlaceResult{}, &domain.UpstreamError{Code: http.StatusOK, Message: msg}
	}
	return mapPlace(root), nil
}

// FetchReviews calls the dedicated reviews engine, newest first. No retries.
func (c *Client) FetchReviews(ctx context.Context, businessID string) (domain.ReviewsResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.reviewsTimeout)
	defer cancel()

	var root map[string]any
	params := url.Values{"place_id": {businessID}, "sort_by": {"newestFirst"}}
	if err := c.get(ctx, engineReviews, params, &root); err != nil {
		return domain.ReviewsResult{}, err
	}
	if msg := providerError(root); msg != "" && root["reviews"] == nil {
		return domain.ReviewsResult{}, &domain.UpstreamError{Code: http.StatusOK, Message: msg}
	}
	return mapReviewsResult(root), nil
}

// get performs a single GET and decodes the JSON body into out.
// Every failure is reported as *domain.UpstreamError.
func (c *Client) get(ctx context.Context, engine string, params url.Values, out any) error {
	params.Set("engine", engine)
	params.Set("hl", c.lang)
	params.Set("api_key", c.key)
	u := c.base + "/search.json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &domain.UpstreamError{Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("serp", engine, 0, time.Since(start))
		return transportError(ctx, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("serp", engine, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Warn().
			Str("engine", engine).
			Int("status", resp.StatusCode).
			Msg("serp returned non-2xx")
		return &domain.UpstreamError{
			Code:    resp.StatusCode,
			Message: strconv.Itoa(resp.StatusCode),
			Detail:  truncate(strings.TrimSpace(string(b)), maxDetail),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return transportError(ctx, ctx.Err())
		}
		return &domain.UpstreamError{Message: "malformed response", Detail: truncate(err.Error(), maxDetail), Err: err}
	}
	return nil
}

// transportError strips the request URL (it carries the API key) from
// net/http errors.
func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.UpstreamError{Message: "timeout", Err: context.DeadlineExceeded}
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		if ue.Timeout() {
			return &domain.UpstreamError{Message: "timeout", Err: ue.Err}
		}
		err = ue.Err
	}
	return &domain.UpstreamError{Message: err.Error(), Err: err}
}

func providerError(root map[string]any) string {
	s, _ := root["error"].(string)
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
