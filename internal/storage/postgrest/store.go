// Package postgrest stores account records behind a PostgREST (Supabase) endpoint.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
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
	"goreview/internal/shared"
)

const table = "accounts"

// column names of the accounts table
const (
	colID               = "id"
	colBusinessID       = "business_id"
	colRating           = "current_rating"
	colTotalReviews     = "tot_review"
	colDetails          = "business_details"
	colDetailsUpdatedAt = "business_details_edited_at"
	colReviews          = "review_data"
	colReviewsUpdatedAt = "review_data_date"
)

type Store struct {
	base string
	key  string
	hc   *http.Client
}

func New(base, key string, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{
		base: strings.TrimRight(base, "/"),
		key:  key,
		hc:   &http.Client{Timeout: timeout},
	}
}

var _ domain.AccountStore = (*Store)(nil)

func (s *Store) GetAccount(ctx context.Context, accountID string) (domain.AccountRecord, error) {
	q := url.Values{colID: {"eq." + accountID}, "select": {"*"}}

	var rows []map[string]any
	if err := s.do(ctx, "get", http.MethodGet, q, nil, nil, &rows); err != nil {
		return domain.AccountRecord{}, err
	}
	if len(rows) == 0 {
		return domain.AccountRecord{}, domain.ErrNotFound
	}
	return decodeRow(accountID, rows[0]), nil
}

// PatchAccount updates the row in place and inserts it when the PATCH
// matched nothing, so the first fetch round creates the record.
func (s *Store) PatchAccount(ctx context.Context, accountID string, p domain.AccountPatch) error {
	body, err := encodePatch(p)
	if err != nil {
		return err
	}
	q := url.Values{colID: {"eq." + accountID}}

	var updated []map[string]any
	hdr := http.Header{"Prefer": {"return=representation"}}
	if err := s.do(ctx, "patch", http.MethodPatch, q, hdr, body, &updated); err != nil {
		return err
	}
	if len(updated) > 0 {
		return nil
	}

	body[colID] = accountID
	hdr = http.Header{"Prefer": {"resolution=merge-duplicates,return=minimal"}}
	return s.do(ctx, "insert", http.MethodPost, nil, hdr, body, nil)
}

func (s *Store) do(ctx context.Context, op, method string, q url.Values, hdr http.Header, body map[string]any, out any) error {
	u := s.base + "/" + table
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	for k, vs := range hdr {
		req.Header[k] = vs
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.key != "" {
		req.Header.Set("apikey", s.key)
		req.Header.Set("Authorization", "Bearer "+s.key)
	}

	start := time.Now()
	resp, err := s.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("store", op, 0, time.Since(start))
		return fmt.Errorf("store %s: %w", op, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("store", op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("store %s: bad status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("store %s: decode: %w", op, err)
	}
	return nil
}

/********** row codec **********/

// decodeRow reads a row permissively: numbers may be stored as text and
// blobs either as JSON text or as native JSON.
func decodeRow(accountID string, row map[string]any) domain.AccountRecord {
	rec := domain.AccountRecord{
		AccountID:                accountID,
		BusinessID:               shared.FirstString(row, colBusinessID),
		CurrentRating:            shared.Float(row[colRating]),
		TotalReviews:             shared.FirstInt64(row, colTotalReviews, "total_reviews"),
		BusinessDetailsUpdatedAt: shared.FirstString(row, colDetailsUpdatedAt),
		ReviewDataUpdatedAt:      shared.FirstString(row, colReviewsUpdatedAt),
	}

	var details domain.BusinessDetails
	if ok := decodeBlob(row[colDetails], &details); ok && !details.IsEmpty() {
		rec.BusinessDetails = &details
	} else if !ok {
		log.Warn().Str("account_id", accountID).Msg("undecodable business_details; treating as absent")
	}

	var revs []domain.Review
	if ok := decodeBlob(row[colReviews], &revs); ok && len(revs) > 0 {
		rec.ReviewData = revs
	} else if !ok {
		log.Warn().Str("account_id", accountID).Msg("undecodable review_data; treating as absent")
	}
	return rec
}

// decodeBlob returns false only for a present but undecodable value.
func decodeBlob(v any, dst any) bool {
	var raw []byte
	switch t := v.(type) {
	case nil:
		return true
	case string:
		if strings.TrimSpace(t) == "" {
			return true
		}
		raw = []byte(t)
	default:
		raw = shared.RawJSON(t)
	}
	return json.Unmarshal(raw, dst) == nil
}

func encodePatch(p domain.AccountPatch) (map[string]any, error) {
	body := map[string]any{
		colDetails:          nil,
		colDetailsUpdatedAt: nil,
		colReviews:          nil,
		colReviewsUpdatedAt: nil,
	}
	if p.BusinessID != nil {
		body[colBusinessID] = *p.BusinessID
	}
	if p.CurrentRating != nil {
		body[colRating] = strconv.FormatFloat(*p.CurrentRating, 'f', -1, 64)
	}
	if p.TotalReviews != nil {
		body[colTotalReviews] = strconv.FormatInt(*p.TotalReviews, 10)
	}
	if p.BusinessDetails != nil && p.BusinessDetailsUpdatedAt != nil {
		b, err := json.Marshal(p.BusinessDetails)
		if err != nil {
			return nil, fmt.Errorf("encode business details: %w", err)
		}
		body[colDetails] = string(b)
		body[colDetailsUpdatedAt] = domain.FormatTimestamp(*p.BusinessDetailsUpdatedAt)
	}
	if len(p.ReviewData) > 0 && p.ReviewDataUpdatedAt != nil {
		b, err := json.Marshal(p.ReviewData)
		if err != nil {
			return nil, fmt.Errorf("encode review data: %w", err)
		}
		body[colReviews] = string(b)
		body[colReviewsUpdatedAt] = domain.FormatTimestamp(*p.ReviewDataUpdatedAt)
	}
	return body, nil
}
