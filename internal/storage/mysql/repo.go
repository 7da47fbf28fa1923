package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"goreview/internal/adapters/observability"
	"goreview/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

var _ domain.AccountStore = (*Repo)(nil)

func (r *Repo) GetAccount(ctx context.Context, accountID string) (domain.AccountRecord, error) {
	start := time.Now()
	row := r.db.QueryRowContext(ctx, getAccountSQL, accountID)

	var (
		rec                            domain.AccountRecord
		businessID                     sql.NullString
		rating                         sql.NullFloat64
		total                          sql.NullInt64
		detailsJSON, reviewsJSON       []byte
		detailsUpdated, reviewsUpdated sql.NullTime
	)
	err := row.Scan(
		&rec.AccountID,
		&businessID,
		&rating,
		&total,
		&detailsJSON, &detailsUpdated,
		&reviewsJSON, &reviewsUpdated,
	)
	observability.ObserveExternal("mysql", "get", statusOf(err), time.Since(start))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.AccountRecord{}, domain.ErrNotFound
		}
		return domain.AccountRecord{}, err
	}

	if businessID.Valid {
		rec.BusinessID = businessID.String
	}
	if rating.Valid {
		f := rating.Float64
		rec.CurrentRating = &f
	}
	if total.Valid {
		n := total.Int64
		rec.TotalReviews = &n
	}

	if len(detailsJSON) > 0 {
		var d domain.BusinessDetails
		if err := json.Unmarshal(detailsJSON, &d); err != nil {
			log.Warn().Err(err).Str("account_id", accountID).Msg("undecodable business_details; treating as absent")
		} else if !d.IsEmpty() {
			rec.BusinessDetails = &d
		}
	}
	if detailsUpdated.Valid {
		rec.BusinessDetailsUpdatedAt = domain.FormatTimestamp(detailsUpdated.Time)
	}

	if len(reviewsJSON) > 0 {
		var rs []domain.Review
		if err := json.Unmarshal(reviewsJSON, &rs); err != nil {
			log.Warn().Err(err).Str("account_id", accountID).Msg("undecodable review_data; treating as absent")
		} else if len(rs) > 0 {
			rec.ReviewData = rs
		}
	}
	if reviewsUpdated.Valid {
		rec.ReviewDataUpdatedAt = domain.FormatTimestamp(reviewsUpdated.Time)
	}
	return rec, nil
}

func (r *Repo) PatchAccount(ctx context.Context, accountID string, p domain.AccountPatch) error {
	var (
		detailsJSON, reviewsJSON       []byte
		detailsUpdated, reviewsUpdated *time.Time
	)
	if p.BusinessDetails != nil && p.BusinessDetailsUpdatedAt != nil {
		b, err := json.Marshal(p.BusinessDetails)
		if err != nil {
			return fmt.Errorf("encode business details: %w", err)
		}
		detailsJSON, detailsUpdated = b, p.BusinessDetailsUpdatedAt
	}
	if len(p.ReviewData) > 0 && p.ReviewDataUpdatedAt != nil {
		b, err := json.Marshal(p.ReviewData)
		if err != nil {
			return fmt.Errorf("encode review data: %w", err)
		}
		reviewsJSON, reviewsUpdated = b, p.ReviewDataUpdatedAt
	}

	start := time.Now()
	_, err := r.db.ExecContext(ctx, upsertAccountSQL,
		accountID,
		valStr(p.BusinessID),
		valF64(p.CurrentRating),
		valInt64(p.TotalReviews),
		valJSON(detailsJSON),
		valTime(detailsUpdated),
		valJSON(reviewsJSON),
		valTime(reviewsUpdated),
	)
	observability.ObserveExternal("mysql", "upsert", statusOf(err), time.Since(start))
	return err
}

// statusOf maps a query outcome onto the http-like status label used by
// the external request metrics.
func statusOf(err error) int {
	switch {
	case err == nil:
		return 200
	case err == sql.ErrNoRows:
		return 404
	default:
		return 500
	}
}
