package domain

import "time"

// AccountRecord is the persisted per-account cache row. The two
// (value, updated-at) pairs age independently.
type AccountRecord struct {
	AccountID     string   `json:"accountId"`
	BusinessID    string   `json:"businessId,omitempty"`
	CurrentRating *float64 `json:"currentRating,omitempty"`
	TotalReviews  *int64   `json:"totalReviews,omitempty"`

	BusinessDetails          *BusinessDetails `json:"businessDetails,omitempty"`
	BusinessDetailsUpdatedAt string           `json:"businessDetailsUpdatedAt,omitempty"` // raw stored value; "" when absent

	ReviewData          []Review `json:"reviewData,omitempty"`
	ReviewDataUpdatedAt string   `json:"reviewDataUpdatedAt,omitempty"`
}

// AccountPatch is a partial write. Both cache pairs are always written;
// a nil/empty value is stored together with a cleared timestamp.
type AccountPatch struct {
	BusinessID    *string
	CurrentRating *float64
	TotalReviews  *int64

	BusinessDetails          *BusinessDetails
	BusinessDetailsUpdatedAt *time.Time

	ReviewData          []Review
	ReviewDataUpdatedAt *time.Time
}
