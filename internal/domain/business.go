package domain

import "encoding/json"

// BusinessDetails is the enriched view of a business. Every field is
// optional; opaque upstream structures are kept as raw JSON.
type BusinessDetails struct {
	// identity
	Name           string          `json:"name,omitempty"`
	Address        string          `json:"address,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Website        string          `json:"website,omitempty"`
	PlaceID        string          `json:"placeId,omitempty"`
	GPSCoordinates json.RawMessage `json:"gpsCoordinates,omitempty"`
	Type           []string        `json:"type,omitempty"`
	PlusCode       string          `json:"plusCode,omitempty"`

	// operating state
	WorkingHours json.RawMessage `json:"workingHours,omitempty"`
	OpenState    string          `json:"openState,omitempty"`
	LiveBusyness json.RawMessage `json:"liveBusyness,omitempty"`
	TimeSpent    json.RawMessage `json:"timeSpent,omitempty"`
	PopularTimes json.RawMessage `json:"popularTimes,omitempty"`

	// rating summary
	Rating        *float64        `json:"rating,omitempty"`
	Reviews       *int64          `json:"reviews,omitempty"`
	RatingSummary json.RawMessage `json:"ratingSummary,omitempty"`

	UserReviews []Review     `json:"userReviews,omitempty"`
	Competitors []Competitor `json:"competitors,omitempty"`

	// marketing
	Extensions     json.RawMessage `json:"extensions,omitempty"`
	ServiceOptions json.RawMessage `json:"serviceOptions,omitempty"`
	Thumbnail      string          `json:"thumbnail,omitempty"`
	Images         json.RawMessage `json:"images,omitempty"`
}

// IsEmpty reports whether no field at all is populated.
func (d *BusinessDetails) IsEmpty() bool {
	if d == nil {
		return true
	}
	return d.Name == "" && d.Address == "" && d.Phone == "" && d.Website == "" &&
		d.PlaceID == "" && len(d.GPSCoordinates) == 0 && len(d.Type) == 0 && d.PlusCode == "" &&
		len(d.WorkingHours) == 0 && d.OpenState == "" && len(d.LiveBusyness) == 0 &&
		len(d.TimeSpent) == 0 && len(d.PopularTimes) == 0 &&
		d.Rating == nil && d.Reviews == nil && len(d.RatingSummary) == 0 &&
		len(d.UserReviews) == 0 && len(d.Competitors) == 0 &&
		len(d.Extensions) == 0 && len(d.ServiceOptions) == 0 && d.Thumbnail == "" && len(d.Images) == 0
}

// PlaceResult is the primary endpoint's answer after shape resolution and
// field coercion. Absent upstream fields stay zero/nil.
type PlaceResult struct {
	Name           string
	Address        string
	Phone          string
	Website        string
	PlaceID        string
	GPSCoordinates json.RawMessage
	Type           []string
	PlusCode       string
	WorkingHours   json.RawMessage
	OpenState      string
	LiveBusyness   json.RawMessage
	TimeSpent      json.RawMessage
	PopularTimes   json.RawMessage
	Rating         *float64
	Reviews        *int64
	RatingSummary  json.RawMessage
	UserReviews    []Review // nil when the place carried no review list
	Competitors    []Competitor
	Extensions     json.RawMessage
	ServiceOptions json.RawMessage
	Thumbnail      string
	Images         json.RawMessage
}

// ReviewsResult is the normalized answer of the dedicated reviews endpoint.
type ReviewsResult struct {
	Reviews         []Review // nil when the endpoint returned no review list
	RatingHistogram json.RawMessage
}
