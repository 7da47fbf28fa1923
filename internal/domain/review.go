package domain

// Review is one normalized user review, whichever endpoint it came from.
type Review struct {
	Author            string   `json:"author"`
	Rating            *float64 `json:"rating,omitempty"`
	Date              string   `json:"date,omitempty"`
	ISODate           string   `json:"isoDate,omitempty"`
	Text              string   `json:"text"`
	OwnerResponse     *string  `json:"ownerResponse"`
	LikeCount         int64    `json:"likeCount"`
	Images            []string `json:"images"`
	IsLocalGuide      bool     `json:"isLocalGuide"`
	AuthorReviewCount *int64   `json:"authorReviewCount,omitempty"` // lifetime reviews by the author; reviews endpoint only
	Permalink         string   `json:"permalink,omitempty"`
	ReviewID          string   `json:"reviewId,omitempty"`
	AuthorLink        string   `json:"authorLink,omitempty"`
}

// AnonymousAuthor is used when the provider does not name the reviewer.
const AnonymousAuthor = "Anonyme"

// Competitor is a "people also search for" entry.
type Competitor struct {
	Name      string   `json:"name,omitempty"`
	PlaceID   string   `json:"placeId,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	Reviews   *int64   `json:"reviews,omitempty"`
	Type      string   `json:"type,omitempty"`
	Address   string   `json:"address,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
}
