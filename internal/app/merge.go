package app

import "goreview/internal/domain"

// Merge builds the enriched details from the primary place result and an
// optional reviews supplement. Absent primary fields stay absent. When the
// supplement carries a review list it replaces the primary one outright,
// and its histogram replaces the rating summary.
func Merge(primary domain.PlaceResult, supplement *domain.ReviewsResult) domain.BusinessDetails {
	d := domain.BusinessDetails{
		Name:           primary.Name,
		Address:        primary.Address,
		Phone:          primary.Phone,
		Website:        primary.Website,
		PlaceID:        primary.PlaceID,
		GPSCoordinates: primary.GPSCoordinates,
		Type:           primary.Type,
		PlusCode:       primary.PlusCode,
		WorkingHours:   primary.WorkingHours,
		OpenState:      primary.OpenState,
		LiveBusyness:   primary.LiveBusyness,
		TimeSpent:      primary.TimeSpent,
		PopularTimes:   primary.PopularTimes,
		Rating:         primary.Rating,
		Reviews:        primary.Reviews,
		RatingSummary:  primary.RatingSummary,
		UserReviews:    primary.UserReviews,
		Competitors:    primary.Competitors,
		Extensions:     primary.Extensions,
		ServiceOptions: primary.ServiceOptions,
		Thumbnail:      primary.Thumbnail,
		Images:         primary.Images,
	}
	if supplement == nil {
		return d
	}
	if supplement.Reviews != nil {
		d.UserReviews = supplement.Reviews
	}
	if len(supplement.RatingHistogram) > 0 {
		d.RatingSummary = supplement.RatingHistogram
	}
	return d
}
