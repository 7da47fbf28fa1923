package serp

import (
	"strings"

	"goreview/internal/domain"
	"goreview/internal/shared"
)

/********** alias registries **********/

// Both engines describe reviews differently; one alias set covers the two shapes.
var reviewAliases = map[string][]string{
	"author":       {"user.name", "name", "username"},
	"date":         {"date", "iso_date"},
	"iso_date":     {"iso_date", "iso_date_of_last_edit"},
	"text":         {"snippet", "description", "text", "extracted_snippet.original"},
	"response":     {"response.snippet", "response.text", "response.extracted_snippet.original", "response"},
	"likes":        {"likes"},
	"local_guide":  {"user.local_guide", "local_guide"},
	"author_count": {"user.reviews"},
	"link":         {"link"},
	"review_id":    {"review_id"},
	"user_link":    {"user.link", "user_link"},
}

/********** shape resolution **********/

// resolvePlace picks the populated response shape, preferring the single
// place form over the first local result.
func resolvePlace(root map[string]any) map[string]any {
	if p, ok := root["place_results"].(map[string]any); ok && len(p) > 0 {
		return p
	}
	if list, ok := root["local_results"].([]any); ok && len(list) > 0 {
		if p, ok := list[0].(map[string]any); ok {
			return p
		}
	}
	return nil
}

func hasPlace(root map[string]any) bool { return resolvePlace(root) != nil }

/********** place mapper **********/

func mapPlace(root map[string]any) domain.PlaceResult {
	p := resolvePlace(root)
	if p == nil {
		return domain.PlaceResult{}
	}

	out := domain.PlaceResult{
		Name:           shared.FirstString(p, "title", "name"),
		Address:        shared.FirstString(p, "address"),
		Phone:          shared.FirstString(p, "phone"),
		Website:        shared.FirstString(p, "website"),
		PlaceID:        shared.FirstString(p, "place_id"),
		GPSCoordinates: shared.RawJSON(p["gps_coordinates"]),
		Type:           typeList(p["type"]),
		PlusCode:       shared.FirstString(p, "plus_code"),
		OpenState:      shared.FirstString(p, "open_state"),
		LiveBusyness:   shared.RawJSON(p["live_busyness"]),
		Rating:         shared.Float(p["rating"]),
		Reviews:        shared.Int64(p["reviews"]),
		RatingSummary:  shared.RawJSON(p["rating_summary"]),
		Extensions:     shared.RawJSON(p["extensions"]),
		ServiceOptions: shared.RawJSON(p["service_options"]),
		Thumbnail:      shared.FirstString(p, "thumbnail"),
	}

	if h, ok := p["hours"].([]any); ok {
		out.WorkingHours = shared.RawJSON(h)
	} else if h, ok := p["operating_hours"].(map[string]any); ok {
		out.WorkingHours = shared.RawJSON(h)
	}

	switch pt := p["popular_times"].(type) {
	case map[string]any, []any:
		out.PopularTimes = shared.RawJSON(pt)
	}

	if ts := p["time_spent"]; ts != nil {
		out.TimeSpent = shared.RawJSON(ts)
	} else if ts := p["typical_time_spent"]; ts != nil {
		out.TimeSpent = shared.RawJSON(ts)
	}

	if imgs, ok := p["images"].([]any); ok {
		out.Images = shared.RawJSON(imgs)
	}

	if list := placeReviewList(p["user_reviews"]); list != nil {
		out.UserReviews = mapReviews(list)
	}

	out.Competitors = mapCompetitors(p["people_also_search_for"])
	if out.Competitors == nil {
		out.Competitors = mapCompetitors(root["people_also_search_for"])
	}
	return out
}

// placeReviewList accepts either a bare list or the {"most_relevant": [...]} object.
func placeReviewList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		if list, ok := t["most_relevant"].([]any); ok {
			return list
		}
	}
	return nil
}

func typeList(v any) []string {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return []string{t}
	case []any:
		if out := shared.StringSlice(t); len(out) > 0 {
			return out
		}
	}
	return nil
}

/********** competitors mapper **********/

// mapCompetitors reads flat entries, and flattens grouped
// {"search_term", "local_results": [...]} blocks.
func mapCompetitors(v any) []domain.Competitor {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.Competitor, 0, len(list))
	for _, it := range list {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if nested, ok := m["local_results"].([]any); ok {
			out = append(out, mapCompetitors(nested)...)
			continue
		}
		c := domain.Competitor{
			Name:      shared.FirstString(m, "title", "name"),
			PlaceID:   shared.FirstString(m, "place_id"),
			Rating:    shared.Float(m["rating"]),
			Reviews:   shared.Int64(m["reviews"]),
			Address:   shared.FirstString(m, "address"),
			Thumbnail: shared.FirstString(m, "thumbnail"),
		}
		if ts := typeList(m["type"]); len(ts) > 0 {
			c.Type = strings.Join(ts, ", ")
		}
		out = append(out, c)
	}
	return out
}

/********** reviews mapper **********/

func mapReviewsResult(root map[string]any) domain.ReviewsResult {
	var out domain.ReviewsResult
	if list, ok := root["reviews"].([]any); ok {
		out.Reviews = mapReviews(list)
	}
	if h := root["rating_histogram"]; h != nil {
		out.RatingHistogram = shared.RawJSON(h)
	} else if h := shared.LookupAny(root, "place_info.rating_summary"); h != nil {
		out.RatingHistogram = shared.RawJSON(h)
	}
	return out
}

func mapReviews(in []any) []domain.Review {
	out := make([]domain.Review, 0, len(in))
	for _, it := range in {
		r, ok := it.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, mapReview(r))
	}
	return out
}

func mapReview(r map[string]any) domain.Review {
	rv := domain.Review{
		Author:            alias(r, "author"),
		Rating:            shared.Float(r["rating"]),
		Date:              alias(r, "date"),
		ISODate:           alias(r, "iso_date"),
		Text:              alias(r, "text"),
		Images:            shared.StringSlice(r["images"]),
		IsLocalGuide:      aliasBool(r, "local_guide"),
		AuthorReviewCount: shared.FirstInt64(r, reviewAliases["author_count"]...),
		Permalink:         alias(r, "link"),
		ReviewID:          alias(r, "review_id"),
		AuthorLink:        alias(r, "user_link"),
	}
	if rv.Author == "" {
		rv.Author = domain.AnonymousAuthor
	}
	if n := shared.FirstInt64(r, reviewAliases["likes"]...); n != nil {
		rv.LikeCount = *n
	}
	if rv.Images == nil {
		rv.Images = []string{}
	}
	if s := alias(r, "response"); s != "" {
		rv.OwnerResponse = &s
	}
	return rv
}

func alias(m map[string]any, key string) string {
	return shared.FirstString(m, reviewAliases[key]...)
}

func aliasBool(m map[string]any, key string) bool {
	for _, p := range reviewAliases[key] {
		if shared.Bool(shared.LookupAny(m, p)) {
			return true
		}
	}
	return false
}
