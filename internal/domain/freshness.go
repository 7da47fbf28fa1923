package domain

import (
	"strings"
	"time"
)

// DefaultFreshnessWindow is how long a cached domain is served without refetching.
const DefaultFreshnessWindow = 24 * time.Hour

// Freshness tells which cache domains of a record can be served as-is.
type Freshness struct {
	DetailsFresh bool
	ReviewsFresh bool
}

// Both reports whether the record can be served without any upstream call.
func (f Freshness) Both() bool { return f.DetailsFresh && f.ReviewsFresh }

// EvaluateFreshness is a pure function of its inputs. Absent data, absent
// timestamps and unparsable timestamps are all stale.
func EvaluateFreshness(rec AccountRecord, now time.Time, window time.Duration) Freshness {
	return Freshness{
		DetailsFresh: !rec.BusinessDetails.IsEmpty() && within(rec.BusinessDetailsUpdatedAt, now, window),
		ReviewsFresh: len(rec.ReviewData) > 0 && within(rec.ReviewDataUpdatedAt, now, window),
	}
}

func within(raw string, now time.Time, window time.Duration) bool {
	ts, ok := ParseTimestamp(raw)
	if !ok {
		return false
	}
	return now.UTC().Sub(ts) < window
}

// zone-less layouts are read as UTC
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses a stored updated-at value into a UTC instant.
func ParseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders an instant the way the store and the API expect it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
