package shared

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// LookupAny does a nil-safe nested lookup with dot paths on decoded JSON maps.
func LookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// FirstString returns the first non-empty string found at paths, or "".
func FirstString(m map[string]any, paths ...string) string {
	for _, p := range paths {
		if s, ok := LookupAny(m, p).(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// FirstFloat reads a number from several paths; it accepts float64, int,
// json.Number and strings like "4.7" or "4,7".
func FirstFloat(m map[string]any, paths ...string) *float64 {
	for _, p := range paths {
		if f := Float(LookupAny(m, p)); f != nil {
			return f
		}
	}
	return nil
}

// Float coerces a single decoded JSON value. Anything unusable is nil.
func Float(v any) *float64 {
	switch t := v.(type) {
	case float64:
		f := t
		return &f
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return &f
		}
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return &f
		}
	}
	return nil
}

// FirstInt64 reads an integer from several paths.
func FirstInt64(m map[string]any, paths ...string) *int64 {
	for _, p := range paths {
		if n := Int64(LookupAny(m, p)); n != nil {
			return n
		}
	}
	return nil
}

var thousandsSeparators = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "\u202f", "", "'", "")

// Int64 coerces a single decoded JSON value; strings may carry thousands
// separators ("1,234", "1 234").
func Int64(v any) *int64 {
	switch t := v.(type) {
	case float64:
		return floatToInt64(t)
	case int:
		x := int64(t)
		return &x
	case int64:
		x := t
		return &x
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return &n
		}
		if f, err := t.Float64(); err == nil {
			return floatToInt64(f)
		}
	case string:
		s := thousandsSeparators.Replace(strings.TrimSpace(t))
		if s == "" {
			return nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt64(f)
		}
	}
	return nil
}

// floatToInt64 truncates toward zero; values outside the int64 range are absent.
func floatToInt64(f float64) *int64 {
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return nil
	}
	x := int64(f)
	return &x
}

// Bool accepts booleans and the strings "true"/"false".
func Bool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	}
	return false
}

// StringSlice accepts []any of strings or of {url|image|src|thumbnail} objects.
func StringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, it := range raw {
		switch t := it.(type) {
		case string:
			if t != "" {
				out = append(out, t)
			}
		case map[string]any:
			for _, k := range []string{"url", "image", "src", "thumbnail"} {
				if u, ok := t[k].(string); ok && u != "" {
					out = append(out, u)
					break
				}
			}
		}
	}
	return out
}

// RawJSON re-encodes a decoded value so it can be carried opaquely.
// nil values yield nil.
func RawJSON(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
