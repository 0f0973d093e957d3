package transformers

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"user-profile-api/internal/models"
)

// dateLayouts are tried in order when parsing birthDate strings.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// CoerceText keeps strings, stringifies numbers and booleans, and maps anything else to nil.
func CoerceText(v interface{}) *string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case json.Number:
		s = t.String()
	case bool:
		s = strconv.FormatBool(t)
	default:
		return nil
	}
	return &s
}

// CoerceInt parses the leading integer of a value the way a lenient form
// parser would: "180cm" is 180, 172.9 is 172. Unparseable values and zero
// yield nil.
func CoerceInt(v interface{}) *int {
	var n int
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || math.Abs(t) > math.MaxInt32 {
			return nil
		}
		n = int(t)
	case int:
		n = t
	case json.Number:
		return CoerceInt(t.String())
	case string:
		parsed, ok := leadingInt(t)
		if !ok {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if n == 0 {
		return nil
	}
	return &n
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// CoerceDate parses a date string or epoch milliseconds. ok is false when a
// non-null value could not be parsed; the caller stores nil either way.
func CoerceDate(v interface{}) (date *time.Time, ok bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, false
		}
		d := time.UnixMilli(int64(t)).UTC()
		return &d, true
	case json.Number:
		ms, err := t.Int64()
		if err != nil {
			return nil, false
		}
		d := time.UnixMilli(ms).UTC()
		return &d, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				d = d.UTC()
				return &d, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

// CoerceList keeps sequences and replaces anything else with an empty list.
// Non-string elements are stringified; nulls inside the list are dropped.
func CoerceList(v interface{}) models.StringList {
	items, ok := v.([]interface{})
	if !ok {
		return models.StringList{}
	}
	out := make(models.StringList, 0, len(items))
	for _, item := range items {
		if s := CoerceText(item); s != nil {
			out = append(out, *s)
			continue
		}
		if item == nil {
			continue
		}
		raw, err := json.Marshal(item)
		if err == nil {
			out = append(out, string(raw))
		}
	}
	return out
}

// CoerceFloat accepts numbers and numeric strings.
func CoerceFloat(v interface{}) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// CoerceBool is true only for JSON true or the string "true".
func CoerceBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return false
	}
}
