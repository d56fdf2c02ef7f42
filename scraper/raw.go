package scraper

import (
	"encoding/json"
	"strconv"
)

// RawListing is one provider listing as decoded from JSON (numbers kept as json.Number).
type RawListing map[string]any

// Lookup returns the value of the first key that is present and not null.
func (r RawListing) Lookup(keys ...string) (any, bool) {
	for _, key := range keys {
		if val, ok := r[key]; ok && val != nil {
			return val, true
		}
	}
	return nil, false
}

// String returns the first present key rendered as text. Objects and arrays render as "".
func (r RawListing) String(keys ...string) string {
	val, ok := r.Lookup(keys...)
	if !ok {
		return ""
	}
	return Scalar(val)
}

// Object returns the nested object under key, or nil when it is absent or not an object.
func (r RawListing) Object(key string) RawListing {
	if obj, ok := r[key].(map[string]any); ok {
		return RawListing(obj)
	}
	return nil
}

// Scalar renders a decoded JSON scalar as text.
func Scalar(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
