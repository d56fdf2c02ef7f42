package syncer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"dealer_sync/scraper"
)

// ParsePrice reads price.amount, price.value or a scalar price and coerces it
// to a non-negative integer. Anything not coercible is 0.
func ParsePrice(raw scraper.RawListing) int {
	val, ok := raw["price"]
	if !ok {
		return 0
	}

	if nested, ok := val.(map[string]any); ok {
		if amount, ok := nested["amount"]; ok {
			val = amount
		} else if value, ok := nested["value"]; ok {
			val = value
		} else {
			return 0
		}
	}

	n := toInt(val)
	if n < 0 {
		return 0
	}
	return n
}

func toInt(val any) int {
	switch v := val.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return clampInt64(i)
		}
		if f, err := v.Float64(); err == nil {
			return truncFloat(f)
		}
	case float64:
		return truncFloat(v)
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return clampInt64(i)
		}
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

func truncFloat(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1<<63 {
		return 0
	}
	return clampInt64(int64(f))
}

func clampInt64(i int64) int {
	if i > math.MaxInt || i < math.MinInt {
		return 0
	}
	return int(i)
}

// FallbackImages uses the listing's own image field when the item page yielded none.
func FallbackImages(raw scraper.RawListing) []string {
	switch img := raw["image"].(type) {
	case map[string]any:
		if url := scraper.Scalar(img["url"]); url != "" {
			return []string{url}
		}
	case string:
		if img != "" {
			return []string{img}
		}
	}
	return []string{}
}

// BodyType is registration_class.value when registration_class is an object.
func BodyType(raw scraper.RawListing) string {
	class := raw.Object("registration_class")
	if class == nil {
		return ""
	}
	return class.String("value")
}
