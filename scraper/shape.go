package scraper

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape names which accepted response layout a listings payload matched.
type Shape string

const (
	ShapeArray     Shape = "array"     // bare JSON array of listings
	ShapeContainer Shape = "container" // object wrapping the array under a container key
	ShapeSingle    Shape = "single"    // object whose container key holds a non-array
	ShapeEmpty     Shape = "empty"     // no container key, null, or a scalar
)

// ContainerKeys are tried in order; the first key present decides the shape.
var ContainerKeys = []string{"docs", "data", "ads", "results"}

// DecodeListings runs the ordered fallback chain over a search response body.
// container is the key used when shape is ShapeContainer or ShapeSingle.
func DecodeListings(body []byte) (listings []RawListing, shape Shape, container string, err error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, "", "", fmt.Errorf("decode listings: %w", err)
	}

	switch v := doc.(type) {
	case []any:
		return objects(v), ShapeArray, "", nil
	case map[string]any:
		for _, key := range ContainerKeys {
			val, ok := v[key]
			if !ok {
				continue
			}
			if arr, ok := val.([]any); ok {
				return objects(arr), ShapeContainer, key, nil
			}
			return []RawListing{RawListing(v)}, ShapeSingle, key, nil
		}
	}

	return nil, ShapeEmpty, "", nil
}

// objects keeps the elements that are JSON objects.
func objects(items []any) []RawListing {
	listings := make([]RawListing, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			listings = append(listings, RawListing(obj))
		}
	}
	return listings
}
