package services

import (
	"sort"

	"dealer_sync/models"
)

type PriceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Facets are the distinct filter values present in the current inventory.
type Facets struct {
	Brands        []string   `json:"brands"`
	FuelTypes     []string   `json:"fuel_types"`
	Transmissions []string   `json:"transmissions"`
	BodyTypes     []string   `json:"body_types"`
	Years         []int      `json:"years"`
	PriceRange    PriceRange `json:"price_range"`
}

// BuildFacets derives sorted distinct non-empty values per field. Years are
// deduplicated after parsing; the price range ignores zero prices.
func BuildFacets(cars []models.Car) Facets {
	brands := newStringSet()
	fuels := newStringSet()
	transmissions := newStringSet()
	bodies := newStringSet()
	years := make(map[int]bool)
	var prices PriceRange
	pricesSeen := false

	for _, c := range cars {
		brands.add(c.Brand)
		fuels.add(c.FuelType)
		transmissions.add(c.Transmission)
		bodies.add(c.BodyType)

		if c.Year != "" {
			years[ParseYear(c.Year)] = true
		}

		if c.Price != 0 {
			if !pricesSeen || c.Price < prices.Min {
				prices.Min = c.Price
			}
			if !pricesSeen || c.Price > prices.Max {
				prices.Max = c.Price
			}
			pricesSeen = true
		}
	}

	yearList := make([]int, 0, len(years))
	for y := range years {
		yearList = append(yearList, y)
	}
	sort.Ints(yearList)

	return Facets{
		Brands:        brands.sorted(),
		FuelTypes:     fuels.sorted(),
		Transmissions: transmissions.sorted(),
		BodyTypes:     bodies.sorted(),
		Years:         yearList,
		PriceRange:    prices,
	}
}

type stringSet map[string]bool

func newStringSet() stringSet {
	return make(stringSet)
}

func (s stringSet) add(v string) {
	if v != "" {
		s[v] = true
	}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
