package services

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"dealer_sync/models"
)

// Sort keys accepted by Query.
const (
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortYearDesc   = "year_desc"
	SortMileageAsc = "mileage_asc"
)

// UnknownMileage sorts cars without a readable mileage after every real value.
const UnknownMileage = 999999

// CarQuery holds the optional filters, sort key and pagination of a list request.
// Nil pointers mean "not provided".
type CarQuery struct {
	Brand        string
	MinPrice     *int
	MaxPrice     *int
	MinYear      *int
	MaxYear      *int
	FuelType     string
	Transmission string
	SortBy       string
	Limit        *int
	Offset       int
}

// Page is one window over the filtered, sorted inventory.
type Page struct {
	Total  int
	Offset int
	Cars   []models.Car
}

// Query filters, sorts and paginates cars. The input slice is not modified.
// Total counts matches before pagination.
func Query(cars []models.Car, q CarQuery) Page {
	filtered := Filter(cars, q)
	SortCars(filtered, q.SortBy)

	page := Page{Total: len(filtered), Offset: q.Offset}
	page.Cars = paginate(filtered, q.Offset, q.Limit)
	return page
}

// Filter applies every provided predicate; a car must satisfy all of them.
func Filter(cars []models.Car, q CarQuery) []models.Car {
	predicates := q.predicates()
	out := make([]models.Car, 0, len(cars))
	for _, car := range cars {
		if matchesAll(car, predicates) {
			out = append(out, car)
		}
	}
	return out
}

type predicate func(models.Car) bool

func (q CarQuery) predicates() []predicate {
	var preds []predicate

	if q.Brand != "" {
		preds = append(preds, containsFold(q.Brand, func(c models.Car) string { return c.Brand }))
	}
	if q.MinPrice != nil {
		lo := *q.MinPrice
		preds = append(preds, func(c models.Car) bool { return c.Price >= lo })
	}
	if q.MaxPrice != nil {
		hi := *q.MaxPrice
		preds = append(preds, func(c models.Car) bool { return c.Price <= hi })
	}
	if q.MinYear != nil {
		lo := *q.MinYear
		preds = append(preds, func(c models.Car) bool { return ParseYear(c.Year) >= lo })
	}
	if q.MaxYear != nil {
		hi := *q.MaxYear
		preds = append(preds, func(c models.Car) bool { return ParseYear(c.Year) <= hi })
	}
	if q.FuelType != "" {
		preds = append(preds, containsFold(q.FuelType, func(c models.Car) string { return c.FuelType }))
	}
	if q.Transmission != "" {
		preds = append(preds, containsFold(q.Transmission, func(c models.Car) string { return c.Transmission }))
	}

	return preds
}

func containsFold(needle string, field func(models.Car) string) predicate {
	needle = strings.ToLower(needle)
	return func(c models.Car) bool {
		return strings.Contains(strings.ToLower(field(c)), needle)
	}
}

func matchesAll(car models.Car, preds []predicate) bool {
	for _, p := range preds {
		if !p(car) {
			return false
		}
	}
	return true
}

// SortCars orders cars in place. An empty key means price_asc; unknown keys keep the order.
func SortCars(cars []models.Car, sortBy string) {
	if sortBy == "" {
		sortBy = SortPriceAsc
	}

	switch sortBy {
	case SortPriceAsc:
		sort.SliceStable(cars, func(i, j int) bool { return cars[i].Price < cars[j].Price })
	case SortPriceDesc:
		sort.SliceStable(cars, func(i, j int) bool { return cars[i].Price > cars[j].Price })
	case SortYearDesc:
		sort.SliceStable(cars, func(i, j int) bool { return ParseYear(cars[i].Year) > ParseYear(cars[j].Year) })
	case SortMileageAsc:
		sort.SliceStable(cars, func(i, j int) bool { return ParseMileage(cars[i].Mileage) < ParseMileage(cars[j].Mileage) })
	}
}

func paginate(cars []models.Car, offset int, limit *int) []models.Car {
	if offset < 0 {
		offset = 0
	}
	if offset > len(cars) {
		offset = len(cars)
	}
	cars = cars[offset:]

	if limit != nil && *limit > 0 && *limit < len(cars) {
		cars = cars[:*limit]
	}
	return cars
}

// ParseYear reads the leading year of values like "2020" or "2020-2021".
// Unreadable values are 0.
func ParseYear(year string) int {
	head, _, _ := strings.Cut(year, "-")
	head = strings.TrimSpace(head)
	if r := []rune(head); len(r) > 4 {
		head = string(r[:4])
	}

	n, ok := parseDecimal(head)
	if !ok {
		return 0
	}
	return n
}

// ParseMileage keeps only the decimal digits of values like "123 456 km".
// Values without digits are UnknownMileage.
func ParseMileage(mileage string) int {
	var digits strings.Builder
	for _, r := range mileage {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}

	n, ok := parseDecimal(digits.String())
	if !ok {
		return UnknownMileage
	}
	return n
}

// parseDecimal accepts surrounding whitespace, a sign, decimal digits from
// any script and single underscores between digits. Values past the int
// range saturate.
func parseDecimal(s string) (int, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n := 0
	afterDigit := false
	for _, r := range s {
		if r == '_' {
			if !afterDigit {
				return 0, false
			}
			afterDigit = false
			continue
		}

		d, ok := digitValue(r)
		if !ok {
			return 0, false
		}
		if n > (math.MaxInt-d)/10 {
			n = math.MaxInt
		} else {
			n = n*10 + d
		}
		afterDigit = true
	}
	if !afterDigit {
		return 0, false
	}

	if neg {
		n = -n
	}
	return n, true
}

// digitValue maps a Unicode decimal digit to 0-9. Decimal digits come in
// contiguous runs starting at zero.
func digitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	if !unicode.IsDigit(r) {
		return 0, false
	}

	n := 0
	for unicode.IsDigit(r - rune(n) - 1) {
		n++
	}
	return n % 10, true
}
