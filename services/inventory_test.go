package services

import (
	"fmt"
	"testing"

	"dealer_sync/models"
)

func intPtr(i int) *int {
	return &i
}

func ids(cars []models.Car) string {
	out := ""
	for i, c := range cars {
		if i > 0 {
			out += ","
		}
		out += c.ID
	}
	return out
}

func fixtureCars() []models.Car {
	return []models.Car{
		{ID: "1", Brand: "Volvo", Price: 189900, Year: "2019", Mileage: "8 450 mil", FuelType: "Diesel", Transmission: "Automat", BodyType: "Kombi"},
		{ID: "2", Brand: "VOLVO", Price: 95000, Year: "2014", Mileage: "19 000 mil", FuelType: "Bensin", Transmission: "Manuell", BodyType: "Sedan"},
		{ID: "3", Brand: "Kia", Price: 279000, Year: "2021-2022", Mileage: "", FuelType: "El", Transmission: "Automat", BodyType: "SUV"},
		{ID: "4", Brand: "Saab", Price: 0, Year: "", Mileage: "okänd", FuelType: "Bensin", Transmission: "Manuell"},
		{ID: "5", Brand: "Volvo", Price: 349000, Year: "2022", Mileage: "1 200 mil", FuelType: "Laddhybrid", Transmission: "Automat", BodyType: "SUV"},
	}
}

func TestParseYear(t *testing.T) {
	tests := map[string]int{
		"2020":      2020,
		"2020-2021": 2020,
		" 2019 ":    2019,
		"20201":     2020,
		"202 x":     202,
		"٢٠٢١":      2021,
		"+201":      201,
		"2_01":      201,
		"":          0,
		"okänd":     0,
		"-2020":     0,
		"20_":       0,
		"12":        12,
	}
	for in, expected := range tests {
		if got := ParseYear(in); got != expected {
			t.Fatalf("ParseYear(%q): expected %d, got %d", in, expected, got)
		}
	}
}

func TestParseMileage(t *testing.T) {
	tests := map[string]int{
		"123 456 km": 123456,
		"8 450 mil":  8450,
		"0":          0,
		"١٢٣ km":     123,
		"１２ 000 mil": 12000,
		"":           UnknownMileage,
		"okänd":      UnknownMileage,
	}
	for in, expected := range tests {
		if got := ParseMileage(in); got != expected {
			t.Fatalf("ParseMileage(%q): expected %d, got %d", in, expected, got)
		}
	}

	if got := ParseMileage("99999999999999999999999 km"); got <= UnknownMileage {
		t.Fatalf("expected oversized mileage to sort after unknown, got %d", got)
	}
}

func TestFilter_Conjunctive(t *testing.T) {
	page := Query(fixtureCars(), CarQuery{Brand: "volvo", MinPrice: intPtr(100000)})

	if page.Total != 2 {
		t.Fatalf("expected 2 matches, got %d (%s)", page.Total, ids(page.Cars))
	}
	for _, c := range page.Cars {
		if c.Price < 100000 {
			t.Fatalf("car %s violates min_price", c.ID)
		}
	}
	if ids(page.Cars) != "1,5" {
		t.Fatalf("expected 1,5 got %s", ids(page.Cars))
	}
}

func TestFilter_EachPredicate(t *testing.T) {
	tests := []struct {
		name     string
		query    CarQuery
		expected string
	}{
		{"no filters", CarQuery{}, "4,2,1,3,5"},
		{"brand case-insensitive substring", CarQuery{Brand: "OLV"}, "2,1,5"},
		{"max price", CarQuery{MaxPrice: intPtr(95000)}, "4,2"},
		{"min year", CarQuery{MinYear: intPtr(2021)}, "3,5"},
		{"max year includes unparsable as 0", CarQuery{MaxYear: intPtr(2014)}, "4,2"},
		{"fuel substring", CarQuery{FuelType: "hybrid"}, "5"},
		{"transmission", CarQuery{Transmission: "auto"}, "1,3,5"},
		{"year range", CarQuery{MinYear: intPtr(2015), MaxYear: intPtr(2021)}, "1,3"},
		{"nothing matches", CarQuery{Brand: "tesla"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Query(fixtureCars(), tt.query)
			if got := ids(page.Cars); got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSortCars(t *testing.T) {
	tests := []struct {
		sortBy   string
		expected string
	}{
		{"", "4,2,1,3,5"},
		{SortPriceAsc, "4,2,1,3,5"},
		{SortPriceDesc, "5,3,1,2,4"},
		{SortYearDesc, "5,3,1,2,4"},
		{SortMileageAsc, "5,1,2,3,4"},
		{"bogus", "1,2,3,4,5"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("sort_%s", tt.sortBy), func(t *testing.T) {
			cars := fixtureCars()
			SortCars(cars, tt.sortBy)
			if got := ids(cars); got != tt.expected {
				t.Fatalf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestSortCars_MileageUnparsableLast(t *testing.T) {
	cars := []models.Car{
		{ID: "a", Mileage: ""},
		{ID: "b", Mileage: "25 000 mil"},
		{ID: "c", Mileage: "n/a"},
		{ID: "d", Mileage: "3 000 mil"},
	}
	SortCars(cars, SortMileageAsc)
	if got := ids(cars); got != "d,b,a,c" {
		t.Fatalf("expected d,b,a,c got %s", got)
	}
}

func TestQuery_Pagination(t *testing.T) {
	cars := make([]models.Car, 10)
	for i := range cars {
		cars[i] = models.Car{ID: fmt.Sprintf("%d", i), Price: i * 1000}
	}

	page := Query(cars, CarQuery{Offset: 2, Limit: intPtr(3)})
	if page.Total != 10 {
		t.Fatalf("expected total 10, got %d", page.Total)
	}
	if ids(page.Cars) != "2,3,4" {
		t.Fatalf("expected 2,3,4 got %s", ids(page.Cars))
	}
	if page.Offset != 2 {
		t.Fatalf("expected offset 2, got %d", page.Offset)
	}
}

func TestQuery_PaginationEdges(t *testing.T) {
	cars := make([]models.Car, 5)
	for i := range cars {
		cars[i] = models.Car{ID: fmt.Sprintf("%d", i), Price: i}
	}

	tests := []struct {
		name     string
		offset   int
		limit    *int
		expected string
	}{
		{"offset only", 3, nil, "3,4"},
		{"limit only", 0, intPtr(2), "0,1"},
		{"zero limit is unbounded", 1, intPtr(0), "1,2,3,4"},
		{"offset past end", 9, intPtr(2), ""},
		{"limit past end", 4, intPtr(10), "4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Query(cars, CarQuery{Offset: tt.offset, Limit: tt.limit})
			if page.Total != 5 {
				t.Fatalf("total must be pre-pagination, got %d", page.Total)
			}
			if got := ids(page.Cars); got != tt.expected {
				t.Fatalf("expected %q got %q", tt.expected, got)
			}
		})
	}
}

func TestQuery_DoesNotReorderInput(t *testing.T) {
	cars := fixtureCars()
	Query(cars, CarQuery{SortBy: SortPriceDesc})
	if ids(cars) != "1,2,3,4,5" {
		t.Fatalf("input slice was modified: %s", ids(cars))
	}
}

func TestBuildFacets(t *testing.T) {
	f := BuildFacets(fixtureCars())

	if fmt.Sprint(f.Brands) != "[Kia Saab VOLVO Volvo]" {
		t.Fatalf("unexpected brands %v", f.Brands)
	}
	if fmt.Sprint(f.FuelTypes) != "[Bensin Diesel El Laddhybrid]" {
		t.Fatalf("unexpected fuel types %v", f.FuelTypes)
	}
	if fmt.Sprint(f.Transmissions) != "[Automat Manuell]" {
		t.Fatalf("unexpected transmissions %v", f.Transmissions)
	}
	if fmt.Sprint(f.BodyTypes) != "[Kombi SUV Sedan]" {
		t.Fatalf("unexpected body types %v", f.BodyTypes)
	}
	if fmt.Sprint(f.Years) != "[2014 2019 2021 2022]" {
		t.Fatalf("unexpected years %v", f.Years)
	}
	if f.PriceRange.Min != 95000 || f.PriceRange.Max != 349000 {
		t.Fatalf("unexpected price range %+v", f.PriceRange)
	}
}

func TestBuildFacets_YearsDedupedAsIntegers(t *testing.T) {
	f := BuildFacets([]models.Car{{Year: "2020"}, {Year: "2020-2021"}, {Year: " 2020"}, {Year: "okänd"}})
	if fmt.Sprint(f.Years) != "[0 2020]" {
		t.Fatalf("unexpected years %v", f.Years)
	}
}

func TestBuildFacets_Empty(t *testing.T) {
	f := BuildFacets(nil)
	if f.Brands == nil || len(f.Brands) != 0 || f.Years == nil || len(f.Years) != 0 {
		t.Fatalf("expected empty non-nil lists, got %+v", f)
	}
	if f.PriceRange.Min != 0 || f.PriceRange.Max != 0 {
		t.Fatalf("expected zero price range, got %+v", f.PriceRange)
	}
}
