package core

import (
	"cmp"
	"math"
	"slices"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Column names of the dataset snapshot. Sources must provide all of them.
const (
	ColCountry           = "Country"
	ColBookRating        = "Book-Rating"
	ColYearOfPublication = "Year-Of-Publication"
	ColBookTitle         = "Book-Title"
	ColBookAuthor        = "Book-Author"
	ColAge               = "Age"
)

// Columns lists the snapshot columns in their canonical order.
var Columns = []string{
	ColCountry,
	ColBookRating,
	ColYearOfPublication,
	ColBookTitle,
	ColBookAuthor,
	ColAge,
}

// TopN is the number of rows kept by the truncating view builders.
const TopN = 10

// Record is one row of the dataset.
//
// BookRating and YearOfPublication use 0 as the "missing" sentinel.
// Age is NaN when the reader's age is unknown. AverageRating and CountryCode
// are derived by Enrich; CountryCode is empty when the lookup failed.
type Record struct {
	Country           string
	BookTitle         string
	BookAuthor        string
	BookRating        int
	YearOfPublication int
	Age               float64
	AverageRating     float64
	CountryCode       string
}

// HasAge reports whether the reader's age is known.
func (r Record) HasAge() bool {
	return !math.IsNaN(r.Age)
}

// recordJSON is the wire shape of a Record. Missing age and country code
// encode as null.
type recordJSON struct {
	Country           string   `json:"country"`
	BookTitle         string   `json:"book_title"`
	BookAuthor        string   `json:"book_author"`
	BookRating        int      `json:"book_rating"`
	YearOfPublication int      `json:"year_of_publication"`
	Age               *float64 `json:"age"`
	AverageRating     float64  `json:"average_rating"`
	CountryCode       *string  `json:"country_code"`
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Country:           r.Country,
		BookTitle:         r.BookTitle,
		BookAuthor:        r.BookAuthor,
		BookRating:        r.BookRating,
		YearOfPublication: r.YearOfPublication,
		Age:               agePtr(r.Age),
		AverageRating:     r.AverageRating,
		CountryCode:       codePtr(r.CountryCode),
	})
}

func agePtr(age float64) *float64 {
	if math.IsNaN(age) || math.IsInf(age, 0) {
		return nil
	}
	return &age
}

func codePtr(code string) *string {
	if code == "" {
		return nil
	}
	return &code
}

// Table is an ordered set of records. Stages never modify a Table they
// receive; they return a new one.
type Table []Record

// Where returns a new table holding the rows that satisfy keep, in order.
func (t Table) Where(keep func(Record) bool) Table {
	out := make(Table, 0, len(t)/4)
	for _, r := range t {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Head returns at most the first n rows.
func (t Table) Head(n int) Table {
	if len(t) <= n {
		return t
	}
	return t[:n]
}

// ForCountry returns the rows whose country equals country exactly.
func (t Table) ForCountry(country string) Table {
	return t.Where(func(r Record) bool { return r.Country == country })
}

// Countries returns the distinct country names, sorted.
func (t Table) Countries() []string {
	return sortedDistinct(t, func(r Record) (string, bool) { return r.Country, true })
}

// Years returns the distinct publication years, sorted.
func (t Table) Years() []int {
	return sortedDistinct(t, func(r Record) (int, bool) { return r.YearOfPublication, true })
}

// Ages returns the distinct known reader ages, sorted. Missing ages are
// not selectable and are left out.
func (t Table) Ages() []float64 {
	return sortedDistinct(t, func(r Record) (float64, bool) { return r.Age, r.HasAge() })
}

func sortedDistinct[K cmp.Ordered](t Table, key func(Record) (K, bool)) []K {
	seen := make(map[K]struct{})
	out := make([]K, 0)
	for _, r := range t {
		k, ok := key(r)
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Selection holds the user's drill-down choices. A nil Year or Age, or an
// empty Country, means "not chosen"; Render resolves those to the first
// available option.
type Selection struct {
	Country string   `json:"country"`
	Year    *int     `json:"year"`
	Age     *float64 `json:"age"`
}

// Options are the values offered by the dashboard's selectors.
type Options struct {
	Countries []string  `json:"countries"`
	Years     []int     `json:"years"`
	Ages      []float64 `json:"ages"`
}

// ChoroplethPoint is one row of the choropleth view.
type ChoroplethPoint struct {
	CountryCode       string
	AverageRating     float64
	Country           string
	YearOfPublication int
}

// MarshalJSON implements json.Marshaler.
func (p ChoroplethPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CountryCode       *string `json:"country_code"`
		AverageRating     float64 `json:"average_rating"`
		Country           string  `json:"country"`
		YearOfPublication int     `json:"year_of_publication"`
	}{codePtr(p.CountryCode), p.AverageRating, p.Country, p.YearOfPublication})
}

// ScatterPoint is one row of the age/rating scatter view.
type ScatterPoint struct {
	Age        float64
	BookRating int
	Country    string
}

// MarshalJSON implements json.Marshaler.
func (p ScatterPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Age        *float64 `json:"age"`
		BookRating int      `json:"book_rating"`
		Country    string   `json:"country"`
	}{agePtr(p.Age), p.BookRating, p.Country})
}

// AuthorCount is one row of the top-authors view.
type AuthorCount struct {
	BookAuthor string `json:"book_author"`
	Count      int    `json:"count"`
}

// Titles are the chart headings for a rendered selection.
type Titles struct {
	Choropleth   string `json:"choropleth"`
	YearTopBooks string `json:"year_top_books"`
	AgeTopBooks  string `json:"age_top_books"`
	Scatter      string `json:"scatter"`
	TopAuthors   string `json:"top_authors"`
}

// ViewSet is everything the dashboard needs to draw one selection.
type ViewSet struct {
	Selection    Selection         `json:"selection"`
	Options      Options           `json:"options"`
	Titles       Titles            `json:"titles"`
	Choropleth   []ChoroplethPoint `json:"choropleth"`
	YearTopBooks Table             `json:"year_top_books"`
	AgeTopBooks  Table             `json:"age_top_books"`
	Scatter      []ScatterPoint    `json:"scatter"`
	TopAuthors   []AuthorCount     `json:"top_authors"`
}
