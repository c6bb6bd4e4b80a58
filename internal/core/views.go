package core

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
)

// View names accepted by the API and chart endpoints.
const (
	ViewChoropleth   = "choropleth"
	ViewYearTopBooks = "year-top"
	ViewAgeTopBooks  = "age-top"
	ViewScatter      = "scatter"
	ViewTopAuthors   = "authors"
)

// ViewNames lists every view in dashboard order.
var ViewNames = []string{
	ViewChoropleth,
	ViewYearTopBooks,
	ViewAgeTopBooks,
	ViewScatter,
	ViewTopAuthors,
}

// ChoroplethView projects the whole working dataset, ordered by publication
// year so animation frames play chronologically. Rows sharing a year keep
// their input order.
func ChoroplethView(t Table) []ChoroplethPoint {
	out := make([]ChoroplethPoint, len(t))
	for i, r := range t {
		out[i] = ChoroplethPoint{
			CountryCode:       r.CountryCode,
			AverageRating:     r.AverageRating,
			Country:           r.Country,
			YearOfPublication: r.YearOfPublication,
		}
	}
	slices.SortStableFunc(out, func(a, b ChoroplethPoint) int {
		return cmp.Compare(a.YearOfPublication, b.YearOfPublication)
	})
	return out
}

// YearTopBooks returns the rows for (country, year) sorted by rating in
// ascending order, cut to TopN. This is the lowest-rated N of the slice.
func YearTopBooks(t Table, country string, year int) Table {
	slice := t.Where(func(r Record) bool {
		return r.Country == country && r.YearOfPublication == year
	})
	slices.SortStableFunc(slice, func(a, b Record) int {
		return cmp.Compare(a.BookRating, b.BookRating)
	})
	return slice.Head(TopN)
}

// AgeTopBooks returns the rows for (country, age), one per title (first
// occurrence wins), sorted by rating descending and cut to TopN.
func AgeTopBooks(t Table, country string, age float64) Table {
	seen := make(map[string]struct{})
	slice := t.Where(func(r Record) bool {
		if r.Country != country || r.Age != age {
			return false
		}
		if _, dup := seen[r.BookTitle]; dup {
			return false
		}
		seen[r.BookTitle] = struct{}{}
		return true
	})
	slices.SortStableFunc(slice, func(a, b Record) int {
		return cmp.Compare(b.BookRating, a.BookRating)
	})
	return slice.Head(TopN)
}

// ScatterView returns every row of country as age/rating points, in input
// order.
func ScatterView(t Table, country string) []ScatterPoint {
	out := make([]ScatterPoint, 0)
	for _, r := range t {
		if r.Country != country {
			continue
		}
		out = append(out, ScatterPoint{Age: r.Age, BookRating: r.BookRating, Country: r.Country})
	}
	return out
}

// TopAuthors counts rows per author across the whole table and returns the
// TopN most frequent. Authors with equal counts keep first-seen order.
func TopAuthors(t Table) []AuthorCount {
	index := make(map[string]int)
	out := make([]AuthorCount, 0)
	for _, r := range t {
		i, ok := index[r.BookAuthor]
		if !ok {
			i = len(out)
			index[r.BookAuthor] = i
			out = append(out, AuthorCount{BookAuthor: r.BookAuthor})
		}
		out[i].Count++
	}
	slices.SortStableFunc(out, func(a, b AuthorCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(out) > TopN {
		out = out[:TopN]
	}
	return out
}

// TitlesFor returns the chart headings for a resolved selection.
func TitlesFor(sel Selection) Titles {
	year, age := "", ""
	if sel.Year != nil {
		year = strconv.Itoa(*sel.Year)
	}
	if sel.Age != nil {
		age = FormatAge(*sel.Age)
	}
	return Titles{
		Choropleth:   "Average-Rating x Year of Publication",
		YearTopBooks: fmt.Sprintf("Top Books for %s in %s", sel.Country, year),
		AgeTopBooks:  fmt.Sprintf("Top Books for Age %s in %s", age, sel.Country),
		Scatter:      fmt.Sprintf("Correlation between Age and Rating in %s", sel.Country),
		TopAuthors:   fmt.Sprintf("Top %d Authors in Europe", TopN),
	}
}

// FormatAge renders an age the way selectors and titles show it: whole ages
// without a fractional part.
func FormatAge(age float64) string {
	return strconv.FormatFloat(age, 'f', -1, 64)
}
