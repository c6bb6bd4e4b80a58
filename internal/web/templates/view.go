// Package templates renders the dashboard HTML as templ components.
package templates

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/JonMunkholm/booksdash/internal/core"
)

// Page copy shown above the selectors.
const (
	Subtitle = "Have you ever wondered what people at your age, country or even continent have been reading? Here you will find the answers!"
	Hint     = "Selecting the Country, your views for Year of Publication and Age will change."
)

// DashboardData is everything the dashboard page shows for one selection.
type DashboardData struct {
	DatasetID string
	Views     core.ViewSet
	Frames    []Frame
}

// chartQuery encodes the resolved selection for chart image URLs.
func (d DashboardData) chartQuery() string {
	q := url.Values{}
	sel := d.Views.Selection
	if sel.Country != "" {
		q.Set("country", sel.Country)
	}
	if sel.Year != nil {
		q.Set("year", strconv.Itoa(*sel.Year))
	}
	if sel.Age != nil {
		q.Set("age", core.FormatAge(*sel.Age))
	}
	return q.Encode()
}

// SelectOption is one entry of a Select box.
type SelectOption struct {
	Value    string
	Selected bool
}

func countryOptions(vs core.ViewSet) []SelectOption {
	opts := make([]SelectOption, len(vs.Options.Countries))
	for i, c := range vs.Options.Countries {
		opts[i] = SelectOption{Value: c, Selected: c == vs.Selection.Country}
	}
	return opts
}

func yearOptions(vs core.ViewSet) []SelectOption {
	opts := make([]SelectOption, len(vs.Options.Years))
	for i, y := range vs.Options.Years {
		opts[i] = SelectOption{Value: strconv.Itoa(y), Selected: yearSelected(vs.Selection, y)}
	}
	return opts
}

func ageOptions(vs core.ViewSet) []SelectOption {
	sel := vs.Selection.Age
	opts := make([]SelectOption, len(vs.Options.Ages))
	for i, a := range vs.Options.Ages {
		opts[i] = SelectOption{Value: core.FormatAge(a), Selected: sel != nil && *sel == a}
	}
	return opts
}

func yearSelected(sel core.Selection, year int) bool {
	return sel.Year != nil && *sel.Year == year
}

func chartSrc(view, query string) string {
	src := "/chart/" + url.PathEscape(view) + ".svg"
	if query != "" {
		src += "?" + query
	}
	return src
}

// choroplethSrc pins the map to a year only; it is not narrowed by country.
func choroplethSrc(year int) string {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	return chartSrc(core.ViewChoropleth, q.Encode())
}

func frameSummary(f Frame) string {
	return fmt.Sprintf("%d (%d countries)", f.Year, len(f.Entries))
}

func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', 2, 64)
}
