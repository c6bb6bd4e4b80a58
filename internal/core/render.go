package core

import "fmt"

// OptionsFor returns the selector options for country. Years and ages are
// scoped to the country's rows; countries are global.
func OptionsFor(working Table, country string) Options {
	scoped := working.ForCountry(country)
	return Options{
		Countries: working.Countries(),
		Years:     scoped.Years(),
		Ages:      scoped.Ages(),
	}
}

// Resolve fills unset selection fields with the first available option, in
// drill-down order: country first, then year and age from that country.
// Values that were set explicitly are kept even when no option matches them.
func Resolve(sel Selection, working Table) (Selection, Options) {
	if sel.Country == "" {
		if countries := working.Countries(); len(countries) > 0 {
			sel.Country = countries[0]
		}
	}

	opts := OptionsFor(working, sel.Country)

	if sel.Year == nil && len(opts.Years) > 0 {
		year := opts.Years[0]
		sel.Year = &year
	}
	if sel.Age == nil && len(opts.Ages) > 0 {
		age := opts.Ages[0]
		sel.Age = &age
	}
	return sel, opts
}

// Render builds every view for sel over the working dataset. It is pure and
// is called again on each selection change.
func Render(sel Selection, working Table) ViewSet {
	sel, opts := Resolve(sel, working)

	vs := ViewSet{
		Selection:    sel,
		Options:      opts,
		Titles:       TitlesFor(sel),
		Choropleth:   ChoroplethView(working),
		YearTopBooks: Table{},
		AgeTopBooks:  Table{},
		Scatter:      ScatterView(working, sel.Country),
		TopAuthors:   TopAuthors(working),
	}
	if sel.Year != nil {
		vs.YearTopBooks = YearTopBooks(working, sel.Country, *sel.Year)
	}
	if sel.Age != nil {
		vs.AgeTopBooks = AgeTopBooks(working, sel.Country, *sel.Age)
	}
	return vs
}

// View returns the named view from vs.
func (vs ViewSet) View(name string) (any, error) {
	switch name {
	case ViewChoropleth:
		return vs.Choropleth, nil
	case ViewYearTopBooks:
		return vs.YearTopBooks, nil
	case ViewAgeTopBooks:
		return vs.AgeTopBooks, nil
	case ViewScatter:
		return vs.Scatter, nil
	case ViewTopAuthors:
		return vs.TopAuthors, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownView, name)
}
