package core

// CountryLookup resolves a country name to its ISO 3166 alpha-3 code.
// Implementations return an error for unknown or ambiguous names.
type CountryLookup interface {
	Lookup(name string) (string, error)
}

// AverageRatingByCountry returns the mean of the non-zero ratings per
// country. Rows without a country are not grouped, and countries whose mean
// is exactly zero are dropped.
func AverageRatingByCountry(t Table) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, r := range t {
		if r.BookRating == 0 || r.Country == "" {
			continue
		}
		sums[r.Country] += float64(r.BookRating)
		counts[r.Country]++
	}

	means := make(map[string]float64, len(sums))
	for country, sum := range sums {
		mean := sum / float64(counts[country])
		if mean == 0 {
			continue
		}
		means[country] = mean
	}
	return means
}

// Enrich returns a copy of t with AverageRating broadcast per country and
// CountryCode set from lookup. A failed lookup leaves CountryCode empty.
func Enrich(t Table, lookup CountryLookup) Table {
	means := AverageRatingByCountry(t)
	codes := make(map[string]string)

	out := make(Table, len(t))
	for i, r := range t {
		r.AverageRating = means[r.Country]

		code, seen := codes[r.Country]
		if !seen {
			code = countryCode(lookup, r.Country)
			codes[r.Country] = code
		}
		r.CountryCode = code

		out[i] = r
	}
	return out
}

func countryCode(lookup CountryLookup, name string) string {
	if lookup == nil || name == "" {
		return ""
	}
	code, err := lookup.Lookup(name)
	if err != nil {
		return ""
	}
	return code
}
