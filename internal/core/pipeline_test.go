package core

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup map[string]string

func (f fakeLookup) Lookup(name string) (string, error) {
	code, ok := f[name]
	if !ok {
		return "", errors.New("unknown country")
	}
	return code, nil
}

// countingLookup records how often each name is resolved.
type countingLookup struct {
	fakeLookup
	calls map[string]int
}

func (c *countingLookup) Lookup(name string) (string, error) {
	c.calls[name]++
	return c.fakeLookup.Lookup(name)
}

func rec(country string, rating, year int) Record {
	return Record{Country: country, BookRating: rating, YearOfPublication: year, Age: math.NaN()}
}

func TestAverageRatingByCountry(t *testing.T) {
	table := Table{
		rec("Germany", 8, 2000),
		rec("Germany", 0, 2001), // excluded from the mean
		rec("Germany", 6, 0),
		rec("France", 0, 1999),
		rec("", 9, 2000),
		rec("Spain", 10, 2002),
	}

	means := AverageRatingByCountry(table)

	assert.Equal(t, map[string]float64{"Germany": 7, "Spain": 10}, means)
}

func TestEnrich(t *testing.T) {
	lookup := fakeLookup{"Germany": "DEU", "Spain": "ESP"}

	t.Run("broadcasts_average_rating_per_country", func(t *testing.T) {
		raw := Table{
			rec("Germany", 8, 2000),
			rec("Germany", 0, 2001),
			rec("Germany", 6, 2002),
			rec("France", 0, 1999),
		}

		enriched := Enrich(raw, lookup)

		require.Len(t, enriched, 4)
		for _, r := range enriched[:3] {
			assert.Equal(t, 7.0, r.AverageRating)
		}
		assert.Equal(t, 0.0, enriched[3].AverageRating, "country with no rated rows")
	})

	t.Run("attaches_country_codes", func(t *testing.T) {
		raw := Table{rec("Germany", 5, 2000), rec("Atlantis", 5, 2000), rec("Spain", 5, 2000)}

		enriched := Enrich(raw, lookup)

		assert.Equal(t, "DEU", enriched[0].CountryCode)
		assert.Empty(t, enriched[1].CountryCode)
		assert.Equal(t, "ESP", enriched[2].CountryCode)
	})

	t.Run("does_not_modify_input", func(t *testing.T) {
		raw := Table{rec("Germany", 5, 2000)}

		_ = Enrich(raw, lookup)

		assert.Zero(t, raw[0].AverageRating)
		assert.Empty(t, raw[0].CountryCode)
	})

	t.Run("resolves_each_country_once", func(t *testing.T) {
		counting := &countingLookup{fakeLookup: lookup, calls: map[string]int{}}
		raw := Table{rec("Germany", 5, 2000), rec("Germany", 6, 2001), rec("Atlantis", 1, 2000), rec("Atlantis", 2, 2000)}

		_ = Enrich(raw, counting)

		assert.Equal(t, map[string]int{"Germany": 1, "Atlantis": 1}, counting.calls)
	})

	t.Run("nil_lookup_leaves_codes_absent", func(t *testing.T) {
		enriched := Enrich(Table{rec("Germany", 5, 2000)}, nil)

		assert.Empty(t, enriched[0].CountryCode)
		assert.Equal(t, 5.0, enriched[0].AverageRating)
	})
}

func TestRestrict(t *testing.T) {
	raw := Table{
		rec("Germany", 5, 2000),
		rec("Germany", 0, 2000),
		rec("Germany", 5, 0),
		rec("Canada", 7, 1995),
		rec("germany", 7, 1995),
		rec("Monaco", 3, 1980),
		rec("United Kingdom", 9, 2004),
	}

	working := Restrict(raw)

	require.Len(t, working, 3)
	for _, r := range working {
		assert.NotZero(t, r.BookRating)
		assert.NotZero(t, r.YearOfPublication)
		assert.True(t, IsEuropean(r.Country), r.Country)
	}
	assert.Equal(t, []string{"Germany", "Monaco", "United Kingdom"},
		[]string{working[0].Country, working[1].Country, working[2].Country})
}

func TestIsEuropean(t *testing.T) {
	assert.Len(t, europeAllowList, 34)
	for _, name := range europeAllowList {
		assert.True(t, IsEuropean(name), name)
	}
	assert.True(t, IsEuropean("Guernsey"))
	assert.False(t, IsEuropean("Russia"))
	assert.False(t, IsEuropean("germany"), "matching is case-sensitive")
}

func TestNewDataset(t *testing.T) {
	raw := Table{
		rec("Germany", 8, 2000),
		rec("Germany", 0, 2001),
		rec("Germany", 6, 0),
		rec("Canada", 10, 2000),
	}

	ds := NewDataset("test", raw, fakeLookup{"Germany": "DEU"})

	assert.Equal(t, 4, ds.RawRows())
	assert.Equal(t, "test", ds.Source)
	assert.NotEmpty(t, ds.ID.String())
	require.Len(t, ds.Working(), 1)

	// The mean is taken before filtering, so the undated row still counts.
	got := ds.Working()[0]
	assert.Equal(t, 7.0, got.AverageRating)
	assert.Equal(t, "DEU", got.CountryCode)
}
