package core

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workingFixture() Table {
	mk := func(country, title, author string, rating, year int, age float64) Record {
		return Record{
			Country: country, BookTitle: title, BookAuthor: author,
			BookRating: rating, YearOfPublication: year, Age: age,
		}
	}
	return Table{
		mk("Spain", "Niebla", "Unamuno", 8, 1914, 40),
		mk("Austria", "Der Prozess", "Kafka", 9, 1925, 33),
		mk("Austria", "Das Schloss", "Kafka", 7, 1926, math.NaN()),
		mk("Austria", "Amerika", "Kafka", 6, 1925, 21),
		mk("Spain", "Marianela", "Galdos", 5, 1878, 21),
	}
}

func TestOptionsFor(t *testing.T) {
	opts := OptionsFor(workingFixture(), "Austria")

	assert.Equal(t, []string{"Austria", "Spain"}, opts.Countries)
	assert.Equal(t, []int{1925, 1926}, opts.Years)
	assert.Equal(t, []float64{21, 33}, opts.Ages)

	empty := OptionsFor(workingFixture(), "Malta")
	assert.Empty(t, empty.Years)
	assert.Empty(t, empty.Ages)
}

func TestResolve(t *testing.T) {
	t.Run("defaults_to_first_options", func(t *testing.T) {
		sel, _ := Resolve(Selection{}, workingFixture())

		assert.Equal(t, "Austria", sel.Country)
		require.NotNil(t, sel.Year)
		require.NotNil(t, sel.Age)
		assert.Equal(t, 1925, *sel.Year)
		assert.Equal(t, 21.0, *sel.Age)
	})

	t.Run("year_and_age_scoped_to_chosen_country", func(t *testing.T) {
		sel, _ := Resolve(Selection{Country: "Spain"}, workingFixture())

		assert.Equal(t, 1878, *sel.Year)
		assert.Equal(t, 21.0, *sel.Age)
	})

	t.Run("explicit_values_are_kept", func(t *testing.T) {
		year := 1700
		sel, _ := Resolve(Selection{Country: "Malta", Year: &year}, workingFixture())

		assert.Equal(t, "Malta", sel.Country)
		assert.Equal(t, 1700, *sel.Year)
		assert.Nil(t, sel.Age)
	})

	t.Run("empty_dataset", func(t *testing.T) {
		sel, opts := Resolve(Selection{}, Table{})

		assert.Empty(t, sel.Country)
		assert.Nil(t, sel.Year)
		assert.Empty(t, opts.Countries)
	})
}

func TestRender(t *testing.T) {
	t.Run("builds_every_view", func(t *testing.T) {
		vs := Render(Selection{Country: "Austria"}, workingFixture())

		assert.Len(t, vs.Choropleth, 5)
		assert.Equal(t, 1878, vs.Choropleth[0].YearOfPublication)
		assert.Equal(t, []int{6, 9}, ratings(vs.YearTopBooks))
		require.Len(t, vs.AgeTopBooks, 1)
		assert.Equal(t, "Amerika", vs.AgeTopBooks[0].BookTitle)
		assert.Len(t, vs.Scatter, 3)
		assert.Equal(t, AuthorCount{BookAuthor: "Kafka", Count: 3}, vs.TopAuthors[0])
		assert.Equal(t, "Top Books for Austria in 1925", vs.Titles.YearTopBooks)
	})

	t.Run("unknown_selection_yields_empty_views", func(t *testing.T) {
		year, age := 1500, 99.0
		vs := Render(Selection{Country: "Atlantis", Year: &year, Age: &age}, workingFixture())

		assert.Empty(t, vs.YearTopBooks)
		assert.Empty(t, vs.AgeTopBooks)
		assert.Empty(t, vs.Scatter)
		assert.Len(t, vs.Choropleth, 5, "choropleth is not country scoped")
	})

	t.Run("empty_dataset_renders_empty_views", func(t *testing.T) {
		vs := Render(Selection{}, Table{})

		assert.NotNil(t, vs.YearTopBooks)
		assert.NotNil(t, vs.AgeTopBooks)
		assert.Empty(t, vs.Choropleth)
		assert.Empty(t, vs.TopAuthors)
	})

	t.Run("does_not_reorder_working_dataset", func(t *testing.T) {
		working := workingFixture()
		_ = Render(Selection{}, working)

		assert.Equal(t, "Niebla", working[0].BookTitle)
		assert.Equal(t, "Marianela", working[4].BookTitle)
	})
}

func TestViewSet_View(t *testing.T) {
	vs := Render(Selection{}, workingFixture())

	for _, name := range ViewNames {
		v, err := vs.View(name)
		require.NoError(t, err, name)
		assert.NotNil(t, v, name)
	}

	_, err := vs.View("pie")
	assert.True(t, errors.Is(err, ErrUnknownView))
}

func TestViewSet_JSON(t *testing.T) {
	vs := Render(Selection{Country: "Austria"}, workingFixture())

	data, err := json.Marshal(vs.Scatter)
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"age":33,"book_rating":9,"country":"Austria"},
		{"age":null,"book_rating":7,"country":"Austria"},
		{"age":21,"book_rating":6,"country":"Austria"}
	]`, string(data))

	data, err = json.Marshal(vs.Choropleth[:1])
	require.NoError(t, err)
	assert.JSONEq(t, `[{"country_code":null,"average_rating":0,"country":"Spain","year_of_publication":1878}]`, string(data))
}
