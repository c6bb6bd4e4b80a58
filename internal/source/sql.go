package source

import (
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration

	"github.com/JonMunkholm/booksdash/internal/core"
)

const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite3"

	defaultTable = "dashboard"

	aliasCountry    = "country"
	aliasBookRating = "book_rating"
	aliasYear       = "year_of_publication"
	aliasBookTitle  = "book_title"
	aliasBookAuthor = "book_author"
	aliasAge        = "age"
)

var errBuildingQuery = errors.New("building dataset query failed")

// sqlRow is one dataset row as scanned from a SQL source. Numeric columns
// arrive as text and go through the same parsers as CSV cells, so a
// fractional rating or a non-numeric year is a corrupt row in every source.
// NULL means missing.
type sqlRow struct {
	Country    *string `db:"country"`
	BookRating *string `db:"book_rating"`
	Year       *string `db:"year_of_publication"`
	BookTitle  *string `db:"book_title"`
	BookAuthor *string `db:"book_author"`
	Age        *string `db:"age"`
}

func (r sqlRow) record() (core.Record, error) {
	rating, ok := ParseSentinelInt(deref(r.BookRating))
	if !ok {
		return core.Record{}, fmt.Errorf("invalid %s %q", core.ColBookRating, deref(r.BookRating))
	}
	year, ok := ParseSentinelInt(deref(r.Year))
	if !ok {
		return core.Record{}, fmt.Errorf("invalid %s %q", core.ColYearOfPublication, deref(r.Year))
	}
	age, ok := ParseAge(deref(r.Age))
	if !ok {
		return core.Record{}, fmt.Errorf("invalid %s %q", core.ColAge, deref(r.Age))
	}
	return core.Record{
		Country:           deref(r.Country),
		BookRating:        rating,
		YearOfPublication: year,
		BookTitle:         deref(r.BookTitle),
		BookAuthor:        deref(r.BookAuthor),
		Age:               age,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// recordsFromRows converts scanned rows. Row numbers in errors are 1-based.
func recordsFromRows(rows []sqlRow) (core.Table, error) {
	out := make(core.Table, len(rows))
	for i, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, corruptRow(i+1, "%v", err)
		}
		out[i] = rec
	}
	return out, nil
}

func tableName(name string) string {
	if name == "" {
		return defaultTable
	}
	return name
}

// buildProbeQuery returns a query that yields the table's columns and no
// rows, used to report a missing column by name.
func buildProbeQuery(dialect, table string) (string, error) {
	query, _, err := goqu.Dialect(dialect).
		From(table).
		Where(goqu.L("1 = 0")).
		ToSQL()
	if err != nil {
		return "", errors.Join(errBuildingQuery, err)
	}
	return query, nil
}

// buildSelectQuery returns the dataset SELECT for dialect. Numeric columns
// are cast to text so integer, floating point and text storage all scan and
// are validated alike.
func buildSelectQuery(dialect, table string) (string, error) {
	query, _, err := goqu.Dialect(dialect).
		From(table).
		Select(
			goqu.C(core.ColCountry).As(aliasCountry),
			goqu.Cast(goqu.C(core.ColBookRating), "TEXT").As(aliasBookRating),
			goqu.Cast(goqu.C(core.ColYearOfPublication), "TEXT").As(aliasYear),
			goqu.C(core.ColBookTitle).As(aliasBookTitle),
			goqu.C(core.ColBookAuthor).As(aliasBookAuthor),
			goqu.Cast(goqu.C(core.ColAge), "TEXT").As(aliasAge),
		).
		ToSQL()
	if err != nil {
		return "", errors.Join(errBuildingQuery, err)
	}
	return query, nil
}

func checkColumns(cols []string) error {
	_, err := indexColumns(cols)
	return err
}
