// Package source provides the dataset readers behind core.Source.
//
// Importing the package registers every reader with core.RegisterSource:
//
//	parquet  columnar snapshot (default, dashfile.parquet)
//	csv      the same columns exported as CSV
//	sqlite   a table in a SQLite database file
//	postgres a table in PostgreSQL
package source

import (
	"fmt"

	"github.com/JonMunkholm/booksdash/internal/core"
)

func init() {
	core.RegisterSource("parquet", func(cfg core.SourceConfig) (core.Source, error) {
		return NewParquet(cfg.Path), nil
	})
	core.RegisterSource("csv", func(cfg core.SourceConfig) (core.Source, error) {
		return NewCSV(cfg.Path), nil
	})
	core.RegisterSource("sqlite", func(cfg core.SourceConfig) (core.Source, error) {
		return NewSQLite(cfg.Path, cfg.Table)
	})
	core.RegisterSource("postgres", func(cfg core.SourceConfig) (core.Source, error) {
		return NewPostgres(cfg.URL, cfg.Table)
	})
}

// columnIndex maps each dataset column to its position in a source's
// header. Every column in core.Columns must be present.
type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		name := CleanCell(h)
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	for _, col := range core.Columns {
		if _, ok := idx[col]; !ok {
			return nil, missingColumn(col)
		}
	}
	return idx, nil
}

func missingColumn(col string) error {
	return fmt.Errorf("%w: %w: %q", core.ErrDataUnavailable, core.ErrMissingColumn, col)
}

func corruptRow(row int, format string, args ...any) error {
	return fmt.Errorf("%w: %w: row %d: %s", core.ErrDataUnavailable, core.ErrCorruptRow, row, fmt.Sprintf(format, args...))
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrDataUnavailable, op, err)
}
