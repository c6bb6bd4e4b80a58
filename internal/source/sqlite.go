package source

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // driver registration

	"github.com/JonMunkholm/booksdash/internal/core"
)

// SQLite reads the dataset from a table in a SQLite database file.
type SQLite struct {
	path  string
	table string
}

// NewSQLite creates a SQLite source for the table in the database at path.
func NewSQLite(path, table string) (*SQLite, error) {
	return &SQLite{path: path, table: tableName(table)}, nil
}

// Name implements core.Source.
func (s *SQLite) Name() string {
	return "sqlite:" + s.path + "#" + s.table
}

// Load implements core.Source.
func (s *SQLite) Load(ctx context.Context) (core.Table, error) {
	db, err := sqlx.Open("sqlite", "file:"+s.path+"?mode=ro")
	if err != nil {
		return nil, unavailable("open sqlite", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, unavailable("open sqlite", err)
	}

	probe, err := buildProbeQuery(dialectSQLite, s.table)
	if err != nil {
		return nil, unavailable("probe sqlite", err)
	}
	rows, err := db.QueryxContext(ctx, probe)
	if err != nil {
		return nil, unavailable("probe sqlite", err)
	}
	cols, err := rows.Columns()
	rows.Close()
	if err != nil {
		return nil, unavailable("probe sqlite", err)
	}
	if err := checkColumns(cols); err != nil {
		return nil, err
	}

	query, err := buildSelectQuery(dialectSQLite, s.table)
	if err != nil {
		return nil, unavailable("query sqlite", err)
	}

	var scanned []sqlRow
	if err := db.SelectContext(ctx, &scanned, query); err != nil {
		return nil, unavailable("query sqlite", err)
	}
	return recordsFromRows(scanned)
}
