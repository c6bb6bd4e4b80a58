package source

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/booksdash/internal/core"
)

// Postgres reads the dataset from a table in PostgreSQL.
type Postgres struct {
	url   string
	table string
}

// NewPostgres creates a Postgres source. url is a pgx connection string.
func NewPostgres(url, table string) (*Postgres, error) {
	if url == "" {
		return nil, unavailable("configure postgres", errors.New("DATA_URL is required"))
	}
	return &Postgres{url: url, table: tableName(table)}, nil
}

// Name implements core.Source. The connection string is not included.
func (p *Postgres) Name() string {
	return "postgres:" + p.table
}

// Load implements core.Source.
func (p *Postgres) Load(ctx context.Context) (core.Table, error) {
	pool, err := pgxpool.New(ctx, p.url)
	if err != nil {
		return nil, unavailable("connect postgres", err)
	}
	defer pool.Close()

	probe, err := buildProbeQuery(dialectPostgres, p.table)
	if err != nil {
		return nil, unavailable("probe postgres", err)
	}
	rows, err := pool.Query(ctx, probe)
	if err != nil {
		return nil, unavailable("probe postgres", err)
	}
	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, unavailable("probe postgres", err)
	}
	if err := checkColumns(cols); err != nil {
		return nil, err
	}

	query, err := buildSelectQuery(dialectPostgres, p.table)
	if err != nil {
		return nil, unavailable("query postgres", err)
	}

	rows, err = pool.Query(ctx, query)
	if err != nil {
		return nil, unavailable("query postgres", err)
	}
	scanned, err := pgx.CollectRows(rows, pgx.RowToStructByName[sqlRow])
	if err != nil {
		return nil, unavailable("query postgres", err)
	}
	return recordsFromRows(scanned)
}
