package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Loader reads a source once and hands out the same table on every call.
// The hosting application owns the Loader; there is no package-level cache.
type Loader struct {
	source Source

	once  sync.Once
	table Table
	err   error
}

// NewLoader creates a Loader over src.
func NewLoader(src Source) *Loader {
	return &Loader{source: src}
}

// Load returns the dataset, reading the source on the first call only.
// A failed first read is also memoized; the error wraps ErrDataUnavailable.
func (l *Loader) Load(ctx context.Context) (Table, error) {
	l.once.Do(func() {
		start := time.Now()
		table, err := l.source.Load(ctx)
		if err != nil {
			if !errors.Is(err, ErrDataUnavailable) {
				err = fmt.Errorf("%w: %w", ErrDataUnavailable, err)
			}
			l.err = fmt.Errorf("load %s: %w", l.source.Name(), err)
			return
		}
		l.table = table
		slog.Info("dataset loaded",
			"source", l.source.Name(),
			"rows", len(table),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
	return l.table, l.err
}

// Dataset is the immutable, once-initialized working dataset shared by all
// requests. Tables returned by its methods must be treated as read-only.
type Dataset struct {
	ID       uuid.UUID
	Source   string
	LoadedAt time.Time

	rawRows int
	working Table
}

// NewDataset enriches and restricts raw into the working dataset.
func NewDataset(source string, raw Table, lookup CountryLookup) *Dataset {
	working := Restrict(Enrich(raw, lookup))

	ds := &Dataset{
		ID:       uuid.New(),
		Source:   source,
		LoadedAt: time.Now().UTC(),
		rawRows:  len(raw),
		working:  working,
	}

	slog.Info("working dataset ready",
		"dataset_id", ds.ID.String(),
		"raw_rows", ds.rawRows,
		"working_rows", len(working),
		"countries", len(working.Countries()),
	)
	return ds
}

// Working returns the working dataset.
func (d *Dataset) Working() Table {
	return d.working
}

// RawRows returns the number of rows read from the source.
func (d *Dataset) RawRows() int {
	return d.rawRows
}

// Render builds the views for sel over the working dataset.
func (d *Dataset) Render(sel Selection) ViewSet {
	return Render(sel, d.working)
}
