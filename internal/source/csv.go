package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/booksdash/internal/core"
)

// CSV reads the dataset from a comma-separated export with a header row.
type CSV struct {
	path string
}

// NewCSV creates a CSV source for path.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Name implements core.Source.
func (c *CSV) Name() string {
	return "csv:" + c.path
}

// Load implements core.Source.
func (c *CSV) Load(ctx context.Context) (core.Table, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, unavailable("open csv", err)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	start := time.Now()
	counter := newCountingReader(f, size)
	table, err := ReadCSV(ctx, counter)
	if err != nil {
		return nil, err
	}

	slog.Debug("csv read",
		"path", c.path,
		"bytes", counter.BytesRead,
		"progress", counter.Progress(),
		"rows", len(table),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return table, nil
}

// ReadCSV decodes a dataset from r. A UTF-8 byte order mark is stripped and
// invalid UTF-8 is replaced while streaming. Text cells are kept verbatim so
// country names match the allow-list exactly. Rows with missing fields or
// malformed numbers fail the whole read.
func ReadCSV(ctx context.Context, r io.Reader) (core.Table, error) {
	decoded := transform.NewReader(r, unicode.UTF8BOM.NewDecoder())

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, unavailable("read csv header", errors.New("empty file"))
	}
	if err != nil {
		return nil, unavailable("read csv header", err)
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}
	width := 0
	for _, col := range core.Columns {
		width = max(width, idx[col]+1)
	}

	table := make(core.Table, 0, 1024)
	for line := 2; ; line++ {
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, unavailable("read csv", err)
			}
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, corruptRow(line, "%v", err)
		}
		if len(row) < width {
			return nil, corruptRow(line, "%d fields, want at least %d", len(row), width)
		}

		rec, err := csvRecord(row, idx)
		if err != nil {
			return nil, corruptRow(line, "%v", err)
		}
		table = append(table, rec)
	}
	return table, nil
}

func csvRecord(row []string, idx columnIndex) (core.Record, error) {
	rating, ok := ParseSentinelInt(row[idx[core.ColBookRating]])
	if !ok {
		return core.Record{}, fmt.Errorf("invalid %s %q", core.ColBookRating, row[idx[core.ColBookRating]])
	}
	year, ok := ParseSentinelInt(row[idx[core.ColYearOfPublication]])
	if !ok {
		return core.Record{}, fmt.Errorf("invalid %s %q", core.ColYearOfPublication, row[idx[core.ColYearOfPublication]])
	}
	age, ok := ParseAge(row[idx[core.ColAge]])
	if !ok {
		return core.Record{}, fmt.Errorf("invalid %s %q", core.ColAge, row[idx[core.ColAge]])
	}
	return core.Record{
		Country:           row[idx[core.ColCountry]],
		BookTitle:         row[idx[core.ColBookTitle]],
		BookAuthor:        row[idx[core.ColBookAuthor]],
		BookRating:        rating,
		YearOfPublication: year,
		Age:               age,
	}, nil
}

// countingReader wraps an io.Reader to track bytes read.
type countingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // 0 if unknown
}

func newCountingReader(r io.Reader, total int64) *countingReader {
	return &countingReader{reader: r, Total: total}
}

// Read implements io.Reader.
func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns the read progress as a percentage (0-100).
// Returns 0 if total is unknown.
func (r *countingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	return int(r.BytesRead * 100 / r.Total)
}
