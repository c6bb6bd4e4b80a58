package source

import (
	"context"
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/JonMunkholm/booksdash/internal/core"
)

// Parquet reads the dataset from a columnar snapshot file.
type Parquet struct {
	path string
	mem  memory.Allocator
}

// NewParquet creates a Parquet source for path.
func NewParquet(path string) *Parquet {
	return &Parquet{path: path, mem: memory.DefaultAllocator}
}

// Name implements core.Source.
func (p *Parquet) Name() string {
	return "parquet:" + p.path
}

// Load implements core.Source.
func (p *Parquet) Load(ctx context.Context) (core.Table, error) {
	rdr, err := file.OpenParquetFile(p.path, false)
	if err != nil {
		return nil, unavailable("open parquet", err)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{Parallel: true, BatchSize: 64 * 1024}, p.mem)
	if err != nil {
		return nil, unavailable("open parquet", err)
	}

	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, unavailable("read parquet", err)
	}
	defer tbl.Release()

	return recordsFromTable(tbl)
}

// recordsFromTable converts an Arrow table into records. Nulls in numeric
// columns become the missing sentinel (0 or NaN); nulls in text columns
// become the empty string.
func recordsFromTable(tbl arrow.Table) (core.Table, error) {
	names := make([]string, tbl.NumCols())
	for i := range names {
		names[i] = tbl.Schema().Field(i).Name
	}
	idx, err := indexColumns(names)
	if err != nil {
		return nil, err
	}

	n := int(tbl.NumRows())
	out := make(core.Table, n)
	for i := range out {
		out[i].Age = math.NaN()
	}

	for _, col := range core.Columns {
		column := tbl.Column(idx[col])
		row := 0
		for _, chunk := range column.Data().Chunks() {
			if err := fillColumn(out[row:row+chunk.Len()], col, chunk); err != nil {
				return nil, err
			}
			row += chunk.Len()
		}
	}
	return out, nil
}

func fillColumn(rows []core.Record, col string, arr arrow.Array) error {
	switch col {
	case core.ColCountry:
		return eachString(arr, func(i int, v string) { rows[i].Country = v })
	case core.ColBookTitle:
		return eachString(arr, func(i int, v string) { rows[i].BookTitle = v })
	case core.ColBookAuthor:
		return eachString(arr, func(i int, v string) { rows[i].BookAuthor = v })
	case core.ColBookRating:
		return eachInt(arr, col, func(i, v int) { rows[i].BookRating = v })
	case core.ColYearOfPublication:
		return eachInt(arr, col, func(i, v int) { rows[i].YearOfPublication = v })
	case core.ColAge:
		return eachFloat(arr, col, func(i int, v float64) { rows[i].Age = v })
	}
	return nil
}

func eachString(arr arrow.Array, set func(int, string)) error {
	switch a := arr.(type) {
	case *array.String:
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				set(i, a.Value(i))
			}
		}
	case *array.LargeString:
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				set(i, a.Value(i))
			}
		}
	case *array.Dictionary:
		dict, ok := a.Dictionary().(*array.String)
		if !ok {
			return fmt.Errorf("%w: %w: dictionary of %s", core.ErrDataUnavailable, core.ErrCorruptRow, a.Dictionary().DataType())
		}
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				set(i, dict.Value(a.GetValueIndex(i)))
			}
		}
	default:
		return fmt.Errorf("%w: %w: text column has type %s", core.ErrDataUnavailable, core.ErrCorruptRow, arr.DataType())
	}
	return nil
}

func eachInt(arr arrow.Array, col string, set func(int, int)) error {
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			continue
		}
		v, ok := numericValue(arr, i)
		if !ok {
			return fmt.Errorf("%w: %w: %s has type %s", core.ErrDataUnavailable, core.ErrCorruptRow, col, arr.DataType())
		}
		if math.IsNaN(v) {
			continue
		}
		if v != math.Trunc(v) {
			return corruptRow(i, "%s value %v is not a whole number", col, v)
		}
		set(i, int(v))
	}
	return nil
}

func eachFloat(arr arrow.Array, col string, set func(int, float64)) error {
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			continue
		}
		v, ok := numericValue(arr, i)
		if !ok {
			return fmt.Errorf("%w: %w: %s has type %s", core.ErrDataUnavailable, core.ErrCorruptRow, col, arr.DataType())
		}
		set(i, v)
	}
	return nil
}

// numericValue reads element i of any integer or floating point array.
func numericValue(arr arrow.Array, i int) (float64, bool) {
	switch a := arr.(type) {
	case *array.Int64:
		return float64(a.Value(i)), true
	case *array.Int32:
		return float64(a.Value(i)), true
	case *array.Int16:
		return float64(a.Value(i)), true
	case *array.Int8:
		return float64(a.Value(i)), true
	case *array.Uint64:
		return float64(a.Value(i)), true
	case *array.Uint32:
		return float64(a.Value(i)), true
	case *array.Uint16:
		return float64(a.Value(i)), true
	case *array.Uint8:
		return float64(a.Value(i)), true
	case *array.Float64:
		return a.Value(i), true
	case *array.Float32:
		return float64(a.Value(i)), true
	}
	return 0, false
}
