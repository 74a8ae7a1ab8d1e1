// Package adapter converts every supported input representation into the
// canonical record set. Supported variants form a closed set, resolved
// by a single dispatch point:
//
//   - ordered row maps ([]map[string]any, map[string]any, record.Set)
//   - gota dataframes (dataframe.DataFrame)
//   - Arrow records (arrow.Record)
//   - delimited-text files (*.csv, header row required)
//   - columnar binary files (*.parquet, *.pq)
//
// Row order of the source is always preserved. Columnar file reading is
// an injectable strategy; the built-in Parquet reader is the
// always-available reference implementation, and substituting another
// reader may change speed but never output.
package adapter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/go-gota/gota/dataframe"

	"github.com/grandjury/grandjury-go/pkg/record"
)

// ErrUnsupportedFormat is returned when the input is not one of the
// recognized variants.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// ParseError reports structurally malformed file content.
type ParseError struct {
	Path string
	Row  int // 1-based data row where known, 0 for structural errors
	Err  error
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("parsing %s: row %d: %v", e.Path, e.Row, e.Err)
	}
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ColumnarReader reads a columnar binary file into a canonical record
// set. Implementations must produce identical output for identical
// files; only performance may differ.
type ColumnarReader interface {
	ReadColumnar(path string) (record.Set, error)
}

// Adapter holds the resolved strategies for one process. The zero-value
// defaults are always functional.
type Adapter struct {
	columnar ColumnarReader
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithColumnarReader substitutes the columnar-file reading strategy.
func WithColumnarReader(r ColumnarReader) Option {
	return func(a *Adapter) {
		if r != nil {
			a.columnar = r
		}
	}
}

// New creates an Adapter with the reference strategies, then applies
// options.
func New(opts ...Option) *Adapter {
	a := &Adapter{columnar: parquetReader{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultAdapter = New()

// Adapt converts any supported input into a canonical record set using
// the default adapter.
func Adapt(input any) (record.Set, error) {
	return defaultAdapter.Adapt(input)
}

// FromFile reads a data file with the default adapter.
func FromFile(path string) (record.Set, error) {
	return defaultAdapter.FromFile(path)
}

// Adapt resolves the input variant once and converts it. Unrecognized
// inputs fail with ErrUnsupportedFormat.
func (a *Adapter) Adapt(input any) (record.Set, error) {
	switch in := input.(type) {
	case record.Set:
		return FromRecords(in)
	case []record.Record:
		return FromRecords(in)
	case []map[string]any:
		rows := make([]record.Record, len(in))
		for i, r := range in {
			rows[i] = record.Record(r)
		}
		return FromRecords(rows)
	case map[string]any:
		return FromRecords([]record.Record{record.Record(in)})
	case dataframe.DataFrame:
		return FromDataFrame(in)
	case *dataframe.DataFrame:
		return FromDataFrame(*in)
	case arrow.Record:
		return FromArrow(in)
	case string:
		return a.FromFile(in)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedFormat, input)
	}
}

// FromFile dispatches a path by extension: delimited text (.csv) or
// columnar binary (.parquet, .pq).
func (a *Adapter) FromFile(path string) (record.Set, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".parquet", ".pq":
		return a.columnar.ReadColumnar(path)
	default:
		return nil, fmt.Errorf("%w: file extension %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// FromRecords normalizes an in-memory row sequence. Values must already
// be scalars; text truthy/falsy coercion applies only to text-based
// sources, never here.
func FromRecords(rows []record.Record) (record.Set, error) {
	out := make(record.Set, 0, len(rows))
	for i, row := range rows {
		rec, err := record.NormalizeRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
