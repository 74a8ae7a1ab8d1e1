package adapter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/grandjury/grandjury-go/pkg/record"
)

// parquetReader is the reference ColumnarReader. Flat schemas only:
// nested groups have no canonical scalar representation.
type parquetReader struct{}

func (parquetReader) ReadColumnar(path string) (record.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	fields := pf.Schema().Fields()
	names := make([]string, len(fields))
	for i, fld := range fields {
		if !fld.Leaf() {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("nested column %q not supported", fld.Name())}
		}
		names[i] = fld.Name()
	}

	out := make(record.Set, 0)
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		if err := readRowGroup(rows, fields, names, &out, path); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return out, nil
}

func readRowGroup(rows parquet.Rows, fields []parquet.Field, names []string, out *record.Set, path string) error {
	buf := make([]parquet.Row, 64)
	for {
		n, err := rows.ReadRows(buf)
		for _, prow := range buf[:n] {
			rec := make(record.Record, len(names))
			for _, pv := range prow {
				col := pv.Column()
				if col < 0 || col >= len(names) {
					return &ParseError{Path: path, Row: len(*out) + 1, Err: fmt.Errorf("value for unknown column %d", col)}
				}
				v, convErr := parquetValue(pv, fields[col])
				if convErr != nil {
					return &ParseError{Path: path, Row: len(*out) + 1, Err: fmt.Errorf("column %q: %w", names[col], convErr)}
				}
				rec[names[col]] = v
			}
			*out = append(*out, rec)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return &ParseError{Path: path, Row: len(*out) + 1, Err: err}
		}
	}
}

func parquetValue(v parquet.Value, field parquet.Field) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean(), nil
	case parquet.Int32:
		return int64(v.Int32()), nil
	case parquet.Int64:
		if ts, ok := parquetTimestamp(v.Int64(), field); ok {
			return ts, nil
		}
		return v.Int64(), nil
	case parquet.Float:
		return float64(v.Float()), nil
	case parquet.Double:
		return v.Double(), nil
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return v.String(), nil
	default:
		return nil, fmt.Errorf("unsupported physical type %s", v.Kind())
	}
}

// parquetTimestamp converts an int64 carrying a TIMESTAMP logical type
// into the canonical timestamp representation.
func parquetTimestamp(n int64, field parquet.Field) (time.Time, bool) {
	lt := field.Type().LogicalType()
	if lt == nil || lt.Timestamp == nil {
		return time.Time{}, false
	}
	unit := lt.Timestamp.Unit
	switch {
	case unit.Millis != nil:
		return time.UnixMilli(n).UTC(), true
	case unit.Micros != nil:
		return time.UnixMicro(n).UTC(), true
	default:
		return time.Unix(0, n).UTC(), true
	}
}
