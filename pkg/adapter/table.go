package adapter

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/go-gota/gota/dataframe"

	"github.com/grandjury/grandjury-go/pkg/record"
)

// FromDataFrame converts a gota dataframe to canonical records,
// preserving row order and column types.
func FromDataFrame(df dataframe.DataFrame) (record.Set, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("dataframe: %w", df.Err)
	}
	rows := df.Maps()
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

// FromArrow converts an Arrow record batch to canonical records. The
// declared column types decide the canonical scalar: Arrow integers
// become int64, floats become float64, timestamps become time.Time.
// Row-major iteration over the column-major storage keeps row order.
func FromArrow(rec arrow.Record) (record.Set, error) {
	schema := rec.Schema()
	cols := rec.Columns()
	n := int(rec.NumRows())

	out := make(record.Set, 0, n)
	for i := 0; i < n; i++ {
		r := make(record.Record, len(cols))
		for j, col := range cols {
			name := schema.Field(j).Name
			v, err := arrowValue(col, i)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", name, err)
			}
			r[name] = v
		}
		out = append(out, r)
	}
	return out, nil
}

func arrowValue(col arrow.Array, i int) (any, error) {
	if col.IsNull(i) {
		return nil, nil
	}
	switch a := col.(type) {
	case *array.Boolean:
		return a.Value(i), nil
	case *array.Int8:
		return int64(a.Value(i)), nil
	case *array.Int16:
		return int64(a.Value(i)), nil
	case *array.Int32:
		return int64(a.Value(i)), nil
	case *array.Int64:
		return a.Value(i), nil
	case *array.Uint8:
		return int64(a.Value(i)), nil
	case *array.Uint16:
		return int64(a.Value(i)), nil
	case *array.Uint32:
		return int64(a.Value(i)), nil
	case *array.Float32:
		return float64(a.Value(i)), nil
	case *array.Float64:
		return a.Value(i), nil
	case *array.String:
		return a.Value(i), nil
	case *array.LargeString:
		return a.Value(i), nil
	case *array.Timestamp:
		tt, ok := a.DataType().(*arrow.TimestampType)
		if !ok {
			return nil, fmt.Errorf("timestamp column with unexpected type %s", a.DataType())
		}
		return a.Value(i).ToTime(tt.Unit).UTC(), nil
	case *array.Date32:
		return a.Value(i).ToTime().UTC(), nil
	default:
		return nil, fmt.Errorf("unsupported column type %s", col.DataType())
	}
}
