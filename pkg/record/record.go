// Package record defines the canonical in-memory representation that all
// supported input formats are adapted into: an ordered sequence of rows,
// each mapping a field name to a scalar value.
//
// Allowed scalar types are bool, int64, float64, string, and time.Time.
// A nil value marks a field that was present but empty in the source.
package record

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// Well-known field names shared by the verdict and scoring operations.
const (
	FieldVote        = "vote"
	FieldVoterID     = "voter_id"
	FieldVoteTime    = "vote_time"
	FieldInferenceID = "inference_id"
)

// Record is one canonical row.
type Record map[string]any

// Set is an ordered sequence of records. Order is the row order of the
// source and is preserved through adaptation.
type Set []Record

// Fields returns the sorted union of field names across the set.
func (s Set) Fields() []string {
	seen := make(map[string]bool)
	for _, r := range s {
		for k := range r {
			seen[k] = true
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Normalize coerces a source value to one of the canonical scalar types.
// Integers of any width become int64, floats become float64. Values that
// are not representable as a canonical scalar return an error.
func Normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool, int64, float64, string, time.Time:
		return t, nil
	case int:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint:
		return int64(t), nil
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return nil, fmt.Errorf("uint64 value %d overflows int64", t)
		}
		return int64(t), nil
	case float32:
		return float64(t), nil
	default:
		return nil, fmt.Errorf("unsupported scalar type %T", v)
	}
}

// NormalizeRecord applies Normalize to every value of a source row.
func NormalizeRecord(row map[string]any) (Record, error) {
	rec := make(Record, len(row))
	for k, v := range row {
		nv, err := Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		rec[k] = nv
	}
	return rec, nil
}

// ID normalizes an identifier value to a string grouping key. Mixed
// representations of the same logical id (101 vs "101") collapse to the
// same key. Booleans, timestamps, and nil are not identifiers.
func ID(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'g', -1, 64), true
	default:
		return "", false
	}
}

// Number extracts a float64 from a numeric value.
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

// Bool extracts a native boolean. Truthy text encodings are resolved by
// the format adapter for text-based sources, not here.
func Bool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// Time extracts a timestamp value.
func Time(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}

// Key renders a vote value as its canonical map key for distributions.
func Key(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Equal compares two canonical scalars by value. Numeric values compare
// across int64/float64, so 1 equals 1.0.
func Equal(a, b any) bool {
	if an, aok := Number(a); aok {
		if bn, bok := Number(b); bok {
			return an == bn
		}
		return false
	}
	switch at := a.(type) {
	case bool:
		bt, ok := b.(bool)
		return ok && at == bt
	case string:
		bt, ok := b.(string)
		return ok && at == bt
	case time.Time:
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	case nil:
		return b == nil
	default:
		return false
	}
}
