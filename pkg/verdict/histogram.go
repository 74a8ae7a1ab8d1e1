package verdict

import (
	"fmt"
	"time"

	"github.com/grandjury/grandjury-go/pkg/record"
)

// BucketMinutesDefault is the histogram bucket width used when the
// caller does not choose one.
const BucketMinutesDefault = 60

// HistogramOptions configures Histogram.
type HistogramOptions struct {
	// BucketMinutes is the bucket width in minutes. Values <= 0 fall
	// back to BucketMinutesDefault.
	BucketMinutes int
}

// Histogram buckets votes by their vote_time. Buckets are half-open
// [start, end) intervals of fixed width, aligned to absolute multiples
// of the width; a vote exactly on a boundary belongs to
// the bucket it opens. Keys are the RFC-3339 UTC bucket starts. Because
// the observed time range is bounded, every bucket between the first
// and last observed vote is present, zero-filled when empty.
//
// An empty input yields an empty, non-nil map. The sum of all counts
// always equals the number of input records.
func Histogram(records record.Set, opts HistogramOptions) (map[string]int, error) {
	minutes := opts.BucketMinutes
	if minutes <= 0 {
		minutes = BucketMinutesDefault
	}
	width := time.Duration(minutes) * time.Minute

	out := make(map[string]int)
	if len(records) == 0 {
		return out, nil
	}

	var first, last time.Time
	buckets := make([]time.Time, 0, len(records))
	for i, rec := range records {
		v, ok := rec[record.FieldVoteTime]
		if !ok || v == nil {
			return nil, fmt.Errorf("row %d: missing %s", i, record.FieldVoteTime)
		}
		ts, ok := record.Time(v)
		if !ok {
			return nil, fmt.Errorf("row %d: %s is not a timestamp (%T)", i, record.FieldVoteTime, v)
		}
		b := ts.UTC().Truncate(width)
		buckets = append(buckets, b)
		if i == 0 || b.Before(first) {
			first = b
		}
		if i == 0 || b.After(last) {
			last = b
		}
	}

	for b := first; !b.After(last); b = b.Add(width) {
		out[b.Format(time.RFC3339)] = 0
	}
	for _, b := range buckets {
		out[b.Format(time.RFC3339)]++
	}

	return out, nil
}
