package verdict

import (
	"fmt"

	"github.com/grandjury/grandjury-go/pkg/record"
)

// ThresholdDefault is the majority threshold used when the caller does
// not choose one.
const ThresholdDefault = 0.5

// MajorityGoodVotes reports, per inference id, whether the fraction of
// votes equal to goodVote meets or exceeds threshold. The boundary is
// inclusive: exactly 2 matching votes out of 4 at threshold 0.5 is a
// majority. goodVote may be a boolean, a number, or a string and is
// compared by value (1 matches 1.0).
func MajorityGoodVotes(records record.Set, goodVote any, threshold float64) (map[string]bool, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %v outside [0,1]", threshold)
	}
	good, err := record.Normalize(goodVote)
	if err != nil {
		return nil, fmt.Errorf("good vote: %w", err)
	}

	total := make(map[string]int)
	matching := make(map[string]int)
	for i, rec := range records {
		inf, err := inferenceKey(rec, i)
		if err != nil {
			return nil, err
		}
		v, ok := rec[record.FieldVote]
		if !ok || v == nil {
			return nil, fmt.Errorf("row %d: missing %s", i, record.FieldVote)
		}
		total[inf]++
		if record.Equal(v, good) {
			matching[inf]++
		}
	}

	out := make(map[string]bool, len(total))
	for inf, n := range total {
		out[inf] = float64(matching[inf])/float64(n) >= threshold
	}
	return out, nil
}

// MajorityGoodCount returns how many inference ids carry a majority of
// good votes, matching the count-shaped response of the remote service.
func MajorityGoodCount(records record.Set, goodVote any, threshold float64) (int, error) {
	majorities, err := MajorityGoodVotes(records, goodVote, threshold)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, isMajority := range majorities {
		if isMajority {
			n++
		}
	}
	return n, nil
}
