package verdict

import (
	"fmt"

	"github.com/grandjury/grandjury-go/pkg/record"
)

// Distribution computes, per inference id, the count of each observed
// vote value. Keys of the inner map are canonical renderings of vote
// values ("true", "0.5", ...). The statistic is independent of any
// expected voter list. Passing inference ids narrows the output; an
// empty filter admits every inference.
func Distribution(records record.Set, inferenceIDs []string) (map[string]map[string]int, error) {
	filter := filterSet(inferenceIDs)

	out := make(map[string]map[string]int)
	for i, rec := range records {
		inf, err := inferenceKey(rec, i)
		if err != nil {
			return nil, err
		}
		if !admitted(filter, inf) {
			continue
		}
		v, ok := rec[record.FieldVote]
		if !ok || v == nil {
			return nil, fmt.Errorf("row %d: missing %s", i, record.FieldVote)
		}
		if out[inf] == nil {
			out[inf] = make(map[string]int)
		}
		out[inf][record.Key(v)]++
	}
	return out, nil
}
