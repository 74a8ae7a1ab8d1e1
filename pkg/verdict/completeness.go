package verdict

import (
	"github.com/grandjury/grandjury-go/pkg/record"
)

// CompletenessOptions narrows completeness-style statistics to a subset
// of inference ids. An empty filter admits every inference observed in
// the records; filtered ids with no votes still appear with value 0.
type CompletenessOptions struct {
	InferenceIDs []string
}

// Completeness computes, per inference id, the fraction of expected
// voters who actually voted: distinct voters present in voterList
// divided by the number of distinct entries in voterList. Voters outside
// voterList are neither completed nor expected. An empty voterList
// yields the 0.0 sentinel for every inference.
func Completeness(records record.Set, voterList []string, opts CompletenessOptions) (map[string]float64, error) {
	expectedSet := distinct(voterList)
	filter := filterSet(opts.InferenceIDs)

	// voters[inference] = set of expected voters who voted on it
	voters := make(map[string]map[string]bool)
	for i, rec := range records {
		inf, err := inferenceKey(rec, i)
		if err != nil {
			return nil, err
		}
		voter, err := voterKey(rec, i)
		if err != nil {
			return nil, err
		}
		if !admitted(filter, inf) {
			continue
		}
		if voters[inf] == nil {
			voters[inf] = make(map[string]bool)
		}
		if expectedSet[voter] {
			voters[inf][voter] = true
		}
	}

	out := make(map[string]float64, len(voters))
	for inf, completed := range voters {
		out[inf] = fraction(len(completed), len(expectedSet))
	}
	// Filtered ids with no votes are reported, not dropped.
	for _, inf := range opts.InferenceIDs {
		if _, ok := out[inf]; !ok {
			out[inf] = 0
		}
	}
	return out, nil
}

// GrossCompleteness computes one global fraction over all records: the
// number of distinct expected voters who voted anywhere, divided by the
// expected population size. Empty voterList yields the 0.0 sentinel.
func GrossCompleteness(records record.Set, voterList []string, opts CompletenessOptions) (float64, error) {
	expectedSet := distinct(voterList)
	filter := filterSet(opts.InferenceIDs)

	completed := make(map[string]bool)
	for i, rec := range records {
		inf, err := inferenceKey(rec, i)
		if err != nil {
			return 0, err
		}
		voter, err := voterKey(rec, i)
		if err != nil {
			return 0, err
		}
		if admitted(filter, inf) && expectedSet[voter] {
			completed[voter] = true
		}
	}

	return fraction(len(completed), len(expectedSet)), nil
}

// PopulationConfidence aggregates completeness across the population as
// the arithmetic mean of the per-inference completeness values. Zero
// observed inferences yield the 0.0 sentinel.
func PopulationConfidence(records record.Set, voterList []string, opts CompletenessOptions) (float64, error) {
	perInference, err := Completeness(records, voterList, opts)
	if err != nil {
		return 0, err
	}
	if len(perInference) == 0 {
		return 0, nil
	}
	var sum float64
	for _, v := range perInference {
		sum += v
	}
	return sum / float64(len(perInference)), nil
}

func distinct(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func fraction(completed, expected int) float64 {
	if expected == 0 {
		return 0
	}
	return float64(completed) / float64(expected)
}
