// Package verdict computes vote-analysis statistics over canonical
// record sets: time histograms, completeness, population confidence,
// majority counts, and per-inference vote distributions.
//
// All functions are pure: they never mutate their input and depend only
// on their arguments. Inputs are expected to have passed schema
// validation for the matching operation; a record that still misses a
// required field is reported as an error, never skipped silently.
//
// Zero-division policy: functions that divide by the size of an expected
// voter population return the 0.0 sentinel when that population is
// empty. The policy is uniform across Completeness, GrossCompleteness,
// and PopulationConfidence.
package verdict

import (
	"fmt"

	"github.com/grandjury/grandjury-go/pkg/record"
)

func inferenceKey(rec record.Record, row int) (string, error) {
	v, ok := rec[record.FieldInferenceID]
	if !ok || v == nil {
		return "", fmt.Errorf("row %d: missing %s", row, record.FieldInferenceID)
	}
	id, ok := record.ID(v)
	if !ok {
		return "", fmt.Errorf("row %d: %s is not an identifier (%T)", row, record.FieldInferenceID, v)
	}
	return id, nil
}

func voterKey(rec record.Record, row int) (string, error) {
	v, ok := rec[record.FieldVoterID]
	if !ok || v == nil {
		return "", fmt.Errorf("row %d: missing %s", row, record.FieldVoterID)
	}
	id, ok := record.ID(v)
	if !ok {
		return "", fmt.Errorf("row %d: %s is not an identifier (%T)", row, record.FieldVoterID, v)
	}
	return id, nil
}

// filterSet builds a membership set from an optional id filter. A nil or
// empty filter admits everything.
func filterSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func admitted(filter map[string]bool, id string) bool {
	return filter == nil || filter[id]
}
