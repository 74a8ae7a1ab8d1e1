package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grandjury/grandjury-go/pkg/record"
)

func vote(inf, voter string) record.Record {
	return record.Record{
		record.FieldInferenceID: inf,
		record.FieldVoterID:     voter,
	}
}

func TestCompleteness_PerInference(t *testing.T) {
	records := record.Set{
		vote("m1", "alice"),
		vote("m1", "bob"),
		vote("m2", "alice"),
	}

	got, err := Completeness(records, []string{"alice", "bob", "carol", "dave"}, CompletenessOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got["m1"], 0.0001)
	assert.InDelta(t, 0.25, got["m2"], 0.0001)
}

func TestCompleteness_Bounds(t *testing.T) {
	// Duplicate votes by the same voter count once; fraction never
	// leaves [0,1].
	records := record.Set{
		vote("m1", "alice"),
		vote("m1", "alice"),
		vote("m1", "bob"),
	}
	got, err := Completeness(records, []string{"alice", "bob"}, CompletenessOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got["m1"])
}

func TestCompleteness_UnexpectedVotersExcluded(t *testing.T) {
	records := record.Set{
		vote("m1", "alice"),
		vote("m1", "mallory"), // not in the expected list
	}
	got, err := Completeness(records, []string{"alice", "bob"}, CompletenessOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got["m1"], 0.0001)
}

func TestCompleteness_EmptyVoterListSentinel(t *testing.T) {
	records := record.Set{vote("m1", "alice")}
	got, err := Completeness(records, nil, CompletenessOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got["m1"])
}

func TestCompleteness_MixedIDRepresentations(t *testing.T) {
	// 101 and "101" group to the same voter key.
	records := record.Set{
		{record.FieldInferenceID: int64(1), record.FieldVoterID: int64(101)},
		{record.FieldInferenceID: "1", record.FieldVoterID: "101"},
	}
	got, err := Completeness(records, []string{"101", "102"}, CompletenessOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.InDelta(t, 0.5, got["1"], 0.0001)
}

func TestCompleteness_Filter(t *testing.T) {
	records := record.Set{
		vote("m1", "alice"),
		vote("m2", "alice"),
	}
	got, err := Completeness(records, []string{"alice"}, CompletenessOptions{InferenceIDs: []string{"m1", "m9"}})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1.0, got["m1"])
	assert.Equal(t, 0.0, got["m9"]) // filtered id with no votes is reported
}

func TestGrossCompleteness(t *testing.T) {
	records := record.Set{
		vote("m1", "alice"),
		vote("m2", "bob"),
		vote("m2", "mallory"),
	}
	got, err := GrossCompleteness(records, []string{"alice", "bob", "carol", "dave"}, CompletenessOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 0.0001)
}

func TestGrossCompleteness_EmptyVoterList(t *testing.T) {
	got, err := GrossCompleteness(record.Set{vote("m1", "a")}, nil, CompletenessOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestPopulationConfidence_MeanOfCompleteness(t *testing.T) {
	records := record.Set{
		vote("m1", "alice"),
		vote("m1", "bob"),
		vote("m2", "alice"),
	}
	got, err := PopulationConfidence(records, []string{"alice", "bob"}, CompletenessOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got, 0.0001) // mean of 1.0 and 0.5
}

func TestPopulationConfidence_Empty(t *testing.T) {
	got, err := PopulationConfidence(record.Set{}, []string{"alice"}, CompletenessOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestCompleteness_MissingVoter(t *testing.T) {
	_, err := Completeness(record.Set{{record.FieldInferenceID: "m1"}}, []string{"a"}, CompletenessOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), record.FieldVoterID)
}
