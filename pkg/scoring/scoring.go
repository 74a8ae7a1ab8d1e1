// Package scoring computes decay-adjusted model-evaluation scores from a
// previous score, a sequence of votes, and a positionally aligned
// sequence of per-voter reputations.
//
// The update is a convex combination:
//
//	new = decay*previous + (1-decay)*weightedMean(votes, reputations)
//
// so a result stays in [0,1] whenever the previous score and every vote
// are in [0,1]. Out-of-range inputs pass through arithmetically.
package scoring

import (
	"errors"
	"fmt"
)

// DecayDefault is the weight given to the previous score when the caller
// does not choose one.
const DecayDefault = 0.5

var (
	// ErrLengthMismatch is returned when votes and reputations are not
	// positionally aligned.
	ErrLengthMismatch = errors.New("votes and reputations must have equal length")

	// ErrDecayOutOfRange is returned when the decay parameter is outside
	// [0,1].
	ErrDecayOutOfRange = errors.New("decay must be in [0,1]")
)

// NegativeReputationError reports a reputation below zero. Reputations
// are weights and are never silently clamped.
type NegativeReputationError struct {
	Index int
	Value float64
}

func (e *NegativeReputationError) Error() string {
	return fmt.Sprintf("negative reputation %v at index %d", e.Value, e.Index)
}

// Params configures one scoring call.
type Params struct {
	// Decay is the weight of the previous score, in [0,1]. 0 means the
	// new evidence fully replaces the previous score, 1 means the
	// previous score is kept unchanged.
	Decay float64
}

// Score computes the updated score. Votes and reputations are joined by
// position, not by voter id; the caller aligns the two sequences.
//
// When the total reputation is zero (empty votes, or all weights zero)
// the weighted mean is undefined and the previous score is returned
// unchanged.
func Score(previous float64, votes, reputations []float64, p Params) (float64, error) {
	if p.Decay < 0 || p.Decay > 1 {
		return 0, ErrDecayOutOfRange
	}
	if len(votes) != len(reputations) {
		return 0, fmt.Errorf("%w: %d votes, %d reputations", ErrLengthMismatch, len(votes), len(reputations))
	}

	mean, total, err := weightedMean(votes, reputations)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return previous, nil
	}

	return p.Decay*previous + (1-p.Decay)*mean, nil
}

// WeightedMean returns the reputation-weighted average of votes, or an
// error when the sequences are misaligned or a reputation is negative.
// ok is false when the total reputation is zero.
func WeightedMean(votes, reputations []float64) (mean float64, ok bool, err error) {
	if len(votes) != len(reputations) {
		return 0, false, fmt.Errorf("%w: %d votes, %d reputations", ErrLengthMismatch, len(votes), len(reputations))
	}
	m, total, err := weightedMean(votes, reputations)
	if err != nil {
		return 0, false, err
	}
	return m, total != 0, nil
}

func weightedMean(votes, reputations []float64) (mean, total float64, err error) {
	var sum float64
	for i, rep := range reputations {
		if rep < 0 {
			return 0, 0, &NegativeReputationError{Index: i, Value: rep}
		}
		sum += votes[i] * rep
		total += rep
	}
	if total == 0 {
		return 0, 0, nil
	}
	return sum / total, total, nil
}
