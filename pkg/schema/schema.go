// Package schema validates canonical record sets against the field
// contract of a requested operation. Violations are collected across the
// whole set and reported together with row index and field name.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/grandjury/grandjury-go/pkg/record"
)

// Operation names with a declared field contract.
const (
	OpVoteHistogram        = "vote_histogram"
	OpVoteCompleteness     = "vote_completeness"
	OpPopulationConfidence = "population_confidence"
	OpMajorityGoodVotes    = "majority_good_votes"
	OpVotesDistribution    = "votes_distribution"
)

// FieldType is the logical type a required field must hold.
type FieldType int

const (
	// TypeBool requires a native boolean.
	TypeBool FieldType = iota
	// TypeNumber requires an int64 or float64.
	TypeNumber
	// TypeID requires an identifier: a non-empty string or a number.
	TypeID
	// TypeTime requires a timestamp.
	TypeTime
	// TypeVote requires a boolean or a number in [0,1].
	TypeVote
)

func (t FieldType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeNumber:
		return "number"
	case TypeID:
		return "identifier"
	case TypeTime:
		return "timestamp"
	case TypeVote:
		return "vote"
	default:
		return "unknown"
	}
}

var contracts = map[string]map[string]FieldType{
	OpVoteHistogram: {
		record.FieldVoteTime: TypeTime,
	},
	OpVoteCompleteness: {
		record.FieldInferenceID: TypeID,
		record.FieldVoterID:     TypeID,
	},
	OpPopulationConfidence: {
		record.FieldInferenceID: TypeID,
		record.FieldVoterID:     TypeID,
	},
	OpMajorityGoodVotes: {
		record.FieldInferenceID: TypeID,
		record.FieldVote:        TypeVote,
	},
	OpVotesDistribution: {
		record.FieldInferenceID: TypeID,
		record.FieldVote:        TypeVote,
	},
}

// Contract returns the required fields for a known operation.
func Contract(op string) (map[string]FieldType, error) {
	c, ok := contracts[op]
	if !ok {
		return nil, fmt.Errorf("unknown operation: %s", op)
	}
	out := make(map[string]FieldType, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out, nil
}

// Violation points at one offending field of one row.
type Violation struct {
	Row    int    `json:"row" yaml:"row"`
	Field  string `json:"field" yaml:"field"`
	Reason string `json:"reason" yaml:"reason"`
}

// ValidationError aggregates every violation found in a record set.
type ValidationError struct {
	Op         string      `json:"op" yaml:"op"`
	Violations []Violation `json:"violations" yaml:"violations"`
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d validation violation(s)", e.Op, len(e.Violations))
	limit := len(e.Violations)
	if limit > 5 {
		limit = 5
	}
	for _, v := range e.Violations[:limit] {
		fmt.Fprintf(&b, "; row %d field %q: %s", v.Row, v.Field, v.Reason)
	}
	if len(e.Violations) > limit {
		fmt.Fprintf(&b, "; and %d more", len(e.Violations)-limit)
	}
	return b.String()
}

// Validate checks every record against the operation's contract. All
// violations are collected before reporting. An empty set is valid.
func Validate(op string, records record.Set) error {
	contract, err := Contract(op)
	if err != nil {
		return err
	}
	return ValidateFields(op, records, contract)
}

// ValidateFields checks records against an explicit field contract.
func ValidateFields(op string, records record.Set, required map[string]FieldType) error {
	fields := make([]string, 0, len(required))
	for f := range required {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var violations []Violation
	for i, rec := range records {
		for _, f := range fields {
			v, ok := rec[f]
			if !ok {
				violations = append(violations, Violation{Row: i, Field: f, Reason: "missing"})
				continue
			}
			if v == nil {
				violations = append(violations, Violation{Row: i, Field: f, Reason: "null"})
				continue
			}
			if reason := checkType(v, required[f]); reason != "" {
				violations = append(violations, Violation{Row: i, Field: f, Reason: reason})
			}
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Op: op, Violations: violations}
	}
	return nil
}

func checkType(v any, ft FieldType) string {
	switch ft {
	case TypeBool:
		if _, ok := record.Bool(v); !ok {
			return fmt.Sprintf("expected bool, got %T", v)
		}
	case TypeNumber:
		if _, ok := record.Number(v); !ok {
			return fmt.Sprintf("expected number, got %T", v)
		}
	case TypeID:
		if _, ok := record.ID(v); !ok {
			return fmt.Sprintf("expected identifier, got %T", v)
		}
	case TypeTime:
		if _, ok := record.Time(v); !ok {
			return fmt.Sprintf("expected timestamp, got %T", v)
		}
	case TypeVote:
		if _, ok := record.Bool(v); ok {
			return ""
		}
		n, ok := record.Number(v)
		if !ok {
			return fmt.Sprintf("expected bool or number, got %T", v)
		}
		if n < 0 || n > 1 {
			return fmt.Sprintf("vote %v outside [0,1]", n)
		}
	}
	return ""
}
