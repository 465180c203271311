package domain

import (
	"math"

	"github.com/google/uuid"

	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

// Score bounds for numeric criteria.
const (
	MinNumericScore = 0.0
	MaxNumericScore = 5.0
)

// Score is a candidate's value on one criterion. Name and type are read from
// the criterion.
type Score struct {
	CriterionID   uuid.UUID
	CriterionName string
	Type          interviews.CriterionType
	Value         float64
}

// NewScore validates value against the criterion type.
func NewScore(criterion interviews.Criterion, value float64) (Score, error) {
	id, ok := criterion.Ref.ID()
	if !ok {
		return Score{}, ErrCriterionNotInInterview
	}
	if !criterion.Type.Scorable() {
		return Score{}, ErrNotScorable
	}
	if math.IsNaN(value) {
		return Score{}, ErrScoreOutOfRange
	}

	switch criterion.Type {
	case interviews.CriterionNumeric:
		if value < MinNumericScore || value > MaxNumericScore {
			return Score{}, ErrScoreOutOfRange
		}
	case interviews.CriterionBoolean:
		if value != 0 && value != 1 {
			return Score{}, ErrScoreOutOfRange
		}
	}

	return Score{
		CriterionID:   id,
		CriterionName: criterion.Name,
		Type:          criterion.Type,
		Value:         value,
	}, nil
}

// Passed reports a boolean score as a bool.
func (s Score) Passed() bool {
	return s.Type == interviews.CriterionBoolean && s.Value == 1
}
