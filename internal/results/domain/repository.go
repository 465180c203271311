package domain

import (
	"context"

	"github.com/google/uuid"

	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

// Repository defines the persistence operations for candidates.
type Repository interface {
	// Save inserts or updates the candidate, upserts its scores and inserts
	// notes not stored yet.
	Save(ctx context.Context, candidate *Candidate) error

	// FindByID loads a candidate of the given interview.
	FindByID(ctx context.Context, id, interviewID uuid.UUID) (*Candidate, error)

	// FindByInterview loads every candidate of an interview, in invitation order.
	FindByInterview(ctx context.Context, interviewID uuid.UUID) ([]*Candidate, error)

	// ExistsByEmail reports whether the email is already invited to the interview.
	ExistsByEmail(ctx context.Context, interviewID uuid.UUID, email string) (bool, error)

	// StatsFor counts invited, completed and graded candidates per interview.
	StatsFor(ctx context.Context, interviewIDs []uuid.UUID) (map[uuid.UUID]interviews.Stats, error)
}
