package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the store boundary for interviews. Implementations honor
// the transaction carried in ctx.
type Repository interface {
	// Create inserts the interview row. Tasks and criteria are written
	// through UpsertTasks and UpsertCriteria.
	Create(ctx context.Context, interview *Interview) error

	// FindByID loads an interview with tasks ordered by task_order, their
	// criteria and the general criteria.
	FindByID(ctx context.Context, id uuid.UUID, ownerEmail string) (*Interview, error)

	// FindByOwner loads every interview of an owner, newest first.
	FindByOwner(ctx context.Context, ownerEmail string) ([]*Interview, error)

	// Delete removes an interview; tasks and criteria cascade.
	Delete(ctx context.Context, id uuid.UUID, ownerEmail string) error

	// UpdateInterview updates title, status and updated_at keyed by id and
	// returns the stored row. row.UpdatedAt is the updated_at the caller
	// loaded; when the stored value differs it returns ErrStaleInterview.
	UpdateInterview(ctx context.Context, row InterviewRow) (InterviewRow, error)

	// DeleteTasks deletes tasks of one interview by id; their criteria cascade.
	DeleteTasks(ctx context.Context, interviewID uuid.UUID, ids []uuid.UUID) error

	// UpsertTasks inserts rows without id and updates the others. It returns
	// one row per input, in input order, echoing ClientKey.
	UpsertTasks(ctx context.Context, rows []TaskRow) ([]TaskRow, error)

	// DeleteCriteria deletes criteria of one interview by id, whether general
	// or owned by one of its tasks.
	DeleteCriteria(ctx context.Context, interviewID uuid.UUID, ids []uuid.UUID) error

	// UpsertCriteria behaves like UpsertTasks for criteria. An update never
	// moves a criterion to another interview.
	UpsertCriteria(ctx context.Context, rows []CriterionRow) ([]CriterionRow, error)
}
