package domain

import (
	"time"

	"github.com/google/uuid"
)

// InterviewRow holds the scalar columns of an interview.
type InterviewRow struct {
	ID         uuid.UUID
	OwnerEmail string
	Title      string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TaskRow is a task as written to and returned by the store. ID is uuid.Nil
// for a task that has not been written yet; ClientKey is echoed back so the
// returned row can be matched to its pending task.
type TaskRow struct {
	ID              uuid.UUID
	ClientKey       string
	InterviewID     uuid.UUID
	Title           string
	Prompt          string
	AIBehavior      AIBehavior
	DurationMinutes int
	Requirements    Requirements
	Order           int
}

// IsNew reports whether the store must assign an id.
func (r TaskRow) IsNew() bool {
	return r.ID == uuid.Nil
}

// NewTaskRow strips a task down to its own columns.
func NewTaskRow(interviewID uuid.UUID, t Task) TaskRow {
	row := TaskRow{
		InterviewID:     interviewID,
		Title:           t.Title,
		Prompt:          t.Prompt,
		AIBehavior:      t.AIBehavior.OrDefault(),
		DurationMinutes: t.DurationMinutes,
		Requirements:    t.Requirements,
		Order:           t.Order,
	}
	if id, ok := t.Ref.ID(); ok {
		row.ID = id
	} else {
		row.ClientKey = t.Ref.ClientKey()
	}
	return row
}

// Task converts a persisted row into a task with the given criteria and no
// files.
func (r TaskRow) Task(criteria []Criterion) Task {
	if criteria == nil {
		criteria = []Criterion{}
	}
	return Task{
		Ref:             Persisted(r.ID),
		InterviewID:     r.InterviewID,
		Title:           r.Title,
		Prompt:          r.Prompt,
		AIBehavior:      r.AIBehavior,
		DurationMinutes: r.DurationMinutes,
		Requirements:    r.Requirements,
		Order:           r.Order,
		Files:           []string{},
		Criteria:        criteria,
	}
}

// CriterionRow is a criterion as written to the store. Exactly one of
// InterviewID and TaskID is set, matching Scope.
type CriterionRow struct {
	ID          uuid.UUID
	ClientKey   string
	InterviewID *uuid.UUID
	TaskID      *uuid.UUID
	Name        string
	Description string
	Type        CriterionType
	Scope       Scope
	Position    int
}

// IsNew reports whether the store must assign an id.
func (r CriterionRow) IsNew() bool {
	return r.ID == uuid.Nil
}

// Validate checks the single-owner rule.
func (r CriterionRow) Validate() error {
	switch r.Scope {
	case ScopeGeneral:
		if r.InterviewID == nil || r.TaskID != nil {
			return ErrScopeMismatch
		}
	case ScopeTask:
		if r.TaskID == nil || r.InterviewID != nil {
			return ErrScopeMismatch
		}
	default:
		return ErrScopeMismatch
	}
	if !r.Type.IsValid() {
		return ErrInvalidCriterionType
	}
	return nil
}

// Criterion converts a persisted row into a criterion.
func (r CriterionRow) Criterion() Criterion {
	return Criterion{
		Ref:         Persisted(r.ID),
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		Scope:       r.Scope,
	}
}

func newCriterionRow(c Criterion, position int) CriterionRow {
	row := CriterionRow{
		Name:        c.Name,
		Description: c.Description,
		Type:        c.Type,
		Scope:       c.Scope,
		Position:    position,
	}
	if id, ok := c.Ref.ID(); ok {
		row.ID = id
	} else {
		row.ClientKey = c.Ref.ClientKey()
	}
	return row
}
