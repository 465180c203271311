package domain

import "github.com/google/uuid"

// DefaultTaskTitle is the title given to new tasks.
const DefaultTaskTitle = "New Task"

// Task is one ordered step of an interview.
type Task struct {
	Ref             Ref
	InterviewID     uuid.UUID
	Title           string
	Prompt          string
	AIBehavior      AIBehavior
	DurationMinutes int
	Requirements    Requirements
	Order           int
	Files           []string // supporting file references, never persisted
	Criteria        []Criterion
}

// NewTask creates a pending task with the editor defaults.
func NewTask(interviewID uuid.UUID, order int) Task {
	return Task{
		Ref:          NewPendingRef(),
		InterviewID:  interviewID,
		Title:        DefaultTaskTitle,
		AIBehavior:   AIBehaviorNeutral,
		Requirements: Requirements{Audio: true},
		Order:        order,
		Files:        []string{},
		Criteria:     []Criterion{},
	}
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.Files != nil {
		out.Files = append([]string(nil), t.Files...)
	}
	out.Criteria = cloneCriteria(t.Criteria)
	return out
}

// Validate checks scalar fields and task-scoped criteria.
func (t Task) Validate() error {
	if t.Ref.IsZero() {
		return ErrUnreconciled
	}
	if t.DurationMinutes < 0 {
		return ErrInvalidDuration
	}
	for _, c := range t.Criteria {
		if err := c.Validate(ScopeTask); err != nil {
			return err
		}
	}
	return nil
}

func cloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// ValidateTaskOrder checks that task orders are a permutation of 0..n-1.
func ValidateTaskOrder(tasks []Task) error {
	seen := make([]bool, len(tasks))
	for _, t := range tasks {
		if t.Order < 0 || t.Order >= len(tasks) || seen[t.Order] {
			return ErrInvalidTaskOrder
		}
		seen[t.Order] = true
	}
	return nil
}
