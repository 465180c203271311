package domain

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// CheckOwnedRefs verifies that every persisted ref in edited comes from
// original. Pending refs are always accepted.
func CheckOwnedRefs(original, edited *Interview) error {
	tasks := make(map[uuid.UUID]bool, len(original.tasks))
	criteria := make(map[uuid.UUID]bool)
	for _, c := range original.generalCriteria {
		if id, ok := c.Ref.ID(); ok {
			criteria[id] = true
		}
	}
	for _, t := range original.tasks {
		if id, ok := t.Ref.ID(); ok {
			tasks[id] = true
		}
		for _, c := range t.Criteria {
			if id, ok := c.Ref.ID(); ok {
				criteria[id] = true
			}
		}
	}

	checkCriteria := func(list []Criterion) error {
		for _, c := range list {
			if id, ok := c.Ref.ID(); ok && !criteria[id] {
				return fmt.Errorf("criterion %s is not part of interview %s: %w", id, original.ID(), ErrCriterionNotFound)
			}
		}
		return nil
	}

	if err := checkCriteria(edited.generalCriteria); err != nil {
		return err
	}
	for _, t := range edited.tasks {
		if id, ok := t.Ref.ID(); ok && !tasks[id] {
			return fmt.Errorf("task %s is not part of interview %s: %w", id, original.ID(), ErrTaskNotFound)
		}
		if err := checkCriteria(t.Criteria); err != nil {
			return err
		}
	}
	return nil
}

// SameContent reports whether a and b have the same title, tasks and
// criteria. Status, stats and supporting files are ignored.
func SameContent(a, b *Interview) bool {
	if a.title != b.title || len(a.tasks) != len(b.tasks) {
		return false
	}
	if !slices.Equal(a.generalCriteria, b.generalCriteria) {
		return false
	}
	for idx := range a.tasks {
		ta, tb := a.tasks[idx], b.tasks[idx]
		if NewTaskRow(a.ID(), ta) != NewTaskRow(a.ID(), tb) {
			return false
		}
		if !slices.Equal(ta.Criteria, tb.Criteria) {
			return false
		}
	}
	return true
}
