package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// TaskDiff is the task write set of a save.
type TaskDiff struct {
	// ToDelete holds persisted ids present in the original but not in the
	// edited list. Pending refs never appear here.
	ToDelete []uuid.UUID
	// ToUpsert holds every edited task stripped of criteria and files.
	ToUpsert []TaskRow
}

// CriterionDiff is the criterion delete set of a save.
type CriterionDiff struct {
	ToDelete []uuid.UUID
}

// DiffTasks compares the original and edited task lists.
func DiffTasks(interviewID uuid.UUID, original, edited []Task) TaskDiff {
	kept := make(map[uuid.UUID]bool, len(edited))
	upsert := make([]TaskRow, 0, len(edited))
	for _, t := range edited {
		if id, ok := t.Ref.ID(); ok {
			kept[id] = true
		}
		upsert = append(upsert, NewTaskRow(interviewID, t))
	}

	var toDelete []uuid.UUID
	for _, t := range original {
		id, ok := t.Ref.ID()
		if ok && !kept[id] {
			toDelete = append(toDelete, id)
		}
	}

	return TaskDiff{ToDelete: toDelete, ToUpsert: upsert}
}

// DiffCriteria finds persisted criteria removed by the edit. Criteria of
// original tasks that did not survive into savedTasks are left out: deleting
// the task removes them.
func DiffCriteria(originalGeneral []Criterion, originalTasks []Task, editedGeneral []Criterion, savedTasks []Task) CriterionDiff {
	surviving := make(map[uuid.UUID]bool, len(savedTasks))
	kept := make(map[uuid.UUID]bool)
	for _, c := range editedGeneral {
		if id, ok := c.Ref.ID(); ok {
			kept[id] = true
		}
	}
	for _, t := range savedTasks {
		if id, ok := t.Ref.ID(); ok {
			surviving[id] = true
		}
		for _, c := range t.Criteria {
			if id, ok := c.Ref.ID(); ok {
				kept[id] = true
			}
		}
	}

	var toDelete []uuid.UUID
	removed := func(c Criterion) {
		if id, ok := c.Ref.ID(); ok && !kept[id] {
			toDelete = append(toDelete, id)
		}
	}
	for _, c := range originalGeneral {
		removed(c)
	}
	for _, t := range originalTasks {
		if id, ok := t.Ref.ID(); !ok || !surviving[id] {
			continue
		}
		for _, c := range t.Criteria {
			removed(c)
		}
	}

	return CriterionDiff{ToDelete: toDelete}
}

// BuildCriteriaBatch stamps every criterion with its owning key: general
// criteria with the interview id, task criteria with their saved task's id.
// Every task must already be persisted.
func BuildCriteriaBatch(interviewID uuid.UUID, general []Criterion, savedTasks []Task) ([]CriterionRow, error) {
	batch := make([]CriterionRow, 0, len(general))
	for pos, c := range general {
		if err := c.Validate(ScopeGeneral); err != nil {
			return nil, fmt.Errorf("general criterion %q: %w", c.Name, err)
		}
		row := newCriterionRow(c, pos)
		owner := interviewID
		row.InterviewID = &owner
		batch = append(batch, row)
	}

	for _, t := range savedTasks {
		taskID, ok := t.Ref.ID()
		if !ok {
			return nil, fmt.Errorf("task %s: %w", t.Ref, ErrUnreconciled)
		}
		for pos, c := range t.Criteria {
			if err := c.Validate(ScopeTask); err != nil {
				return nil, fmt.Errorf("criterion %q of task %s: %w", c.Name, t.Ref, err)
			}
			row := newCriterionRow(c, pos)
			owner := taskID
			row.TaskID = &owner
			batch = append(batch, row)
		}
	}

	return batch, nil
}
