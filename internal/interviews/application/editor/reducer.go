// Package editor holds in-progress interview edits. Reduce applies one
// action to a snapshot; Store keeps one session per interview and turns
// saves into SaveInterview commands.
package editor

import (
	"fmt"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

// Action is one edit of an interview.
type Action interface {
	actionName() string
}

// UpdateInterview renames the interview.
type UpdateInterview struct {
	Title string
}

// AddTask appends a task with the default values.
type AddTask struct{}

// RemoveTask removes a task; the remaining tasks are renumbered.
type RemoveTask struct {
	Ref domain.Ref
}

// ReorderTasks sets task orders to their position in Order.
type ReorderTasks struct {
	Order []domain.Ref
}

// UpdateTask replaces a task's content.
type UpdateTask struct {
	Task domain.Task
}

// SetGeneralCriteria replaces the interview-wide criteria.
type SetGeneralCriteria struct {
	Criteria []domain.Criterion
}

// PublishInterview makes a draft live.
type PublishInterview struct{}

// CloseInterview closes a live interview.
type CloseInterview struct{}

func (UpdateInterview) actionName() string    { return "update_interview" }
func (AddTask) actionName() string            { return "add_task" }
func (RemoveTask) actionName() string         { return "remove_task" }
func (ReorderTasks) actionName() string       { return "reorder_tasks" }
func (UpdateTask) actionName() string         { return "update_task" }
func (SetGeneralCriteria) actionName() string { return "set_general_criteria" }
func (PublishInterview) actionName() string   { return "publish_interview" }
func (CloseInterview) actionName() string     { return "close_interview" }

// Reduce returns a copy of interview with the action applied. interview is
// never modified. Content edits of a closed interview fail with
// domain.ErrInterviewClosed.
func Reduce(interview *domain.Interview, action Action) (*domain.Interview, error) {
	next := interview.Clone()

	if next.Status() == domain.StatusClosed {
		switch action.(type) {
		case PublishInterview, CloseInterview:
		default:
			return nil, domain.ErrInterviewClosed
		}
	}

	var err error
	switch a := action.(type) {
	case UpdateInterview:
		err = next.Rename(a.Title)
	case AddTask:
		next.AddTask()
	case RemoveTask:
		err = next.RemoveTask(a.Ref)
	case ReorderTasks:
		err = next.ReorderTasks(a.Order)
	case UpdateTask:
		err = next.UpdateTask(a.Task)
	case SetGeneralCriteria:
		err = next.SetGeneralCriteria(a.Criteria)
	case PublishInterview:
		err = next.Publish()
	case CloseInterview:
		err = next.Close()
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownAction, action)
	}
	if err != nil {
		return nil, err
	}
	return next, nil
}

// ReduceAll applies actions in order. Either all apply or none does.
func ReduceAll(interview *domain.Interview, actions ...Action) (*domain.Interview, error) {
	next := interview
	for _, action := range actions {
		var err error
		if next, err = Reduce(next, action); err != nil {
			return nil, fmt.Errorf("%s: %w", action.actionName(), err)
		}
	}
	if next == interview {
		return interview.Clone(), nil
	}
	return next, nil
}
