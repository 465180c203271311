package domain

import (
	"sort"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/panelist/internal/shared/domain"
	"github.com/google/uuid"
)

// DefaultInterviewTitle is the title given to interviews created without one.
const DefaultInterviewTitle = "New Untitled Interview"

// Interview is a structured interview: ordered tasks plus general criteria.
type Interview struct {
	sharedDomain.BaseAggregateRoot
	ownerEmail      string
	title           string
	status          Status
	tasks           []Task
	generalCriteria []Criterion
	stats           *Stats
}

// NewInterview creates a draft interview for the given owner.
func NewInterview(ownerEmail, title string) (*Interview, error) {
	ownerEmail = NormalizeOwner(ownerEmail)
	if ownerEmail == "" {
		return nil, ErrEmptyOwner
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultInterviewTitle
	}

	i := &Interview{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		ownerEmail:        ownerEmail,
		title:             title,
		status:            StatusDraft,
		tasks:             []Task{},
		generalCriteria:   []Criterion{},
	}
	i.AddDomainEvent(NewInterviewCreated(i))
	return i, nil
}

// NormalizeOwner lowercases and trims an owner email.
func NormalizeOwner(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Getters
func (i *Interview) OwnerEmail() string { return i.ownerEmail }
func (i *Interview) Title() string      { return i.title }
func (i *Interview) Status() Status     { return i.status }
func (i *Interview) TaskCount() int     { return len(i.tasks) }

// Tasks returns a copy of the tasks ordered by Order.
func (i *Interview) Tasks() []Task {
	return cloneTasks(i.tasks)
}

// GeneralCriteria returns a copy of the interview-wide criteria.
func (i *Interview) GeneralCriteria() []Criterion {
	return cloneCriteria(i.generalCriteria)
}

// Stats returns the candidate counts, or nil when none were attached.
func (i *Interview) Stats() *Stats {
	if i.stats == nil {
		return nil
	}
	s := *i.stats
	return &s
}

// SetStats attaches candidate counts computed elsewhere.
func (i *Interview) SetStats(stats *Stats) {
	if stats == nil {
		i.stats = nil
		return
	}
	s := *stats
	i.stats = &s
}

// HasResults returns true when at least one candidate completed the interview.
func (i *Interview) HasResults() bool {
	return i.stats != nil && i.stats.Completed > 0
}

// CriteriaCount returns the number of general and task criteria.
func (i *Interview) CriteriaCount() int {
	n := len(i.generalCriteria)
	for _, t := range i.tasks {
		n += len(t.Criteria)
	}
	return n
}

// Rename updates the interview title.
func (i *Interview) Rename(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	i.title = title
	i.Touch()
	return nil
}

// Task finds a task by ref.
func (i *Interview) Task(ref Ref) (Task, bool) {
	if idx := i.taskIndex(ref); idx >= 0 {
		return i.tasks[idx].Clone(), true
	}
	return Task{}, false
}

func (i *Interview) taskIndex(ref Ref) int {
	for idx, t := range i.tasks {
		if t.Ref == ref {
			return idx
		}
	}
	return -1
}

// AddTask appends a pending task with the default values and returns it.
func (i *Interview) AddTask() Task {
	task := NewTask(i.ID(), len(i.tasks))
	i.tasks = append(i.tasks, task)
	i.Touch()
	return task.Clone()
}

// RemoveTask removes a task and renumbers the remaining orders.
func (i *Interview) RemoveTask(ref Ref) error {
	idx := i.taskIndex(ref)
	if idx < 0 {
		return ErrTaskNotFound
	}
	i.tasks = append(i.tasks[:idx], i.tasks[idx+1:]...)
	i.renumber()
	i.Touch()
	return nil
}

// ReorderTasks arranges the tasks in the given order. refs must name every
// task exactly once.
func (i *Interview) ReorderTasks(refs []Ref) error {
	if len(refs) != len(i.tasks) {
		return ErrInvalidTaskOrder
	}
	reordered := make([]Task, 0, len(refs))
	used := make(map[Ref]bool, len(refs))
	for _, ref := range refs {
		idx := i.taskIndex(ref)
		if idx < 0 {
			return ErrTaskNotFound
		}
		if used[ref] {
			return ErrInvalidTaskOrder
		}
		used[ref] = true
		reordered = append(reordered, i.tasks[idx])
	}
	i.tasks = reordered
	i.renumber()
	i.Touch()
	return nil
}

// UpdateTask replaces a task's content. Order and interview id stay as they
// are; use ReorderTasks to move a task.
func (i *Interview) UpdateTask(task Task) error {
	idx := i.taskIndex(task.Ref)
	if idx < 0 {
		return ErrTaskNotFound
	}
	if err := task.Validate(); err != nil {
		return err
	}
	updated := task.Clone()
	updated.InterviewID = i.ID()
	updated.Order = i.tasks[idx].Order
	updated.AIBehavior = updated.AIBehavior.OrDefault()
	if updated.Criteria == nil {
		updated.Criteria = []Criterion{}
	}
	i.tasks[idx] = updated
	i.Touch()
	return nil
}

// SetGeneralCriteria replaces the interview-wide criteria.
func (i *Interview) SetGeneralCriteria(criteria []Criterion) error {
	for _, c := range criteria {
		if err := c.Validate(ScopeGeneral); err != nil {
			return err
		}
	}
	i.generalCriteria = cloneCriteria(criteria)
	if i.generalCriteria == nil {
		i.generalCriteria = []Criterion{}
	}
	i.Touch()
	return nil
}

// UpdateStatus transitions the interview to a new status.
func (i *Interview) UpdateStatus(newStatus Status) error {
	if !i.status.CanTransitionTo(newStatus) {
		return ErrInvalidStatusTransition
	}
	i.status = newStatus
	i.Touch()
	return nil
}

// Publish makes a draft interview live. An interview needs at least one task.
func (i *Interview) Publish() error {
	if len(i.tasks) == 0 {
		return ErrNoTasks
	}
	return i.UpdateStatus(StatusLive)
}

// Close stops a live interview from accepting candidates.
func (i *Interview) Close() error {
	return i.UpdateStatus(StatusClosed)
}

// Validate checks task orders, tasks and general criteria.
func (i *Interview) Validate() error {
	if err := ValidateTaskOrder(i.tasks); err != nil {
		return err
	}
	for _, t := range i.tasks {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	for _, c := range i.generalCriteria {
		if err := c.Validate(ScopeGeneral); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy without recorded events.
func (i *Interview) Clone() *Interview {
	c := RehydrateInterview(
		i.ID(), i.ownerEmail, i.title, i.status,
		i.tasks, i.generalCriteria,
		i.CreatedAt(), i.UpdatedAt(),
	)
	c.SetStats(i.stats)
	return c
}

// Row returns the interview's scalar columns.
func (i *Interview) Row() InterviewRow {
	return InterviewRow{
		ID:         i.ID(),
		OwnerEmail: i.ownerEmail,
		Title:      i.title,
		Status:     i.status,
		CreatedAt:  i.CreatedAt(),
		UpdatedAt:  i.UpdatedAt(),
	}
}

// RecordSaved records the events of a successful save. previous is the
// status before the save.
func (i *Interview) RecordSaved(previous Status) {
	i.AddDomainEvent(NewInterviewSaved(i))
	if previous == i.status {
		return
	}
	switch i.status {
	case StatusLive:
		i.AddDomainEvent(NewInterviewPublished(i))
	case StatusClosed:
		i.AddDomainEvent(NewInterviewClosed(i))
	}
}

// MarkDeleted records the deletion event.
func (i *Interview) MarkDeleted() {
	i.AddDomainEvent(NewInterviewDeleted(i))
}

func (i *Interview) renumber() {
	for idx := range i.tasks {
		i.tasks[idx].Order = idx
	}
}

func sortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(a, b int) bool {
		return tasks[a].Order < tasks[b].Order
	})
}

// RehydrateInterview recreates an interview from persisted data. Tasks are
// sorted by order; nil file and criteria lists become empty.
func RehydrateInterview(
	id uuid.UUID,
	ownerEmail, title string,
	status Status,
	tasks []Task,
	generalCriteria []Criterion,
	createdAt, updatedAt time.Time,
) *Interview {
	ts := cloneTasks(tasks)
	if ts == nil {
		ts = []Task{}
	}
	for idx := range ts {
		if ts[idx].Files == nil {
			ts[idx].Files = []string{}
		}
		if ts[idx].Criteria == nil {
			ts[idx].Criteria = []Criterion{}
		}
	}
	sortTasks(ts)

	general := cloneCriteria(generalCriteria)
	if general == nil {
		general = []Criterion{}
	}

	return &Interview{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		),
		ownerEmail:      ownerEmail,
		title:           title,
		status:          status,
		tasks:           ts,
		generalCriteria: general,
	}
}
