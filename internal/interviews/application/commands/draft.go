package commands

import (
	"strings"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

// Draft is the client-facing form of an edited interview. Task order is the
// position in Tasks. IDs are persisted ids or client keys; an empty ID marks
// a new entity.
type Draft struct {
	Title           string           `json:"title" yaml:"title"`
	Status          string           `json:"status,omitempty" yaml:"status,omitempty"`
	Tasks           []DraftTask      `json:"tasks" yaml:"tasks"`
	GeneralCriteria []DraftCriterion `json:"general_criteria" yaml:"general_criteria"`
}

// DraftTask is one task of a Draft.
type DraftTask struct {
	ID              string              `json:"id,omitempty" yaml:"id,omitempty"`
	Title           string              `json:"title" yaml:"title"`
	Prompt          string              `json:"prompt" yaml:"prompt"`
	AIBehavior      string              `json:"ai_behavior,omitempty" yaml:"ai_behavior,omitempty"`
	DurationMinutes int                 `json:"duration_minutes" yaml:"duration_minutes"`
	Requirements    domain.Requirements `json:"requirements" yaml:"requirements"`
	Criteria        []DraftCriterion    `json:"criteria" yaml:"criteria"`
}

// DraftCriterion is one criterion of a Draft.
type DraftCriterion struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string `json:"type" yaml:"type"`
}

// DraftFromInterview renders an interview as a Draft.
func DraftFromInterview(interview *domain.Interview) Draft {
	draft := Draft{
		Title:           interview.Title(),
		Status:          interview.Status().String(),
		Tasks:           make([]DraftTask, 0, interview.TaskCount()),
		GeneralCriteria: draftCriteria(interview.GeneralCriteria()),
	}
	for _, t := range interview.Tasks() {
		draft.Tasks = append(draft.Tasks, DraftTask{
			ID:              t.Ref.String(),
			Title:           t.Title,
			Prompt:          t.Prompt,
			AIBehavior:      string(t.AIBehavior),
			DurationMinutes: t.DurationMinutes,
			Requirements:    t.Requirements,
			Criteria:        draftCriteria(t.Criteria),
		})
	}
	return draft
}

func draftCriteria(criteria []domain.Criterion) []DraftCriterion {
	out := make([]DraftCriterion, 0, len(criteria))
	for _, c := range criteria {
		out = append(out, DraftCriterion{
			ID:          c.Ref.String(),
			Name:        c.Name,
			Description: c.Description,
			Type:        string(c.Type),
		})
	}
	return out
}

// Apply builds the edited snapshot of original described by the draft.
// Persisted ids that do not belong to original become pending refs, so a
// draft can never claim another interview's rows.
func (d Draft) Apply(original *domain.Interview) (*domain.Interview, error) {
	known := knownIDs(original)
	ref := func(s string) domain.Ref {
		r := domain.ParseRef(s)
		if id, ok := r.ID(); ok && !known[id] {
			return domain.NewPendingRef()
		}
		return r
	}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = original.Title()
	}

	status := original.Status()
	if d.Status != "" {
		parsed, err := domain.ParseStatus(strings.ToLower(strings.TrimSpace(d.Status)))
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	tasks := make([]domain.Task, 0, len(d.Tasks))
	for i, dt := range d.Tasks {
		criteria, err := d.criteria(dt.Criteria, domain.ScopeTask, ref)
		if err != nil {
			return nil, err
		}
		taskTitle := strings.TrimSpace(dt.Title)
		if taskTitle == "" {
			taskTitle = domain.DefaultTaskTitle
		}
		tasks = append(tasks, domain.Task{
			Ref:             ref(dt.ID),
			InterviewID:     original.ID(),
			Title:           taskTitle,
			Prompt:          dt.Prompt,
			AIBehavior:      domain.AIBehavior(dt.AIBehavior).OrDefault(),
			DurationMinutes: dt.DurationMinutes,
			Requirements:    dt.Requirements,
			Order:           i,
			Files:           []string{},
			Criteria:        criteria,
		})
	}

	general, err := d.criteria(d.GeneralCriteria, domain.ScopeGeneral, ref)
	if err != nil {
		return nil, err
	}

	edited := domain.RehydrateInterview(
		original.ID(), original.OwnerEmail(), title, status,
		tasks, general,
		original.CreatedAt(), original.UpdatedAt(),
	)
	edited.SetStats(original.Stats())
	return edited, nil
}

func (d Draft) criteria(in []DraftCriterion, scope domain.Scope, ref func(string) domain.Ref) ([]domain.Criterion, error) {
	out := make([]domain.Criterion, 0, len(in))
	for _, dc := range in {
		typ, err := domain.ParseCriterionType(dc.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Criterion{
			Ref:         ref(dc.ID),
			Name:        strings.TrimSpace(dc.Name),
			Description: dc.Description,
			Type:        typ,
			Scope:       scope,
		})
	}
	return out, nil
}

func knownIDs(interview *domain.Interview) map[uuid.UUID]bool {
	known := make(map[uuid.UUID]bool)
	add := func(r domain.Ref) {
		if id, ok := r.ID(); ok {
			known[id] = true
		}
	}
	for _, c := range interview.GeneralCriteria() {
		add(c.Ref)
	}
	for _, t := range interview.Tasks() {
		add(t.Ref)
		for _, c := range t.Criteria {
			add(c.Ref)
		}
	}
	return known
}
