package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	"github.com/felixgeelhaar/panelist/internal/results/domain"
)

// InterviewReader loads an owner's interview.
type InterviewReader interface {
	FindByID(ctx context.Context, id uuid.UUID, ownerEmail string) (*interviews.Interview, error)
}

// ColumnDTO is one criterion column of the results table.
type ColumnDTO struct {
	CriterionID uuid.UUID `json:"criterion_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Task        string    `json:"task,omitempty"`
}

// ScoreDTO is a candidate's score on one criterion.
type ScoreDTO struct {
	CriterionID uuid.UUID `json:"criterion_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Value       float64   `json:"value"`
}

// NoteDTO is a reviewer note.
type NoteDTO struct {
	ID        uuid.UUID `json:"id"`
	Author    string    `json:"author"`
	Column    string    `json:"column,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CandidateDTO is one row of the results table.
type CandidateDTO struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	InvitedAt    time.Time  `json:"invited_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Scores       []ScoreDTO `json:"scores"`
	Notes        []NoteDTO  `json:"notes"`
	OverallScore *float64   `json:"overall_score,omitempty"`
}

// ResultsDTO is the results view of one interview.
type ResultsDTO struct {
	InterviewID uuid.UUID        `json:"interview_id"`
	Title       string           `json:"title"`
	Status      string           `json:"status"`
	Stats       interviews.Stats `json:"stats"`
	Columns     []ColumnDTO      `json:"columns"`
	Candidates  []CandidateDTO   `json:"candidates"`
}

// ListResultsQuery asks for the results of an interview.
type ListResultsQuery struct {
	InterviewID uuid.UUID
	OwnerEmail  string
}

// ListResultsHandler builds the results view.
type ListResultsHandler struct {
	interviews InterviewReader
	repo       domain.Repository
}

// NewListResultsHandler creates a new ListResultsHandler.
func NewListResultsHandler(interviews InterviewReader, repo domain.Repository) *ListResultsHandler {
	return &ListResultsHandler{interviews: interviews, repo: repo}
}

// Handle executes the ListResultsQuery.
func (h *ListResultsHandler) Handle(ctx context.Context, query ListResultsQuery) (*ResultsDTO, error) {
	interview, err := h.interviews.FindByID(ctx, query.InterviewID, interviews.NormalizeOwner(query.OwnerEmail))
	if err != nil {
		return nil, err
	}

	candidates, err := h.repo.FindByInterview(ctx, interview.ID())
	if err != nil {
		return nil, err
	}

	out := &ResultsDTO{
		InterviewID: interview.ID(),
		Title:       interview.Title(),
		Status:      interview.Status().String(),
		Columns:     columns(interview),
		Candidates:  make([]CandidateDTO, 0, len(candidates)),
	}
	for _, c := range candidates {
		out.Stats.Invited++
		if c.IsCompleted() {
			out.Stats.Completed++
		}
		if c.IsGraded() {
			out.Stats.Graded++
		}
		out.Candidates = append(out.Candidates, toCandidateDTO(c))
	}
	return out, nil
}

// columns lists general criteria first, then task criteria in task order.
func columns(interview *interviews.Interview) []ColumnDTO {
	var out []ColumnDTO
	add := func(c interviews.Criterion, task string) {
		id, ok := c.Ref.ID()
		if !ok {
			return
		}
		out = append(out, ColumnDTO{CriterionID: id, Name: c.Name, Type: string(c.Type), Task: task})
	}
	for _, c := range interview.GeneralCriteria() {
		add(c, "")
	}
	for _, t := range interview.Tasks() {
		for _, c := range t.Criteria {
			add(c, t.Title)
		}
	}
	if out == nil {
		out = []ColumnDTO{}
	}
	return out
}

func toCandidateDTO(c *domain.Candidate) CandidateDTO {
	dto := CandidateDTO{
		ID:          c.ID(),
		Name:        c.Name(),
		Email:       c.Email(),
		InvitedAt:   c.InvitedAt(),
		CompletedAt: c.CompletedAt(),
		Scores:      make([]ScoreDTO, 0, len(c.Scores())),
		Notes:       make([]NoteDTO, 0, len(c.Notes())),
	}
	for _, s := range c.Scores() {
		dto.Scores = append(dto.Scores, ScoreDTO{
			CriterionID: s.CriterionID,
			Name:        s.CriterionName,
			Type:        string(s.Type),
			Value:       s.Value,
		})
	}
	for _, n := range c.Notes() {
		dto.Notes = append(dto.Notes, NoteDTO{
			ID:        n.ID,
			Author:    n.Author,
			Column:    n.Column,
			Content:   n.Content,
			CreatedAt: n.CreatedAt,
		})
	}
	if overall, ok := c.OverallScore(); ok {
		dto.OverallScore = &overall
	}
	return dto
}
