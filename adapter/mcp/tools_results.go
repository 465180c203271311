package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/internal/results/application/commands"
	"github.com/felixgeelhaar/panelist/internal/results/application/queries"
	"github.com/felixgeelhaar/panelist/internal/results/domain"
)

type resultsInviteInput struct {
	InterviewID string `json:"interview_id" jsonschema:"required"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email" jsonschema:"required"`
}

type resultsCandidateInput struct {
	InterviewID string `json:"interview_id" jsonschema:"required"`
	CandidateID string `json:"candidate_id" jsonschema:"required"`
}

type resultsCompleteInput struct {
	InterviewID string `json:"interview_id" jsonschema:"required"`
	CandidateID string `json:"candidate_id" jsonschema:"required"`
	CompletedAt string `json:"completed_at,omitempty"`
}

type resultsScoreInput struct {
	InterviewID string   `json:"interview_id" jsonschema:"required"`
	CandidateID string   `json:"candidate_id" jsonschema:"required"`
	CriterionID string   `json:"criterion_id" jsonschema:"required"`
	Value       *float64 `json:"value" jsonschema:"required"`
}

type resultsNoteInput struct {
	InterviewID string `json:"interview_id" jsonschema:"required"`
	CandidateID string `json:"candidate_id" jsonschema:"required"`
	Content     string `json:"content" jsonschema:"required"`
	Author      string `json:"author,omitempty"`
	Column      string `json:"column,omitempty"`
}

type candidateView struct {
	ID          uuid.UUID  `json:"id"`
	InterviewID uuid.UUID  `json:"interview_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	InvitedAt   time.Time  `json:"invited_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Scored      int        `json:"scored"`
	Notes       int        `json:"notes"`
}

func toCandidateView(c *domain.Candidate) *candidateView {
	return &candidateView{
		ID:          c.ID(),
		InterviewID: c.InterviewID(),
		Name:        c.Name(),
		Email:       c.Email(),
		InvitedAt:   c.InvitedAt(),
		CompletedAt: c.CompletedAt(),
		Scored:      len(c.Scores()),
		Notes:       len(c.Notes()),
	}
}

func registerResultsTools(srv *mcp.Server, ts *toolset) {
	srv.Tool("results.list").
		Description("Show the results table of an interview: candidates with their scores, notes and overall score").
		Handler(ts.resultsList)

	srv.Tool("results.invite").
		Description("Invite a candidate to a live interview. An email can be invited once per interview").
		Handler(ts.resultsInvite)

	srv.Tool("results.complete").
		Description("Mark a candidate as having completed the interview. completed_at is RFC3339 and defaults to now").
		Handler(ts.resultsComplete)

	srv.Tool("results.score").
		Description("Record a score on a criterion: 0 to 5 for numeric criteria, 0 or 1 for boolean ones. A new score replaces the old one").
		Handler(ts.resultsScore)

	srv.Tool("results.note").
		Description("Add a reviewer note about a candidate, optionally tied to a results column").
		Handler(ts.resultsNote)
}

func (ts *toolset) candidateIDs(interviewID, candidateID string) (uuid.UUID, uuid.UUID, error) {
	iid, err := parseUUID(interviewID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	cid, err := parseUUID(candidateID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return iid, cid, nil
}

func (ts *toolset) resultsList(ctx context.Context, input interviewIDInput) (*queries.ResultsDTO, error) {
	if ts.app.ListResultsHandler == nil {
		return nil, ErrStoreUnavailable
	}
	id, err := parseUUID(input.InterviewID)
	if err != nil {
		return nil, err
	}
	return ts.app.ListResultsHandler.Handle(ctx, queries.ListResultsQuery{
		InterviewID: id,
		OwnerEmail:  ts.app.OwnerEmail,
	})
}

func (ts *toolset) resultsInvite(ctx context.Context, input resultsInviteInput) (*candidateView, error) {
	if ts.app.InviteCandidateHandler == nil {
		return nil, ErrStoreUnavailable
	}
	id, err := parseUUID(input.InterviewID)
	if err != nil {
		return nil, err
	}

	candidate, err := ts.app.InviteCandidateHandler.Handle(ctx, commands.InviteCandidateCommand{
		InterviewID: id,
		OwnerEmail:  ts.app.OwnerEmail,
		Name:        input.Name,
		Email:       input.Email,
	})
	if err != nil {
		return nil, err
	}
	if err := ts.flush(ctx); err != nil {
		return nil, err
	}
	return toCandidateView(candidate), nil
}

func (ts *toolset) resultsComplete(ctx context.Context, input resultsCompleteInput) (*candidateView, error) {
	if ts.app.CompleteCandidateHandler == nil {
		return nil, ErrStoreUnavailable
	}
	interviewID, candidateID, err := ts.candidateIDs(input.InterviewID, input.CandidateID)
	if err != nil {
		return nil, err
	}
	at, err := parseOptionalTimestamp(input.CompletedAt)
	if err != nil {
		return nil, err
	}

	candidate, err := ts.app.CompleteCandidateHandler.Handle(ctx, commands.CompleteCandidateCommand{
		InterviewID: interviewID,
		CandidateID: candidateID,
		OwnerEmail:  ts.app.OwnerEmail,
		At:          at,
	})
	if err != nil {
		return nil, err
	}
	if err := ts.flush(ctx); err != nil {
		return nil, err
	}
	return toCandidateView(candidate), nil
}

func (ts *toolset) resultsScore(ctx context.Context, input resultsScoreInput) (*candidateView, error) {
	if ts.app.RecordScoreHandler == nil {
		return nil, ErrStoreUnavailable
	}
	interviewID, candidateID, err := ts.candidateIDs(input.InterviewID, input.CandidateID)
	if err != nil {
		return nil, err
	}
	criterionID, err := parseUUID(input.CriterionID)
	if err != nil {
		return nil, err
	}
	if input.Value == nil {
		return nil, errors.New("value is required")
	}

	candidate, err := ts.app.RecordScoreHandler.Handle(ctx, commands.RecordScoreCommand{
		InterviewID: interviewID,
		CandidateID: candidateID,
		OwnerEmail:  ts.app.OwnerEmail,
		CriterionID: criterionID,
		Value:       *input.Value,
	})
	if err != nil {
		return nil, err
	}
	if err := ts.flush(ctx); err != nil {
		return nil, err
	}
	return toCandidateView(candidate), nil
}

func (ts *toolset) resultsNote(ctx context.Context, input resultsNoteInput) (*candidateView, error) {
	if ts.app.AddNoteHandler == nil {
		return nil, ErrStoreUnavailable
	}
	interviewID, candidateID, err := ts.candidateIDs(input.InterviewID, input.CandidateID)
	if err != nil {
		return nil, err
	}

	candidate, err := ts.app.AddNoteHandler.Handle(ctx, commands.AddNoteCommand{
		InterviewID: interviewID,
		CandidateID: candidateID,
		OwnerEmail:  ts.app.OwnerEmail,
		Author:      input.Author,
		Column:      input.Column,
		Content:     input.Content,
	})
	if err != nil {
		return nil, err
	}
	if err := ts.flush(ctx); err != nil {
		return nil, err
	}
	return toCandidateView(candidate), nil
}
