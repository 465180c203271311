package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/internal/results/application/commands"
	"github.com/felixgeelhaar/panelist/internal/results/application/queries"
	"github.com/felixgeelhaar/panelist/internal/results/domain"
)

// ResultsHandler handles candidate and results API requests.
type ResultsHandler struct {
	list     *queries.ListResultsHandler
	invite   *commands.InviteCandidateHandler
	complete *commands.CompleteCandidateHandler
	score    *commands.RecordScoreHandler
	note     *commands.AddNoteHandler
	logger   *slog.Logger
}

// ResultsHandlerConfig holds dependencies for the results handler.
type ResultsHandlerConfig struct {
	List     *queries.ListResultsHandler
	Invite   *commands.InviteCandidateHandler
	Complete *commands.CompleteCandidateHandler
	Score    *commands.RecordScoreHandler
	Note     *commands.AddNoteHandler
	Logger   *slog.Logger
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(cfg ResultsHandlerConfig) *ResultsHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &ResultsHandler{
		list:     cfg.List,
		invite:   cfg.Invite,
		complete: cfg.Complete,
		score:    cfg.Score,
		note:     cfg.Note,
		logger:   cfg.Logger,
	}
}

// CandidateResponse is the API form of a candidate.
type CandidateResponse struct {
	ID          uuid.UUID  `json:"id"`
	InterviewID uuid.UUID  `json:"interview_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	InvitedAt   time.Time  `json:"invited_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Scored      int        `json:"scored"`
	Notes       int        `json:"notes"`
}

// InviteRequest is the body of POST .../candidates.
type InviteRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CompleteRequest is the optional body of POST .../complete.
type CompleteRequest struct {
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ScoreRequest is the body of PUT .../scores/{criterionID}.
type ScoreRequest struct {
	Value *float64 `json:"value"`
}

// NoteRequest is the body of POST .../notes.
type NoteRequest struct {
	Author  string `json:"author,omitempty"`
	Column  string `json:"column,omitempty"`
	Content string `json:"content"`
}

func toCandidateResponse(c *domain.Candidate) CandidateResponse {
	return CandidateResponse{
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

// List handles GET /api/v1/interviews/{interviewID}/results
func (h *ResultsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "interviewID")
	if !ok {
		return
	}

	results, err := h.list.Handle(r.Context(), queries.ListResultsQuery{
		InterviewID: id,
		OwnerEmail:  ownerFrom(r),
	})
	if err != nil {
		fail(w, r, h.logger, "failed to list results", err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// Invite handles POST /api/v1/interviews/{interviewID}/candidates
func (h *ResultsHandler) Invite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "interviewID")
	if !ok {
		return
	}

	var req InviteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	candidate, err := h.invite.Handle(r.Context(), commands.InviteCandidateCommand{
		InterviewID: id,
		OwnerEmail:  ownerFrom(r),
		Name:        req.Name,
		Email:       req.Email,
	})
	if err != nil {
		fail(w, r, h.logger, "failed to invite candidate", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCandidateResponse(candidate))
}

// Complete handles POST .../candidates/{candidateID}/complete. The body is
// optional; without completed_at the current time is used.
func (h *ResultsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	interviewID, candidateID, ok := candidatePath(w, r)
	if !ok {
		return
	}

	var req CompleteRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	cmd := commands.CompleteCandidateCommand{
		InterviewID: interviewID,
		CandidateID: candidateID,
		OwnerEmail:  ownerFrom(r),
	}
	if req.CompletedAt != nil {
		cmd.At = *req.CompletedAt
	}

	candidate, err := h.complete.Handle(r.Context(), cmd)
	if err != nil {
		fail(w, r, h.logger, "failed to complete candidate", err)
		return
	}

	writeJSON(w, http.StatusOK, toCandidateResponse(candidate))
}

// Score handles PUT .../candidates/{candidateID}/scores/{criterionID}
func (h *ResultsHandler) Score(w http.ResponseWriter, r *http.Request) {
	interviewID, candidateID, ok := candidatePath(w, r)
	if !ok {
		return
	}
	criterionID, ok := pathID(w, r, "criterionID")
	if !ok {
		return
	}

	var req ScoreRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Value == nil {
		writeError(w, ErrBadRequest.WithMessage("value is required"))
		return
	}

	candidate, err := h.score.Handle(r.Context(), commands.RecordScoreCommand{
		InterviewID: interviewID,
		CandidateID: candidateID,
		OwnerEmail:  ownerFrom(r),
		CriterionID: criterionID,
		Value:       *req.Value,
	})
	if err != nil {
		fail(w, r, h.logger, "failed to record score", err)
		return
	}

	writeJSON(w, http.StatusOK, toCandidateResponse(candidate))
}

// Note handles POST .../candidates/{candidateID}/notes
func (h *ResultsHandler) Note(w http.ResponseWriter, r *http.Request) {
	interviewID, candidateID, ok := candidatePath(w, r)
	if !ok {
		return
	}

	var req NoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	candidate, err := h.note.Handle(r.Context(), commands.AddNoteCommand{
		InterviewID: interviewID,
		CandidateID: candidateID,
		OwnerEmail:  ownerFrom(r),
		Author:      req.Author,
		Column:      req.Column,
		Content:     req.Content,
	})
	if err != nil {
		fail(w, r, h.logger, "failed to add note", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCandidateResponse(candidate))
}

func candidatePath(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	interviewID, ok := pathID(w, r, "interviewID")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	candidateID, ok := pathID(w, r, "candidateID")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return interviewID, candidateID, true
}
