package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/internal/results/domain"
)

// AddNoteCommand adds a reviewer note to a candidate. An empty Author is
// replaced with the owner.
type AddNoteCommand struct {
	InterviewID uuid.UUID
	CandidateID uuid.UUID
	OwnerEmail  string
	Author      string
	Column      string
	Content     string
}

// AddNoteHandler handles reviewer notes.
type AddNoteHandler struct {
	deps Deps
}

// NewAddNoteHandler creates a new AddNoteHandler.
func NewAddNoteHandler(deps Deps) *AddNoteHandler {
	return &AddNoteHandler{deps: deps.withDefaults()}
}

// Handle executes the AddNoteCommand.
func (h *AddNoteHandler) Handle(ctx context.Context, cmd AddNoteCommand) (*domain.Candidate, error) {
	interview, err := h.deps.loadInterview(ctx, cmd.InterviewID, cmd.OwnerEmail)
	if err != nil {
		return nil, err
	}

	author := cmd.Author
	if author == "" {
		author = interview.OwnerEmail()
	}
	note, err := domain.NewNote(author, cmd.Column, cmd.Content)
	if err != nil {
		return nil, err
	}

	return h.deps.update(ctx, interview, cmd.CandidateID, func(c *domain.Candidate) error {
		c.AddNote(note)
		c.MarkReviewed(interview.OwnerEmail())
		return nil
	})
}
