package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

// GetInterviewQuery identifies one interview of an owner.
type GetInterviewQuery struct {
	InterviewID uuid.UUID
	OwnerEmail  string
}

// GetInterviewHandler loads an interview with its stats.
type GetInterviewHandler struct {
	repo  domain.Repository
	stats StatsProvider
}

// NewGetInterviewHandler creates a new GetInterviewHandler. stats may be nil.
func NewGetInterviewHandler(repo domain.Repository, stats StatsProvider) *GetInterviewHandler {
	return &GetInterviewHandler{repo: repo, stats: stats}
}

// Handle executes the GetInterviewQuery.
func (h *GetInterviewHandler) Handle(ctx context.Context, query GetInterviewQuery) (*domain.Interview, error) {
	interview, err := h.repo.FindByID(ctx, query.InterviewID, domain.NormalizeOwner(query.OwnerEmail))
	if err != nil {
		return nil, err
	}
	if err := attachStats(ctx, h.stats, []*domain.Interview{interview}); err != nil {
		return nil, err
	}
	return interview, nil
}
