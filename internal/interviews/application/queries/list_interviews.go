package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

// InterviewSummary is one row of an owner's interview listing.
type InterviewSummary struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	Status        domain.Status `json:"status"`
	TaskCount     int           `json:"task_count"`
	CriteriaCount int           `json:"criteria_count"`
	Stats         domain.Stats  `json:"stats"`
	HasResults    bool          `json:"has_results"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ListInterviewsQuery contains the parameters for listing interviews.
type ListInterviewsQuery struct {
	OwnerEmail string
	Status     string // optional filter, applied after the cache
}

// ListInterviewsHandler lists an owner's interviews, newest first.
type ListInterviewsHandler struct {
	repo   domain.Repository
	stats  StatsProvider
	cache  *ListingCache
	logger *slog.Logger
}

// NewListInterviewsHandler creates a new ListInterviewsHandler. stats and
// cache may be nil.
func NewListInterviewsHandler(repo domain.Repository, stats StatsProvider, cache *ListingCache, logger *slog.Logger) *ListInterviewsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListInterviewsHandler{repo: repo, stats: stats, cache: cache, logger: logger}
}

// Handle executes the ListInterviewsQuery.
func (h *ListInterviewsHandler) Handle(ctx context.Context, query ListInterviewsQuery) ([]InterviewSummary, error) {
	ownerEmail := domain.NormalizeOwner(query.OwnerEmail)

	var filter domain.Status
	if query.Status != "" {
		status, err := domain.ParseStatus(query.Status)
		if err != nil {
			return nil, err
		}
		filter = status
	}

	summaries, ok := h.cache.Get(ctx, ownerEmail)
	if !ok {
		interviews, err := h.repo.FindByOwner(ctx, ownerEmail)
		if err != nil {
			return nil, err
		}
		if err := attachStats(ctx, h.stats, interviews); err != nil {
			return nil, err
		}
		summaries = toSummaries(interviews)
		if err := h.cache.Put(ctx, ownerEmail, summaries); err != nil {
			h.logger.WarnContext(ctx, "failed to cache interview listing", "owner_email", ownerEmail, "error", err)
		}
	}

	if filter == "" {
		return summaries, nil
	}
	filtered := make([]InterviewSummary, 0, len(summaries))
	for _, s := range summaries {
		if s.Status == filter {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

func toSummaries(interviews []*domain.Interview) []InterviewSummary {
	out := make([]InterviewSummary, len(interviews))
	for i, interview := range interviews {
		var stats domain.Stats
		if s := interview.Stats(); s != nil {
			stats = *s
		}
		out[i] = InterviewSummary{
			ID:            interview.ID(),
			Title:         interview.Title(),
			Status:        interview.Status(),
			TaskCount:     interview.TaskCount(),
			CriteriaCount: interview.CriteriaCount(),
			Stats:         stats,
			HasResults:    interview.HasResults(),
			CreatedAt:     interview.CreatedAt(),
			UpdatedAt:     interview.UpdatedAt(),
		}
	}
	return out
}
