package queries

import (
	"context"

	"github.com/google/uuid"

	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	"github.com/felixgeelhaar/panelist/internal/results/domain"
)

// StatsHandler computes interview stats from candidates. It is the stats
// provider of the interview queries.
type StatsHandler struct {
	repo domain.Repository
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(repo domain.Repository) *StatsHandler {
	return &StatsHandler{repo: repo}
}

// StatsFor returns stats for every id; interviews without candidates get
// zero stats.
func (h *StatsHandler) StatsFor(ctx context.Context, interviewIDs []uuid.UUID) (map[uuid.UUID]interviews.Stats, error) {
	if len(interviewIDs) == 0 {
		return map[uuid.UUID]interviews.Stats{}, nil
	}
	return h.repo.StatsFor(ctx, dedupe(interviewIDs))
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
