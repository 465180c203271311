package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

// StatsProvider computes candidate counts per interview. Interviews without
// candidates may be missing from the result.
type StatsProvider interface {
	StatsFor(ctx context.Context, interviewIDs []uuid.UUID) (map[uuid.UUID]domain.Stats, error)
}

func attachStats(ctx context.Context, provider StatsProvider, interviews []*domain.Interview) error {
	if provider == nil || len(interviews) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(interviews))
	for i, interview := range interviews {
		ids[i] = interview.ID()
	}

	stats, err := provider.StatsFor(ctx, ids)
	if err != nil {
		return err
	}
	for _, interview := range interviews {
		s := stats[interview.ID()]
		interview.SetStats(&s)
	}
	return nil
}
