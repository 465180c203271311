package persistence

import (
	"time"

	"github.com/google/uuid"

	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	"github.com/felixgeelhaar/panelist/internal/results/domain"
)

// scanner is satisfied by *sql.Row, *sql.Rows, pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// candidateRow is a candidates row before scores and notes are attached.
type candidateRow struct {
	id          uuid.UUID
	interviewID uuid.UUID
	name        string
	email       string
	invitedAt   time.Time
	completedAt *time.Time
}

type scoreRow struct {
	candidateID uuid.UUID
	score       domain.Score
}

type noteRow struct {
	candidateID uuid.UUID
	note        domain.Note
}

// assembleCandidates attaches scores and notes to their candidate rows,
// keeping the order of rows.
func assembleCandidates(rows []candidateRow, scores []scoreRow, notes []noteRow) []*domain.Candidate {
	scoresBy := make(map[uuid.UUID][]domain.Score, len(rows))
	for _, s := range scores {
		scoresBy[s.candidateID] = append(scoresBy[s.candidateID], s.score)
	}
	notesBy := make(map[uuid.UUID][]domain.Note, len(rows))
	for _, n := range notes {
		notesBy[n.candidateID] = append(notesBy[n.candidateID], n.note)
	}

	out := make([]*domain.Candidate, len(rows))
	for i, r := range rows {
		updatedAt := r.invitedAt
		if r.completedAt != nil {
			updatedAt = *r.completedAt
		}
		out[i] = domain.RehydrateCandidate(
			r.id, r.interviewID, r.name, r.email,
			r.invitedAt, r.completedAt,
			scoresBy[r.id], notesBy[r.id],
			updatedAt,
		)
	}
	return out
}

func emptyStats(ids []uuid.UUID) map[uuid.UUID]interviews.Stats {
	out := make(map[uuid.UUID]interviews.Stats, len(ids))
	for _, id := range ids {
		out[id] = interviews.Stats{}
	}
	return out
}
