package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	"github.com/felixgeelhaar/panelist/internal/results/domain"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/panelist/internal/shared/infrastructure/persistence"
)

const pgCandidateColumns = `c.id, c.interview_id, c.name, c.email, c.invited_at, c.completed_at`

// PostgresCandidateRepository implements domain.Repository using PostgreSQL.
type PostgresCandidateRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCandidateRepository creates a new PostgreSQL candidate repository.
func NewPostgresCandidateRepository(pool *pgxpool.Pool) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{pool: pool}
}

// Save upserts the candidate and sends scores and notes as one batch.
func (r *PostgresCandidateRepository) Save(ctx context.Context, c *domain.Candidate) error {
	return sharedPersistence.InTx(ctx, r.pool, func(exec sharedPersistence.DBExecutor) error {
		_, err := exec.Exec(ctx, `
			INSERT INTO candidates (id, interview_id, name, email, invited_at, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				completed_at = EXCLUDED.completed_at`,
			c.ID(), c.InterviewID(), c.Name(), c.Email(), c.InvitedAt(), c.CompletedAt(),
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return domain.ErrDuplicateCandidate
			}
			return fmt.Errorf("failed to save candidate: %w", err)
		}

		scores, notes := c.Scores(), c.Notes()
		if len(scores)+len(notes) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, s := range scores {
			batch.Queue(`
				INSERT INTO candidate_scores (candidate_id, criterion_id, value, recorded_at)
				VALUES ($1, $2, $3, NOW())
				ON CONFLICT (candidate_id, criterion_id) DO UPDATE SET
					value = EXCLUDED.value,
					recorded_at = EXCLUDED.recorded_at`,
				c.ID(), s.CriterionID, s.Value,
			)
		}
		for _, n := range notes {
			batch.Queue(`
				INSERT INTO candidate_notes (id, candidate_id, author, column_name, content, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO NOTHING`,
				n.ID, c.ID(), n.Author, n.Column, n.Content, n.CreatedAt,
			)
		}

		results := exec.SendBatch(ctx, batch)
		for range batch.Len() {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to save candidate results: %w", err)
			}
		}
		return results.Close()
	})
}

// FindByID loads a candidate of the given interview.
func (r *PostgresCandidateRepository) FindByID(ctx context.Context, id, interviewID uuid.UUID) (*domain.Candidate, error) {
	candidates, err := r.find(ctx, `c.id = $1 AND c.interview_id = $2`, id, interviewID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, domain.ErrCandidateNotFound
	}
	return candidates[0], nil
}

// FindByInterview loads every candidate of an interview.
func (r *PostgresCandidateRepository) FindByInterview(ctx context.Context, interviewID uuid.UUID) ([]*domain.Candidate, error) {
	return r.find(ctx, `c.interview_id = $1`, interviewID)
}

func (r *PostgresCandidateRepository) find(ctx context.Context, where string, args ...any) ([]*domain.Candidate, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)

	rows, err := exec.Query(ctx, `
		SELECT `+pgCandidateColumns+`
		FROM candidates c
		WHERE `+where+`
		ORDER BY c.invited_at, c.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	candidates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (candidateRow, error) {
		return scanPostgresCandidate(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	if len(candidates) == 0 {
		return []*domain.Candidate{}, nil
	}

	rows, err = exec.Query(ctx, `
		SELECT s.candidate_id, s.criterion_id, cr.name, cr.criterion_type, s.value
		FROM candidate_scores s
		JOIN criteria cr ON cr.id = s.criterion_id
		JOIN candidates c ON c.id = s.candidate_id
		WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	scores, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (scoreRow, error) {
		var s scoreRow
		var typ string
		err := row.Scan(&s.candidateID, &s.score.CriterionID, &s.score.CriterionName, &typ, &s.score.Value)
		s.score.Type = interviews.CriterionType(typ)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}

	rows, err = exec.Query(ctx, `
		SELECT n.candidate_id, n.id, n.author, n.column_name, n.content, n.created_at
		FROM candidate_notes n
		JOIN candidates c ON c.id = n.candidate_id
		WHERE `+where+`
		ORDER BY n.created_at, n.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	notes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (noteRow, error) {
		var n noteRow
		err := row.Scan(&n.candidateID, &n.note.ID, &n.note.Author, &n.note.Column, &n.note.Content, &n.note.CreatedAt)
		n.note.CreatedAt = n.note.CreatedAt.UTC()
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}

	return assembleCandidates(candidates, scores, notes), nil
}

// ExistsByEmail reports whether the email is already invited.
func (r *PostgresCandidateRepository) ExistsByEmail(ctx context.Context, interviewID uuid.UUID, email string) (bool, error) {
	var exists bool
	err := sharedPersistence.Executor(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM candidates WHERE interview_id = $1 AND email = $2)`,
		interviewID, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check candidate: %w", err)
	}
	return exists, nil
}

// StatsFor counts candidates per interview in one query.
func (r *PostgresCandidateRepository) StatsFor(ctx context.Context, interviewIDs []uuid.UUID) (map[uuid.UUID]interviews.Stats, error) {
	out := emptyStats(interviewIDs)
	if len(interviewIDs) == 0 {
		return out, nil
	}

	ids := make([]string, len(interviewIDs))
	for i, id := range interviewIDs {
		ids[i] = id.String()
	}

	rows, err := sharedPersistence.Executor(ctx, r.pool).Query(ctx, `
		SELECT c.interview_id,
			COUNT(*),
			COUNT(c.completed_at),
			COUNT(*) FILTER (WHERE EXISTS (SELECT 1 FROM candidate_scores s WHERE s.candidate_id = c.id))
		FROM candidates c
		WHERE c.interview_id = ANY($1::uuid[])
		GROUP BY c.interview_id`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count candidates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    uuid.UUID
			stats interviews.Stats
		)
		if err := rows.Scan(&id, &stats.Invited, &stats.Completed, &stats.Graded); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		out[id] = stats
	}
	return out, rows.Err()
}

func scanPostgresCandidate(s scanner) (candidateRow, error) {
	var row candidateRow
	var completedAt *time.Time
	if err := s.Scan(&row.id, &row.interviewID, &row.name, &row.email, &row.invitedAt, &completedAt); err != nil {
		return candidateRow{}, err
	}
	row.invitedAt = row.invitedAt.UTC()
	if completedAt != nil {
		t := completedAt.UTC()
		row.completedAt = &t
	}
	return row, nil
}

var _ domain.Repository = (*PostgresCandidateRepository)(nil)
