package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	"github.com/felixgeelhaar/panelist/internal/results/domain"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/panelist/internal/shared/infrastructure/persistence"
)

const sqliteCandidateColumns = `c.id, c.interview_id, c.name, c.email, c.invited_at, c.completed_at`

// SQLiteCandidateRepository implements domain.Repository using SQLite.
type SQLiteCandidateRepository struct {
	db *sql.DB
}

// NewSQLiteCandidateRepository creates a new SQLite candidate repository.
func NewSQLiteCandidateRepository(db *sql.DB) *SQLiteCandidateRepository {
	return &SQLiteCandidateRepository{db: db}
}

func sqliteTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Save upserts the candidate with its scores and notes.
func (r *SQLiteCandidateRepository) Save(ctx context.Context, c *domain.Candidate) error {
	return sharedPersistence.InSQLiteTx(ctx, r.db, func(exec sharedPersistence.SQLiteExecutor) error {
		var completedAt sql.NullString
		if c.CompletedAt() != nil {
			completedAt = sql.NullString{String: sqliteTime(*c.CompletedAt()), Valid: true}
		}

		_, err := exec.ExecContext(ctx, `
			INSERT INTO candidates (id, interview_id, name, email, invited_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				completed_at = excluded.completed_at`,
			c.ID().String(), c.InterviewID().String(), c.Name(), c.Email(),
			sqliteTime(c.InvitedAt()), completedAt,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return domain.ErrDuplicateCandidate
			}
			return fmt.Errorf("failed to save candidate: %w", err)
		}

		now := sqliteTime(time.Now())
		for _, s := range c.Scores() {
			_, err := exec.ExecContext(ctx, `
				INSERT INTO candidate_scores (candidate_id, criterion_id, value, recorded_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT (candidate_id, criterion_id) DO UPDATE SET
					value = excluded.value,
					recorded_at = excluded.recorded_at`,
				c.ID().String(), s.CriterionID.String(), s.Value, now,
			)
			if err != nil {
				return fmt.Errorf("failed to save score: %w", err)
			}
		}

		for _, n := range c.Notes() {
			_, err := exec.ExecContext(ctx, `
				INSERT INTO candidate_notes (id, candidate_id, author, column_name, content, created_at)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT (id) DO NOTHING`,
				n.ID.String(), c.ID().String(), n.Author, n.Column, n.Content, sqliteTime(n.CreatedAt),
			)
			if err != nil {
				return fmt.Errorf("failed to save note: %w", err)
			}
		}
		return nil
	})
}

// FindByID loads a candidate of the given interview.
func (r *SQLiteCandidateRepository) FindByID(ctx context.Context, id, interviewID uuid.UUID) (*domain.Candidate, error) {
	candidates, err := r.find(ctx, `c.id = ? AND c.interview_id = ?`, id.String(), interviewID.String())
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, domain.ErrCandidateNotFound
	}
	return candidates[0], nil
}

// FindByInterview loads every candidate of an interview.
func (r *SQLiteCandidateRepository) FindByInterview(ctx context.Context, interviewID uuid.UUID) ([]*domain.Candidate, error) {
	return r.find(ctx, `c.interview_id = ?`, interviewID.String())
}

// find loads candidates matching where, which filters the candidates table
// aliased as c.
func (r *SQLiteCandidateRepository) find(ctx context.Context, where string, args ...any) ([]*domain.Candidate, error) {
	exec := sharedPersistence.SQLiteExecutorFrom(ctx, r.db)

	rows, err := exec.QueryContext(ctx, `
		SELECT `+sqliteCandidateColumns+`
		FROM candidates c
		WHERE `+where+`
		ORDER BY c.invited_at, c.rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	candidates, err := collect(rows, scanSQLiteCandidate)
	if err != nil {
		return nil, fmt.Errorf("failed to scan candidates: %w", err)
	}
	if len(candidates) == 0 {
		return []*domain.Candidate{}, nil
	}

	rows, err = exec.QueryContext(ctx, `
		SELECT s.candidate_id, s.criterion_id, cr.name, cr.criterion_type, s.value
		FROM candidate_scores s
		JOIN criteria cr ON cr.id = s.criterion_id
		JOIN candidates c ON c.id = s.candidate_id
		WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	scores, err := collect(rows, scanSQLiteScore)
	if err != nil {
		return nil, fmt.Errorf("failed to scan scores: %w", err)
	}

	rows, err = exec.QueryContext(ctx, `
		SELECT n.candidate_id, n.id, n.author, n.column_name, n.content, n.created_at
		FROM candidate_notes n
		JOIN candidates c ON c.id = n.candidate_id
		WHERE `+where+`
		ORDER BY n.created_at, n.rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	notes, err := collect(rows, scanSQLiteNote)
	if err != nil {
		return nil, fmt.Errorf("failed to scan notes: %w", err)
	}

	return assembleCandidates(candidates, scores, notes), nil
}

// ExistsByEmail reports whether the email is already invited.
func (r *SQLiteCandidateRepository) ExistsByEmail(ctx context.Context, interviewID uuid.UUID, email string) (bool, error) {
	var n int
	err := sharedPersistence.SQLiteExecutorFrom(ctx, r.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM candidates WHERE interview_id = ? AND email = ?`,
		interviewID.String(), email,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check candidate: %w", err)
	}
	return n > 0, nil
}

// StatsFor counts candidates per interview. Every requested id is present
// in the result.
func (r *SQLiteCandidateRepository) StatsFor(ctx context.Context, interviewIDs []uuid.UUID) (map[uuid.UUID]interviews.Stats, error) {
	out := emptyStats(interviewIDs)
	if len(interviewIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(interviewIDs))
	for i, id := range interviewIDs {
		args[i] = id.String()
	}

	rows, err := sharedPersistence.SQLiteExecutorFrom(ctx, r.db).QueryContext(ctx, `
		SELECT c.interview_id,
			COUNT(*),
			COUNT(c.completed_at),
			SUM(CASE WHEN EXISTS (SELECT 1 FROM candidate_scores s WHERE s.candidate_id = c.id) THEN 1 ELSE 0 END)
		FROM candidates c
		WHERE c.interview_id IN (`+strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")+`)
		GROUP BY c.interview_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count candidates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    string
			stats interviews.Stats
		)
		if err := rows.Scan(&id, &stats.Invited, &stats.Completed, &stats.Graded); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		interviewID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid interview_id: %w", err)
		}
		out[interviewID] = stats
	}
	return out, rows.Err()
}

func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanSQLiteCandidate(s scanner) (candidateRow, error) {
	var (
		row                    candidateRow
		id, interviewID, invAt string
		completedAt            sql.NullString
	)
	if err := s.Scan(&id, &interviewID, &row.name, &row.email, &invAt, &completedAt); err != nil {
		return candidateRow{}, err
	}

	var err error
	if row.id, err = uuid.Parse(id); err != nil {
		return candidateRow{}, fmt.Errorf("invalid candidate id: %w", err)
	}
	if row.interviewID, err = uuid.Parse(interviewID); err != nil {
		return candidateRow{}, fmt.Errorf("invalid interview_id: %w", err)
	}
	if row.invitedAt, err = time.Parse(time.RFC3339, invAt); err != nil {
		return candidateRow{}, fmt.Errorf("invalid invited_at: %w", err)
	}
	if completedAt.Valid {
		t, err := time.Parse(time.RFC3339, completedAt.String)
		if err != nil {
			return candidateRow{}, fmt.Errorf("invalid completed_at: %w", err)
		}
		row.completedAt = &t
	}
	return row, nil
}

func scanSQLiteScore(s scanner) (scoreRow, error) {
	var (
		row                    scoreRow
		candidateID, criterion string
		name, typ              string
		value                  float64
	)
	if err := s.Scan(&candidateID, &criterion, &name, &typ, &value); err != nil {
		return scoreRow{}, err
	}

	var err error
	if row.candidateID, err = uuid.Parse(candidateID); err != nil {
		return scoreRow{}, fmt.Errorf("invalid candidate_id: %w", err)
	}
	if row.score.CriterionID, err = uuid.Parse(criterion); err != nil {
		return scoreRow{}, fmt.Errorf("invalid criterion_id: %w", err)
	}
	row.score.CriterionName = name
	row.score.Type = interviews.CriterionType(typ)
	row.score.Value = value
	return row, nil
}

func scanSQLiteNote(s scanner) (noteRow, error) {
	var (
		row             noteRow
		candidateID, id string
		createdAt       string
	)
	if err := s.Scan(&candidateID, &id, &row.note.Author, &row.note.Column, &row.note.Content, &createdAt); err != nil {
		return noteRow{}, err
	}

	var err error
	if row.candidateID, err = uuid.Parse(candidateID); err != nil {
		return noteRow{}, fmt.Errorf("invalid candidate_id: %w", err)
	}
	if row.note.ID, err = uuid.Parse(id); err != nil {
		return noteRow{}, fmt.Errorf("invalid note id: %w", err)
	}
	if row.note.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return noteRow{}, fmt.Errorf("invalid created_at: %w", err)
	}
	return row, nil
}

var _ domain.Repository = (*SQLiteCandidateRepository)(nil)
