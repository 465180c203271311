package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/panelist/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

const (
	sqliteInterviewColumns = `id, owner_email, title, status, created_at, updated_at`

	sqliteTaskColumns = `id, interview_id, title, prompt, ai_behavior, duration_minutes,
		require_audio, require_screen_share, require_webcam, require_file_upload, task_order`

	sqliteCriterionColumns = `id, interview_id, task_id, name, description, criterion_type, scope, position`
)

const sqliteUpsertTaskSQL = `
	INSERT INTO tasks (
		id, interview_id, title, prompt, ai_behavior, duration_minutes,
		require_audio, require_screen_share, require_webcam, require_file_upload,
		task_order, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		title = excluded.title,
		prompt = excluded.prompt,
		ai_behavior = excluded.ai_behavior,
		duration_minutes = excluded.duration_minutes,
		require_audio = excluded.require_audio,
		require_screen_share = excluded.require_screen_share,
		require_webcam = excluded.require_webcam,
		require_file_upload = excluded.require_file_upload,
		task_order = excluded.task_order,
		updated_at = excluded.updated_at
	WHERE tasks.interview_id = excluded.interview_id
	RETURNING ` + sqliteTaskColumns

const sqliteUpsertCriterionSQL = `
	INSERT INTO criteria (
		id, interview_id, task_id, name, description, criterion_type, scope, position, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		interview_id = excluded.interview_id,
		task_id = excluded.task_id,
		name = excluded.name,
		description = excluded.description,
		criterion_type = excluded.criterion_type,
		scope = excluded.scope,
		position = excluded.position
	WHERE COALESCE(criteria.interview_id, (SELECT t.interview_id FROM tasks t WHERE t.id = criteria.task_id))
		= COALESCE(excluded.interview_id, (SELECT t.interview_id FROM tasks t WHERE t.id = excluded.task_id))
	RETURNING ` + sqliteCriterionColumns

// SQLiteInterviewRepository implements domain.Repository using SQLite.
// Timestamps are stored as UTC RFC3339 text.
type SQLiteInterviewRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteInterviewRepository creates a new SQLite interview repository.
func NewSQLiteInterviewRepository(db *sql.DB) *SQLiteInterviewRepository {
	return &SQLiteInterviewRepository{db: db, now: time.Now}
}

func (r *SQLiteInterviewRepository) exec(ctx context.Context) sharedPersistence.SQLiteExecutor {
	return sharedPersistence.SQLiteExecutorFrom(ctx, r.db)
}

// sqliteTimeLayout is fixed width so stored values sort as text and
// updated_at compares exactly.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func sqliteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// Create inserts the interview row.
func (r *SQLiteInterviewRepository) Create(ctx context.Context, i *domain.Interview) error {
	_, err := r.exec(ctx).ExecContext(ctx, `
		INSERT INTO interviews (`+sqliteInterviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		i.ID().String(),
		i.OwnerEmail(),
		i.Title(),
		i.Status().String(),
		sqliteTime(i.CreatedAt()),
		sqliteTime(i.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

// FindByID loads an interview with its tasks and criteria.
func (r *SQLiteInterviewRepository) FindByID(ctx context.Context, id uuid.UUID, ownerEmail string) (*domain.Interview, error) {
	exec := r.exec(ctx)
	row, err := scanSQLiteInterview(exec.QueryRowContext(ctx, `
		SELECT `+sqliteInterviewColumns+`
		FROM interviews
		WHERE id = ? AND owner_email = ?`,
		id.String(), ownerEmail,
	))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrInterviewNotFound
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	return r.load(ctx, exec, row)
}

// FindByOwner loads every interview of an owner, newest first.
func (r *SQLiteInterviewRepository) FindByOwner(ctx context.Context, ownerEmail string) ([]*domain.Interview, error) {
	exec := r.exec(ctx)
	rows, err := exec.QueryContext(ctx, `
		SELECT `+sqliteInterviewColumns+`
		FROM interviews
		WHERE owner_email = ?
		ORDER BY created_at DESC, id`,
		ownerEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}

	// Collect before loading children: the connection is shared.
	var interviewRows []domain.InterviewRow
	for rows.Next() {
		row, err := scanSQLiteInterview(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		interviewRows = append(interviewRows, row)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	_ = rows.Close()

	interviews := make([]*domain.Interview, 0, len(interviewRows))
	for _, row := range interviewRows {
		i, err := r.load(ctx, exec, row)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, i)
	}
	return interviews, nil
}

func (r *SQLiteInterviewRepository) load(ctx context.Context, exec sharedPersistence.SQLiteExecutor, row domain.InterviewRow) (*domain.Interview, error) {
	taskRows, err := exec.QueryContext(ctx, `
		SELECT `+sqliteTaskColumns+`
		FROM tasks
		WHERE interview_id = ?
		ORDER BY task_order, created_at, id`,
		row.ID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	tasks, err := collectSQLite(taskRows, scanSQLiteTask)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}

	criterionRows, err := exec.QueryContext(ctx, `
		SELECT c.id, c.interview_id, c.task_id, c.name, c.description, c.criterion_type, c.scope, c.position
		FROM criteria c
		LEFT JOIN tasks t ON t.id = c.task_id
		WHERE c.interview_id = ? OR t.interview_id = ?
		ORDER BY c.position, c.created_at, c.id`,
		row.ID.String(), row.ID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get criteria: %w", err)
	}
	criteria, err := collectSQLite(criterionRows, scanSQLiteCriterion)
	if err != nil {
		return nil, fmt.Errorf("failed to get criteria: %w", err)
	}

	return assembleInterview(row, tasks, criteria), nil
}

// Delete removes an interview; tasks, criteria and results cascade.
func (r *SQLiteInterviewRepository) Delete(ctx context.Context, id uuid.UUID, ownerEmail string) error {
	result, err := r.exec(ctx).ExecContext(ctx,
		`DELETE FROM interviews WHERE id = ? AND owner_email = ?`,
		id.String(), ownerEmail,
	)
	if err != nil {
		return fmt.Errorf("failed to delete interview: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete interview: %w", err)
	}
	if n == 0 {
		return domain.ErrInterviewNotFound
	}
	return nil
}

// UpdateInterview updates title, status and updated_at when the stored
// updated_at still equals row.UpdatedAt.
func (r *SQLiteInterviewRepository) UpdateInterview(ctx context.Context, row domain.InterviewRow) (domain.InterviewRow, error) {
	exec := r.exec(ctx)
	next := r.now()
	if !next.After(row.UpdatedAt) {
		next = row.UpdatedAt.Add(time.Microsecond)
	}

	updated, err := scanSQLiteInterview(exec.QueryRowContext(ctx, `
		UPDATE interviews
		SET title = ?, status = ?, updated_at = ?
		WHERE id = ? AND owner_email = ? AND updated_at = ?
		RETURNING `+sqliteInterviewColumns,
		row.Title,
		row.Status.String(),
		sqliteTime(next),
		row.ID.String(),
		row.OwnerEmail,
		sqliteTime(row.UpdatedAt),
	))
	if err == nil {
		return updated, nil
	}
	if !database.IsNoRows(err) {
		return domain.InterviewRow{}, fmt.Errorf("failed to update interview: %w", err)
	}

	var exists int
	err = exec.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interviews WHERE id = ? AND owner_email = ?`,
		row.ID.String(), row.OwnerEmail,
	).Scan(&exists)
	if err != nil {
		return domain.InterviewRow{}, fmt.Errorf("failed to update interview: %w", err)
	}
	if exists == 0 {
		return domain.InterviewRow{}, domain.ErrInterviewNotFound
	}
	return domain.InterviewRow{}, domain.ErrStaleInterview
}

// DeleteTasks deletes tasks of one interview by id.
func (r *SQLiteInterviewRepository) DeleteTasks(ctx context.Context, interviewID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	args := append([]any{interviewID.String()}, stringArgs(idStrings(ids))...)
	if _, err := r.exec(ctx).ExecContext(ctx,
		`DELETE FROM tasks WHERE interview_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		args...,
	); err != nil {
		return fmt.Errorf("failed to delete tasks: %w", err)
	}
	return nil
}

// DeleteCriteria deletes criteria of one interview by id.
func (r *SQLiteInterviewRepository) DeleteCriteria(ctx context.Context, interviewID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	args := append(stringArgs(idStrings(ids)), interviewID.String(), interviewID.String())
	if _, err := r.exec(ctx).ExecContext(ctx, `
		DELETE FROM criteria
		WHERE id IN (`+placeholders(len(ids))+`)
		AND (interview_id = ? OR task_id IN (SELECT id FROM tasks WHERE interview_id = ?))`,
		args...,
	); err != nil {
		return fmt.Errorf("failed to delete criteria: %w", err)
	}
	return nil
}

// UpsertTasks writes the rows in one transaction and returns the stored rows
// in input order.
func (r *SQLiteInterviewRepository) UpsertTasks(ctx context.Context, rows []domain.TaskRow) ([]domain.TaskRow, error) {
	out := make([]domain.TaskRow, 0, len(rows))
	now := sqliteTime(r.now())

	err := sharedPersistence.InSQLiteTx(ctx, r.db, func(exec sharedPersistence.SQLiteExecutor) error {
		for _, row := range rows {
			id := row.ID
			if row.IsNew() {
				id = uuid.New()
			}
			saved, err := scanSQLiteTask(exec.QueryRowContext(ctx, sqliteUpsertTaskSQL,
				id.String(),
				row.InterviewID.String(),
				row.Title,
				row.Prompt,
				string(row.AIBehavior.OrDefault()),
				row.DurationMinutes,
				row.Requirements.Audio,
				row.Requirements.ScreenShare,
				row.Requirements.Webcam,
				row.Requirements.FileUpload,
				row.Order,
				now,
				now,
			))
			if err != nil {
				if database.IsNoRows(err) {
					return fmt.Errorf("task %s belongs to another interview: %w", id, domain.ErrTaskNotFound)
				}
				return fmt.Errorf("failed to upsert task: %w", err)
			}
			saved.ClientKey = row.ClientKey
			out = append(out, saved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertCriteria writes the rows in one transaction and returns the stored
// rows in input order.
func (r *SQLiteInterviewRepository) UpsertCriteria(ctx context.Context, rows []domain.CriterionRow) ([]domain.CriterionRow, error) {
	out := make([]domain.CriterionRow, 0, len(rows))
	now := sqliteTime(r.now())

	err := sharedPersistence.InSQLiteTx(ctx, r.db, func(exec sharedPersistence.SQLiteExecutor) error {
		for _, row := range rows {
			if err := row.Validate(); err != nil {
				return fmt.Errorf("criterion %q: %w", row.Name, err)
			}
			id := row.ID
			if row.IsNew() {
				id = uuid.New()
			}
			saved, err := scanSQLiteCriterion(exec.QueryRowContext(ctx, sqliteUpsertCriterionSQL,
				id.String(),
				nullableID(row.InterviewID),
				nullableID(row.TaskID),
				row.Name,
				row.Description,
				string(row.Type),
				string(row.Scope),
				row.Position,
				now,
			))
			if err != nil {
				if database.IsNoRows(err) {
					return fmt.Errorf("criterion %s belongs to another interview: %w", id, domain.ErrCriterionNotFound)
				}
				return fmt.Errorf("failed to upsert criterion: %w", err)
			}
			saved.ClientKey = row.ClientKey
			out = append(out, saved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func nullableID(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func collectSQLite[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
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

func scanSQLiteInterview(s scanner) (domain.InterviewRow, error) {
	var (
		id, owner, title, status string
		createdAt, updatedAt     string
	)
	if err := s.Scan(&id, &owner, &title, &status, &createdAt, &updatedAt); err != nil {
		return domain.InterviewRow{}, err
	}

	row := domain.InterviewRow{OwnerEmail: owner, Title: title}
	var err error
	if row.ID, err = uuid.Parse(id); err != nil {
		return domain.InterviewRow{}, fmt.Errorf("invalid interview id: %w", err)
	}
	if row.Status, err = domain.ParseStatus(status); err != nil {
		return domain.InterviewRow{}, fmt.Errorf("invalid status %q: %w", status, err)
	}
	if row.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return domain.InterviewRow{}, fmt.Errorf("invalid created_at: %w", err)
	}
	if row.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return domain.InterviewRow{}, fmt.Errorf("invalid updated_at: %w", err)
	}
	return row, nil
}

func scanSQLiteTask(s scanner) (domain.TaskRow, error) {
	var (
		row             domain.TaskRow
		id, interviewID string
		behavior        string
	)
	err := s.Scan(
		&id, &interviewID, &row.Title, &row.Prompt, &behavior, &row.DurationMinutes,
		&row.Requirements.Audio, &row.Requirements.ScreenShare,
		&row.Requirements.Webcam, &row.Requirements.FileUpload,
		&row.Order,
	)
	if err != nil {
		return domain.TaskRow{}, err
	}
	if row.ID, err = uuid.Parse(id); err != nil {
		return domain.TaskRow{}, fmt.Errorf("invalid task id: %w", err)
	}
	if row.InterviewID, err = uuid.Parse(interviewID); err != nil {
		return domain.TaskRow{}, fmt.Errorf("invalid interview_id: %w", err)
	}
	row.AIBehavior = domain.AIBehavior(behavior)
	return row, nil
}

func scanSQLiteCriterion(s scanner) (domain.CriterionRow, error) {
	var (
		row                 domain.CriterionRow
		id                  string
		interviewID, taskID sql.NullString
		typ, scope          string
	)
	if err := s.Scan(&id, &interviewID, &taskID, &row.Name, &row.Description, &typ, &scope, &row.Position); err != nil {
		return domain.CriterionRow{}, err
	}

	var err error
	if row.ID, err = uuid.Parse(id); err != nil {
		return domain.CriterionRow{}, fmt.Errorf("invalid criterion id: %w", err)
	}
	if row.InterviewID, err = parseNullableID(interviewID); err != nil {
		return domain.CriterionRow{}, fmt.Errorf("invalid interview_id: %w", err)
	}
	if row.TaskID, err = parseNullableID(taskID); err != nil {
		return domain.CriterionRow{}, fmt.Errorf("invalid task_id: %w", err)
	}
	row.Type = domain.CriterionType(typ)
	row.Scope = domain.Scope(scope)
	return row, nil
}

func parseNullableID(v sql.NullString) (*uuid.UUID, error) {
	if !v.Valid {
		return nil, nil
	}
	id, err := uuid.Parse(v.String)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

var (
	_ domain.Repository = (*SQLiteInterviewRepository)(nil)
	_ scanner           = (*sql.Row)(nil)
)
