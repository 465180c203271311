package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/panelist/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgInterviewColumns = `id, owner_email, title, status, created_at, updated_at`

	pgTaskColumns = `id, interview_id, title, prompt, ai_behavior, duration_minutes,
		require_audio, require_screen_share, require_webcam, require_file_upload, task_order`

	pgCriterionColumns = `id, interview_id, task_id, name, description, criterion_type, scope, position`
)

const pgUpsertTaskSQL = `
	INSERT INTO tasks (
		id, interview_id, title, prompt, ai_behavior, duration_minutes,
		require_audio, require_screen_share, require_webcam, require_file_upload,
		task_order, created_at, updated_at
	) VALUES (COALESCE($1::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		prompt = EXCLUDED.prompt,
		ai_behavior = EXCLUDED.ai_behavior,
		duration_minutes = EXCLUDED.duration_minutes,
		require_audio = EXCLUDED.require_audio,
		require_screen_share = EXCLUDED.require_screen_share,
		require_webcam = EXCLUDED.require_webcam,
		require_file_upload = EXCLUDED.require_file_upload,
		task_order = EXCLUDED.task_order,
		updated_at = EXCLUDED.updated_at
	WHERE tasks.interview_id = EXCLUDED.interview_id
	RETURNING ` + pgTaskColumns

const pgUpsertCriterionSQL = `
	INSERT INTO criteria (
		id, interview_id, task_id, name, description, criterion_type, scope, position, created_at
	) VALUES (COALESCE($1::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
		interview_id = EXCLUDED.interview_id,
		task_id = EXCLUDED.task_id,
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		criterion_type = EXCLUDED.criterion_type,
		scope = EXCLUDED.scope,
		position = EXCLUDED.position
	WHERE COALESCE(criteria.interview_id, (SELECT t.interview_id FROM tasks t WHERE t.id = criteria.task_id))
		= COALESCE(EXCLUDED.interview_id, (SELECT t.interview_id FROM tasks t WHERE t.id = EXCLUDED.task_id))
	RETURNING ` + pgCriterionColumns

// PostgresInterviewRepository implements domain.Repository using PostgreSQL.
// Upserts are sent as one pgx.Batch.
type PostgresInterviewRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresInterviewRepository creates a new PostgreSQL interview repository.
func NewPostgresInterviewRepository(pool *pgxpool.Pool) *PostgresInterviewRepository {
	return &PostgresInterviewRepository{pool: pool}
}

func (r *PostgresInterviewRepository) exec(ctx context.Context) sharedPersistence.DBExecutor {
	return sharedPersistence.Executor(ctx, r.pool)
}

// Create inserts the interview row.
func (r *PostgresInterviewRepository) Create(ctx context.Context, i *domain.Interview) error {
	_, err := r.exec(ctx).Exec(ctx, `
		INSERT INTO interviews (`+pgInterviewColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		i.ID(), i.OwnerEmail(), i.Title(), i.Status().String(), i.CreatedAt(), i.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

// FindByID loads an interview with its tasks and criteria.
func (r *PostgresInterviewRepository) FindByID(ctx context.Context, id uuid.UUID, ownerEmail string) (*domain.Interview, error) {
	exec := r.exec(ctx)
	row, err := scanPostgresInterview(exec.QueryRow(ctx, `
		SELECT `+pgInterviewColumns+`
		FROM interviews
		WHERE id = $1 AND owner_email = $2`,
		id, ownerEmail,
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
func (r *PostgresInterviewRepository) FindByOwner(ctx context.Context, ownerEmail string) ([]*domain.Interview, error) {
	exec := r.exec(ctx)
	rows, err := exec.Query(ctx, `
		SELECT `+pgInterviewColumns+`
		FROM interviews
		WHERE owner_email = $1
		ORDER BY created_at DESC, id`,
		ownerEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	interviewRows, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.InterviewRow, error) {
		return scanPostgresInterview(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}

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

func (r *PostgresInterviewRepository) load(ctx context.Context, exec sharedPersistence.DBExecutor, row domain.InterviewRow) (*domain.Interview, error) {
	taskRows, err := exec.Query(ctx, `
		SELECT `+pgTaskColumns+`
		FROM tasks
		WHERE interview_id = $1
		ORDER BY task_order, created_at, id`,
		row.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	tasks, err := pgx.CollectRows(taskRows, func(cr pgx.CollectableRow) (domain.TaskRow, error) {
		return scanPostgresTask(cr)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}

	criterionRows, err := exec.Query(ctx, `
		SELECT c.id, c.interview_id, c.task_id, c.name, c.description, c.criterion_type, c.scope, c.position
		FROM criteria c
		LEFT JOIN tasks t ON t.id = c.task_id
		WHERE c.interview_id = $1 OR t.interview_id = $1
		ORDER BY c.position, c.created_at, c.id`,
		row.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get criteria: %w", err)
	}
	criteria, err := pgx.CollectRows(criterionRows, func(cr pgx.CollectableRow) (domain.CriterionRow, error) {
		return scanPostgresCriterion(cr)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get criteria: %w", err)
	}

	return assembleInterview(row, tasks, criteria), nil
}

// Delete removes an interview; tasks, criteria and results cascade.
func (r *PostgresInterviewRepository) Delete(ctx context.Context, id uuid.UUID, ownerEmail string) error {
	tag, err := r.exec(ctx).Exec(ctx, `DELETE FROM interviews WHERE id = $1 AND owner_email = $2`, id, ownerEmail)
	if err != nil {
		return fmt.Errorf("failed to delete interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInterviewNotFound
	}
	return nil
}

// UpdateInterview updates title, status and updated_at when the stored
// updated_at still equals row.UpdatedAt.
func (r *PostgresInterviewRepository) UpdateInterview(ctx context.Context, row domain.InterviewRow) (domain.InterviewRow, error) {
	exec := r.exec(ctx)
	updated, err := scanPostgresInterview(exec.QueryRow(ctx, `
		UPDATE interviews
		SET title = $1, status = $2, updated_at = GREATEST(NOW(), $5::timestamptz + INTERVAL '1 microsecond')
		WHERE id = $3 AND owner_email = $4 AND updated_at = $5::timestamptz
		RETURNING `+pgInterviewColumns,
		row.Title, row.Status.String(), row.ID, row.OwnerEmail, row.UpdatedAt,
	))
	if err == nil {
		return updated, nil
	}
	if !database.IsNoRows(err) {
		return domain.InterviewRow{}, fmt.Errorf("failed to update interview: %w", err)
	}

	var exists bool
	err = exec.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM interviews WHERE id = $1 AND owner_email = $2)`,
		row.ID, row.OwnerEmail,
	).Scan(&exists)
	if err != nil {
		return domain.InterviewRow{}, fmt.Errorf("failed to update interview: %w", err)
	}
	if !exists {
		return domain.InterviewRow{}, domain.ErrInterviewNotFound
	}
	return domain.InterviewRow{}, domain.ErrStaleInterview
}

// DeleteTasks deletes tasks of one interview by id.
func (r *PostgresInterviewRepository) DeleteTasks(ctx context.Context, interviewID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.exec(ctx).Exec(ctx,
		`DELETE FROM tasks WHERE interview_id = $1 AND id = ANY($2::uuid[])`,
		interviewID, idStrings(ids),
	); err != nil {
		return fmt.Errorf("failed to delete tasks: %w", err)
	}
	return nil
}

// DeleteCriteria deletes criteria of one interview by id.
func (r *PostgresInterviewRepository) DeleteCriteria(ctx context.Context, interviewID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.exec(ctx).Exec(ctx, `
		DELETE FROM criteria
		WHERE id = ANY($2::uuid[])
		AND (interview_id = $1 OR task_id IN (SELECT id FROM tasks WHERE interview_id = $1))`,
		interviewID, idStrings(ids),
	); err != nil {
		return fmt.Errorf("failed to delete criteria: %w", err)
	}
	return nil
}

// UpsertTasks sends all rows in one batch and returns the stored rows in
// input order.
func (r *PostgresInterviewRepository) UpsertTasks(ctx context.Context, rows []domain.TaskRow) ([]domain.TaskRow, error) {
	if len(rows) == 0 {
		return []domain.TaskRow{}, nil
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(pgUpsertTaskSQL,
			optionalID(row.ID),
			row.InterviewID,
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
		)
	}

	out := make([]domain.TaskRow, 0, len(rows))
	err := sharedPersistence.InTx(ctx, r.pool, func(exec sharedPersistence.DBExecutor) error {
		results := exec.SendBatch(ctx, batch)
		for _, row := range rows {
			saved, err := scanPostgresTask(results.QueryRow())
			if err != nil {
				_ = results.Close()
				if database.IsNoRows(err) {
					return fmt.Errorf("task %s belongs to another interview: %w", row.ID, domain.ErrTaskNotFound)
				}
				return fmt.Errorf("failed to upsert task: %w", err)
			}
			saved.ClientKey = row.ClientKey
			out = append(out, saved)
		}
		return results.Close()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertCriteria sends all rows in one batch and returns the stored rows in
// input order.
func (r *PostgresInterviewRepository) UpsertCriteria(ctx context.Context, rows []domain.CriterionRow) ([]domain.CriterionRow, error) {
	if len(rows) == 0 {
		return []domain.CriterionRow{}, nil
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("criterion %q: %w", row.Name, err)
		}
		batch.Queue(pgUpsertCriterionSQL,
			optionalID(row.ID),
			row.InterviewID,
			row.TaskID,
			row.Name,
			row.Description,
			string(row.Type),
			string(row.Scope),
			row.Position,
			now,
		)
	}

	out := make([]domain.CriterionRow, 0, len(rows))
	err := sharedPersistence.InTx(ctx, r.pool, func(exec sharedPersistence.DBExecutor) error {
		results := exec.SendBatch(ctx, batch)
		for _, row := range rows {
			saved, err := scanPostgresCriterion(results.QueryRow())
			if err != nil {
				_ = results.Close()
				if database.IsNoRows(err) {
					return fmt.Errorf("criterion %s belongs to another interview: %w", row.ID, domain.ErrCriterionNotFound)
				}
				return fmt.Errorf("failed to upsert criterion: %w", err)
			}
			saved.ClientKey = row.ClientKey
			out = append(out, saved)
		}
		return results.Close()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func optionalID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

func scanPostgresInterview(s scanner) (domain.InterviewRow, error) {
	var (
		row    domain.InterviewRow
		status string
	)
	if err := s.Scan(&row.ID, &row.OwnerEmail, &row.Title, &status, &row.CreatedAt, &row.UpdatedAt); err != nil {
		return domain.InterviewRow{}, err
	}
	var err error
	if row.Status, err = domain.ParseStatus(status); err != nil {
		return domain.InterviewRow{}, fmt.Errorf("invalid status %q: %w", status, err)
	}
	row.CreatedAt = row.CreatedAt.UTC()
	row.UpdatedAt = row.UpdatedAt.UTC()
	return row, nil
}

func scanPostgresTask(s scanner) (domain.TaskRow, error) {
	var (
		row      domain.TaskRow
		behavior string
	)
	err := s.Scan(
		&row.ID, &row.InterviewID, &row.Title, &row.Prompt, &behavior, &row.DurationMinutes,
		&row.Requirements.Audio, &row.Requirements.ScreenShare,
		&row.Requirements.Webcam, &row.Requirements.FileUpload,
		&row.Order,
	)
	if err != nil {
		return domain.TaskRow{}, err
	}
	row.AIBehavior = domain.AIBehavior(behavior)
	return row, nil
}

func scanPostgresCriterion(s scanner) (domain.CriterionRow, error) {
	var (
		row        domain.CriterionRow
		typ, scope string
	)
	if err := s.Scan(&row.ID, &row.InterviewID, &row.TaskID, &row.Name, &row.Description, &typ, &scope, &row.Position); err != nil {
		return domain.CriterionRow{}, err
	}
	row.Type = domain.CriterionType(typ)
	row.Scope = domain.Scope(scope)
	return row, nil
}

var _ domain.Repository = (*PostgresInterviewRepository)(nil)
