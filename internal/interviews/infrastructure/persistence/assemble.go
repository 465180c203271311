package persistence

import (
	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
	"github.com/google/uuid"
)

// scanner is satisfied by *sql.Row, *sql.Rows, pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// assembleInterview builds the aggregate from its rows. Tasks arrive sorted
// by task_order, criteria by position.
func assembleInterview(row domain.InterviewRow, tasks []domain.TaskRow, criteria []domain.CriterionRow) *domain.Interview {
	byTask := make(map[uuid.UUID][]domain.Criterion, len(tasks))
	general := make([]domain.Criterion, 0)
	for _, c := range criteria {
		if c.TaskID != nil {
			byTask[*c.TaskID] = append(byTask[*c.TaskID], c.Criterion())
			continue
		}
		general = append(general, c.Criterion())
	}

	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Task(byTask[t.ID]))
	}

	return domain.RehydrateInterview(
		row.ID, row.OwnerEmail, row.Title, row.Status,
		out, general,
		row.CreatedAt, row.UpdatedAt,
	)
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
