package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
	sharedApplication "github.com/felixgeelhaar/panelist/internal/shared/application"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/panelist/pkg/observability"
)

// SaveStep names one step of a save.
type SaveStep string

const (
	StepBegin             SaveStep = "begin"
	StepValidate          SaveStep = "validate"
	StepUpdateInterview   SaveStep = "update_interview"
	StepDeleteTasks       SaveStep = "delete_tasks"
	StepUpsertTasks       SaveStep = "upsert_tasks"
	StepReconcileTasks    SaveStep = "reconcile_tasks"
	StepDeleteCriteria    SaveStep = "delete_criteria"
	StepBuildCriteria     SaveStep = "build_criteria"
	StepUpsertCriteria    SaveStep = "upsert_criteria"
	StepReconcileCriteria SaveStep = "reconcile_criteria"
	StepRecordEvents      SaveStep = "record_events"
	StepCommit            SaveStep = "commit"
)

// SaveError reports the step a save failed at and the steps that ran
// before it. All of them were rolled back.
type SaveError struct {
	Step      SaveStep
	Completed []SaveStep
	Err       error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save failed at %s: %v", e.Step, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// SaveCounts summarizes the writes of a save.
type SaveCounts struct {
	TasksDeleted     int `json:"tasks_deleted"`
	TasksUpserted    int `json:"tasks_upserted"`
	CriteriaDeleted  int `json:"criteria_deleted"`
	CriteriaUpserted int `json:"criteria_upserted"`
}

// SaveResult is the canonical interview after a save.
type SaveResult struct {
	Interview *domain.Interview
	Counts    SaveCounts
}

// SaveInterviewCommand carries the last persisted snapshot and the edited one.
type SaveInterviewCommand struct {
	Original *domain.Interview
	Edited   *domain.Interview
}

// SaveInterviewHandler writes an edited interview back to the store in one
// transaction: scalar update, task deletes, task upserts, criteria deletes
// and criteria upserts, in that order.
type SaveInterviewHandler struct {
	repo        domain.Repository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	invalidator ListingInvalidator
	logger      *slog.Logger
	metrics     observability.Metrics
}

// NewSaveInterviewHandler creates a new SaveInterviewHandler.
func NewSaveInterviewHandler(
	repo domain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *SaveInterviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveInterviewHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		uow:        uow,
		logger:     logger,
		metrics:    observability.NoopMetrics{},
	}
}

// WithListingInvalidator invalidates the owner's listing after each commit.
func (h *SaveInterviewHandler) WithListingInvalidator(invalidator ListingInvalidator) *SaveInterviewHandler {
	h.invalidator = invalidator
	return h
}

// WithMetrics records step durations and save outcomes.
func (h *SaveInterviewHandler) WithMetrics(metrics observability.Metrics) *SaveInterviewHandler {
	if metrics != nil {
		h.metrics = metrics
	}
	return h
}

// saveRun tracks progress through the steps of one save.
type saveRun struct {
	h         *SaveInterviewHandler
	step      SaveStep
	completed []SaveStep
}

func (r *saveRun) do(step SaveStep, fn func() error) error {
	r.step = step
	start := time.Now()
	err := fn()
	r.h.metrics.Timing(observability.MetricSaveStep, time.Since(start), observability.T("step", string(step)))
	if err != nil {
		return &SaveError{Step: step, Completed: slices.Clone(r.completed), Err: err}
	}
	r.completed = append(r.completed, step)
	return nil
}

// Handle executes the SaveInterviewCommand. Failures are returned as
// *SaveError.
func (h *SaveInterviewHandler) Handle(ctx context.Context, cmd SaveInterviewCommand) (*SaveResult, error) {
	run := &saveRun{h: h, step: StepBegin}
	var result *SaveResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		result, err = h.save(txCtx, cmd, run)
		if err == nil {
			run.step = StepCommit
		}
		return err
	})
	if err != nil {
		var saveErr *SaveError
		if !errors.As(err, &saveErr) {
			saveErr = &SaveError{Step: run.step, Completed: slices.Clone(run.completed), Err: err}
		}
		h.metrics.Counter(observability.MetricSaveFailures, 1, observability.T("step", string(saveErr.Step)))
		h.logger.ErrorContext(ctx, "interview save failed",
			"interview_id", interviewID(cmd),
			"step", saveErr.Step,
			"completed", saveErr.Completed,
			"error", saveErr.Err,
		)
		return nil, saveErr
	}

	h.metrics.Counter(observability.MetricSaveTotal, 1)
	h.logger.InfoContext(ctx, "interview saved",
		"interview_id", result.Interview.ID(),
		"tasks_deleted", result.Counts.TasksDeleted,
		"tasks_upserted", result.Counts.TasksUpserted,
		"criteria_deleted", result.Counts.CriteriaDeleted,
		"criteria_upserted", result.Counts.CriteriaUpserted,
	)

	invalidate(ctx, h.invalidator, h.logger, result.Interview.OwnerEmail())
	return result, nil
}

func (h *SaveInterviewHandler) save(ctx context.Context, cmd SaveInterviewCommand, run *saveRun) (*SaveResult, error) {
	original, edited := cmd.Original, cmd.Edited
	if err := run.do(StepValidate, func() error { return validateSave(original, edited) }); err != nil {
		return nil, err
	}

	var (
		counts        SaveCounts
		row           domain.InterviewRow
		taskRows      []domain.TaskRow
		savedTasks    []domain.Task
		batch         []domain.CriterionRow
		criterionRows []domain.CriterionRow
		general       []domain.Criterion
	)
	interviewID := edited.ID()
	taskDiff := domain.DiffTasks(interviewID, original.Tasks(), edited.Tasks())

	if err := run.do(StepUpdateInterview, func() error {
		var err error
		update := edited.Row()
		update.UpdatedAt = original.UpdatedAt()
		row, err = h.repo.UpdateInterview(ctx, update)
		return err
	}); err != nil {
		return nil, err
	}

	if err := run.do(StepDeleteTasks, func() error {
		return h.repo.DeleteTasks(ctx, interviewID, taskDiff.ToDelete)
	}); err != nil {
		return nil, err
	}
	counts.TasksDeleted = len(taskDiff.ToDelete)

	if err := run.do(StepUpsertTasks, func() error {
		var err error
		taskRows, err = h.repo.UpsertTasks(ctx, taskDiff.ToUpsert)
		return err
	}); err != nil {
		return nil, err
	}
	counts.TasksUpserted = len(taskRows)

	if err := run.do(StepReconcileTasks, func() error {
		var unmatched []domain.Ref
		savedTasks, unmatched = domain.ReconcileTasks(edited.Tasks(), taskRows)
		if len(unmatched) > 0 {
			return fmt.Errorf("tasks %v: %w", unmatched, domain.ErrUnreconciled)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	criteriaDiff := domain.DiffCriteria(original.GeneralCriteria(), original.Tasks(), edited.GeneralCriteria(), savedTasks)
	if err := run.do(StepDeleteCriteria, func() error {
		return h.repo.DeleteCriteria(ctx, interviewID, criteriaDiff.ToDelete)
	}); err != nil {
		return nil, err
	}
	counts.CriteriaDeleted = len(criteriaDiff.ToDelete)

	if err := run.do(StepBuildCriteria, func() error {
		var err error
		batch, err = domain.BuildCriteriaBatch(interviewID, edited.GeneralCriteria(), savedTasks)
		return err
	}); err != nil {
		return nil, err
	}

	if err := run.do(StepUpsertCriteria, func() error {
		var err error
		criterionRows, err = h.repo.UpsertCriteria(ctx, batch)
		return err
	}); err != nil {
		return nil, err
	}
	counts.CriteriaUpserted = len(criterionRows)

	if err := run.do(StepReconcileCriteria, func() error {
		var unmatched []domain.Ref
		general, savedTasks, unmatched = domain.ReconcileCriteria(edited.GeneralCriteria(), savedTasks, criterionRows)
		if len(unmatched) > 0 {
			return fmt.Errorf("criteria %v: %w", unmatched, domain.ErrUnreconciled)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	canonical := domain.RehydrateInterview(
		row.ID, row.OwnerEmail, row.Title, row.Status,
		savedTasks, general,
		row.CreatedAt, row.UpdatedAt,
	)
	canonical.SetStats(edited.Stats())
	canonical.RecordSaved(original.Status())

	if err := run.do(StepRecordEvents, func() error {
		return recordEvents(ctx, h.outboxRepo, canonical.OwnerEmail(), canonical.DomainEvents())
	}); err != nil {
		return nil, err
	}
	canonical.ClearDomainEvents()

	return &SaveResult{Interview: canonical, Counts: counts}, nil
}

func validateSave(original, edited *domain.Interview) error {
	if original == nil || edited == nil {
		return domain.ErrInterviewMismatch
	}
	if original.ID() != edited.ID() || original.OwnerEmail() != edited.OwnerEmail() {
		return domain.ErrInterviewMismatch
	}
	if err := edited.Validate(); err != nil {
		return err
	}
	if edited.Status() != original.Status() {
		if !original.Status().CanTransitionTo(edited.Status()) {
			return fmt.Errorf("%s to %s: %w", original.Status(), edited.Status(), domain.ErrInvalidStatusTransition)
		}
		if edited.Status() == domain.StatusLive && edited.TaskCount() == 0 {
			return domain.ErrNoTasks
		}
	}
	if original.Status() == domain.StatusClosed && !domain.SameContent(original, edited) {
		return domain.ErrInterviewClosed
	}
	return domain.CheckOwnedRefs(original, edited)
}

func interviewID(cmd SaveInterviewCommand) string {
	if cmd.Edited != nil {
		return cmd.Edited.ID().String()
	}
	if cmd.Original != nil {
		return cmd.Original.ID().String()
	}
	return ""
}
