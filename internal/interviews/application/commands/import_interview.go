package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
	sharedApplication "github.com/felixgeelhaar/panelist/internal/shared/application"
)

// ImportInterviewCommand creates an interview from a YAML template.
type ImportInterviewCommand struct {
	OwnerEmail string
	Data       []byte
}

// ImportInterviewHandler creates and fills an interview in one transaction.
// Imported interviews always start as drafts; the template status is ignored.
type ImportInterviewHandler struct {
	create *CreateInterviewHandler
	save   *SaveInterviewHandler
	uow    sharedApplication.UnitOfWork
	logger *slog.Logger
}

// NewImportInterviewHandler creates a new ImportInterviewHandler.
func NewImportInterviewHandler(
	create *CreateInterviewHandler,
	save *SaveInterviewHandler,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *ImportInterviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportInterviewHandler{create: create, save: save, uow: uow, logger: logger}
}

// Handle executes the ImportInterviewCommand.
func (h *ImportInterviewHandler) Handle(ctx context.Context, cmd ImportInterviewCommand) (*SaveResult, error) {
	draft, err := DecodeTemplate(cmd.Data)
	if err != nil {
		return nil, err
	}
	draft.Status = ""

	var result *SaveResult
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		original, err := h.create.Handle(txCtx, CreateInterviewCommand{
			OwnerEmail: cmd.OwnerEmail,
			Title:      draft.Title,
		})
		if err != nil {
			return err
		}

		edited, err := draft.Apply(original)
		if err != nil {
			return err
		}

		result, err = h.save.Handle(txCtx, SaveInterviewCommand{Original: original, Edited: edited})
		return err
	})
	if err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "interview imported",
		"interview_id", result.Interview.ID(),
		"tasks", result.Interview.TaskCount(),
	)
	return result, nil
}

// ExportInterviewCommand identifies the interview to export.
type ExportInterviewCommand struct {
	InterviewID uuid.UUID
	OwnerEmail  string
}

// ExportInterviewHandler renders a stored interview as a YAML template.
type ExportInterviewHandler struct {
	repo domain.Repository
}

// NewExportInterviewHandler creates a new ExportInterviewHandler.
func NewExportInterviewHandler(repo domain.Repository) *ExportInterviewHandler {
	return &ExportInterviewHandler{repo: repo}
}

// Handle executes the ExportInterviewCommand.
func (h *ExportInterviewHandler) Handle(ctx context.Context, cmd ExportInterviewCommand) ([]byte, error) {
	interview, err := h.repo.FindByID(ctx, cmd.InterviewID, domain.NormalizeOwner(cmd.OwnerEmail))
	if err != nil {
		return nil, err
	}
	return EncodeTemplate(DraftFromInterview(interview))
}
