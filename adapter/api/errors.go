package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/editor"
	interviews "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	results "github.com/felixgeelhaar/panelist/internal/results/domain"
)

var (
	notFoundErrors = []error{
		interviews.ErrInterviewNotFound,
		results.ErrCandidateNotFound,
	}

	conflictErrors = []error{
		results.ErrDuplicateCandidate,
		results.ErrAlreadyCompleted,
		editor.ErrSaveInFlight,
		interviews.ErrStaleInterview,
	}

	badRequestErrors = []error{
		commands.ErrInvalidTemplate,
		commands.ErrUnsupportedTemplate,
	}

	validationErrors = []error{
		interviews.ErrTaskNotFound,
		interviews.ErrCriterionNotFound,
		interviews.ErrInvalidStatusTransition,
		interviews.ErrInvalidStatus,
		interviews.ErrNoTasks,
		interviews.ErrInvalidTaskOrder,
		interviews.ErrScopeMismatch,
		interviews.ErrInvalidCriterionType,
		interviews.ErrInterviewMismatch,
		interviews.ErrEmptyTitle,
		interviews.ErrEmptyOwner,
		interviews.ErrInvalidDuration,
		interviews.ErrInterviewClosed,
		results.ErrInterviewNotLive,
		results.ErrInvalidEmail,
		results.ErrEmptyName,
		results.ErrCriterionNotInInterview,
		results.ErrNotScorable,
		results.ErrScoreOutOfRange,
		results.ErrEmptyNote,
	}
)

// toAPIError maps an application error to its API form. Errors that match no
// known sentinel are internal.
func toAPIError(err error) *APIError {
	switch {
	case isAny(err, notFoundErrors):
		return ErrNotFound.WithMessage(err.Error())
	case isAny(err, conflictErrors):
		return ErrConflict.WithMessage(err.Error())
	case isAny(err, badRequestErrors):
		return ErrBadRequest.WithMessage(err.Error())
	case isAny(err, validationErrors):
		return ErrUnprocessable.WithMessage(err.Error())
	default:
		return ErrInternalServer
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// fail logs err and writes its API form.
func fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	apiErr := toAPIError(err)
	attrs := []any{"method", r.Method, "uri", r.URL.RequestURI(), "error", err}

	var saveErr *commands.SaveError
	if errors.As(err, &saveErr) {
		attrs = append(attrs, "step", saveErr.Step)
	}

	if apiErr.Status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), msg, attrs...)
	} else {
		logger.DebugContext(r.Context(), msg, attrs...)
	}
	writeError(w, apiErr)
}
