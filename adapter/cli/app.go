package cli

import (
	"context"
	"errors"

	interviewCommands "github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/editor"
	interviewQueries "github.com/felixgeelhaar/panelist/internal/interviews/application/queries"
	resultCommands "github.com/felixgeelhaar/panelist/internal/results/application/commands"
	resultQueries "github.com/felixgeelhaar/panelist/internal/results/application/queries"
)

// ErrNotInitialized is returned by commands run without a database.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// Flusher delivers events recorded by a command before the process exits.
type Flusher interface {
	FlushOutbox(ctx context.Context) error
}

// App holds the CLI application dependencies.
type App struct {
	// Interview Command Handlers
	CreateInterviewHandler *interviewCommands.CreateInterviewHandler
	SubmitInterviewHandler *interviewCommands.SubmitInterviewHandler
	DeleteInterviewHandler *interviewCommands.DeleteInterviewHandler
	ImportInterviewHandler *interviewCommands.ImportInterviewHandler
	ExportInterviewHandler *interviewCommands.ExportInterviewHandler

	// Interview Query Handlers
	GetInterviewHandler   *interviewQueries.GetInterviewHandler
	ListInterviewsHandler *interviewQueries.ListInterviewsHandler

	// Editor sessions
	Editor *editor.Store

	// Results Command Handlers
	InviteCandidateHandler   *resultCommands.InviteCandidateHandler
	CompleteCandidateHandler *resultCommands.CompleteCandidateHandler
	RecordScoreHandler       *resultCommands.RecordScoreHandler
	AddNoteHandler           *resultCommands.AddNoteHandler

	// Results Query Handlers
	ListResultsHandler *resultQueries.ListResultsHandler

	// Current owner (configured per environment)
	OwnerEmail string

	flusher Flusher
}

// SetOwnerEmail updates the current owner.
func (a *App) SetOwnerEmail(email string) {
	a.OwnerEmail = email
}

// SetFlusher sets what Flush delivers pending events through.
func (a *App) SetFlusher(f Flusher) {
	a.flusher = f
}

// Flush delivers pending events. Without a flusher it does nothing.
func (a *App) Flush(ctx context.Context) error {
	if a == nil || a.flusher == nil {
		return nil
	}
	return a.flusher.FlushOutbox(ctx)
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// RequireApp returns the global application, or ErrNotInitialized.
func RequireApp() (*App, error) {
	if app == nil || app.Editor == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}
