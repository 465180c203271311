package mcp

import (
	"github.com/felixgeelhaar/panelist/adapter/cli"
	"github.com/felixgeelhaar/panelist/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container, ownerEmail string) *cli.App {
	cliApp := &cli.App{
		CreateInterviewHandler:   container.CreateInterviewHandler,
		SubmitInterviewHandler:   container.SubmitInterviewHandler,
		DeleteInterviewHandler:   container.DeleteInterviewHandler,
		ImportInterviewHandler:   container.ImportInterviewHandler,
		ExportInterviewHandler:   container.ExportInterviewHandler,
		GetInterviewHandler:      container.GetInterviewHandler,
		ListInterviewsHandler:    container.ListInterviewsHandler,
		Editor:                   container.Editor,
		InviteCandidateHandler:   container.InviteCandidateHandler,
		CompleteCandidateHandler: container.CompleteCandidateHandler,
		RecordScoreHandler:       container.RecordScoreHandler,
		AddNoteHandler:           container.AddNoteHandler,
		ListResultsHandler:       container.ListResultsHandler,
	}

	cliApp.SetOwnerEmail(ownerEmail)

	// Short-lived commands deliver their events before exiting when no
	// background processor runs.
	if container.IsLocalMode() || !container.Config.OutboxProcessorEnabled {
		cliApp.SetFlusher(container)
	}

	return cliApp
}
