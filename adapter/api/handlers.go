package api

import (
	"github.com/felixgeelhaar/panelist/internal/app"
)

// NewHandlers wires the API handlers from the application container.
func NewHandlers(c *app.Container) Handlers {
	return Handlers{
		Interviews: NewInterviewHandler(InterviewHandlerConfig{
			Create: c.CreateInterviewHandler,
			Submit: c.SubmitInterviewHandler,
			Delete: c.DeleteInterviewHandler,
			Import: c.ImportInterviewHandler,
			Export: c.ExportInterviewHandler,
			Get:    c.GetInterviewHandler,
			List:   c.ListInterviewsHandler,
			Logger: c.Logger,
		}),
		Results: NewResultsHandler(ResultsHandlerConfig{
			List:     c.ListResultsHandler,
			Invite:   c.InviteCandidateHandler,
			Complete: c.CompleteCandidateHandler,
			Score:    c.RecordScoreHandler,
			Note:     c.AddNoteHandler,
			Logger:   c.Logger,
		}),
		Health:  c.Health,
		Metrics: c.Metrics,
	}
}
