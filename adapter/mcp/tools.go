package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/adapter/cli"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

// ErrStoreUnavailable is returned by tools whose handler is not wired.
var ErrStoreUnavailable = errors.New("tool requires database connection")

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// toolset holds the tool handlers. Each handler is a method so it can be
// exercised without a transport.
type toolset struct {
	app *cli.App
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	ts := &toolset{app: deps.App}
	registerInterviewTools(srv, ts)
	registerEditorTools(srv, ts)
	registerResultsTools(srv, ts)
	return nil
}

// flush delivers pending events when the app runs without a background
// outbox processor.
func (ts *toolset) flush(ctx context.Context) error {
	return ts.app.Flush(ctx)
}

// interviewView is the shape tools return for one interview.
type interviewView struct {
	ID uuid.UUID `json:"id"`
	commands.Draft
	Stats *domain.Stats `json:"stats,omitempty"`
	Dirty bool          `json:"dirty,omitempty"`
}

func toInterviewView(interview *domain.Interview) interviewView {
	return interviewView{
		ID:    interview.ID(),
		Draft: commands.DraftFromInterview(interview),
		Stats: interview.Stats(),
	}
}

type saveView struct {
	Interview interviewView       `json:"interview"`
	Counts    commands.SaveCounts `json:"counts"`
}

func toSaveView(result *commands.SaveResult) saveView {
	return saveView{
		Interview: toInterviewView(result.Interview),
		Counts:    result.Counts,
	}
}
