package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/queries"
)

type interviewListInput struct {
	Status string `json:"status,omitempty"`
}

type interviewIDInput struct {
	InterviewID string `json:"interview_id" jsonschema:"required"`
}

type interviewCreateInput struct {
	Title string `json:"title,omitempty"`
}

type interviewSubmitInput struct {
	InterviewID string         `json:"interview_id" jsonschema:"required"`
	Draft       commands.Draft `json:"draft" jsonschema:"required"`
}

type interviewImportInput struct {
	YAML string `json:"yaml" jsonschema:"required"`
}

type interviewExportOutput struct {
	InterviewID string `json:"interview_id"`
	YAML        string `json:"yaml"`
}

func registerInterviewTools(srv *mcp.Server, ts *toolset) {
	srv.Tool("interview.list").
		Description("List interviews with task, criteria and candidate counts. Optional status filter: draft, live, closed").
		Handler(ts.interviewList)

	srv.Tool("interview.get").
		Description("Get an interview with its tasks and criteria as stored").
		Handler(ts.interviewGet)

	srv.Tool("interview.create").
		Description("Create a draft interview and open an editing session on it").
		Handler(ts.interviewCreate)

	srv.Tool("interview.submit").
		Description("Replace an interview with a complete draft in one save. Tasks and criteria keep their id to be updated; entries without an id are created; missing entries are deleted").
		Handler(ts.interviewSubmit)

	srv.Tool("interview.delete").
		Description("Delete an interview with its tasks, criteria and candidates").
		Handler(ts.interviewDelete)

	srv.Tool("interview.export").
		Description("Export an interview as a YAML template").
		Handler(ts.interviewExport)

	srv.Tool("interview.import").
		Description("Create a draft interview from a YAML template").
		Handler(ts.interviewImport)
}

func (ts *toolset) interviewList(ctx context.Context, input interviewListInput) ([]queries.InterviewSummary, error) {
	if ts.app.ListInterviewsHandler == nil {
		return nil, ErrStoreUnavailable
	}
	return ts.app.ListInterviewsHandler.Handle(ctx, queries.ListInterviewsQuery{
		OwnerEmail: ts.app.OwnerEmail,
		Status:     input.Status,
	})
}

func (ts *toolset) interviewGet(ctx context.Context, input interviewIDInput) (*interviewView, error) {
	if ts.app.GetInterviewHandler == nil {
		return nil, ErrStoreUnavailable
	}
	id, err := parseUUID(input.InterviewID)
	if err != nil {
		return nil, err
	}

	interview, err := ts.app.GetInterviewHandler.Handle(ctx, queries.GetInterviewQuery{
		InterviewID: id,
		OwnerEmail:  ts.app.OwnerEmail,
	})
	if err != nil {
		return nil, err
	}
	view := toInterviewView(interview)
	return &view, nil
}

func (ts *toolset) interviewCreate(ctx context.Context, input interviewCreateInput) (*interviewView, error) {
	if ts.app.Editor == nil {
		return nil, ErrStoreUnavailable
	}

	interview, err := ts.app.Editor.Create(ctx, ts.app.OwnerEmail, input.Title)
	if err != nil {
		return nil, err
	}
	if err := ts.flush(ctx); err != nil {
		return nil, err
	}
	view := toInterviewView(interview)
	return &view, nil
}

func (ts *toolset) interviewSubmit(ctx context.Context, input interviewSubmitInput) (*saveView, error) {
	if ts.app.SubmitInterviewHandler == nil {
		return nil, ErrStoreUnavailable
	}
	id, err := parseUUID(input.InterviewID)
	if err != nil {
		return nil, err
	}

	result, err := ts.app.SubmitInterviewHandler.Handle(ctx, commands.SubmitInterviewCommand{
		InterviewID: id,
		OwnerEmail:  ts.app.OwnerEmail,
		Draft:       input.Draft,
	})
	if err != nil {
		return nil, err
	}
	if ts.app.Editor != nil {
		ts.app.Editor.Sync(result.Interview)
	}
	if err := ts.flush(ctx); err != nil {
		return nil, err
	}
	view := toSaveView(result)
	return &view, nil
}

func (ts *toolset) interviewDelete(ctx context.Context, input interviewIDInput) (map[string]any, error) {
	if ts.app.DeleteInterviewHandler == nil {
		return nil, ErrStoreUnavailable
	}
	id, err := parseUUID(input.InterviewID)
	if err != nil {
		return nil, err
	}

	if err := ts.app.DeleteInterviewHandler.Handle(ctx, commands.DeleteInterviewCommand{
		InterviewID: id,
		OwnerEmail:  ts.app.OwnerEmail,
	}); err != nil {
		return nil, err
	}
	// a session left open on a deleted interview can never be saved
	if ts.app.Editor != nil {
		_ = ts.app.Editor.Discard(id, ts.app.OwnerEmail)
	}
	if err := ts.flush(ctx); err != nil {
		return nil, err
	}
	return map[string]any{"interview_id": id, "deleted": true}, nil
}

func (ts *toolset) interviewExport(ctx context.Context, input interviewIDInput) (*interviewExportOutput, error) {
	if ts.app.ExportInterviewHandler == nil {
		return nil, ErrStoreUnavailable
	}
	id, err := parseUUID(input.InterviewID)
	if err != nil {
		return nil, err
	}

	data, err := ts.app.ExportInterviewHandler.Handle(ctx, commands.ExportInterviewCommand{
		InterviewID: id,
		OwnerEmail:  ts.app.OwnerEmail,
	})
	if err != nil {
		return nil, err
	}
	return &interviewExportOutput{InterviewID: id.String(), YAML: string(data)}, nil
}

func (ts *toolset) interviewImport(ctx context.Context, input interviewImportInput) (*saveView, error) {
	if ts.app.ImportInterviewHandler == nil {
		return nil, ErrStoreUnavailable
	}
	if input.YAML == "" {
		return nil, errors.New("yaml is required")
	}

	result, err := ts.app.ImportInterviewHandler.Handle(ctx, commands.ImportInterviewCommand{
		OwnerEmail: ts.app.OwnerEmail,
		Data:       []byte(input.YAML),
	})
	if err != nil {
		return nil, err
	}
	if err := ts.flush(ctx); err != nil {
		return nil, err
	}
	view := toSaveView(result)
	return &view, nil
}
