package mcp

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/editor"
	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

type editorRenameInput struct {
	InterviewID string `json:"interview_id" jsonschema:"required"`
	Title       string `json:"title" jsonschema:"required"`
}

type editorTaskInput struct {
	InterviewID string `json:"interview_id" jsonschema:"required"`
	Ref         string `json:"ref" jsonschema:"required"`
}

type editorUpdateTaskInput struct {
	InterviewID     string                     `json:"interview_id" jsonschema:"required"`
	Ref             string                     `json:"ref" jsonschema:"required"`
	Title           *string                    `json:"title,omitempty"`
	Prompt          *string                    `json:"prompt,omitempty"`
	AIBehavior      *string                    `json:"ai_behavior,omitempty"`
	DurationMinutes *int                       `json:"duration_minutes,omitempty"`
	Requirements    *domain.Requirements       `json:"requirements,omitempty"`
	Criteria        *[]commands.DraftCriterion `json:"criteria,omitempty"`
}

type editorReorderInput struct {
	InterviewID string   `json:"interview_id" jsonschema:"required"`
	Order       []string `json:"order" jsonschema:"required"`
}

type editorCriteriaInput struct {
	InterviewID string                    `json:"interview_id" jsonschema:"required"`
	Criteria    []commands.DraftCriterion `json:"criteria"`
}

func registerEditorTools(srv *mcp.Server, ts *toolset) {
	srv.Tool("editor.open").
		Description("Open an editing session on an interview, or return the session already open. Edits stay in the session until saved").
		Handler(ts.editorOpen)

	srv.Tool("editor.state").
		Description("Show the edited interview of an open session and whether it has unsaved changes").
		Handler(ts.editorState)

	srv.Tool("editor.rename").
		Description("Rename the interview in an open session").
		Handler(ts.editorRename)

	srv.Tool("editor.add_task").
		Description("Append a task with default values. New tasks carry a temporary ref until saved").
		Handler(ts.editorAddTask)

	srv.Tool("editor.update_task").
		Description("Change the fields given on one task. Criteria, when given, replace the task's criteria; criteria without an id are created").
		Handler(ts.editorUpdateTask)

	srv.Tool("editor.remove_task").
		Description("Remove a task and its criteria from the session").
		Handler(ts.editorRemoveTask)

	srv.Tool("editor.reorder_tasks").
		Description("Set the task order. The order lists every task ref exactly once").
		Handler(ts.editorReorderTasks)

	srv.Tool("editor.set_general_criteria").
		Description("Replace the interview-wide criteria. Criteria without an id are created; missing ones are deleted with their scores on save").
		Handler(ts.editorSetGeneralCriteria)

	srv.Tool("editor.save").
		Description("Save the session in one transaction and report how many rows changed").
		Handler(ts.editorSave)

	srv.Tool("editor.publish").
		Description("Publish the session's interview so candidates can be invited, saving pending edits with it").
		Handler(ts.editorPublish)

	srv.Tool("editor.close").
		Description("Close the session's live interview, saving pending edits with it").
		Handler(ts.editorClose)

	srv.Tool("editor.discard").
		Description("Drop the session and its unsaved edits").
		Handler(ts.editorDiscard)
}

func (ts *toolset) editorSession(input interviewIDInput) (uuid.UUID, error) {
	if ts.app.Editor == nil {
		return uuid.Nil, ErrStoreUnavailable
	}
	return parseUUID(input.InterviewID)
}

// editorView renders the edited snapshot with its dirty flag.
func (ts *toolset) editorView(id uuid.UUID, interview *domain.Interview) (*interviewView, error) {
	dirty, err := ts.app.Editor.IsDirty(id, ts.app.OwnerEmail)
	if err != nil {
		return nil, err
	}
	view := toInterviewView(interview)
	view.Dirty = dirty
	return &view, nil
}

func (ts *toolset) dispatch(interviewID string, actions ...editor.Action) (*interviewView, error) {
	id, err := ts.editorSession(interviewIDInput{InterviewID: interviewID})
	if err != nil {
		return nil, err
	}
	edited, err := ts.app.Editor.Dispatch(id, ts.app.OwnerEmail, actions...)
	if err != nil {
		return nil, err
	}
	return ts.editorView(id, edited)
}

func (ts *toolset) editorOpen(ctx context.Context, input interviewIDInput) (*interviewView, error) {
	id, err := ts.editorSession(input)
	if err != nil {
		return nil, err
	}
	edited, err := ts.app.Editor.Open(ctx, id, ts.app.OwnerEmail)
	if err != nil {
		return nil, err
	}
	return ts.editorView(id, edited)
}

func (ts *toolset) editorState(_ context.Context, input interviewIDInput) (*interviewView, error) {
	id, err := ts.editorSession(input)
	if err != nil {
		return nil, err
	}
	edited, err := ts.app.Editor.Edited(id, ts.app.OwnerEmail)
	if err != nil {
		return nil, err
	}
	return ts.editorView(id, edited)
}

func (ts *toolset) editorRename(_ context.Context, input editorRenameInput) (*interviewView, error) {
	return ts.dispatch(input.InterviewID, editor.UpdateInterview{Title: input.Title})
}

func (ts *toolset) editorAddTask(_ context.Context, input interviewIDInput) (*interviewView, error) {
	return ts.dispatch(input.InterviewID, editor.AddTask{})
}

func (ts *toolset) editorUpdateTask(_ context.Context, input editorUpdateTaskInput) (*interviewView, error) {
	id, err := ts.editorSession(interviewIDInput{InterviewID: input.InterviewID})
	if err != nil {
		return nil, err
	}
	ref, err := parseRef(input.Ref)
	if err != nil {
		return nil, err
	}

	edited, err := ts.app.Editor.Edited(id, ts.app.OwnerEmail)
	if err != nil {
		return nil, err
	}
	task, ok := edited.Task(ref)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Prompt != nil {
		task.Prompt = *input.Prompt
	}
	if input.AIBehavior != nil {
		task.AIBehavior = domain.AIBehavior(*input.AIBehavior).OrDefault()
	}
	if input.DurationMinutes != nil {
		task.DurationMinutes = *input.DurationMinutes
	}
	if input.Requirements != nil {
		task.Requirements = *input.Requirements
	}
	if input.Criteria != nil {
		criteria, err := toCriteria(*input.Criteria, domain.ScopeTask)
		if err != nil {
			return nil, err
		}
		task.Criteria = criteria
	}

	return ts.dispatch(input.InterviewID, editor.UpdateTask{Task: task})
}

func (ts *toolset) editorRemoveTask(_ context.Context, input editorTaskInput) (*interviewView, error) {
	ref, err := parseRef(input.Ref)
	if err != nil {
		return nil, err
	}
	return ts.dispatch(input.InterviewID, editor.RemoveTask{Ref: ref})
}

func (ts *toolset) editorReorderTasks(_ context.Context, input editorReorderInput) (*interviewView, error) {
	order := make([]domain.Ref, 0, len(input.Order))
	for _, value := range input.Order {
		ref, err := parseRef(value)
		if err != nil {
			return nil, err
		}
		order = append(order, ref)
	}
	return ts.dispatch(input.InterviewID, editor.ReorderTasks{Order: order})
}

func (ts *toolset) editorSetGeneralCriteria(_ context.Context, input editorCriteriaInput) (*interviewView, error) {
	criteria, err := toCriteria(input.Criteria, domain.ScopeGeneral)
	if err != nil {
		return nil, err
	}
	return ts.dispatch(input.InterviewID, editor.SetGeneralCriteria{Criteria: criteria})
}

func (ts *toolset) editorSave(ctx context.Context, input interviewIDInput) (*saveView, error) {
	return ts.editorCommit(ctx, input, ts.app.Editor.Save)
}

func (ts *toolset) editorPublish(ctx context.Context, input interviewIDInput) (*saveView, error) {
	return ts.editorCommit(ctx, input, ts.app.Editor.Publish)
}

func (ts *toolset) editorClose(ctx context.Context, input interviewIDInput) (*saveView, error) {
	return ts.editorCommit(ctx, input, ts.app.Editor.Close)
}

func (ts *toolset) editorCommit(ctx context.Context, input interviewIDInput, save func(context.Context, uuid.UUID, string) (*commands.SaveResult, error)) (*saveView, error) {
	id, err := ts.editorSession(input)
	if err != nil {
		return nil, err
	}
	result, err := save(ctx, id, ts.app.OwnerEmail)
	if err != nil {
		return nil, err
	}
	if err := ts.flush(ctx); err != nil {
		return nil, err
	}
	view := toSaveView(result)
	return &view, nil
}

func (ts *toolset) editorDiscard(_ context.Context, input interviewIDInput) (map[string]any, error) {
	id, err := ts.editorSession(input)
	if err != nil {
		return nil, err
	}
	if err := ts.app.Editor.Discard(id, ts.app.OwnerEmail); err != nil {
		return nil, err
	}
	return map[string]any{"interview_id": id, "discarded": true}, nil
}

// toCriteria builds criteria of one scope. Entries without an id get a
// pending ref.
func toCriteria(in []commands.DraftCriterion, scope domain.Scope) ([]domain.Criterion, error) {
	out := make([]domain.Criterion, 0, len(in))
	for _, dc := range in {
		typ, err := domain.ParseCriterionType(dc.Type)
		if err != nil {
			return nil, err
		}
		criterion := domain.NewCriterion(strings.TrimSpace(dc.Name), dc.Description, typ, scope)
		if dc.ID != "" {
			criterion.Ref = domain.ParseRef(dc.ID)
		}
		out = append(out, criterion)
	}
	return out, nil
}
