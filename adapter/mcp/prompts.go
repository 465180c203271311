package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common interview workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("design_interview").
		Description("Design a structured interview for a role: tasks, durations and scoring criteria.").
		Argument("role", "Role the interview is for", true).
		Argument("duration", "Total interview length in minutes (default: 60)", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			role := args["role"]
			if role == "" {
				role = "[Please describe the role]"
			}
			duration := args["duration"]
			if duration == "" {
				duration = "60"
			}

			return &mcp.PromptResult{
				Description: "Interview Designer",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Help me design an interview for this role:

**Role:** %s
**Total length:** %s minutes

Please:
1. Propose 2-5 tasks. For each give a title, the prompt shown to the candidate,
   a duration in minutes and whether it needs screen sharing or a webcam
2. Keep the durations within the total length
3. Propose interview-wide criteria (numeric, scored 0 to 5) and, where a task
   has a clear pass/fail outcome, a boolean criterion on that task
4. Use text criteria only for notes that should never be scored

Once I approve the design:
- Create the interview with interview.create, then open it with editor.open
- Add each task with editor.add_task and fill it with editor.update_task, using
  the ref returned for the new task
- Set the interview-wide criteria with editor.set_general_criteria
- Save everything at once with editor.save and show me the counts`, role, duration),
						},
					},
				},
			}, nil
		})

	srv.Prompt("review_candidates").
		Description("Compare the candidates of an interview using their scores and notes.").
		Argument("interview_id", "Interview to review", true).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			interviewID := args["interview_id"]
			if interviewID == "" {
				interviewID = "[Please give the interview id]"
			}

			return &mcp.PromptResult{
				Description: "Candidate Review",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Review the candidates of interview %s.

1. Load the results table with results.list
2. Load the interview with interview.get to see what each criterion measures

Then:
- Rank the completed candidates by overall score
- Point out criteria where candidates differ the most
- Summarize the reviewer notes per candidate
- List candidates who completed the interview but have not been graded yet
- Flag invited candidates who never completed it

Do not record or change scores unless I ask you to.`, interviewID),
						},
					},
				},
			}, nil
		})

	srv.Prompt("publish_checklist").
		Description("Check that a draft interview is ready to publish.").
		Argument("interview_id", "Draft interview to check", true).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			interviewID := args["interview_id"]
			if interviewID == "" {
				interviewID = "[Please give the interview id]"
			}

			return &mcp.PromptResult{
				Description: "Publish Checklist",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Check whether interview %s is ready to publish. Load it with interview.get.

Verify that:
- It has at least one task (publishing fails otherwise)
- Every task has a prompt and a duration
- At least one numeric or boolean criterion exists, so candidates can be scored
- Task titles are not the default "New Task"

Report what is missing. If everything is in place, ask me before calling
editor.open followed by editor.publish.`, interviewID),
						},
					},
				},
			}, nil
		})

	return nil
}
