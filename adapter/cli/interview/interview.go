package interview

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/panelist/adapter/cli"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/editor"
	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

// Cmd is the interview command group
var Cmd = &cobra.Command{
	Use:   "interview",
	Short: "Author and manage interviews",
	Long:  `Create, edit, publish and close interviews, and move them between files and the store.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(renameCmd)
	Cmd.AddCommand(publishCmd)
	Cmd.AddCommand(closeCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(importCmd)
	Cmd.AddCommand(exportCmd)
	Cmd.AddCommand(taskCmd)
	Cmd.AddCommand(criteriaCmd)
}

func parseID(value, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", what, value, err)
	}
	return id, nil
}

// edit opens the interview in the editor, runs fn against the session and
// drops the session afterwards. Each CLI invocation starts from the stored
// interview.
func edit(ctx context.Context, app *cli.App, id uuid.UUID, fn func(store *editor.Store) (*commands.SaveResult, error)) (*commands.SaveResult, error) {
	if _, err := app.Editor.Open(ctx, id, app.OwnerEmail); err != nil {
		return nil, err
	}
	defer func() { _ = app.Editor.Discard(id, app.OwnerEmail) }()

	result, err := fn(app.Editor)
	if err != nil {
		return nil, err
	}
	if err := app.Flush(ctx); err != nil {
		return nil, fmt.Errorf("failed to deliver events: %w", err)
	}
	return result, nil
}

// dispatchAndSave applies actions and saves them in one editor session.
func dispatchAndSave(ctx context.Context, app *cli.App, id uuid.UUID, actions ...editor.Action) (*commands.SaveResult, error) {
	return edit(ctx, app, id, func(store *editor.Store) (*commands.SaveResult, error) {
		if _, err := store.Dispatch(id, app.OwnerEmail, actions...); err != nil {
			return nil, err
		}
		return store.Save(ctx, id, app.OwnerEmail)
	})
}

func printSaveResult(out io.Writer, verb string, result *commands.SaveResult) {
	i := result.Interview
	fmt.Fprintf(out, "Interview %s: %s\n", verb, i.ID())
	fmt.Fprintf(out, "  title: %s\n", i.Title())
	fmt.Fprintf(out, "  status: %s\n", i.Status())
	fmt.Fprintf(out, "  tasks: %d (upserted %d, deleted %d)\n", i.TaskCount(), result.Counts.TasksUpserted, result.Counts.TasksDeleted)
	fmt.Fprintf(out, "  criteria: %d (upserted %d, deleted %d)\n", i.CriteriaCount(), result.Counts.CriteriaUpserted, result.Counts.CriteriaDeleted)
}

func printInterview(out io.Writer, i *domain.Interview) {
	fmt.Fprintf(out, "%s [%s]\n", i.Title(), i.Status())
	fmt.Fprintf(out, "  ID: %s\n", i.ID())
	if stats := i.Stats(); stats != nil {
		fmt.Fprintf(out, "  Candidates: %d invited, %d completed, %d graded\n", stats.Invited, stats.Completed, stats.Graded)
	}

	general := i.GeneralCriteria()
	if len(general) > 0 {
		fmt.Fprintln(out, "  General criteria:")
		for _, c := range general {
			printCriterion(out, "    ", c)
		}
	}

	tasks := i.Tasks()
	if len(tasks) == 0 {
		fmt.Fprintln(out, "  No tasks.")
		return
	}
	fmt.Fprintln(out, "  Tasks:")
	for _, t := range tasks {
		fmt.Fprintf(out, "    %d. %s (%d min, %s)\n", t.Order+1, t.Title, t.DurationMinutes, t.AIBehavior)
		fmt.Fprintf(out, "       ID: %s\n", t.Ref)
		if t.Prompt != "" {
			fmt.Fprintf(out, "       Prompt: %s\n", t.Prompt)
		}
		for _, c := range t.Criteria {
			printCriterion(out, "       ", c)
		}
	}
}

func printCriterion(out io.Writer, indent string, c domain.Criterion) {
	fmt.Fprintf(out, "%s- %s (%s) %s\n", indent, c.Name, c.Type, c.Ref)
}
