package interview

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/panelist/adapter/cli"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/editor"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/queries"
)

var listStatus string

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new draft interview",
	Long: `Create a new draft interview. Without a title it is called "New Untitled Interview".

Examples:
  panelist interview create "Backend Engineer"
  panelist interview create`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		title := ""
		if len(args) == 1 {
			title = args[0]
		}

		ctx := cmd.Context()
		created, err := app.CreateInterviewHandler.Handle(ctx, commands.CreateInterviewCommand{
			OwnerEmail: app.OwnerEmail,
			Title:      title,
		})
		if err != nil {
			return fmt.Errorf("failed to create interview: %w", err)
		}
		if err := app.Flush(ctx); err != nil {
			return fmt.Errorf("failed to deliver events: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Interview created: %s\n", created.ID())
		fmt.Fprintf(out, "  title: %s\n", created.Title())
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List interviews",
	Aliases: []string{"ls"},
	Long: `List your interviews, newest first, with candidate counts.

Examples:
  panelist interview list
  panelist interview list --status live`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		summaries, err := app.ListInterviewsHandler.Handle(cmd.Context(), queries.ListInterviewsQuery{
			OwnerEmail: app.OwnerEmail,
			Status:     listStatus,
		})
		if err != nil {
			return fmt.Errorf("failed to list interviews: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(summaries) == 0 {
			fmt.Fprintln(out, "No interviews found.")
			return nil
		}

		fmt.Fprintf(out, "Interviews (%d):\n", len(summaries))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, s := range summaries {
			fmt.Fprintf(out, "%s %s\n", statusBadge(string(s.Status)), s.Title)
			fmt.Fprintf(out, "   ID: %s\n", s.ID)
			fmt.Fprintf(out, "   Tasks: %d, criteria: %d\n", s.TaskCount, s.CriteriaCount)
			fmt.Fprintf(out, "   Candidates: %d invited, %d completed, %d graded\n", s.Stats.Invited, s.Stats.Completed, s.Stats.Graded)
			fmt.Fprintln(out)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [interview-id]",
	Short: "Show an interview with its tasks and criteria",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "interview")
		if err != nil {
			return err
		}

		found, err := app.GetInterviewHandler.Handle(cmd.Context(), queries.GetInterviewQuery{
			InterviewID: id,
			OwnerEmail:  app.OwnerEmail,
		})
		if err != nil {
			return fmt.Errorf("failed to load interview: %w", err)
		}

		printInterview(cmd.OutOrStdout(), found)
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename [interview-id] [title]",
	Short: "Rename an interview",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "interview")
		if err != nil {
			return err
		}

		result, err := dispatchAndSave(cmd.Context(), app, id, editor.UpdateInterview{Title: args[1]})
		if err != nil {
			return fmt.Errorf("failed to rename interview: %w", err)
		}

		printSaveResult(cmd.OutOrStdout(), "renamed", result)
		return nil
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish [interview-id]",
	Short: "Make a draft interview live",
	Long: `Publish a draft interview so candidates can be invited. An interview
needs at least one task to be published.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "interview")
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := edit(ctx, app, id, func(store *editor.Store) (*commands.SaveResult, error) {
			return store.Publish(ctx, id, app.OwnerEmail)
		})
		if err != nil {
			return fmt.Errorf("failed to publish interview: %w", err)
		}

		printSaveResult(cmd.OutOrStdout(), "published", result)
		return nil
	},
}

var closeCmd = &cobra.Command{
	Use:   "close [interview-id]",
	Short: "Close a live interview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "interview")
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := edit(ctx, app, id, func(store *editor.Store) (*commands.SaveResult, error) {
			return store.Close(ctx, id, app.OwnerEmail)
		})
		if err != nil {
			return fmt.Errorf("failed to close interview: %w", err)
		}

		printSaveResult(cmd.OutOrStdout(), "closed", result)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [interview-id]",
	Short: "Delete an interview with its tasks, criteria and results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "interview")
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := app.DeleteInterviewHandler.Handle(ctx, commands.DeleteInterviewCommand{
			InterviewID: id,
			OwnerEmail:  app.OwnerEmail,
		}); err != nil {
			return fmt.Errorf("failed to delete interview: %w", err)
		}
		if err := app.Flush(ctx); err != nil {
			return fmt.Errorf("failed to deliver events: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Interview deleted: %s\n", id)
		return nil
	},
}

func statusBadge(status string) string {
	switch status {
	case "live":
		return "[live]"
	case "closed":
		return "[closed]"
	default:
		return "[draft]"
	}
}

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "filter by status (draft, live, closed)")
}
