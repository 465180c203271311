package results

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/panelist/adapter/cli"
	"github.com/felixgeelhaar/panelist/internal/results/application/commands"
	"github.com/felixgeelhaar/panelist/internal/results/application/queries"
	"github.com/felixgeelhaar/panelist/internal/results/domain"
)

var (
	candidateName  string
	candidateEmail string
	completedAt    string
	noteAuthor     string
	noteColumn     string
)

// Cmd is the results command group
var Cmd = &cobra.Command{
	Use:   "results",
	Short: "Invite candidates and record their results",
	Long:  `Invite candidates to live interviews, mark them completed, and record scores and notes.`,
}

var showCmd = &cobra.Command{
	Use:   "show [interview-id]",
	Short: "Show the results table of an interview",
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

		results, err := app.ListResultsHandler.Handle(cmd.Context(), queries.ListResultsQuery{
			InterviewID: id,
			OwnerEmail:  app.OwnerEmail,
		})
		if err != nil {
			return fmt.Errorf("failed to load results: %w", err)
		}

		printResults(cmd.OutOrStdout(), results)
		return nil
	},
}

var inviteCmd = &cobra.Command{
	Use:   "invite [interview-id]",
	Short: "Invite a candidate to a live interview",
	Long: `Invite a candidate to a live interview. An email can be invited once per interview.

Examples:
  panelist results invite 6f1c... --name "Ada Lovelace" --email ada@example.com`,
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
		candidate, err := app.InviteCandidateHandler.Handle(ctx, commands.InviteCandidateCommand{
			InterviewID: id,
			OwnerEmail:  app.OwnerEmail,
			Name:        candidateName,
			Email:       candidateEmail,
		})
		if err != nil {
			return fmt.Errorf("failed to invite candidate: %w", err)
		}
		if err := app.Flush(ctx); err != nil {
			return fmt.Errorf("failed to deliver events: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Candidate invited: %s\n", candidate.ID())
		fmt.Fprintf(out, "  name: %s\n", candidate.Name())
		fmt.Fprintf(out, "  email: %s\n", candidate.Email())
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete [interview-id] [candidate-id]",
	Short: "Mark a candidate as having completed the interview",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		interviewID, candidateID, err := parseCandidateArgs(args)
		if err != nil {
			return err
		}

		complete := commands.CompleteCandidateCommand{
			InterviewID: interviewID,
			CandidateID: candidateID,
			OwnerEmail:  app.OwnerEmail,
		}
		if completedAt != "" {
			at, err := time.Parse(time.RFC3339, completedAt)
			if err != nil {
				return fmt.Errorf("invalid --at format (use RFC3339): %w", err)
			}
			complete.At = at
		}

		ctx := cmd.Context()
		candidate, err := app.CompleteCandidateHandler.Handle(ctx, complete)
		if err != nil {
			return fmt.Errorf("failed to complete candidate: %w", err)
		}
		if err := app.Flush(ctx); err != nil {
			return fmt.Errorf("failed to deliver events: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Candidate completed: %s at %s\n", candidate.ID(), candidate.CompletedAt().Format(time.RFC3339))
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score [interview-id] [candidate-id] [criterion-id] [value]",
	Short: "Record a score on a criterion",
	Long: `Record a candidate's score on a criterion. Numeric criteria take 0 to 5,
boolean criteria take pass/fail (or 1/0). A new score replaces the old one.

Examples:
  panelist results score 6f1c... 91b2... 0a9e... 4
  panelist results score 6f1c... 91b2... 7d3f... pass`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		interviewID, candidateID, err := parseCandidateArgs(args[:2])
		if err != nil {
			return err
		}
		criterionID, err := parseID(args[2], "criterion")
		if err != nil {
			return err
		}
		value, err := parseScore(args[3])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		candidate, err := app.RecordScoreHandler.Handle(ctx, commands.RecordScoreCommand{
			InterviewID: interviewID,
			CandidateID: candidateID,
			OwnerEmail:  app.OwnerEmail,
			CriterionID: criterionID,
			Value:       value,
		})
		if err != nil {
			return fmt.Errorf("failed to record score: %w", err)
		}
		if err := app.Flush(ctx); err != nil {
			return fmt.Errorf("failed to deliver events: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Score recorded for %s (%d scored)\n", candidate.Name(), len(candidate.Scores()))
		return nil
	},
}

var noteCmd = &cobra.Command{
	Use:   "note [interview-id] [candidate-id] [content]",
	Short: "Add a note about a candidate",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		interviewID, candidateID, err := parseCandidateArgs(args[:2])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		candidate, err := app.AddNoteHandler.Handle(ctx, commands.AddNoteCommand{
			InterviewID: interviewID,
			CandidateID: candidateID,
			OwnerEmail:  app.OwnerEmail,
			Author:      noteAuthor,
			Column:      noteColumn,
			Content:     args[2],
		})
		if err != nil {
			return fmt.Errorf("failed to add note: %w", err)
		}
		if err := app.Flush(ctx); err != nil {
			return fmt.Errorf("failed to deliver events: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Note added for %s (%d notes)\n", candidate.Name(), len(candidate.Notes()))
		return nil
	},
}

func parseID(value, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", what, value, err)
	}
	return id, nil
}

func parseCandidateArgs(args []string) (uuid.UUID, uuid.UUID, error) {
	interviewID, err := parseID(args[0], "interview")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	candidateID, err := parseID(args[1], "candidate")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return interviewID, candidateID, nil
}

// parseScore accepts a number or pass/fail.
func parseScore(value string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pass", "yes", "true":
		return 1, nil
	case "fail", "no", "false":
		return 0, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid score %q: %w", value, err)
	}
	return v, nil
}

func printResults(out io.Writer, r *queries.ResultsDTO) {
	fmt.Fprintf(out, "%s [%s]\n", r.Title, r.Status)
	fmt.Fprintf(out, "  Candidates: %d invited, %d completed, %d graded\n", r.Stats.Invited, r.Stats.Completed, r.Stats.Graded)
	if len(r.Candidates) == 0 {
		fmt.Fprintln(out, "  No candidates.")
		return
	}
	fmt.Fprintln(out, strings.Repeat("-", 60))

	for _, c := range r.Candidates {
		state := "invited"
		if c.CompletedAt != nil {
			state = "completed"
		}
		fmt.Fprintf(out, "%s <%s> (%s)\n", c.Name, c.Email, state)
		fmt.Fprintf(out, "   ID: %s\n", c.ID)
		if c.OverallScore != nil {
			fmt.Fprintf(out, "   Overall: %.2f\n", *c.OverallScore)
		}
		for _, s := range c.Scores {
			fmt.Fprintf(out, "   %s: %s\n", s.Name, formatScore(s))
		}
		for _, n := range c.Notes {
			column := ""
			if n.Column != "" {
				column = " [" + n.Column + "]"
			}
			fmt.Fprintf(out, "   note%s by %s: %s\n", column, n.Author, n.Content)
		}
		fmt.Fprintln(out)
	}
}

func formatScore(s queries.ScoreDTO) string {
	if s.Type == "boolean" {
		if s.Value == 1 {
			return "pass"
		}
		return "fail"
	}
	return strconv.FormatFloat(s.Value, 'f', -1, 64) + "/" + strconv.FormatFloat(domain.MaxNumericScore, 'f', -1, 64)
}

func init() {
	inviteCmd.Flags().StringVarP(&candidateName, "name", "n", "", "candidate name")
	inviteCmd.Flags().StringVarP(&candidateEmail, "email", "e", "", "candidate email")
	_ = inviteCmd.MarkFlagRequired("email")

	completeCmd.Flags().StringVar(&completedAt, "at", "", "completion time (RFC3339, default now)")

	noteCmd.Flags().StringVar(&noteAuthor, "author", "", "note author (default the owner)")
	noteCmd.Flags().StringVar(&noteColumn, "column", "", "results column the note belongs to")

	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(inviteCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(scoreCmd)
	Cmd.AddCommand(noteCmd)
}
