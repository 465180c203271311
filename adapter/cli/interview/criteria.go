package interview

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/panelist/adapter/cli"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/editor"
	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

// errCriterionNotFound is returned when no criterion carries the given id.
var errCriterionNotFound = errors.New("criterion not found")

var (
	criterionName        string
	criterionType        string
	criterionDescription string
	criterionTask        string
)

var criteriaCmd = &cobra.Command{
	Use:     "criteria",
	Short:   "Edit the scoring criteria of an interview",
	Aliases: []string{"criterion"},
}

var criteriaAddCmd = &cobra.Command{
	Use:   "add [interview-id]",
	Short: "Add a criterion to the interview or to one task",
	Long: `Add a criterion. Without --task it applies to the whole interview.

Types:
  numeric   scored from 0 to 5
  boolean   pass or fail
  text      free-form notes, never scored

Examples:
  panelist interview criteria add 6f1c... --name Communication --type numeric
  panelist interview criteria add 6f1c... --task 0a9e... --name Hire --type boolean`,
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
		typ, err := domain.ParseCriterionType(criterionType)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := edit(ctx, app, id, func(store *editor.Store) (*commands.SaveResult, error) {
			edited, err := store.Edited(id, app.OwnerEmail)
			if err != nil {
				return nil, err
			}

			var action editor.Action
			if criterionTask == "" {
				criteria := append(edited.GeneralCriteria(),
					domain.NewCriterion(criterionName, criterionDescription, typ, domain.ScopeGeneral))
				action = editor.SetGeneralCriteria{Criteria: criteria}
			} else {
				taskID, err := parseID(criterionTask, "task")
				if err != nil {
					return nil, err
				}
				task, ok := edited.Task(domain.Persisted(taskID))
				if !ok {
					return nil, domain.ErrTaskNotFound
				}
				task.Criteria = append(task.Criteria,
					domain.NewCriterion(criterionName, criterionDescription, typ, domain.ScopeTask))
				action = editor.UpdateTask{Task: task}
			}

			if _, err := store.Dispatch(id, app.OwnerEmail, action); err != nil {
				return nil, err
			}
			return store.Save(ctx, id, app.OwnerEmail)
		})
		if err != nil {
			return fmt.Errorf("failed to add criterion: %w", err)
		}

		printSaveResult(cmd.OutOrStdout(), "saved", result)
		return nil
	},
}

var criteriaRemoveCmd = &cobra.Command{
	Use:     "remove [interview-id] [criterion-id]",
	Short:   "Remove a criterion and the scores given on it",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "interview")
		if err != nil {
			return err
		}
		criterionID, err := parseID(args[1], "criterion")
		if err != nil {
			return err
		}
		ref := domain.Persisted(criterionID)

		ctx := cmd.Context()
		result, err := edit(ctx, app, id, func(store *editor.Store) (*commands.SaveResult, error) {
			edited, err := store.Edited(id, app.OwnerEmail)
			if err != nil {
				return nil, err
			}
			action, err := removeCriterion(edited, ref)
			if err != nil {
				return nil, err
			}
			if _, err := store.Dispatch(id, app.OwnerEmail, action); err != nil {
				return nil, err
			}
			return store.Save(ctx, id, app.OwnerEmail)
		})
		if err != nil {
			return fmt.Errorf("failed to remove criterion: %w", err)
		}

		printSaveResult(cmd.OutOrStdout(), "saved", result)
		return nil
	},
}

// removeCriterion returns the action that drops ref from whichever list
// holds it.
func removeCriterion(interview *domain.Interview, ref domain.Ref) (editor.Action, error) {
	if general, ok := without(interview.GeneralCriteria(), ref); ok {
		return editor.SetGeneralCriteria{Criteria: general}, nil
	}
	for _, task := range interview.Tasks() {
		if criteria, ok := without(task.Criteria, ref); ok {
			task.Criteria = criteria
			return editor.UpdateTask{Task: task}, nil
		}
	}
	return nil, errCriterionNotFound
}

func without(criteria []domain.Criterion, ref domain.Ref) ([]domain.Criterion, bool) {
	out := make([]domain.Criterion, 0, len(criteria))
	found := false
	for _, c := range criteria {
		if c.Ref == ref {
			found = true
			continue
		}
		out = append(out, c)
	}
	return out, found
}

func init() {
	criteriaAddCmd.Flags().StringVarP(&criterionName, "name", "n", "", "criterion name")
	criteriaAddCmd.Flags().StringVarP(&criterionType, "type", "t", "numeric", "criterion type (numeric, boolean, text)")
	criteriaAddCmd.Flags().StringVar(&criterionDescription, "description", "", "what the criterion measures")
	criteriaAddCmd.Flags().StringVar(&criterionTask, "task", "", "task id; omit for an interview-wide criterion")
	_ = criteriaAddCmd.MarkFlagRequired("name")

	criteriaCmd.AddCommand(criteriaAddCmd)
	criteriaCmd.AddCommand(criteriaRemoveCmd)
}
