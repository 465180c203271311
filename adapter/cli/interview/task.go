package interview

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/panelist/adapter/cli"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/editor"
	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

var (
	taskTitle       string
	taskPrompt      string
	taskBehavior    string
	taskDuration    int
	taskAudio       bool
	taskScreenShare bool
	taskWebcam      bool
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Edit the tasks of an interview",
}

var taskAddCmd = &cobra.Command{
	Use:   "add [interview-id]",
	Short: "Append a task",
	Long: `Append a task to the end of an interview.

Examples:
  panelist interview task add 6f1c... --title "System design" --duration 45
  panelist interview task add 6f1c... --title "Pairing" --screen-share --behavior supportive`,
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
			edited, err := store.Dispatch(id, app.OwnerEmail, editor.AddTask{})
			if err != nil {
				return nil, err
			}
			tasks := edited.Tasks()
			task := applyTaskFlags(cmd, tasks[len(tasks)-1])
			if _, err := store.Dispatch(id, app.OwnerEmail, editor.UpdateTask{Task: task}); err != nil {
				return nil, err
			}
			return store.Save(ctx, id, app.OwnerEmail)
		})
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		printSaveResult(cmd.OutOrStdout(), "saved", result)
		return nil
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update [interview-id] [task-id]",
	Short: "Change the fields of a task",
	Long: `Change the fields of a task. Only the flags given are applied.

Examples:
  panelist interview task update 6f1c... 0a9e... --prompt "Design a rate limiter"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, ref, err := parseTaskArgs(args)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := edit(ctx, app, id, func(store *editor.Store) (*commands.SaveResult, error) {
			edited, err := store.Edited(id, app.OwnerEmail)
			if err != nil {
				return nil, err
			}
			task, ok := edited.Task(ref)
			if !ok {
				return nil, domain.ErrTaskNotFound
			}
			if _, err := store.Dispatch(id, app.OwnerEmail, editor.UpdateTask{Task: applyTaskFlags(cmd, task)}); err != nil {
				return nil, err
			}
			return store.Save(ctx, id, app.OwnerEmail)
		})
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		printSaveResult(cmd.OutOrStdout(), "saved", result)
		return nil
	},
}

var taskRemoveCmd = &cobra.Command{
	Use:     "remove [interview-id] [task-id]",
	Short:   "Remove a task and its criteria",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, ref, err := parseTaskArgs(args)
		if err != nil {
			return err
		}

		result, err := dispatchAndSave(cmd.Context(), app, id, editor.RemoveTask{Ref: ref})
		if err != nil {
			return fmt.Errorf("failed to remove task: %w", err)
		}

		printSaveResult(cmd.OutOrStdout(), "saved", result)
		return nil
	},
}

var taskMoveCmd = &cobra.Command{
	Use:   "move [interview-id] [task-id] [position]",
	Short: "Move a task to a 1-based position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, ref, err := parseTaskArgs(args[:2])
		if err != nil {
			return err
		}
		position, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", args[2], err)
		}

		ctx := cmd.Context()
		result, err := edit(ctx, app, id, func(store *editor.Store) (*commands.SaveResult, error) {
			edited, err := store.Edited(id, app.OwnerEmail)
			if err != nil {
				return nil, err
			}
			order, err := moveRef(edited.Tasks(), ref, position-1)
			if err != nil {
				return nil, err
			}
			if _, err := store.Dispatch(id, app.OwnerEmail, editor.ReorderTasks{Order: order}); err != nil {
				return nil, err
			}
			return store.Save(ctx, id, app.OwnerEmail)
		})
		if err != nil {
			return fmt.Errorf("failed to move task: %w", err)
		}

		printSaveResult(cmd.OutOrStdout(), "saved", result)
		return nil
	},
}

func parseTaskArgs(args []string) (uuid.UUID, domain.Ref, error) {
	id, err := parseID(args[0], "interview")
	if err != nil {
		return uuid.Nil, domain.Ref{}, err
	}
	taskID, err := parseID(args[1], "task")
	if err != nil {
		return uuid.Nil, domain.Ref{}, err
	}
	return id, domain.Persisted(taskID), nil
}

// moveRef returns the task refs with ref moved to index, clamped to the list.
func moveRef(tasks []domain.Task, ref domain.Ref, index int) ([]domain.Ref, error) {
	order := make([]domain.Ref, 0, len(tasks))
	found := false
	for _, t := range tasks {
		if t.Ref == ref {
			found = true
			continue
		}
		order = append(order, t.Ref)
	}
	if !found {
		return nil, domain.ErrTaskNotFound
	}

	index = max(0, min(index, len(order)))
	order = append(order, domain.Ref{})
	copy(order[index+1:], order[index:])
	order[index] = ref
	return order, nil
}

// applyTaskFlags copies the flags set on cmd onto task.
func applyTaskFlags(cmd *cobra.Command, task domain.Task) domain.Task {
	flags := cmd.Flags()
	if flags.Changed("title") {
		task.Title = taskTitle
	}
	if flags.Changed("prompt") {
		task.Prompt = taskPrompt
	}
	if flags.Changed("behavior") {
		task.AIBehavior = domain.AIBehavior(taskBehavior)
	}
	if flags.Changed("duration") {
		task.DurationMinutes = taskDuration
	}
	if flags.Changed("audio") {
		task.Requirements.Audio = taskAudio
	}
	if flags.Changed("screen-share") {
		task.Requirements.ScreenShare = taskScreenShare
	}
	if flags.Changed("webcam") {
		task.Requirements.Webcam = taskWebcam
	}
	return task
}

func addTaskFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&taskTitle, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&taskPrompt, "prompt", "p", "", "prompt shown to the candidate")
	cmd.Flags().StringVar(&taskBehavior, "behavior", "", "interviewer behavior (default neutral)")
	cmd.Flags().IntVarP(&taskDuration, "duration", "d", 0, "duration in minutes")
	cmd.Flags().BoolVar(&taskAudio, "audio", true, "require audio")
	cmd.Flags().BoolVar(&taskScreenShare, "screen-share", false, "require screen sharing")
	cmd.Flags().BoolVar(&taskWebcam, "webcam", false, "require a webcam")
}

func init() {
	addTaskFlags(taskAddCmd)
	addTaskFlags(taskUpdateCmd)

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskRemoveCmd)
	taskCmd.AddCommand(taskMoveCmd)
}
