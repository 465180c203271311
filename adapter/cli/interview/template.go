package interview

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/panelist/adapter/cli"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/security"
)

var exportOutput string

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Create a draft interview from a YAML template",
	Long: `Create a draft interview from a YAML template. Use "-" to read stdin.
The template status is ignored; imported interviews always start as drafts.

Examples:
  panelist interview import backend.yaml
  cat backend.yaml | panelist interview import -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		data, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := app.ImportInterviewHandler.Handle(ctx, commands.ImportInterviewCommand{
			OwnerEmail: app.OwnerEmail,
			Data:       data,
		})
		if err != nil {
			return fmt.Errorf("failed to import interview: %w", err)
		}
		if err := app.Flush(ctx); err != nil {
			return fmt.Errorf("failed to deliver events: %w", err)
		}

		printSaveResult(cmd.OutOrStdout(), "imported", result)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [interview-id]",
	Short: "Write an interview as a YAML template",
	Long: `Write an interview as a YAML template to stdout or to --output.

Examples:
  panelist interview export 6f1c... > backend.yaml
  panelist interview export 6f1c... -o backend.yaml`,
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

		data, err := app.ExportInterviewHandler.Handle(cmd.Context(), commands.ExportInterviewCommand{
			InterviewID: id,
			OwnerEmail:  app.OwnerEmail,
		})
		if err != nil {
			return fmt.Errorf("failed to export interview: %w", err)
		}

		if exportOutput == "" || exportOutput == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := security.WriteFile(exportOutput, data); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOutput, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Interview exported to %s\n", exportOutput)
		return nil
	},
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := security.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "file to write (default stdout)")
}
