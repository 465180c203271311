package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/panelist/adapter/cli"
	"github.com/felixgeelhaar/panelist/internal/app"
	mcpinternal "github.com/felixgeelhaar/panelist/internal/mcp"
	"github.com/felixgeelhaar/panelist/pkg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server on MCP_ADDR. Set MCP_AUTH_TOKEN to require a bearer
token from clients.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := cli.NewLogger(cfg, cmd.ErrOrStderr())

		container, err := app.NewContainer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer container.Close()

		if err := container.StartOutbox(ctx); err != nil {
			return err
		}

		owner := cfg.OwnerEmail
		if a := cli.GetApp(); a != nil && a.OwnerEmail != "" {
			owner = a.OwnerEmail
		}

		cliApp := mcpinternal.NewCLIApp(container, owner)
		err = mcpinternal.Serve(ctx, cfg, cliApp, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
