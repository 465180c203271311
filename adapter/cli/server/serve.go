// Package server holds the command that runs the HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/panelist/adapter/api"
	"github.com/felixgeelhaar/panelist/adapter/cli"
	"github.com/felixgeelhaar/panelist/internal/app"
	"github.com/felixgeelhaar/panelist/pkg/config"
)

var (
	addr            string
	shutdownTimeout time.Duration
)

// Cmd starts the HTTP API.
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API on API_ADDR (or --addr) and run the outbox processor
next to it. Requests name their owner with the X-Owner-Email header; without
it PANELIST_OWNER_EMAIL is used.`,
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
			return fmt.Errorf("failed to start outbox processor: %w", err)
		}

		serverCfg := api.DefaultServerConfig()
		serverCfg.Addr = cfg.APIAddr
		if addr != "" {
			serverCfg.Addr = addr
		}
		serverCfg.DefaultOwner = cfg.OwnerEmail
		if a := cli.GetApp(); a != nil && a.OwnerEmail != "" {
			serverCfg.DefaultOwner = a.OwnerEmail
		}

		server := api.NewServer(serverCfg, api.NewHandlers(container), logger)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "listen address (default API_ADDR)")
	Cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown")
}
