package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/panelist/adapter/cli"
	"github.com/felixgeelhaar/panelist/adapter/cli/interview"
	"github.com/felixgeelhaar/panelist/adapter/cli/mcp"
	"github.com/felixgeelhaar/panelist/adapter/cli/results"
	"github.com/felixgeelhaar/panelist/adapter/cli/server"
	"github.com/felixgeelhaar/panelist/internal/app"
	mcpinternal "github.com/felixgeelhaar/panelist/internal/mcp"
	"github.com/felixgeelhaar/panelist/pkg/config"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	logger := cli.NewLogger(nil, os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development", OwnerEmail: "owner@localhost"}
	} else {
		logger = cli.NewLogger(cfg, os.Stderr)
	}
	cli.SetLogger(logger)

	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// version and serve still work without a store
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()
		cliApp = mcpinternal.NewCLIApp(container, cfg.OwnerEmail)
	}

	cli.SetApp(cliApp)

	cli.AddCommand(interview.Cmd)
	cli.AddCommand(results.Cmd)
	cli.AddCommand(server.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.ExecuteContext(ctx)
}
