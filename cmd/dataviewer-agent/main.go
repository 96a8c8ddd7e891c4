// Command dataviewer-agent renders live updates to PNG snapshots without a
// display.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dataviewer/pkg/agent"
	"dataviewer/pkg/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := config.ResolveAgentConfigPath()
	cfg, err := config.LoadAgentConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load agent config %q: %w", cfgPath, err)
	}

	log, err := config.NewLogger(cfg.Viewer.LogLevel, true)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := agent.New(cfg, log).Run(ctx); err != nil {
		return fmt.Errorf("agent failed: %w", err)
	}
	return nil
}
