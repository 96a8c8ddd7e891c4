package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"dataviewer/pkg/agent"
	"dataviewer/pkg/config"
)

func newAgentStatusCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "agent-status",
		Short: "Show the metrics and snapshots of a running agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseURL == "" {
				cfg, err := config.LoadAgentConfig(config.ResolveAgentConfigPath())
				if err != nil {
					return fmt.Errorf("load agent config: %w", err)
				}
				baseURL = cfg.BaseURL()
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			return printAgentStatus(ctx, cmd.OutOrStdout(), agent.NewClient(baseURL))
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "", "Agent base URL (default: from the agent config)")
	return cmd
}

func printAgentStatus(ctx context.Context, w io.Writer, client *agent.Client) error {
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("agent at %s is not reachable: %w", client.BaseURL(), err)
	}
	metrics, err := client.Metrics(ctx)
	if err != nil {
		return err
	}
	snaps, err := client.Snapshots(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "agent %s\n", client.BaseURL())
	for _, name := range agent.MetricNames(metrics) {
		fmt.Fprintf(w, "  %-40s %g\n", name, metrics[name])
	}
	fmt.Fprintf(w, "snapshots: %d\n", len(snaps))
	for _, s := range snaps {
		fmt.Fprintf(w, "  %s  %-24q writes=%d  %s\n", s.File, s.Title, s.Writes, s.Updated.Format(time.RFC3339))
	}
	return nil
}
