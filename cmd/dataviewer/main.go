// Command dataviewer shows dataview documents and listens for live updates.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dataviewer/pkg/config"
	"dataviewer/pkg/dataview"
	"dataviewer/pkg/ipc"
	"dataviewer/pkg/ui"
)

var (
	configPath string
	logLevel   string
	watchFiles bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dataviewer [file.dv.toml...]",
		Short: "Plot dataview documents",
		Long: `dataviewer plots the series of dataview TOML documents and lets you pan,
zoom and inspect them. When an instance is already running, the files are
sent to it instead.`,
		SilenceUsage: true,
		RunE:         runViewer,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $DATAVIEWER_CONFIG or "+config.DefaultViewerConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&watchFiles, "watch", false, "Reload files when they change on disk")

	rootCmd.AddCommand(newExportCmd(), newSendCmd(), newAgentStatusCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (config.ViewerConfig, *zap.Logger, error) {
	path := configPath
	if path == "" {
		path = config.ResolveViewerConfigPath()
	}
	cfg, err := config.LoadViewerConfig(path)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config %q: %w", path, err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log, err := config.NewLogger(cfg.LogLevel, false)
	if err != nil {
		return cfg, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, log, nil
}

func runViewer(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	if ipc.Running(cfg.SocketPath) {
		log.Info("forwarding to running instance", zap.String("socket", cfg.SocketPath), zap.Int("files", len(args)))
		return forward(cfg.SocketPath, args)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return ui.NewApp(cfg, log).Run(ctx, ui.Options{Files: args, Watch: watchFiles})
}

// forward sends every file to the instance listening on socket.
func forward(socket string, files []string) error {
	if len(files) == 0 {
		return nil
	}
	client, err := ipc.Dial(socket)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", socket, err)
	}
	defer client.Close()

	for _, path := range files {
		f, err := dataview.Load(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		if err := client.Send(f); err != nil {
			return fmt.Errorf("send %s: %w", path, err)
		}
	}
	return nil
}
