package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dataviewer/pkg/config"
	"dataviewer/pkg/dataview"
	"dataviewer/pkg/viewer"
)

type exportOptions struct {
	output string
	width  int
	height int
	format string
}

func newExportCmd() *cobra.Command {
	opts := exportOptions{}
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Render a document to PNG or SVG without opening a window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			out, err := exportFile(cfg, log, args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: <export_dir>/<name>.<format>)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Image width in pixels (default: window_width)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "Image height in pixels (default: window_height)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: png or svg (default: from the output extension, else png)")
	return cmd
}

// exportFile renders the document at path and returns the written file.
func exportFile(cfg config.ViewerConfig, log *zap.Logger, path string, opts exportOptions) (string, error) {
	format, err := exportFormat(opts)
	if err != nil {
		return "", err
	}
	out := opts.output
	if out == "" {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		name = strings.TrimSuffix(name, ".dv")
		out = filepath.Join(cfg.ExportDir, name+"."+format)
	}
	width, height := opts.width, opts.height
	if width <= 0 {
		width = cfg.WindowWidth
	}
	if height <= 0 {
		height = cfg.WindowHeight
	}

	f, err := dataview.Load(path)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", path, err)
	}
	v := viewer.New(viewer.Options{
		Margin: cfg.Margin(),
		Draw:   cfg.DrawOptions(),
		Logger: log,
	}, nil)
	if err := v.Load(f); err != nil {
		return "", fmt.Errorf("load %s: %w", path, err)
	}
	v.Render(float64(width), float64(height))
	if err := v.ExportFile(out, format == "svg"); err != nil {
		return "", fmt.Errorf("export %s: %w", path, err)
	}
	return out, nil
}

func exportFormat(opts exportOptions) (string, error) {
	format := strings.ToLower(opts.format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.output)), ".")
		if format != "svg" {
			format = "png"
		}
	}
	if format != "png" && format != "svg" {
		return "", fmt.Errorf("invalid format: %s (must be png or svg)", opts.format)
	}
	return format, nil
}
