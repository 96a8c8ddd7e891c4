package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"dataviewer/pkg/dataview"
	"dataviewer/pkg/ipc"
)

type sendOptions struct {
	follow bool
	rate   float64
	series string
	title  string
}

func newSendCmd() *cobra.Command {
	opts := sendOptions{}
	cmd := &cobra.Command{
		Use:   "send [FILE...]",
		Short: "Send documents to a running viewer",
		Long: `send writes documents to the socket of a running viewer. With --follow it
then reads "x y" lines from stdin and streams them to a new chart as they
arrive.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			client, err := ipc.Dial(cfg.SocketPath)
			if err != nil {
				return fmt.Errorf("connect to %s: %w", cfg.SocketPath, err)
			}
			defer client.Close()

			for _, path := range args {
				f, err := dataview.Load(path)
				if err != nil {
					return fmt.Errorf("load %s: %w", path, err)
				}
				if err := client.Send(f); err != nil {
					return fmt.Errorf("send %s: %w", path, err)
				}
			}
			if !opts.follow {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			n, err := follow(ctx, cmd.InOrStdin(), client.Send, opts)
			log.Info("stream finished", zap.Int("points", n), zap.Error(err))
			return err
		},
	}
	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Stream \"x y\" lines from stdin")
	cmd.Flags().Float64Var(&opts.rate, "rate", 0, "Maximum points sent per second, 0 for no limit")
	cmd.Flags().StringVar(&opts.series, "series", "stdin", "Series key of the streamed points")
	cmd.Flags().StringVar(&opts.title, "title", "", "Chart title of the streamed points")
	return cmd
}

// follow opens a single-series chart and appends one point per input line.
// It returns the number of points sent.
func follow(ctx context.Context, in io.Reader, send func(*dataview.File) error, opts sendOptions) (int, error) {
	limit := rate.Inf
	if opts.rate > 0 {
		limit = rate.Limit(opts.rate)
	}
	limiter := rate.NewLimiter(limit, 1)

	open := dataview.NewFile()
	open.DataView.Title = opts.title
	open.Chart[opts.series] = dataview.Chart{Title: opts.series}
	open.Data[opts.series] = dataview.Series{}
	if err := send(open); err != nil {
		return 0, err
	}

	sent := 0
	scanner := bufio.NewScanner(in)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		x, y, ok, err := parsePoint(scanner.Text())
		if err != nil {
			return sent, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !ok {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return sent, nil
		}
		update := &dataview.File{Data: map[string]dataview.Series{opts.series: {x, y}}}
		if err := send(update); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, scanner.Err()
}

// parsePoint reads an "x y" pair. Blank lines and lines starting with '#'
// are skipped. Fields may be separated by blanks or a comma.
func parsePoint(line string) (x, y float64, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return 0, 0, false, nil
	}
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 2 {
		return 0, 0, false, fmt.Errorf("expected 2 values, got %d", len(fields))
	}
	if x, err = strconv.ParseFloat(fields[0], 64); err != nil {
		return 0, 0, false, err
	}
	if y, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return 0, 0, false, err
	}
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, 0, false, fmt.Errorf("non-finite value in %q", line)
	}
	return x, y, true, nil
}
