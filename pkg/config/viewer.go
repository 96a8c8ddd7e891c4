package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"dataviewer/pkg/chart"
)

const (
	DefaultViewerConfigPath = "config/dataviewer.toml"
	DefaultSocketPath       = "/tmp/dataviewer.ipc"
	envPrefix               = "DATAVIEWER"

	defaultDebounceMs       = 50
	defaultMarginPercent    = chart.DefaultMargin * 100
	defaultTooltipThreshold = chart.DefaultTooltipThreshold
	defaultWindowWidth      = 800
	defaultWindowHeight     = 600
	defaultLogLevel         = "info"
	defaultExportDir        = "."
)

type ViewerConfig struct {
	SocketPath          string   `mapstructure:"socket_path"`
	DebounceMs          int      `mapstructure:"debounce_ms"`
	MarginPercent       float64  `mapstructure:"margin_percent"`
	TooltipThresholdPx2 float64  `mapstructure:"tooltip_threshold_px2"`
	WindowWidth         int      `mapstructure:"window_width"`
	WindowHeight        int      `mapstructure:"window_height"`
	Palette             []string `mapstructure:"palette"`
	MetricsAddr         string   `mapstructure:"metrics_addr"`
	LogLevel            string   `mapstructure:"log_level"`
	ExportDir           string   `mapstructure:"export_dir"`
}

func DefaultViewerConfig() ViewerConfig {
	return ViewerConfig{
		SocketPath:          DefaultSocketPath,
		DebounceMs:          defaultDebounceMs,
		MarginPercent:       defaultMarginPercent,
		TooltipThresholdPx2: defaultTooltipThreshold,
		WindowWidth:         defaultWindowWidth,
		WindowHeight:        defaultWindowHeight,
		LogLevel:            defaultLogLevel,
		ExportDir:           defaultExportDir,
	}
}

func ResolveViewerConfigPath() string {
	if fromEnv := os.Getenv(envPrefix + "_CONFIG"); fromEnv != "" {
		return fromEnv
	}
	return DefaultViewerConfigPath
}

// LoadViewerConfig reads path (TOML, YAML or JSON, by extension) on top of
// the defaults. DATAVIEWER_<KEY> environment variables take precedence over
// the file. A missing file is not an error.
func LoadViewerConfig(path string) (ViewerConfig, error) {
	cfg := DefaultViewerConfig()
	v := newViper(map[string]any{
		"socket_path":           cfg.SocketPath,
		"debounce_ms":           cfg.DebounceMs,
		"margin_percent":        cfg.MarginPercent,
		"tooltip_threshold_px2": cfg.TooltipThresholdPx2,
		"window_width":          cfg.WindowWidth,
		"window_height":         cfg.WindowHeight,
		"palette":               []string{},
		"metrics_addr":          cfg.MetricsAddr,
		"log_level":             cfg.LogLevel,
		"export_dir":            cfg.ExportDir,
	})

	if err := readConfigFile(v, path); err != nil {
		return cfg, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultViewerConfig(), fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newViper(defaults map[string]any) *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func (c *ViewerConfig) applyDefaults() {
	if c.SocketPath == "" {
		c.SocketPath = DefaultSocketPath
	}
	if c.DebounceMs == 0 {
		c.DebounceMs = defaultDebounceMs
	}
	if c.MarginPercent == 0 {
		c.MarginPercent = defaultMarginPercent
	}
	if c.TooltipThresholdPx2 == 0 {
		c.TooltipThresholdPx2 = defaultTooltipThreshold
	}
	if c.WindowWidth == 0 {
		c.WindowWidth = defaultWindowWidth
	}
	if c.WindowHeight == 0 {
		c.WindowHeight = defaultWindowHeight
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.ExportDir == "" {
		c.ExportDir = defaultExportDir
	}
	if len(c.Palette) == 0 {
		c.Palette = nil
	}
}

func (c ViewerConfig) Validate() error {
	if c.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must be >= 0")
	}
	if c.MarginPercent < 0 || c.MarginPercent >= 50 {
		return fmt.Errorf("margin_percent must be in [0, 50): %v", c.MarginPercent)
	}
	if c.TooltipThresholdPx2 <= 0 {
		return fmt.Errorf("tooltip_threshold_px2 must be > 0")
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("invalid window size: %dx%d", c.WindowWidth, c.WindowHeight)
	}
	if _, err := chart.ParsePalette(c.Palette); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c ViewerConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Margin is the autoview margin as a fraction of the data span.
func (c ViewerConfig) Margin() float64 {
	return c.MarginPercent / 100
}

// Colors returns the configured palette, or Palette1 when none is set.
func (c ViewerConfig) Colors() []color.RGBA {
	colors, err := chart.ParsePalette(c.Palette)
	if err != nil || len(colors) == 0 {
		return chart.Palette1
	}
	return colors
}

func (c ViewerConfig) DrawOptions() chart.DrawOptions {
	return chart.DrawOptions{
		TooltipThreshold: c.TooltipThresholdPx2,
		Palette:          c.Colors(),
	}
}
