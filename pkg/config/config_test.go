package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"dataviewer/pkg/chart"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadViewerConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadViewerConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultViewerConfig(), cfg)
	assert.Equal(t, 50*time.Millisecond, cfg.Debounce())
	assert.InDelta(t, chart.DefaultMargin, cfg.Margin(), 1e-12)
	assert.Equal(t, chart.Palette1, cfg.Colors())
}

func TestLoadViewerConfig_TOML(t *testing.T) {
	path := writeConfig(t, "dataviewer.toml", `
socket_path = "/tmp/other.ipc"
debounce_ms = 20
margin_percent = 5
palette = ["#000000", "ffffff"]
`)
	cfg, err := LoadViewerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.ipc", cfg.SocketPath)
	assert.Equal(t, 20*time.Millisecond, cfg.Debounce())
	assert.InDelta(t, 0.05, cfg.Margin(), 1e-12)
	assert.Equal(t, defaultWindowWidth, cfg.WindowWidth)

	opts := cfg.DrawOptions()
	require.Len(t, opts.Palette, 2)
	assert.Equal(t, uint8(0xFF), opts.Palette[1].R)
	assert.Equal(t, defaultTooltipThreshold, opts.TooltipThreshold)
}

func TestLoadViewerConfig_YAML(t *testing.T) {
	path := writeConfig(t, "dataviewer.yaml", "window_width: 1024\nlog_level: debug\n")
	cfg, err := LoadViewerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.WindowWidth)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadViewerConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "dataviewer.toml", "socket_path = \"/tmp/file.ipc\"\n")
	t.Setenv("DATAVIEWER_SOCKET_PATH", "/tmp/env.ipc")
	cfg, err := LoadViewerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.ipc", cfg.SocketPath)
}

func TestLoadViewerConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad margin":  "margin_percent = 80\n",
		"bad palette": "palette = [\"nothex\"]\n",
		"bad level":   "log_level = \"loud\"\n",
		"bad syntax":  "socket_path = \n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadViewerConfig(writeConfig(t, "c.toml", body))
			assert.Error(t, err)
		})
	}
}

func TestResolveViewerConfigPath(t *testing.T) {
	t.Setenv("DATAVIEWER_CONFIG", "")
	assert.Equal(t, DefaultViewerConfigPath, ResolveViewerConfigPath())
	t.Setenv("DATAVIEWER_CONFIG", "/etc/dv.toml")
	assert.Equal(t, "/etc/dv.toml", ResolveViewerConfigPath())
}

func TestLoadAgentConfig(t *testing.T) {
	path := writeConfig(t, "agent.toml", `
port = 9191
snapshot_dir = "/var/tmp/snaps"

[viewer]
window_width = 640
`)
	cfg, err := LoadAgentConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9191", cfg.ListenAddr())
	assert.Equal(t, "/var/tmp/snaps", cfg.SnapshotDir)
	assert.Equal(t, 640, cfg.Viewer.WindowWidth)
	assert.Equal(t, defaultWindowHeight, cfg.Viewer.WindowHeight)
	assert.Equal(t, DefaultSocketPath, cfg.Viewer.SocketPath)
}

func TestAgentConfig_Validate(t *testing.T) {
	cfg := DefaultAgentConfig()
	cfg.Port = 70000
	assert.Error(t, cfg.Validate())
	cfg.ListenHost = "0.0.0.0"
	assert.Equal(t, "http://127.0.0.1:70000", cfg.BaseURL())
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("warn", true)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	_, err = NewLogger("nope", false)
	assert.Error(t, err)
}
