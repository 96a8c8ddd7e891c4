package config

import (
	"fmt"
	"os"
)

const (
	DefaultAgentConfigPath = "config/agent.toml"
	defaultListenHost      = "127.0.0.1"
	defaultPort            = 9090
	defaultSnapshotDir     = "snapshots"
)

// AgentConfig configures the headless agent: where snapshots go and where
// its metrics endpoint listens. Rendering settings come from Viewer.
type AgentConfig struct {
	ListenHost  string       `mapstructure:"listen_host"`
	Port        int          `mapstructure:"port"`
	SnapshotDir string       `mapstructure:"snapshot_dir"`
	Viewer      ViewerConfig `mapstructure:"viewer"`
}

func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		ListenHost:  defaultListenHost,
		Port:        defaultPort,
		SnapshotDir: defaultSnapshotDir,
		Viewer:      DefaultViewerConfig(),
	}
}

func ResolveAgentConfigPath() string {
	if fromEnv := os.Getenv(envPrefix + "_AGENT_CONFIG"); fromEnv != "" {
		return fromEnv
	}
	return DefaultAgentConfigPath
}

func LoadAgentConfig(path string) (AgentConfig, error) {
	cfg := DefaultAgentConfig()
	vc := cfg.Viewer
	v := newViper(map[string]any{
		"listen_host":                  cfg.ListenHost,
		"port":                         cfg.Port,
		"snapshot_dir":                 cfg.SnapshotDir,
		"viewer.socket_path":           vc.SocketPath,
		"viewer.debounce_ms":           vc.DebounceMs,
		"viewer.margin_percent":        vc.MarginPercent,
		"viewer.tooltip_threshold_px2": vc.TooltipThresholdPx2,
		"viewer.window_width":          vc.WindowWidth,
		"viewer.window_height":         vc.WindowHeight,
		"viewer.palette":               []string{},
		"viewer.log_level":             vc.LogLevel,
	})

	if err := readConfigFile(v, path); err != nil {
		return cfg, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultAgentConfig(), fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *AgentConfig) applyDefaults() {
	if c.ListenHost == "" {
		c.ListenHost = defaultListenHost
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.SnapshotDir == "" {
		c.SnapshotDir = defaultSnapshotDir
	}
	c.Viewer.applyDefaults()
}

func (c AgentConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return c.Viewer.Validate()
}

func (c AgentConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ListenHost, c.Port)
}

func (c AgentConfig) BaseURL() string {
	host := c.ListenHost
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Port)
}
