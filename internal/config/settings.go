package config

import (
	"errors"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultModel = "gpt-5.1-codex"

type CoreConfig struct {
	Agent         AgentConfig        `toml:"agent"`
	Store         StoreConfig        `toml:"store"`
	Logging       LoggingConfig      `toml:"logging"`
	Notifications NotificationConfig `toml:"notifications"`
}

type AgentConfig struct {
	Command        string `toml:"command"`
	NodeBin        string `toml:"node_bin"`
	DefaultModel   string `toml:"default_model"`
	ApprovalPolicy string `toml:"approval_policy"`
	SandboxPolicy  string `toml:"sandbox_policy"`
}

type StoreConfig struct {
	Backend string `toml:"backend"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type NotificationConfig struct {
	Enabled        *bool    `toml:"enabled"`
	Methods        []string `toml:"methods"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

func DefaultCoreConfig() CoreConfig {
	return CoreConfig{
		Agent: AgentConfig{
			Command:      "codex",
			DefaultModel: defaultModel,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadCoreConfig reads ~/.cockpit/config.toml over the defaults. A missing
// file yields the defaults.
func LoadCoreConfig() (CoreConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return CoreConfig{}, err
	}
	return loadCoreConfigFromPath(path)
}

func loadCoreConfigFromPath(path string) (CoreConfig, error) {
	cfg := DefaultCoreConfig()
	if err := readTOML(path, &cfg); err != nil {
		return CoreConfig{}, err
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func (c CoreConfig) AgentCommand() string {
	cmd := strings.TrimSpace(c.Agent.Command)
	if cmd == "" {
		return "codex"
	}
	return cmd
}

func (c CoreConfig) DefaultModel() string {
	model := strings.TrimSpace(c.Agent.DefaultModel)
	if model == "" {
		return defaultModel
	}
	return model
}

func (c CoreConfig) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c CoreConfig) StoreBackend() string {
	return strings.ToLower(strings.TrimSpace(c.Store.Backend))
}

func (c CoreConfig) NotificationsEnabled() bool {
	if c.Notifications.Enabled == nil {
		return true
	}
	return *c.Notifications.Enabled
}
