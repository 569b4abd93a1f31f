package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/john/chatter/internal/message"
)

// Config holds the application configuration.
type Config struct {
	Timezone string                `yaml:"timezone"`
	Bridge   BridgeConfig          `yaml:"bridge"`
	Diag     DiagConfig            `yaml:"diag"`
	Labels   map[string]string     `yaml:"labels"`
	Logs     map[string]*LogConfig `yaml:"logs"`

	// Resolved during Load, not read from YAML.
	Location   *time.Location              `yaml:"-"`
	ChatLabels map[message.ChatType]string `yaml:"-"`
}

// BridgeConfig holds the host-bridge listener configuration.
type BridgeConfig struct {
	Listen string `yaml:"listen"`
}

// DiagConfig holds the diagnostics server configuration. An empty listen
// address disables the server.
type DiagConfig struct {
	Listen string `yaml:"listen"`
}

// LogConfig configures one chat log group. The chat logs read these values
// and never mutate them; a reload swaps in a whole new LogConfig.
type LogConfig struct {
	Channels      []string          `yaml:"channels"`
	DebugAll      bool              `yaml:"debug_all"`
	TimeFormat    string            `yaml:"time_format"`
	Template      string            `yaml:"template"`
	Directory     string            `yaml:"directory"`
	FileBaseName  string            `yaml:"file_base_name"`
	IncludeServer bool              `yaml:"include_server"`
	WrapWidth     int               `yaml:"wrap_width"`
	WrapIndent    int               `yaml:"wrap_indent"`
	Users         map[string]string `yaml:"users"`

	// Enabled is Channels resolved to per-type flags during Load. Types
	// absent from the map are not logged.
	Enabled map[message.ChatType]bool `yaml:"-"`
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	// Apply environment variable overrides
	if listen := os.Getenv("CHATTER_BRIDGE_LISTEN"); listen != "" {
		cfg.Bridge.Listen = listen
	}
	// Set defaults
	if cfg.Bridge.Listen == "" {
		cfg.Bridge.Listen = "127.0.0.1:9550"
	}
	for name, lc := range cfg.Logs {
		if lc == nil {
			lc = &LogConfig{}
			cfg.Logs[name] = lc
		}
		if dir := os.Getenv("CHATTER_LOG_DIR"); dir != "" {
			lc.Directory = dir
		}
		if lc.TimeFormat == "" {
			lc.TimeFormat = "2006-01-02 15:04:05"
		}
		if lc.Template == "" {
			lc.Template = "{0} {1}: {4}"
		}
		if lc.Directory == "" {
			lc.Directory = "./logs"
		}
		if lc.FileBaseName == "" {
			lc.FileBaseName = name
		}
		// WrapIndent deliberately has no default
		// (YAML zero value for int is 0, so we can't tell an explicit
		// wrap_indent: 0 apart from the key being absent)
	}

	// Resolve the time zone
	cfg.Location = time.Local
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("timezone: %w", err)
		}
		cfg.Location = loc
	}

	// Resolve channel labels, starting from the built-in table
	cfg.ChatLabels = message.DefaultLabels()
	for name, label := range cfg.Labels {
		t, err := message.ParseChatType(name)
		if err != nil {
			return nil, fmt.Errorf("labels: %w", err)
		}
		cfg.ChatLabels[t] = label
	}

	// Validate log groups
	if len(cfg.Logs) == 0 {
		return nil, fmt.Errorf("at least one log group is required")
	}
	for name, lc := range cfg.Logs {
		lc.Enabled = make(map[message.ChatType]bool, len(lc.Channels))
		for _, channel := range lc.Channels {
			t, err := message.ParseChatType(channel)
			if err != nil {
				return nil, fmt.Errorf("logs.%s.channels: %w", name, err)
			}
			lc.Enabled[t] = true
		}
		if err := validateTemplate(lc.Template); err != nil {
			return nil, fmt.Errorf("logs.%s.template: %w", name, err)
		}
		if lc.WrapWidth < 0 {
			return nil, fmt.Errorf("logs.%s.wrap_width must not be negative", name)
		}
		if lc.WrapIndent < 0 {
			return nil, fmt.Errorf("logs.%s.wrap_indent must not be negative", name)
		}
		if lc.WrapWidth > 0 && lc.WrapIndent >= lc.WrapWidth {
			return nil, fmt.Errorf("logs.%s.wrap_indent must be smaller than wrap_width", name)
		}
	}

	return &cfg, nil
}

// validateTemplate rejects placeholder tokens outside the {0}..{5} range.
// Unterminated braces and non-numeric tokens pass through unchecked: the
// formatter emits those literally.
func validateTemplate(template string) error {
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			return nil
		}
		rest = rest[open+1:]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return nil
		}
		token := rest[:end]
		rest = rest[end+1:]
		n, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		if n < 0 || n > 5 {
			return fmt.Errorf("placeholder {%d} is out of range (0-5)", n)
		}
	}
}
