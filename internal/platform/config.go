package platform

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// ConfigFileName is the project config file looked up in the data root.
const ConfigFileName = ".packlist.json"

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigRead     = errors.New("cannot read config file")
	ErrConfigInvalid  = errors.New("invalid config file")
)

// Config is the file-level configuration. Pointer fields distinguish
// "unset" from the zero value so layers merge correctly.
type Config struct {
	AppID    string `json:"app_id,omitempty"`
	Adapter  string `json:"adapter,omitempty"`
	Format   string `json:"format,omitempty"`
	ReadOnly *bool  `json:"read_only,omitempty"`
	LogLevel string `json:"log_level,omitempty"`
}

// ConfigSources records which files contributed to a loaded Config.
type ConfigSources struct {
	Global  string
	Project string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		AppID:    DefaultAppID,
		Adapter:  AdapterFS,
		Format:   "json",
		LogLevel: "info",
	}
}

// GlobalConfigPath returns $XDG_CONFIG_HOME/packlist/config.json, falling
// back to ~/.config/packlist/config.json. Empty when neither can be resolved.
func GlobalConfigPath(env []string) string {
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "XDG_CONFIG_HOME="); ok && after != "" {
			return filepath.Join(after, "packlist", "config.json")
		}
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "packlist", "config.json")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "packlist", "config.json")
	}
	return ""
}

// LoadConfig resolves the configuration with the following precedence
// (highest wins):
//  1. Defaults
//  2. Global user config
//  3. Project config (.packlist.json in root, if present)
//  4. Explicit config file (must exist when configPath is non-empty)
//  5. overrides
func LoadConfig(root, configPath string, overrides Config, env []string) (Config, ConfigSources, error) {
	cfg := DefaultConfig()
	var sources ConfigSources

	if p := GlobalConfigPath(env); p != "" {
		global, loaded, err := loadConfigFile(p, false)
		if err != nil {
			return Config{}, ConfigSources{}, err
		}
		if loaded {
			sources.Global = p
			cfg = mergeConfig(cfg, global)
		}
	}

	if root != "" {
		p := filepath.Join(root, ConfigFileName)
		project, loaded, err := loadConfigFile(p, false)
		if err != nil {
			return Config{}, ConfigSources{}, err
		}
		if loaded {
			sources.Project = p
			cfg = mergeConfig(cfg, project)
		}
	}

	if configPath != "" {
		explicit, _, err := loadConfigFile(configPath, true)
		if err != nil {
			return Config{}, ConfigSources{}, err
		}
		sources.Project = configPath
		cfg = mergeConfig(cfg, explicit)
	}

	cfg = mergeConfig(cfg, overrides)

	if err := cfg.Validate(); err != nil {
		return Config{}, ConfigSources{}, err
	}
	return cfg, sources, nil
}

// Validate reports unknown adapter, format or log level values.
func (c Config) Validate() error {
	switch c.Adapter {
	case AdapterFS, AdapterSQLite, AdapterMemory:
	default:
		return fmt.Errorf("%w: unknown adapter %q", ErrConfigInvalid, c.Adapter)
	}
	switch c.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("%w: unknown format %q", ErrConfigInvalid, c.Format)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	return nil
}

// Options converts the configuration into App options.
func (c Config) Options() []Option {
	opts := []Option{
		WithAppID(c.AppID),
		WithAdapter(c.Adapter),
		WithFormat(c.Format),
	}
	if c.ReadOnly != nil {
		opts = append(opts, WithReadOnly(*c.ReadOnly))
	}
	return opts
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return Config{}, false, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return Config{}, false, nil
		}
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigRead, path, err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}
	return cfg, true, nil
}

// ParseConfig decodes a JSON document that may carry comments and trailing commas.
func ParseConfig(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.AppID != "" {
		base.AppID = overlay.AppID
	}
	if overlay.Adapter != "" {
		base.Adapter = overlay.Adapter
	}
	if overlay.Format != "" {
		base.Format = overlay.Format
	}
	if overlay.ReadOnly != nil {
		v := *overlay.ReadOnly
		base.ReadOnly = &v
	}
	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}
	return base
}
