// Package config holds the beastwords settings file and its environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	fileName    = "beastwords.yaml"
	envPrefix   = "BEASTWORDS_"
	maxIndent   = 16
	appDirName  = "beastwords"
	appFileName = "config.yaml"
)

// OutputConfig controls how converted documents are serialized.
type OutputConfig struct {
	Indent int `yaml:"indent"`
}

// LoggingConfig configures the zap logger of the command line tool.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// ConvertConfig holds defaults for the convert command.
type ConvertConfig struct {
	Partitions string `yaml:"partitions,omitempty"` //integer count or size ranges, empty keeps the words
	Force      bool   `yaml:"force"`
}

type HistogramConfig struct {
	Glyph string `yaml:"glyph"`
}

// Config is the root configuration structure.
type Config struct {
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	Convert   ConvertConfig   `yaml:"convert"`
	Histogram HistogramConfig `yaml:"histogram"`
}

// Load reads a config from the given path. If the file does not exist, defaults are returned.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s failed: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	cfg.applyEnvOverrides()
	return &cfg, nil
}

// LoadDefault tries ./beastwords.yaml first, then beastwords/config.yaml in the user config directory.
// If neither exists the defaults are returned and nothing is written. The second result is the path used, if any.
func LoadDefault() (*Config, string, error) {
	if _, err := os.Stat(fileName); err == nil {
		cfg, err := Load(fileName)
		return cfg, fileName, err
	}
	if userPath, err := UserPath(); err == nil {
		if _, err := os.Stat(userPath); err == nil {
			cfg, err := Load(userPath)
			return cfg, userPath, err
		}
	}
	cfg := defaultConfig()
	cfg.applyEnvOverrides()
	return cfg, "", nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects settings the tool cannot work with.
func (c *Config) Validate() error {
	if c.Output.Indent < 0 || c.Output.Indent > maxIndent {
		return fmt.Errorf("output.indent must be between 0 and %d, got %d", maxIndent, c.Output.Indent)
	}
	if _, err := zap.ParseAtomicLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Histogram.Glyph == "" {
		return errors.New("histogram.glyph must not be empty")
	}
	return nil
}

// UserPath is beastwords/config.yaml in the user config directory.
func UserPath() (string, error) {
	dir, err := os.UserConfigDir() //honors XDG_CONFIG_HOME
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName, appFileName), nil
}

func defaultConfig() *Config {
	return &Config{
		Output:    OutputConfig{Indent: 4},
		Logging:   LoggingConfig{Level: "info"},
		Histogram: HistogramConfig{Glyph: "█"},
	}
}

func applyConfigDefaults(cfg *Config) {
	if cfg.Output.Indent == 0 {
		cfg.Output.Indent = 4
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Histogram.Glyph == "" {
		cfg.Histogram.Glyph = "█"
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(envPrefix + "INDENT"); v != "" {
		if indent, err := strconv.Atoi(v); err == nil {
			c.Output.Indent = indent
		}
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(envPrefix + "LOG_JSON"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Logging.JSON = enabled
		}
	}
	if v := os.Getenv(envPrefix + "PARTITIONS"); v != "" {
		c.Convert.Partitions = v
	}
	if v := os.Getenv(envPrefix + "GLYPH"); v != "" {
		c.Histogram.Glyph = v
	}
}
