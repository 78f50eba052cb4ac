// Package config loads mini settings from TOML or YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/mini/format"
	"github.com/dhamidi/mini/frontend"
	"github.com/dhamidi/mini/symtab"
	"github.com/dhamidi/mini/syntax"
)

// Config holds the complete tool configuration
type Config struct {
	Engine     string      `toml:"engine" yaml:"engine"`
	Numbering  string      `toml:"numbering" yaml:"numbering"`
	Format     string      `toml:"format" yaml:"format"`
	Extensions []string    `toml:"extensions" yaml:"extensions"`
	Log        LogConfig   `toml:"log" yaml:"log"`
	Watch      WatchConfig `toml:"watch" yaml:"watch"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Verbosity int    `toml:"verbosity" yaml:"verbosity"`
	File      string `toml:"file" yaml:"file"`
}

// WatchConfig holds file watcher settings
type WatchConfig struct {
	Interval Duration `toml:"interval" yaml:"interval"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// FileNames are the names Discover looks for, in order.
var FileNames = []string{"mini.toml", ".mini.toml", "mini.yaml", "mini.yml"}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	default:
		if _, err := toml.Decode(string(content), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Discover returns the first config file in dir or any of its parents.
func Discover(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// LoadDir loads the config discovered from dir, or the defaults if there is
// none.
func LoadDir(dir string) (*Config, error) {
	path, ok := Discover(dir)
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	if c.Engine == "" {
		c.Engine = syntax.EngineDescent.String()
	}
	if c.Numbering == "" {
		c.Numbering = symtab.PerCategoryNumbering.String()
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if len(c.Extensions) == 0 {
		c.Extensions = []string{".mini"}
	}
	if c.Watch.Interval.Duration == 0 {
		c.Watch.Interval.Duration = 500 * time.Millisecond
	}
}

// Validate checks that every setting names something that exists.
func (c *Config) Validate() error {
	if _, err := syntax.ParseEngine(c.Engine); err != nil {
		return err
	}
	if _, err := symtab.ParseNumbering(c.Numbering); err != nil {
		return err
	}
	if !slices.Contains(format.Formats, c.Format) {
		return fmt.Errorf("unknown format %q (want %s)", c.Format, strings.Join(format.Formats, ", "))
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if c.Watch.Interval.Duration < 0 {
		return fmt.Errorf("watch interval %s is negative", c.Watch.Interval)
	}
	return nil
}

// AnalyzeOptions returns the frontend options selected by the configuration.
// The configuration must be valid.
func (c *Config) AnalyzeOptions() []frontend.Option {
	engine, _ := syntax.ParseEngine(c.Engine)
	numbering, _ := symtab.ParseNumbering(c.Numbering)
	return []frontend.Option{
		frontend.WithEngine(engine),
		frontend.WithNumbering(numbering),
	}
}

// IsSource reports whether path has one of the configured extensions.
func (c *Config) IsSource(path string) bool {
	return slices.Contains(c.Extensions, filepath.Ext(path))
}
