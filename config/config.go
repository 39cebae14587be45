// Package config loads roastetl settings from a config file, the
// environment and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/carlodf/roastetl/roast"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ROASTETL_"

// DefaultFields is the column selection used when none is configured.
var DefaultFields = []string{"date", "time", "beanId", "weightGreen"}

// Config holds the settings shared by every roastetl command.
type Config struct {
	RoastDir    string   `yaml:"roast_dir" toml:"roast_dir" env:"ROAST_DIR"`
	Fields      []string `yaml:"fields" toml:"fields" env:"FIELDS" envSeparator:","`
	Timezone    string   `yaml:"timezone" toml:"timezone" env:"TIMEZONE"`
	Workers     int      `yaml:"workers" toml:"workers" env:"WORKERS"`
	SkipInvalid bool     `yaml:"skip_invalid" toml:"skip_invalid" env:"SKIP_INVALID"`
	Database    string   `yaml:"database" toml:"database" env:"DATABASE"`
}

// Default returns the built-in settings. The roast directory is the one
// the roasting app writes to under the user config dir.
func Default() Config {
	return Config{
		RoastDir: DefaultRoastDir(),
		Fields:   append([]string(nil), DefaultFields...),
		Timezone: "Local",
		Workers:  1,
		Database: "roasts.db",
	}
}

// DefaultRoastDir returns <user config dir>/roast-time/roasts.
func DefaultRoastDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("roast-time", "roasts")
	}
	return filepath.Join(base, "roast-time", "roasts")
}

// Load returns Default overlaid with the file at path (skipped when path
// is empty) and then with ROASTETL_* environment variables.
func Load(path string) (Config, error) {
	return load(path, nil)
}

func load(path string, environ map[string]string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.parseEnv(environ); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var file Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &file)
	case ".toml":
		err = toml.Unmarshal(raw, &file)
	default:
		return fmt.Errorf("config %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	c.merge(file)
	return nil
}

// merge copies the settings o sets over c.
func (c *Config) merge(o Config) {
	if o.RoastDir != "" {
		c.RoastDir = o.RoastDir
	}
	if len(o.Fields) > 0 {
		c.Fields = o.Fields
	}
	if o.Timezone != "" {
		c.Timezone = o.Timezone
	}
	if o.Workers != 0 {
		c.Workers = o.Workers
	}
	if o.SkipInvalid {
		c.SkipInvalid = true
	}
	if o.Database != "" {
		c.Database = o.Database
	}
}

// parseEnv overlays variables from environ, or from the process
// environment when environ is nil.
func (c *Config) parseEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// SplitFields parses a comma-separated column list, dropping blanks.
func SplitFields(s string) []string {
	return trimFields(strings.Split(s, ","))
}

func trimFields(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (c *Config) normalize() {
	c.Fields = trimFields(c.Fields)
	c.RoastDir = strings.TrimSpace(c.RoastDir)
	c.Timezone = strings.TrimSpace(c.Timezone)
}

// Location returns the zone for the date and time columns. An empty
// timezone means local time.
func (c Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks the settings against table.
func (c Config) Validate(table *roast.Table) error {
	var errs []error
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Fields) == 0 {
		errs = append(errs, errors.New("no fields selected"))
	} else if err := table.CheckColumns(c.Fields); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
