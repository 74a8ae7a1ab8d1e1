// Package config resolves client and CLI configuration. There is no
// ambient global: the resolved Config is passed explicitly to whatever
// needs it.
//
// Precedence (low to high):
//  1. defaults (New)
//  2. YAML file, when GRANDJURY_CONFIG points at one or
//     ~/.grandjury/config.yaml exists
//  3. environment variables with the GRANDJURY_ prefix
//     (GRANDJURY_BASE_URL, GRANDJURY_API_KEY, ...)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix      = "GRANDJURY_"
	envConfigPath  = "GRANDJURY_CONFIG"
	configDirName  = ".grandjury"
	configFileName = "config.yaml"
)

// Config is the process configuration.
type Config struct {
	// BaseURL of the remote scoring service.
	BaseURL string `koanf:"base_url"`

	// APIKey for server-authoritative operations. Usually sourced from
	// the OS keyring by the CLI; the env var wins when set.
	APIKey string `koanf:"api_key"`

	// Format selects CLI output encoding: json or yaml.
	Format string `koanf:"format"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}

// New returns the defaults.
func New() *Config {
	return &Config{
		BaseURL:  "https://grandjury-server.onrender.com",
		Format:   "json",
		LogLevel: "info",
	}
}

// Load layers the file and environment on top of the defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := resolveConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// GRANDJURY_BASE_URL -> base_url; underscores are preserved to match
	// the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading env config: %w", err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url must not be empty")
	}
	switch c.Format {
	case "json", "yaml", "yml":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}

// HomeDir returns the config directory, creating it on first use. Falls
// back to the working directory when the user home cannot be resolved.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	dir := filepath.Join(home, configDirName)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := os.Mkdir(dir, 0700); err != nil {
			return home
		}
	}
	return dir
}

// resolveConfigFile prefers the explicit env path, then the default
// location. Empty when neither exists.
func resolveConfigFile() string {
	if path := os.Getenv(envConfigPath); path != "" {
		return path
	}
	path := filepath.Join(HomeDir(), configFileName)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
