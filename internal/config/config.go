// Package config loads the controller's TOML configuration file,
// following the original implementation's search order and file name
// (config/src/config.rs: derive_config_location, CONFIG_FILE_NAME).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the config file's name at every search location.
const FileName = "epic-miner.toml"

// Config is the root of the TOML document.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`

	path string
}

// ServerConfig names the pool endpoint and credentials.
type ServerConfig struct {
	URL       string `toml:"url"`
	Login     string `toml:"login"`
	Password  string `toml:"password"`
	TLS       bool   `toml:"tls"`
	Algorithm string `toml:"algorithm"`
}

// LoggingConfig controls the logger's minimum level.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Defaults returns a Config with the same placeholder values the
// original CLI ships in its bundled epic-miner.toml.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			URL:       "127.0.0.1:3333",
			Login:     "",
			Password:  "x",
			TLS:       false,
			Algorithm: "cuckoo",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Locate implements derive_config_location's four-step search order:
// the current working directory, the directory containing the running
// executable, "~/.epic/epic-miner.toml", then "/etc/epic-miner.toml".
// The first location at which the file exists wins; if none do, the
// first (cwd) location is returned so a caller can create it there.
func Locate() (string, error) {
	var candidates []string

	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, FileName))
	}

	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), FileName))
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".epic", FileName))
	}

	candidates = append(candidates, filepath.Join("/etc", FileName))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("config: no candidate location could be derived")
	}
	return candidates[0], nil
}

// Load locates and parses the config file. If no file exists at any
// candidate location, a default config is written to the first
// (working-directory) location and returned, mirroring
// GlobalConfig::copy_config_file's "create on first run" convenience.
func Load() (*Config, error) {
	path, err := Locate()
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		cfg := Defaults()
		cfg.path = path
		if err := cfg.WriteDefault(); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}

	cfg := &Config{path: path}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFrom parses a specific file path, bypassing Locate. Used when
// the CLI is given an explicit --config flag.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{path: path}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// WriteDefault serializes this Config to its path, creating parent
// directories as needed.
func (c *Config) WriteDefault() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(c)
}

// Path returns the file this Config was loaded from (or would be
// written to).
func (c *Config) Path() string { return c.path }

// Validate checks the fields the controller depends on.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url must be set")
	}
	switch c.Server.Algorithm {
	case "cuckoo", "randomx", "progpow":
	default:
		return fmt.Errorf("server.algorithm must be one of cuckoo, randomx, progpow, got %q", c.Server.Algorithm)
	}
	return nil
}
