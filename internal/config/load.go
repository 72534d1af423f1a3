package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that points at a config
// file when no --config flag is given.
const EnvConfigPath = "MESHLENS_CONFIG"

// Load builds the configuration from defaults, then the config file, then
// CLI flags. The file actually read is recorded in Config.Source.
func Load() (*Config, error) {
	cfg := Default()

	path, explicit := configFile()
	if path != "" {
		err := loadFromFile(cfg, path)
		switch {
		case err == nil:
			cfg.Source = path
		case errors.Is(err, os.ErrNotExist) && !explicit:
			// A discovered file vanished between Stat and Open.
		default:
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// configFile picks the file to read: the --config flag, then
// MESHLENS_CONFIG, then the first file found by findConfigFile. explicit
// is true when the user named the file, so a missing one is an error.
func configFile() (path string, explicit bool) {
	if p := ConfigPath(); p != "" {
		return p, true
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, true
	}
	return findConfigFile(), false
}

// findConfigFile looks in the working directory, then the user config dir.
func findConfigFile() string {
	candidates := []string{
		"meshlens.yaml",
		"config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "MeshLens")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MeshLens")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "meshlens")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "meshlens")
	}
}

// loadFromFile merges a YAML file over cfg. Unknown keys are rejected so a
// misspelt option fails loudly instead of silently keeping its default.
// An empty file leaves cfg untouched.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
