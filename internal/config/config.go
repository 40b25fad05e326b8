package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	DefaultFolder string `koanf:"default_folder"` // album folder used when none is given; empty means cwd
	ExportRoot    string `koanf:"export_root"`    // root directory for export --root

	Log LogConfig `koanf:"log"`
}

// LogConfig controls the diagnostic output on stderr.
type LogConfig struct {
	Level  string `koanf:"level"`  // zerolog level name (default: "info")
	Format string `koanf:"format"` // "console" or "json" (default: "console")
}

// Load reads the config files in priority order (last wins) and applies
// defaults. Missing files are fine; every setting is optional.
func Load() (*Config, error) {
	return load(getConfigPaths())
}

// LoadFrom reads a single explicit config file, for the --config flag.
// Unlike Load, a missing file is an error here.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return load([]string{path})
}

func load(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		Log: LogConfig{Level: "info", Format: "console"},
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.DefaultFolder != "" {
		cfg.DefaultFolder = expandPath(cfg.DefaultFolder)
	}
	if cfg.ExportRoot != "" {
		cfg.ExportRoot = expandPath(cfg.ExportRoot)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{
		// 1. ~/.config/maestro/config.toml
		filepath.Join(xdg.ConfigHome, "maestro", "config.toml"),
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
