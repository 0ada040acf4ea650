// Package config loads tasktally settings from ~/.tasktally/config.toml.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// HomeEnv overrides the tasktally directory when set.
const HomeEnv = "TASKTALLY_HOME"

type Config struct {
	DBPath          string `toml:"db_path"`
	ListenAddr      string `toml:"listen_addr"`
	CategoriesFile  string `toml:"categories_file"`
	IncludeTerminal bool   `toml:"include_terminal"`
}

func DefaultConfig() *Config {
	dir, _ := Dir()
	return &Config{
		DBPath:         filepath.Join(dir, "tasktally.db"),
		ListenAddr:     "127.0.0.1:7466",
		CategoriesFile: filepath.Join(dir, "categories.yaml"),
	}
}

// Dir returns the tasktally state directory.
func Dir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return expandPath(dir), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".tasktally"), nil
}

func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LockPath is the file the daemon holds an exclusive lock on.
func LockPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "daemon.lock"), nil
}

func EnsureDirectories() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// Load reads the config file, writing one with defaults on first run.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := EnsureDirectories(); err != nil {
			return nil, err
		}
		if err := Save(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, err
	}

	cfg.DBPath = expandPath(cfg.DBPath)
	cfg.CategoriesFile = expandPath(cfg.CategoriesFile)
	return cfg, nil
}

func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
