package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds user preferences
type Config struct {
	GeminiAPIKey          string `json:"gemini_api_key"`
	BackendURL            string `json:"backend_url"`
	Theme                 string `json:"theme"` // "light" or "dark"
	WelcomeBackAfterHours int    `json:"welcome_back_after_hours"`
	HistoryLimit          int    `json:"history_limit"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BackendURL:            "http://localhost:8000",
		Theme:                 "dark",
		WelcomeBackAfterHours: 24,
		HistoryLimit:          50,
	}
}

// ConfigDir returns the directory where config is stored
func ConfigDir() (string, error) {
	// Prefer project-local .motiv directory if present or creatable
	if cwd, err := os.Getwd(); err == nil {
		localDir := filepath.Join(cwd, ".motiv")
		if stat, err := os.Stat(localDir); (err == nil && stat.IsDir()) || os.IsNotExist(err) {
			return localDir, nil
		}
	}

	// Fallback to home-level config
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".motiv"), nil
}

// ConfigFile returns the full path to the config file
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the configuration from disk and applies environment
// overrides. A .env file in the working directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	path, err := ConfigFile()
	if err != nil {
		return applyEnv(cfg), err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return applyEnv(cfg), nil
	}
	if err != nil {
		return applyEnv(cfg), err
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return applyEnv(DefaultConfig()), err
	}
	cfg = fillDefaults(cfg)

	return applyEnv(cfg), nil
}

// applyEnv layers environment variables over the file configuration.
// Environment wins so a deployed key never has to touch the config file.
func applyEnv(cfg Config) Config {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("MOTIV_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("MOTIV_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("MOTIV_WELCOME_BACK_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WelcomeBackAfterHours = n
		}
	}
	if v := os.Getenv("MOTIV_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}
	return cfg
}

// fillDefaults backfills zero values left by a partial config file.
func fillDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BackendURL == "" {
		cfg.BackendURL = defaults.BackendURL
	}
	if cfg.Theme == "" {
		cfg.Theme = defaults.Theme
	}
	if cfg.WelcomeBackAfterHours <= 0 {
		cfg.WelcomeBackAfterHours = defaults.WelcomeBackAfterHours
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaults.HistoryLimit
	}
	return cfg
}

// Save writes the configuration to disk
func Save(cfg Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigFile()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
