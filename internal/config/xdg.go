package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultDatasetPath builds the default dataset path for a language.
func DefaultDatasetPath(lang string) string {
	return filepath.Join(XDGConfigHome(), "tapscore", "datasets", lang+".json")
}

// DefaultWordlistPath builds the default word list path for a language.
func DefaultWordlistPath(lang string) string {
	return filepath.Join(XDGConfigHome(), "tapscore", "wordlists", lang+".txt")
}

// DefaultLayoutDir returns the default directory for keyboard layout files.
func DefaultLayoutDir() string {
	return filepath.Join(XDGConfigHome(), "tapscore", "layouts")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), "tapscore", "tapscore.db")
}

// DefaultTypoCacheDir returns the cache directory for typo corpora.
func DefaultTypoCacheDir() string {
	return filepath.Join(XDGDataHome(), "tapscore", "typos")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "tapscore", "config.toml")
}
