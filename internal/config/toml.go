// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Evaluate EvaluateConfig `toml:"evaluate"`
	// Probabilities overrides entries of the default typo probability
	// table, keyed by typo name (e.g. "DELETE_CHAR").
	Probabilities map[string]float64 `toml:"probabilities"`
}

// EvaluateConfig maps evaluation-related settings.
type EvaluateConfig struct {
	Lang          *string  `toml:"lang"`
	Dataset       *string  `toml:"dataset"`
	Layout        *string  `toml:"layout"`
	Wordlist      *string  `toml:"wordlist"`
	MaxSentences  *int     `toml:"max-sentences"`
	Workers       *int     `toml:"workers"`
	Seed          *int64   `toml:"seed"`
	Beta          *float64 `toml:"beta"`
	TrackMistakes *bool    `toml:"track-mistakes"`
	TopMistakes   *int     `toml:"top-mistakes"`
	CacheDir      *string  `toml:"cache-dir"`
	DB            *string  `toml:"db"`
	XOffset       *float64 `toml:"x-offset"`
	YOffset       *float64 `toml:"y-offset"`
	XRatio        *float64 `toml:"x-ratio"`
	YRatio        *float64 `toml:"y-ratio"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
