package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stlalpha/cpdisp/internal/logging"
)

// Defaults are user defaults read from a JSON file. Command line flags
// override every field.
type Defaults struct {
	Backend        string `json:"backend"`
	DataPath       string `json:"dataPath"`
	Verbose        bool   `json:"verbose"`
	OutputEncoding string `json:"outputEncoding"`
	Interactive    bool   `json:"interactive"`
}

// DefaultPath returns $XDG_CONFIG_HOME/cpdisp/config.json, or the
// equivalent under the user's home directory. It is empty when neither is
// known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cpdisp", "config.json")
}

// LoadDefaults reads a defaults file. A missing file yields zero defaults.
func LoadDefaults(filePath string) (Defaults, error) {
	var defaults Defaults
	if filePath == "" {
		return defaults, nil
	}
	logging.Debug("loading defaults from %s", filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Debug("%s not found, using built-in defaults", filePath)
			return defaults, nil
		}
		return defaults, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}
	if err := json.Unmarshal(data, &defaults); err != nil {
		return Defaults{}, fmt.Errorf("failed to parse config JSON from %s: %w", filePath, err)
	}
	return defaults, nil
}
