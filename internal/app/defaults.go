package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment
// variables first. Environment variables:
//   - MEDTRACK_CONFIG_PATH: config file location (default: ~/.config/medtrack.toml)
//   - MEDTRACK_HOME: base directory for medtrack data (default: ~/.local/share/medtrack)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking MEDTRACK_CONFIG_PATH
// first, then falling back to ~/.config/medtrack.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("MEDTRACK_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "medtrack.toml"), nil
}

// getBaseDir returns the base data directory, checking MEDTRACK_HOME first,
// then falling back to the XDG default ~/.local/share/medtrack.
func getBaseDir() (string, error) {
	if path := os.Getenv("MEDTRACK_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "medtrack"), nil
}
