package main

import (
	"os"

	"github.com/benaskins/ccprof/internal/config"
)

// resolveConfigPath returns --config if set, else ~/.ccprof/config.yaml.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return config.DefaultPath(home), nil
}
