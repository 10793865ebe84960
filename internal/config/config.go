package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/benaskins/ccprof/internal/keychain"
	"github.com/benaskins/ccprof/internal/shellrc"
	"gopkg.in/yaml.v3"
)

// Config holds persistent configuration loaded from ~/.ccprof/config.yaml.
// Every field is optional; Resolve fills in defaults.
type Config struct {
	ShellProfile   string `yaml:"shell_profile"`
	BinDir         string `yaml:"bin_dir"`
	KeyringService string `yaml:"keyring_service"`
	VaultPath      string `yaml:"vault_path"`
	AuditLog       string `yaml:"audit_log"`
	// DisableAudit turns off the audit log entirely.
	DisableAudit bool `yaml:"disable_audit"`
}

// Home returns the ccprof state directory (~/.ccprof).
func Home(userHome string) string {
	return filepath.Join(userHome, ".ccprof")
}

// DefaultPath returns the default config file path: ~/.ccprof/config.yaml.
func DefaultPath(userHome string) string {
	return filepath.Join(Home(userHome), "config.yaml")
}

// Load reads a YAML config file from path. If the file does not exist,
// it returns an empty Config and no error. An empty or all-comment file
// also returns an empty Config with no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve returns a copy of cfg with defaults filled in for userHome.
// shell is the user's login shell, usually $SHELL.
func (c Config) Resolve(userHome, shell string) Config {
	if c.ShellProfile == "" {
		c.ShellProfile = shellrc.DetectProfilePath(shell, userHome, runtime.GOOS)
	}
	if c.BinDir == "" {
		c.BinDir = filepath.Join(userHome, ".local", "bin")
	}
	if c.KeyringService == "" {
		c.KeyringService = keychain.DefaultService
	}
	if c.VaultPath == "" {
		c.VaultPath = filepath.Join(Home(userHome), "secrets.enc")
	}
	if c.AuditLog == "" {
		c.AuditLog = filepath.Join(Home(userHome), "audit.log")
	}
	c.ShellProfile = expandHome(c.ShellProfile, userHome)
	c.BinDir = expandHome(c.BinDir, userHome)
	c.VaultPath = expandHome(c.VaultPath, userHome)
	c.AuditLog = expandHome(c.AuditLog, userHome)
	return c
}

func expandHome(path, userHome string) string {
	if path == "~" {
		return userHome
	}
	if len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator) {
		return filepath.Join(userHome, path[2:])
	}
	return path
}
