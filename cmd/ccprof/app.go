package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/benaskins/ccprof/internal/audit"
	"github.com/benaskins/ccprof/internal/config"
	"github.com/benaskins/ccprof/internal/interrupt"
	"github.com/benaskins/ccprof/internal/launcher"
	"github.com/benaskins/ccprof/internal/profile"
	"github.com/benaskins/ccprof/internal/secretstore"
	"github.com/benaskins/ccprof/internal/shellrc"
)

// app is the wired set of components a command works with.
type app struct {
	cfg     config.Config
	secrets *secretstore.Store
	aliases *shellrc.Editor
	manager *profile.Manager
	audit   *audit.Logger
	stop    func()
}

// openApp loads configuration and wires every component. actor tags audit
// entries with who touched the secret store.
func openApp(actor string) (*app, error) {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("finding home directory: %w", err)
	}
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	loaded, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	cfg := loaded.Resolve(userHome, os.Getenv("SHELL"))
	slog.Debug("config resolved", "shell_profile", cfg.ShellProfile, "bin_dir", cfg.BinDir)

	a := &app{cfg: cfg, stop: func() {}}

	if !cfg.DisableAudit {
		a.audit, err = audit.NewLogger(cfg.AuditLog)
		if err != nil {
			slog.Warn("audit log disabled", "path", cfg.AuditLog, "error", err)
			a.audit = nil
		}
	}

	a.secrets, err = secretstore.NewDefault(cfg.KeyringService, cfg.VaultPath, a.audit, actor, os.Stderr)
	if err != nil {
		a.audit.Close()
		return nil, err
	}

	self, err := os.Executable()
	if err != nil {
		self = "ccprof"
	} else if resolved, err := filepath.EvalSymlinks(self); err == nil {
		self = resolved
	}

	guard := interrupt.New(os.Exit, os.Stderr)
	a.stop = guard.Install(context.Background())

	a.aliases = shellrc.New(cfg.ShellProfile, cfg.BinDir)
	a.manager = profile.NewManager(
		profile.NewRegistry(filepath.Join(config.Home(userHome), "profiles.yaml")),
		a.secrets,
		a.aliases,
		launcher.NewWriter(cfg.BinDir, self),
		guard,
		a.audit,
	)
	return a, nil
}

func (a *app) Close() {
	a.stop()
	a.audit.Close()
}
