package profile

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/benaskins/ccprof/internal/audit"
)

// SecretStore persists one API key per profile name.
type SecretStore interface {
	Set(name, secret string) error
	Delete(name string) error
	Verify(name string) bool
}

// AliasEditor maintains the shell aliases that start launchers.
type AliasEditor interface {
	Upsert(name, launcherPath string) error
	Remove(name string) (bool, error)
	Exists(name string) (bool, error)
}

// Launchers writes and removes per-profile launcher scripts.
type Launchers interface {
	Write(p Profile) (string, error)
	Remove(name string) error
}

// Critical runs fn as a section that termination signals must not split.
type Critical interface {
	Run(fn func() error) error
}

// Manager runs the save and remove sequences across all profile state.
type Manager struct {
	registry  *Registry
	secrets   SecretStore
	aliases   AliasEditor
	launchers Launchers
	critical  Critical
	audit     *audit.Logger
}

// NewManager wires a Manager. critical and auditLog may be nil.
func NewManager(registry *Registry, secrets SecretStore, aliases AliasEditor, launchers Launchers, critical Critical, auditLog *audit.Logger) *Manager {
	return &Manager{
		registry:  registry,
		secrets:   secrets,
		aliases:   aliases,
		launchers: launchers,
		critical:  critical,
		audit:     auditLog,
	}
}

// List returns all registered profiles.
func (m *Manager) List() ([]Profile, error) {
	return m.registry.List()
}

// Add registers a new profile. It fails with ErrExists if the name is
// already registered or already used by a recognized alias.
func (m *Manager) Add(p Profile, secret string) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := m.registry.Get(p.Name); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, p.Name)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	taken, err := m.aliases.Exists(p.Name)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: alias %q is already defined in your shell profile", ErrExists, p.Name)
	}
	return m.Save(p, secret)
}

// Save creates or updates a profile. An empty secret keeps the stored one.
// The secret is written first, then the launcher, then the alias, then the
// registry entry; the sequence runs as a critical section.
func (m *Manager) Save(p Profile, secret string) error {
	if err := p.Validate(); err != nil {
		return err
	}

	return m.run(func() error {
		if secret != "" {
			if err := m.secrets.Set(p.Name, secret); err != nil {
				return fmt.Errorf("saving API key: %w", err)
			}
		} else if !m.secrets.Verify(p.Name) {
			return fmt.Errorf("%w: %s", ErrMissingSecret, p.Name)
		}

		launcherPath, err := m.launchers.Write(p)
		if err != nil {
			return fmt.Errorf("writing launcher: %w", err)
		}

		if err := m.aliases.Upsert(p.Name, launcherPath); err != nil {
			return fmt.Errorf("updating shell alias: %w", err)
		}
		_ = m.audit.Log(audit.Entry{Action: audit.ActionAliasUpsert, Profile: p.Name, Actor: "cli"})

		if err := m.registry.Put(p); err != nil {
			return fmt.Errorf("saving profile: %w", err)
		}
		slog.Info("profile saved", "profile", p.Name, "launcher", launcherPath)
		return nil
	})
}

// RemoveResult reports what Remove found and deleted.
type RemoveResult struct {
	AliasRemoved   bool
	ProfileRemoved bool
}

// Remove reverses Save. The secret and launcher are removed best-effort so
// that a stuck keyring entry never keeps the alias around. Removing an
// unknown name succeeds with an empty result.
func (m *Manager) Remove(name string) (RemoveResult, error) {
	var res RemoveResult
	err := m.run(func() error {
		if err := m.secrets.Delete(name); err != nil {
			slog.Warn("could not delete API key", "profile", name, "error", err)
		}
		if err := m.launchers.Remove(name); err != nil {
			slog.Warn("could not delete launcher", "profile", name, "error", err)
		}

		removed, err := m.aliases.Remove(name)
		if err != nil {
			return fmt.Errorf("removing shell alias: %w", err)
		}
		res.AliasRemoved = removed
		if removed {
			_ = m.audit.Log(audit.Entry{Action: audit.ActionAliasRemove, Profile: name, Actor: "cli"})
		}

		deleted, err := m.registry.Delete(name)
		if err != nil {
			return fmt.Errorf("removing profile: %w", err)
		}
		res.ProfileRemoved = deleted
		return nil
	})
	return res, err
}

// Status describes how complete a profile's state is.
type Status struct {
	Name         string
	Registered   bool
	Profile      Profile
	SecretStored bool
	AliasPresent bool
}

// OK reports whether every part of the profile is in place.
func (s Status) OK() bool {
	return s.Registered && s.SecretStored && s.AliasPresent
}

// Verify inspects the registry, secret store and shell profile for name.
func (m *Manager) Verify(name string) (Status, error) {
	st := Status{Name: name}

	p, err := m.registry.Get(name)
	switch {
	case err == nil:
		st.Registered = true
		st.Profile = p
	case !errors.Is(err, ErrNotFound):
		return st, err
	}

	st.SecretStored = m.secrets.Verify(name)

	present, err := m.aliases.Exists(name)
	if err != nil {
		return st, err
	}
	st.AliasPresent = present
	return st, nil
}

func (m *Manager) run(fn func() error) error {
	if m.critical == nil {
		return fn()
	}
	return m.critical.Run(fn)
}
