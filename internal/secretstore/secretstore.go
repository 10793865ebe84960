// Package secretstore selects the secret backend for the running process and
// exposes it to the rest of ccprof.
//
// The native keyring is preferred. When it is probed and found unavailable,
// the encrypted-file vault takes over and a one-time warning is printed,
// because the vault key is derived from machine data rather than a
// passphrase. The selection is made once, in New, and never changes.
package secretstore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/benaskins/ccprof/internal/keychain"
)

// ErrPlatformUnsupported is returned by every secret operation when the host
// platform has no backend at all.
var ErrPlatformUnsupported = errors.New("secret storage is not supported on this platform")

// SupportedPlatforms lists the GOOS values with a native backend.
var SupportedPlatforms = map[string]bool{
	"darwin":  true,
	"linux":   true,
	"windows": true,
}

// FallbackWarning is shown once per process when the vault is in use.
const FallbackWarning = "warning: no native keyring available; API keys are stored in an encrypted file " +
	"whose key is derived from this machine. This protects against casual disk inspection only."

// Options configures backend selection.
type Options struct {
	// Platform is the GOOS value to select for.
	Platform string
	// Native is the platform keyring backend.
	Native keychain.Store
	// Vault builds the fallback store. It is only called when needed.
	Vault func() (keychain.Store, error)
	// Wrap, if set, decorates the chosen backend (e.g. with audit logging).
	// The backend label is "keychain" or "vault".
	Wrap func(backend keychain.Store, label string) keychain.Store
	// Warn receives the fallback warning. Nil discards it.
	Warn io.Writer
}

// Store is the facade over exactly one backend.
type Store struct {
	platform   string
	backend    keychain.Store
	usingVault bool
	supported  bool
	warn       io.Writer
	warnOnce   sync.Once
}

// New probes the native backend and selects the backend for this process.
// An error is returned only when the fallback vault cannot be constructed.
func New(opts Options) (*Store, error) {
	s := &Store{platform: opts.Platform, warn: opts.Warn}

	if !SupportedPlatforms[opts.Platform] {
		slog.Debug("no secret backend for platform", "platform", opts.Platform)
		return s, nil
	}
	s.supported = true

	label := "keychain"
	if opts.Native != nil && opts.Native.Available() {
		s.backend = opts.Native
	} else {
		if opts.Vault == nil {
			return nil, fmt.Errorf("native keyring unavailable on %s and no vault configured", opts.Platform)
		}
		v, err := opts.Vault()
		if err != nil {
			return nil, fmt.Errorf("opening fallback vault: %w", err)
		}
		s.backend = v
		s.usingVault = true
		label = "vault"
	}

	if opts.Wrap != nil {
		s.backend = opts.Wrap(s.backend, label)
	}
	slog.Debug("secret backend selected", "platform", opts.Platform, "backend", label)
	return s, nil
}

// Platform returns the platform the backend was selected for.
func (s *Store) Platform() string {
	return s.platform
}

// UsingFallback reports whether the native keyring was probed unavailable
// and the vault is in use.
func (s *Store) UsingFallback() bool {
	return s.usingVault
}

// Backend names the active backend: "keychain", "vault" or "none".
func (s *Store) Backend() string {
	switch {
	case !s.supported:
		return "none"
	case s.usingVault:
		return "vault"
	default:
		return "keychain"
	}
}

func (s *Store) Available() bool {
	return s.supported && s.backend.Available()
}

// Get reads the secret for name on every call; nothing is cached, so a
// secret changed by another tool is seen immediately.
func (s *Store) Get(name string) (string, error) {
	if !s.supported {
		return "", ErrPlatformUnsupported
	}
	s.warnFallback()
	return s.backend.Get(name)
}

func (s *Store) Set(name, secret string) error {
	if !s.supported {
		return ErrPlatformUnsupported
	}
	s.warnFallback()
	if err := s.backend.Set(name, secret); err != nil {
		return fmt.Errorf("storing secret for %q: %w", name, err)
	}
	return nil
}

// Delete removes the secret for name. Backend failures are logged and
// reported as success so that an unremovable secret never blocks removing
// the rest of a profile.
func (s *Store) Delete(name string) error {
	if !s.supported {
		return ErrPlatformUnsupported
	}
	if err := s.backend.Delete(name); err != nil {
		slog.Warn("secret delete failed, continuing", "profile", name, "backend", s.Backend(), "error", err)
	}
	return nil
}

// Verify reports whether a non-empty secret is stored for name.
func (s *Store) Verify(name string) bool {
	if !s.supported {
		return false
	}
	return keychain.Verify(s.backend, name)
}

func (s *Store) warnFallback() {
	if !s.usingVault {
		return
	}
	s.warnOnce.Do(func() {
		slog.Warn("using encrypted file vault for secrets", "platform", s.platform)
		if s.warn != nil {
			fmt.Fprintln(s.warn, FallbackWarning)
		}
	})
}
