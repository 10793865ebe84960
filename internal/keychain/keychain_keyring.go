//go:build linux || windows

package keychain

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// SystemStore stores secrets in the Secret Service (Linux) or the Windows
// Credential Manager.
type SystemStore struct {
	service string
}

// NewSystemStore creates a new keyring-backed secret store.
func NewSystemStore(service string) *SystemStore {
	if service == "" {
		service = DefaultService
	}
	return &SystemStore{service: service}
}

// Available probes the keyring. Headless Linux hosts without a Secret
// Service provider on the session bus fail here.
func (s *SystemStore) Available() bool {
	_, err := keyring.Get(s.service, probeAccount)
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// Set stores a secret. Overwrites if it already exists.
func (s *SystemStore) Set(name, secret string) error {
	_ = s.Delete(name)

	if err := keyring.Set(s.service, Account(name), secret); err != nil {
		return fmt.Errorf("keyring set %q: %w", name, err)
	}
	return nil
}

func (s *SystemStore) Get(name string) (string, error) {
	val, err := keyring.Get(s.service, Account(name))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("keyring get %q: %w", name, err)
	}
	if val == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return val, nil
}

func (s *SystemStore) Delete(name string) error {
	err := keyring.Delete(s.service, Account(name))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %q: %w", name, err)
	}
	return nil
}
