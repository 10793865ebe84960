//go:build darwin

package keychain

import (
	"errors"
	"fmt"

	gokeychain "github.com/keybase/go-keychain"
)

// SystemStore provides CRUD operations for secrets in macOS Keychain.
type SystemStore struct {
	service string
}

// NewSystemStore creates a new Keychain-backed secret store.
func NewSystemStore(service string) *SystemStore {
	if service == "" {
		service = DefaultService
	}
	return &SystemStore{service: service}
}

// Available probes the login Keychain. A locked or missing keychain makes
// the lookup fail with something other than "not found".
func (s *SystemStore) Available() bool {
	_, err := gokeychain.GetGenericPassword(s.service, probeAccount, "", "")
	return err == nil || errors.Is(err, gokeychain.ErrorItemNotFound)
}

// Set stores a secret in the Keychain. Overwrites if it already exists.
func (s *SystemStore) Set(name, secret string) error {
	// Try to delete existing item first (update = delete + add)
	_ = s.Delete(name)

	item := gokeychain.NewGenericPassword(
		s.service,
		Account(name),
		fmt.Sprintf("ccprof: %s", name),
		[]byte(secret),
		"",
	)
	item.SetSynchronizable(gokeychain.SynchronizableNo)
	item.SetAccessible(gokeychain.AccessibleWhenUnlockedThisDeviceOnly)

	if err := gokeychain.AddItem(item); err != nil {
		return fmt.Errorf("keychain add %q: %w", name, err)
	}
	return nil
}

// Get retrieves a secret from the Keychain.
func (s *SystemStore) Get(name string) (string, error) {
	data, err := gokeychain.GetGenericPassword(s.service, Account(name), "", "")
	if err != nil {
		if errors.Is(err, gokeychain.ErrorItemNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("keychain get %q: %w", name, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return string(data), nil
}

// Delete removes a secret from the Keychain.
func (s *SystemStore) Delete(name string) error {
	err := gokeychain.DeleteGenericPasswordItem(s.service, Account(name))
	if err != nil && !errors.Is(err, gokeychain.ErrorItemNotFound) {
		return fmt.Errorf("keychain delete %q: %w", name, err)
	}
	return nil
}
