// Package vault is the encrypted-file fallback for hosts without a usable
// native keyring.
//
// The whole secret map is JSON-encoded, sealed with AES-256-GCM and written
// as a single "<ivHex>:<authTagHex>:<cipherHex>" line. Every change rewrites
// the complete map. A missing, unreadable or undecryptable file reads as an
// empty map, so corruption forgets secrets instead of blocking the caller.
package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/benaskins/ccprof/internal/keychain"
)

// Store is a file-backed keychain.Store.
type Store struct {
	path string
	key  []byte
}

// New returns a vault at path sealed under key. Nothing touches the disk
// until the first write.
func New(path string, key []byte) *Store {
	return &Store{path: path, key: key}
}

// Path returns the vault file location.
func (s *Store) Path() string {
	return s.path
}

// Available is always true; the vault only needs a writable home directory.
func (s *Store) Available() bool {
	return true
}

func (s *Store) Get(name string) (string, error) {
	secrets := s.load()
	val, ok := secrets[name]
	if !ok || val == "" {
		return "", fmt.Errorf("%w: %s", keychain.ErrNotFound, name)
	}
	return val, nil
}

func (s *Store) Set(name, secret string) error {
	secrets := s.load()
	secrets[name] = secret
	return s.save(secrets)
}

// Delete removes name from the vault. It never reports failure: a secret that
// cannot be removed must not block the rest of a profile removal.
func (s *Store) Delete(name string) error {
	secrets := s.load()
	if _, ok := secrets[name]; !ok {
		return nil
	}
	delete(secrets, name)
	if err := s.save(secrets); err != nil {
		slog.Warn("vault delete could not be persisted", "profile", name, "path", s.path, "error", err)
	}
	return nil
}

func (s *Store) load() map[string]string {
	secrets := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Error("unreadable vault file, treating as empty", "path", s.path, "error", err)
		}
		return secrets
	}

	plaintext, err := Open(string(data), s.key)
	if err != nil {
		slog.Error("vault integrity check failed, treating as empty", "path", s.path, "error", err)
		return secrets
	}

	if err := json.Unmarshal(plaintext, &secrets); err != nil {
		slog.Error("corrupt vault contents, treating as empty", "path", s.path, "error", err)
		return make(map[string]string)
	}
	return secrets
}

func (s *Store) save(secrets map[string]string) error {
	data, err := json.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("encoding vault: %w", err)
	}
	blob, err := Seal(data, s.key)
	if err != nil {
		return fmt.Errorf("sealing vault: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating vault dir: %w", err)
	}

	tmpPath := s.path + ".tmp"
	_ = os.Remove(tmpPath)
	if err := os.WriteFile(tmpPath, []byte(blob), 0600); err != nil {
		return fmt.Errorf("writing vault: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing vault: %w", err)
	}
	return nil
}
