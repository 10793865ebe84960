package vault

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/benaskins/ccprof/internal/keychain"
)

func newTestVault(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "ccprof", "secrets.enc"), testKey(t))
}

func TestVaultRoundTrip(t *testing.T) {
	v := newTestVault(t)

	if err := v.Set("work", "sk-ant-123"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := v.Set("home", "sk-ant-456"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	for name, want := range map[string]string{"work": "sk-ant-123", "home": "sk-ant-456"} {
		got, err := v.Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("Get(%q): expected %q, got %q", name, want, got)
		}
	}
}

func TestVaultMissingFileReadsEmpty(t *testing.T) {
	v := newTestVault(t)

	_, err := v.Get("anything")
	if !errors.Is(err, keychain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := os.Stat(filepath.Dir(v.Path())); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected read to create nothing, stat dir: %v", err)
	}
}

func TestVaultPermissions(t *testing.T) {
	v := newTestVault(t)
	if err := v.Set("work", "val"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	info, err := os.Stat(v.Path())
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected file 0600, got %o", perm)
	}

	dirInfo, _ := os.Stat(filepath.Dir(v.Path()))
	if perm := dirInfo.Mode().Perm(); perm != 0700 {
		t.Errorf("expected dir 0700, got %o", perm)
	}

	if _, err := os.Stat(v.Path() + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected temp file to be gone, stat: %v", err)
	}
}

func TestVaultDeleteIdempotent(t *testing.T) {
	v := newTestVault(t)
	v.Set("work", "val")
	v.Set("keep", "other")

	for i := 0; i < 2; i++ {
		if err := v.Delete("work"); err != nil {
			t.Fatalf("Delete #%d: %v", i+1, err)
		}
		if _, err := v.Get("work"); !errors.Is(err, keychain.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete #%d, got %v", i+1, err)
		}
	}

	if got, _ := v.Get("keep"); got != "other" {
		t.Errorf("expected unrelated secret preserved, got %q", got)
	}
}

func TestVaultDeleteOnMissingFileCreatesNothing(t *testing.T) {
	v := newTestVault(t)
	if err := v.Delete("never"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(v.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected no vault file, stat: %v", err)
	}
}

func TestVaultTamperedFileReadsAbsent(t *testing.T) {
	v := newTestVault(t)
	v.Set("work", "sk-ant-123")

	data, err := os.ReadFile(v.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	last := len(data) - 1
	if data[last] == '0' {
		data[last] = '1'
	} else {
		data[last] = '0'
	}
	if err := os.WriteFile(v.Path(), data, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := v.Get("work"); !errors.Is(err, keychain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for tampered vault, got %v", err)
	}
}

func TestVaultCaseFlippedFileReadsAbsent(t *testing.T) {
	v := newTestVault(t)
	v.Set("work", "sk-ant-123")

	data, err := os.ReadFile(v.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	i := bytes.IndexAny(data, "abcdef")
	if i < 0 {
		t.Fatal("expected lowercase hex in vault file")
	}
	data[i] = data[i] - 'a' + 'A'
	if err := os.WriteFile(v.Path(), data, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := v.Get("work"); !errors.Is(err, keychain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after changing the case of byte %d, got %v", i, err)
	}
}

func TestVaultWrongKeyReadsAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secrets.enc")

	New(path, testKey(t)).Set("work", "sk")

	if _, err := New(path, testKey(t)).Get("work"); !errors.Is(err, keychain.ErrNotFound) {
		t.Errorf("expected ErrNotFound under a different key, got %v", err)
	}
}

func TestVaultGarbageFileReadsAbsent(t *testing.T) {
	v := newTestVault(t)
	os.MkdirAll(filepath.Dir(v.Path()), 0700)
	os.WriteFile(v.Path(), []byte("garbage"), 0600)

	if _, err := v.Get("work"); !errors.Is(err, keychain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// A write after corruption starts a fresh map.
	if err := v.Set("work", "new"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := v.Get("work"); got != "new" {
		t.Errorf("expected 'new', got %q", got)
	}
}

func TestVaultImplementsStore(t *testing.T) {
	var _ keychain.Store = (*Store)(nil)
}
