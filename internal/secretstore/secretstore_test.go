package secretstore

import (
	"bytes"
	"crypto/rand"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benaskins/ccprof/internal/keychain"
	"github.com/benaskins/ccprof/internal/vault"
)

func testVault(t *testing.T) func() (keychain.Store, error) {
	t.Helper()
	key := make([]byte, vault.KeySize)
	rand.Read(key)
	path := filepath.Join(t.TempDir(), "secrets.enc")
	return func() (keychain.Store, error) {
		return vault.New(path, key), nil
	}
}

func TestNativeAvailableUsesNativeOnly(t *testing.T) {
	native := keychain.NewMemoryStore()
	vaultCalled := false
	var warn bytes.Buffer

	s, err := New(Options{
		Platform: "darwin",
		Native:   native,
		Vault: func() (keychain.Store, error) {
			vaultCalled = true
			return keychain.NewMemoryStore(), nil
		},
		Warn: &warn,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Set("work", "sk-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if native.Len() != 1 {
		t.Errorf("expected secret in native store, got %d entries", native.Len())
	}
	if vaultCalled {
		t.Error("expected vault never to be consulted")
	}
	if s.UsingFallback() {
		t.Error("expected UsingFallback false")
	}
	if s.Backend() != "keychain" {
		t.Errorf("expected keychain backend, got %q", s.Backend())
	}
	if warn.Len() != 0 {
		t.Errorf("expected no warning, got %q", warn.String())
	}
}

func TestNativeUnavailableFallsBackToVault(t *testing.T) {
	var warn bytes.Buffer
	s, err := New(Options{
		Platform: "linux",
		Native:   keychain.NewUnavailableStore(),
		Vault:    testVault(t),
		Warn:     &warn,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !s.UsingFallback() {
		t.Fatal("expected UsingFallback true")
	}
	if !s.Available() {
		t.Error("expected fallback to be available")
	}

	if err := s.Set("work", "sk-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get("work")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "sk-1" {
		t.Errorf("expected sk-1, got %q", got)
	}

	if n := strings.Count(warn.String(), FallbackWarning); n != 1 {
		t.Errorf("expected warning exactly once, got %d times", n)
	}
}

func TestUnsupportedPlatform(t *testing.T) {
	s, err := New(Options{
		Platform: "plan9",
		Native:   keychain.NewMemoryStore(),
		Vault:    testVault(t),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if s.Available() {
		t.Error("expected Available false")
	}
	if s.Verify("work") {
		t.Error("expected Verify false")
	}
	if s.UsingFallback() {
		t.Error("expected UsingFallback false on unsupported platform")
	}
	if err := s.Set("work", "x"); !errors.Is(err, ErrPlatformUnsupported) {
		t.Errorf("Set: expected ErrPlatformUnsupported, got %v", err)
	}
	if _, err := s.Get("work"); !errors.Is(err, ErrPlatformUnsupported) {
		t.Errorf("Get: expected ErrPlatformUnsupported, got %v", err)
	}
	if err := s.Delete("work"); !errors.Is(err, ErrPlatformUnsupported) {
		t.Errorf("Delete: expected ErrPlatformUnsupported, got %v", err)
	}
}

func TestRoundTripEveryBackend(t *testing.T) {
	cases := map[string]keychain.Store{
		"native": keychain.NewMemoryStore(),
		"vault":  keychain.NewUnavailableStore(),
	}
	for name, native := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := New(Options{Platform: "linux", Native: native, Vault: testVault(t)})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			for _, secret := range []string{"sk-ant-api03-xyz", "with spaces", "ünïcødé", "a:b:c"} {
				if err := s.Set("p", secret); err != nil {
					t.Fatalf("Set: %v", err)
				}
				got, err := s.Get("p")
				if err != nil {
					t.Fatalf("Get: %v", err)
				}
				if got != secret {
					t.Errorf("expected %q, got %q", secret, got)
				}
			}
		})
	}
}

type failingDeleteStore struct {
	*keychain.MemoryStore
}

func (failingDeleteStore) Delete(string) error {
	return errors.New("permission denied")
}

func TestDeleteNeverFails(t *testing.T) {
	s, err := New(Options{
		Platform: "darwin",
		Native:   failingDeleteStore{keychain.NewMemoryStore()},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.Delete("work"); err != nil {
			t.Errorf("Delete #%d: expected nil, got %v", i+1, err)
		}
	}
}

func TestVerify(t *testing.T) {
	s, _ := New(Options{Platform: "windows", Native: keychain.NewMemoryStore()})

	if s.Verify("work") {
		t.Error("expected Verify false before Set")
	}
	s.Set("work", "sk")
	if !s.Verify("work") {
		t.Error("expected Verify true after Set")
	}
	s.Delete("work")
	if s.Verify("work") {
		t.Error("expected Verify false after Delete")
	}
}

func TestNoCaching(t *testing.T) {
	native := keychain.NewMemoryStore()
	s, _ := New(Options{Platform: "darwin", Native: native})

	s.Set("work", "old")
	native.Set("work", "rotated-elsewhere")

	got, _ := s.Get("work")
	if got != "rotated-elsewhere" {
		t.Errorf("expected out-of-band value, got %q", got)
	}
}

func TestWrapReceivesBackendLabel(t *testing.T) {
	var label string
	_, err := New(Options{
		Platform: "linux",
		Native:   keychain.NewUnavailableStore(),
		Vault:    testVault(t),
		Wrap: func(b keychain.Store, l string) keychain.Store {
			label = l
			return b
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if label != "vault" {
		t.Errorf("expected vault label, got %q", label)
	}
}

func TestMissingVaultConstructor(t *testing.T) {
	_, err := New(Options{Platform: "linux", Native: keychain.NewUnavailableStore()})
	if err == nil {
		t.Error("expected error when neither backend is usable")
	}
}
