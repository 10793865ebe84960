package profile_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benaskins/ccprof/internal/interrupt"
	"github.com/benaskins/ccprof/internal/keychain"
	"github.com/benaskins/ccprof/internal/launcher"
	"github.com/benaskins/ccprof/internal/profile"
	"github.com/benaskins/ccprof/internal/secretstore"
	"github.com/benaskins/ccprof/internal/shellrc"
)

type fixture struct {
	manager  *profile.Manager
	native   *keychain.MemoryStore
	rcPath   string
	binDir   string
	registry *profile.Registry
	exits    []int
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		native: keychain.NewMemoryStore(),
		rcPath: filepath.Join(dir, ".zshrc"),
		binDir: filepath.Join(dir, "bin"),
	}
	if err := os.WriteFile(f.rcPath, []byte("export PATH=$HOME/bin:$PATH\n"), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := secretstore.New(secretstore.Options{Platform: "linux", Native: f.native})
	if err != nil {
		t.Fatalf("secretstore.New: %v", err)
	}
	f.registry = profile.NewRegistry(filepath.Join(dir, "ccprof", "profiles.yaml"))
	guard := interrupt.New(func(code int) { f.exits = append(f.exits, code) }, nil)

	f.manager = profile.NewManager(
		f.registry,
		store,
		shellrc.New(f.rcPath, f.binDir),
		launcher.NewWriter(f.binDir, "ccprof"),
		guard,
		nil,
	)
	return f
}

func (f *fixture) rc(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(f.rcPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}

func workProfile() profile.Profile {
	return profile.Profile{Name: "work", BaseURL: "https://api.example.com"}
}

func TestSaveWritesAllState(t *testing.T) {
	f := setup(t)

	if err := f.manager.Add(workProfile(), "sk-work"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if got, _ := f.native.Get("work"); got != "sk-work" {
		t.Errorf("expected secret stored, got %q", got)
	}
	if _, err := os.Stat(filepath.Join(f.binDir, "claude-work")); err != nil {
		t.Errorf("expected launcher: %v", err)
	}
	if !strings.Contains(f.rc(t), "alias work='claude-work --dangerously-skip-permissions'") {
		t.Errorf("expected alias in shell profile, got:\n%s", f.rc(t))
	}
	p, err := f.registry.Get("work")
	if err != nil {
		t.Fatalf("registry Get: %v", err)
	}
	if p.BaseURL != "https://api.example.com" {
		t.Errorf("expected base URL persisted, got %q", p.BaseURL)
	}

	st, err := f.manager.Verify("work")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !st.OK() {
		t.Errorf("expected complete status, got %+v", st)
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	f := setup(t)
	f.manager.Add(workProfile(), "sk")

	if err := f.manager.Add(workProfile(), "sk2"); !errors.Is(err, profile.ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
}

func TestAddRejectsForeignAliasName(t *testing.T) {
	f := setup(t)
	os.WriteFile(f.rcPath, []byte("alias cc='claude --resume'\n"), 0644)

	err := f.manager.Add(profile.Profile{Name: "cc", BaseURL: "https://x.test"}, "sk")
	if !errors.Is(err, profile.ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
}

func TestAddValidates(t *testing.T) {
	f := setup(t)

	if err := f.manager.Add(profile.Profile{Name: "9bad", BaseURL: "https://x.test"}, "sk"); !errors.Is(err, profile.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
	if err := f.manager.Add(profile.Profile{Name: "ok", BaseURL: "ftp://x.test"}, "sk"); !errors.Is(err, profile.ErrInvalidBaseURL) {
		t.Errorf("expected ErrInvalidBaseURL, got %v", err)
	}
	if f.native.Len() != 0 {
		t.Error("expected nothing stored for invalid profiles")
	}
}

func TestSaveWithoutSecretKeepsExisting(t *testing.T) {
	f := setup(t)
	f.manager.Save(workProfile(), "sk-original")

	p := workProfile()
	p.Models.Default = "new-model"
	if err := f.manager.Save(p, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, _ := f.native.Get("work"); got != "sk-original" {
		t.Errorf("expected original secret kept, got %q", got)
	}
	saved, _ := f.registry.Get("work")
	if saved.Models.Default != "new-model" {
		t.Errorf("expected updated model, got %q", saved.Models.Default)
	}
}

func TestSaveWithoutAnySecretFails(t *testing.T) {
	f := setup(t)

	if err := f.manager.Save(workProfile(), ""); !errors.Is(err, profile.ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
	if strings.Contains(f.rc(t), shellrc.StartMarker) {
		t.Error("expected shell profile untouched")
	}
}

func TestRemoveReversesSave(t *testing.T) {
	f := setup(t)
	original := f.rc(t)
	f.manager.Add(workProfile(), "sk")

	res, err := f.manager.Remove("work")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !res.AliasRemoved || !res.ProfileRemoved {
		t.Errorf("expected full removal, got %+v", res)
	}
	if f.native.Len() != 0 {
		t.Error("expected secret deleted")
	}
	if _, err := os.Stat(filepath.Join(f.binDir, "claude-work")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected launcher deleted, stat: %v", err)
	}
	if got := f.rc(t); got != original {
		t.Errorf("expected shell profile restored to %q, got %q", original, got)
	}
}

func TestRemoveUnknownSucceeds(t *testing.T) {
	f := setup(t)

	res, err := f.manager.Remove("ghost")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if res.AliasRemoved || res.ProfileRemoved {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestRemoveForeignAlias(t *testing.T) {
	f := setup(t)
	os.WriteFile(f.rcPath, []byte("a=1\n\nalias z='claude --flag'\n\nb=2\n"), 0644)

	res, err := f.manager.Remove("z")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !res.AliasRemoved {
		t.Error("expected foreign alias removal")
	}
	if got := f.rc(t); got != "a=1\n\nb=2\n" {
		t.Errorf("unexpected file %q", got)
	}
}

type brokenDeleteStore struct{ *keychain.MemoryStore }

func (brokenDeleteStore) Delete(string) error { return errors.New("keychain locked") }
func (s brokenDeleteStore) Verify(name string) bool {
	return keychain.Verify(s.MemoryStore, name)
}

func TestRemoveProceedsWhenSecretDeleteFails(t *testing.T) {
	dir := t.TempDir()
	rc := filepath.Join(dir, ".bashrc")
	reg := profile.NewRegistry(filepath.Join(dir, "profiles.yaml"))
	secrets := brokenDeleteStore{keychain.NewMemoryStore()}
	m := profile.NewManager(reg, secrets, shellrc.New(rc, dir), launcher.NewWriter(dir, "ccprof"), nil, nil)

	if err := m.Save(workProfile(), "sk"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	res, err := m.Remove("work")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !res.AliasRemoved {
		t.Error("expected alias removed despite secret delete failure")
	}
}

func TestSaveRunsAsCriticalSection(t *testing.T) {
	dir := t.TempDir()
	var exits []int
	guard := interrupt.New(func(code int) { exits = append(exits, code) }, nil)

	// The secret store fires a signal mid-sequence.
	secrets := &signallingStore{MemoryStore: keychain.NewMemoryStore(), guard: guard}
	rc := filepath.Join(dir, ".zshrc")
	m := profile.NewManager(profile.NewRegistry(filepath.Join(dir, "p.yaml")), secrets,
		shellrc.New(rc, dir), launcher.NewWriter(dir, "ccprof"), guard, nil)

	if err := m.Save(workProfile(), "sk"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := os.ReadFile(rc)
	if !strings.Contains(string(data), "alias work=") {
		t.Error("expected the sequence to complete after the signal")
	}
	if len(exits) != 1 || exits[0] != 130 {
		t.Errorf("expected one deferred exit(130), got %v", exits)
	}
}

type signallingStore struct {
	*keychain.MemoryStore
	guard *interrupt.Guard
}

func (s *signallingStore) Set(name, secret string) error {
	s.guard.Handle(os.Interrupt)
	return s.MemoryStore.Set(name, secret)
}

func (s *signallingStore) Verify(name string) bool {
	return keychain.Verify(s.MemoryStore, name)
}
