// Package profile manages ccprof profiles: the registry of endpoints and
// models, and the multi-step save and remove sequences that keep the secret
// store, launcher scripts and shell aliases consistent with it.
package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/benaskins/ccprof/internal/shellrc"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidName is returned for names outside ^[A-Za-z][A-Za-z0-9_-]*$.
	ErrInvalidName = errors.New("invalid profile name")

	// ErrInvalidBaseURL is returned when the endpoint is not an http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrExists is returned by Add when the name is already taken.
	ErrExists = errors.New("profile already exists")

	// ErrNotFound is returned when a profile is not registered.
	ErrNotFound = errors.New("profile not found")

	// ErrMissingSecret is returned when saving without a secret and none is stored.
	ErrMissingSecret = errors.New("no API key stored for profile")
)

// Models holds optional model overrides passed to the launcher.
type Models struct {
	Default string `yaml:"default,omitempty"`
	Opus    string `yaml:"opus,omitempty"`
	Sonnet  string `yaml:"sonnet,omitempty"`
	Haiku   string `yaml:"haiku,omitempty"`
}

// Profile is a named endpoint binding. The API key is never stored here.
type Profile struct {
	Name      string    `yaml:"name"`
	BaseURL   string    `yaml:"base_url"`
	Models    Models    `yaml:"models,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// ValidateName checks that name is usable as a profile and alias name.
func ValidateName(name string) error {
	if !shellrc.ValidName(name) {
		return fmt.Errorf("%w: %q (use a letter followed by letters, digits, '-' or '_')", ErrInvalidName, name)
	}
	return nil
}

// Validate checks the name and base URL.
func (p Profile) Validate() error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, p.BaseURL)
	}
	return nil
}

type registryFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// Registry persists profiles to a YAML file (~/.ccprof/profiles.yaml).
// Like every other ccprof file it is rewritten whole on each change.
type Registry struct {
	path string
	now  func() time.Time
}

// NewRegistry returns a registry backed by the file at path.
func NewRegistry(path string) *Registry {
	return &Registry{path: path, now: time.Now}
}

// Path returns the registry file location.
func (r *Registry) Path() string {
	return r.path
}

// List returns all profiles in registration order. A missing file is an
// empty registry.
func (r *Registry) List() ([]Profile, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading profiles: %w", err)
	}

	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing profiles %s: %w", r.path, err)
	}
	return f.Profiles, nil
}

// Get returns the profile registered under name.
func (r *Registry) Get(name string) (Profile, error) {
	profiles, err := r.List()
	if err != nil {
		return Profile{}, err
	}
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Put adds or replaces p, keeping the original position and creation time
// of an existing entry.
func (r *Registry) Put(p Profile) error {
	profiles, err := r.List()
	if err != nil {
		return err
	}

	now := r.now().UTC()
	p.UpdatedAt = now
	replaced := false
	for i := range profiles {
		if profiles[i].Name == p.Name {
			p.CreatedAt = profiles[i].CreatedAt
			profiles[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		p.CreatedAt = now
		profiles = append(profiles, p)
	}
	return r.save(profiles)
}

// Delete unregisters name and reports whether it was present.
func (r *Registry) Delete(name string) (bool, error) {
	profiles, err := r.List()
	if err != nil {
		return false, err
	}

	kept := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(profiles) {
		return false, nil
	}
	return true, r.save(kept)
}

func (r *Registry) save(profiles []Profile) error {
	data, err := yaml.Marshal(registryFile{Profiles: profiles})
	if err != nil {
		return fmt.Errorf("encoding profiles: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return fmt.Errorf("creating profiles dir: %w", err)
	}
	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("writing profiles: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("replacing profiles: %w", err)
	}
	return nil
}
