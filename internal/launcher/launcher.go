// Package launcher renders the per-profile shell scripts (claude-<name>)
// that the managed aliases invoke.
//
// A launcher never contains the API key. It asks ccprof for it at start-up
// so the key stays in the secret store.
package launcher

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/benaskins/ccprof/internal/profile"
)

// Prefix is prepended to the profile name to form the launcher file name.
const Prefix = "claude-"

var script = template.Must(template.New("launcher").Funcs(template.FuncMap{
	"quote": shellQuote,
}).Parse(`#!/bin/sh
# Generated by ccprof for profile "{{.Name}}". Edits are overwritten.
set -e
ANTHROPIC_AUTH_TOKEN="$({{quote .Self}} secret show {{.Name}})"
export ANTHROPIC_AUTH_TOKEN
export ANTHROPIC_BASE_URL={{quote .BaseURL}}
{{- with .Models.Default}}
export ANTHROPIC_MODEL={{quote .}}
{{- end}}
{{- with .Models.Opus}}
export ANTHROPIC_DEFAULT_OPUS_MODEL={{quote .}}
{{- end}}
{{- with .Models.Sonnet}}
export ANTHROPIC_DEFAULT_SONNET_MODEL={{quote .}}
{{- end}}
{{- with .Models.Haiku}}
export ANTHROPIC_DEFAULT_HAIKU_MODEL={{quote .}}
{{- end}}
exec claude "$@"
`))

// Writer manages launcher scripts in one directory.
type Writer struct {
	binDir string
	self   string
}

// NewWriter returns a Writer placing scripts in binDir. self is the path of
// the ccprof binary the scripts call back into.
func NewWriter(binDir, self string) *Writer {
	return &Writer{binDir: binDir, self: self}
}

// Path returns the launcher location for a profile name.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.binDir, Prefix+name)
}

// Render returns the script body for p.
func (w *Writer) Render(p profile.Profile) (string, error) {
	var buf bytes.Buffer
	err := script.Execute(&buf, struct {
		profile.Profile
		Self string
	}{p, w.self})
	if err != nil {
		return "", fmt.Errorf("rendering launcher for %s: %w", p.Name, err)
	}
	return buf.String(), nil
}

// Write renders and installs the launcher for p and returns its path.
func (w *Writer) Write(p profile.Profile) (string, error) {
	body, err := w.Render(p)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.binDir, 0755); err != nil {
		return "", fmt.Errorf("creating bin dir: %w", err)
	}

	path := w.Path(p.Name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(body), 0700); err != nil {
		return "", fmt.Errorf("writing launcher: %w", err)
	}
	// WriteFile keeps the mode of a leftover temp file.
	if err := os.Chmod(tmpPath, 0700); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing launcher: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("installing launcher: %w", err)
	}
	return path, nil
}

// Remove deletes the launcher for name. A missing launcher is not an error.
func (w *Writer) Remove(name string) error {
	err := os.Remove(w.Path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing launcher: %w", err)
	}
	return nil
}

// shellQuote wraps s in single quotes for POSIX sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
