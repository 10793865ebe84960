// Package shellrc edits the ccprof alias block inside a user's shell startup
// file (~/.zshrc, ~/.bashrc, ...).
//
// The file is user-owned and hand-edited. ccprof owns exactly one region,
// delimited by StartMarker and EndMarker, and rewrites only that region.
// Reading is deliberately permissive: malformed lines and missing markers
// read as "nothing found". Two separate passes are used. The managed block
// accepts only `alias <name>='<command>'`. The foreign scan accepts either
// quote style anywhere outside the block.
package shellrc

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// SafetyFlag is appended to every generated launcher command.
const SafetyFlag = "--dangerously-skip-permissions"

// ErrInvalidName is returned when an alias name is not a valid profile name.
var ErrInvalidName = errors.New("invalid alias name")

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ValidName reports whether name can be used as a managed alias.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Alias is one alias definition found in the startup file.
type Alias struct {
	Name    string
	Command string
	// Launcher is the resolved path of the command's executable.
	Launcher string
	// Managed is true for aliases inside the ccprof block.
	Managed bool
}

// Editor reads and rewrites one startup file. It holds no state besides the
// paths; every call re-reads the file.
type Editor struct {
	path   string
	binDir string
}

// New returns an editor for the startup file at path. binDir is where
// launchers live and is used to resolve Alias.Launcher.
func New(path, binDir string) *Editor {
	return &Editor{path: path, binDir: binDir}
}

// Path returns the startup file location.
func (e *Editor) Path() string {
	return e.path
}

// ListManaged returns the aliases inside the managed block in file order.
func (e *Editor) ListManaged() ([]Alias, error) {
	content, err := e.read()
	if err != nil {
		return nil, err
	}
	return e.toAliases(parseManaged(parseDocument(content).interior()), true), nil
}

// ListAll returns the managed aliases followed by every foreign alias whose
// command starts a Claude launcher.
func (e *Editor) ListAll() ([]Alias, error) {
	content, err := e.read()
	if err != nil {
		return nil, err
	}
	doc := parseDocument(content)

	aliases := e.toAliases(parseManaged(doc.interior()), true)
	aliases = append(aliases, e.toAliases(scanForeign(doc.before()), false)...)
	aliases = append(aliases, e.toAliases(scanForeign(doc.after()), false)...)
	return aliases, nil
}

// Exists reports whether name is defined as a managed or recognized
// foreign alias.
func (e *Editor) Exists(name string) (bool, error) {
	aliases, err := e.ListAll()
	if err != nil {
		return false, err
	}
	for _, a := range aliases {
		if a.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// Upsert adds or replaces the managed alias for name, pointing at the
// launcher at launcherPath. Existing entries keep their position; new ones
// are appended. The block is created at the end of the file if absent.
func (e *Editor) Upsert(name, launcherPath string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	content, err := e.read()
	if err != nil {
		return err
	}
	doc := parseDocument(content)

	command := filepath.Base(launcherPath) + " " + SafetyFlag
	entries := parseManaged(doc.interior())
	replaced := false
	for i := range entries {
		if entries[i].name == name {
			entries[i].command = command
			replaced = true
		}
	}
	if !replaced {
		entries = append(entries, entry{name: name, command: command})
	}

	var updated string
	if doc.hasBlock {
		updated = doc.withInterior(renderManaged(entries))
	} else {
		updated = appendBlock(content, renderManaged(entries))
	}

	if err := e.write(updated); err != nil {
		return err
	}
	slog.Debug("alias upserted", "alias", name, "replaced", replaced, "path", e.path)
	return nil
}

// Remove deletes the alias for name. The managed block is tried first; if
// the last managed entry goes, the markers go with it. Otherwise any
// standalone foreign definition of name outside the block is removed.
// Removing an alias that does not exist is not an error; the returned bool
// reports whether anything changed.
func (e *Editor) Remove(name string) (bool, error) {
	content, err := e.read()
	if err != nil {
		return false, err
	}
	if content == "" {
		return false, nil
	}
	doc := parseDocument(content)

	entries := parseManaged(doc.interior())
	var kept []entry
	for _, en := range entries {
		if en.name != name {
			kept = append(kept, en)
		}
	}

	if len(kept) != len(entries) {
		var updated string
		if len(kept) == 0 {
			updated = doc.withoutBlock()
		} else {
			updated = doc.withInterior(renderManaged(kept))
		}
		if err := e.write(updated); err != nil {
			return false, err
		}
		slog.Debug("managed alias removed", "alias", name, "path", e.path)
		return true, nil
	}

	before, removedBefore := removeForeign(doc.before(), name)
	after, removedAfter := removeForeign(doc.after(), name)
	if !removedBefore && !removedAfter {
		return false, nil
	}

	updated := before
	if doc.hasBlock {
		updated += content[doc.startBegin:doc.endEnd] + after
	}
	if err := e.write(updated); err != nil {
		return false, err
	}
	slog.Debug("foreign alias removed", "alias", name, "path", e.path)
	return true, nil
}

func (e *Editor) toAliases(entries []entry, managed bool) []Alias {
	aliases := make([]Alias, 0, len(entries))
	for _, en := range entries {
		aliases = append(aliases, Alias{
			Name:     en.name,
			Command:  en.command,
			Launcher: e.resolveLauncher(en.command),
			Managed:  managed,
		})
	}
	return aliases
}

func (e *Editor) resolveLauncher(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	exe := fields[0]
	if e.binDir == "" || filepath.IsAbs(exe) {
		return exe
	}
	return filepath.Join(e.binDir, exe)
}

func (e *Editor) read() (string, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", e.path, err)
	}
	return string(data), nil
}

// write replaces the file through a temp file and rename in the same
// directory. Symlinks are followed so a dotfile-managed link stays a link,
// and the existing permission bits are kept.
func (e *Editor) write(content string) error {
	target := e.path
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		target = resolved
	}

	mode := fs.FileMode(0644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".ccprof-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", e.path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", e.path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", e.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", e.path, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", e.path, err)
	}
	return nil
}
