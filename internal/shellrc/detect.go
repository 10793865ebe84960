package shellrc

import (
	"path/filepath"
)

// DetectProfilePath picks the startup file for the user's login shell.
// shell is usually $SHELL.
func DetectProfilePath(shell, home, goos string) string {
	switch filepath.Base(shell) {
	case "zsh":
		return filepath.Join(home, ".zshrc")
	case "bash":
		// Terminal.app starts login shells, which read .bash_profile only.
		if goos == "darwin" {
			return filepath.Join(home, ".bash_profile")
		}
		return filepath.Join(home, ".bashrc")
	default:
		return filepath.Join(home, ".profile")
	}
}
