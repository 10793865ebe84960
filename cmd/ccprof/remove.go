package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/benaskins/ccprof/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var removeCmd = &cobra.Command{
	Use:     "remove [name]",
	Aliases: []string{"rm"},
	Short:   "Remove a profile and its alias",
	Long: `Remove the alias, launcher, stored API key and profile entry for name.
Aliases defined outside the managed block are removed too if they start a
claude launcher. Without a name, pick one interactively.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp("cli")
		if err != nil {
			return err
		}
		defer a.Close()

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			name, err = pickAlias(a)
			if errors.Is(err, ui.ErrCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
		}

		res, err := a.manager.Remove(name)
		if err != nil {
			return err
		}
		if !res.AliasRemoved && !res.ProfileRemoved {
			fmt.Printf("nothing to remove for %q\n", name)
			return nil
		}
		fmt.Printf("%s %q\n", ui.Success.Render("removed"), name)
		if res.AliasRemoved {
			fmt.Printf("open a new shell for the alias to disappear\n")
		}
		return nil
	},
}

func pickAlias(a *app) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("no name given and stdin is not a terminal")
	}
	aliases, err := a.aliases.ListAll()
	if err != nil {
		return "", err
	}
	if len(aliases) == 0 {
		return "", fmt.Errorf("no claude aliases found in %s", a.aliases.Path())
	}

	items := make([]ui.PickerItem, len(aliases))
	for i, al := range aliases {
		detail := al.Command
		if !al.Managed {
			detail += " (not managed)"
		}
		items[i] = ui.PickerItem{Label: al.Name, Detail: detail}
	}
	idx, err := ui.Pick("Remove which alias?", items, os.Stdin, os.Stderr)
	if err != nil {
		return "", err
	}
	return aliases[idx].Name, nil
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
