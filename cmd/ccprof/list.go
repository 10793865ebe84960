package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/benaskins/ccprof/internal/ui"
	"github.com/spf13/cobra"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List profiles",
	Long:    "List registered profiles. With --all, list every claude alias in the shell profile, managed or not.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp("cli")
		if err != nil {
			return err
		}
		defer a.Close()

		if listAll {
			return listAliases(a)
		}

		profiles, err := a.manager.List()
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles. Create one with: ccprof add <name> --base-url <url>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tBASE URL\tMODEL\tKEY\tALIAS")
		for _, p := range profiles {
			st, err := a.manager.Verify(p.Name)
			if err != nil {
				return err
			}
			model := p.Models.Default
			if model == "" {
				model = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Name, p.BaseURL, model,
				ui.Check(st.SecretStored), ui.Check(st.AliasPresent))
		}
		return w.Flush()
	},
}

func listAliases(a *app) error {
	aliases, err := a.aliases.ListAll()
	if err != nil {
		return err
	}
	if len(aliases) == 0 {
		fmt.Printf("No claude aliases in %s\n", a.aliases.Path())
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSOURCE\tCOMMAND")
	for _, al := range aliases {
		source := "managed"
		if !al.Managed {
			source = ui.Muted.Render("foreign")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", al.Name, source, al.Command)
	}
	return w.Flush()
}

func init() {
	listCmd.Flags().BoolVar(&listAll, "all", false, "include aliases outside the managed block")
	rootCmd.AddCommand(listCmd)
}
