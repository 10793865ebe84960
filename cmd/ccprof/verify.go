package main

import (
	"fmt"

	"github.com/benaskins/ccprof/internal/ui"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <name>",
	Short: "Check that a profile's key, alias and entry are all in place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp("cli")
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.manager.Verify(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", ui.Title.Render(st.Name))
		fmt.Printf("  profile  %s\n", ui.Check(st.Registered))
		fmt.Printf("  api key  %s (%s)\n", ui.Check(st.SecretStored), a.secrets.Backend())
		fmt.Printf("  alias    %s (%s)\n", ui.Check(st.AliasPresent), a.aliases.Path())
		if !st.OK() {
			return fmt.Errorf("profile %q is incomplete; re-run: ccprof add %s --force --base-url <url>", st.Name, st.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
