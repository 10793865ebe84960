package main

import (
	"errors"
	"fmt"

	"github.com/benaskins/ccprof/internal/keychain"
	"github.com/benaskins/ccprof/internal/ui"
	"github.com/spf13/cobra"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Inspect stored API keys",
}

var secretShowCmd = &cobra.Command{
	Use:    "show <name>",
	Short:  "Print the API key for a profile",
	Long:   "Print the API key for a profile. Launchers call this at start-up.",
	Args:   cobra.ExactArgs(1),
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp("launcher")
		if err != nil {
			return err
		}
		defer a.Close()

		val, err := a.secrets.Get(args[0])
		if errors.Is(err, keychain.ErrNotFound) {
			return fmt.Errorf("no API key stored for %q; run: ccprof add %s --force --base-url <url>", args[0], args[0])
		}
		if err != nil {
			return err
		}
		fmt.Println(val)
		return nil
	},
}

var secretStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which secret backend is in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp("cli")
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Printf("platform  %s\n", a.secrets.Platform())
		fmt.Printf("backend   %s\n", a.secrets.Backend())
		if a.secrets.UsingFallback() {
			fmt.Printf("vault     %s\n", a.cfg.VaultPath)
			fmt.Println(ui.Warning.Render("native keyring unavailable; using the encrypted file fallback"))
		}
		if !a.secrets.Available() {
			fmt.Println(ui.Failure.Render("no secret storage available on this platform"))
		}
		return nil
	},
}

func init() {
	secretCmd.AddCommand(secretShowCmd)
	secretCmd.AddCommand(secretStatusCmd)
	rootCmd.AddCommand(secretCmd)
}
