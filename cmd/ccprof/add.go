package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/benaskins/ccprof/internal/profile"
	"github.com/benaskins/ccprof/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var addFlags struct {
	baseURL string
	model   string
	opus    string
	sonnet  string
	haiku   string
	force   bool
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a profile and its shell alias",
	Long: `Create a profile: store its API key, write the claude-<name> launcher and
add "alias <name>=..." to the managed block of your shell profile.

The API key is prompted for on a terminal, or read from stdin when piped.
With --force an existing profile is updated; leaving the key empty keeps
the stored one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := profile.Profile{
			Name:    args[0],
			BaseURL: addFlags.baseURL,
			Models: profile.Models{
				Default: addFlags.model,
				Opus:    addFlags.opus,
				Sonnet:  addFlags.sonnet,
				Haiku:   addFlags.haiku,
			},
		}
		// Fail on bad input before prompting for a key.
		if err := p.Validate(); err != nil {
			return err
		}

		a, err := openApp("cli")
		if err != nil {
			return err
		}
		defer a.Close()

		secret, err := readSecret(os.Stdin, os.Stderr, fmt.Sprintf("API key for %s: ", p.Name))
		if err != nil {
			return err
		}

		if addFlags.force {
			err = a.manager.Save(p, secret)
		} else {
			if secret == "" {
				return fmt.Errorf("%w: %s", profile.ErrMissingSecret, p.Name)
			}
			err = a.manager.Add(p, secret)
		}
		if errors.Is(err, profile.ErrExists) {
			return fmt.Errorf("%w (use --force to update)", err)
		}
		if err != nil {
			return err
		}

		fmt.Printf("%s profile %q\n", ui.Success.Render("saved"), p.Name)
		fmt.Printf("run %s or open a new shell to use it\n",
			ui.Title.Render("source "+a.cfg.ShellProfile))
		return nil
	},
}

// readSecret prompts without echo when in is a terminal, otherwise it reads
// all of in and strips the trailing newline.
func readSecret(in io.Reader, out io.Writer, prompt string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	b, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading API key from stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

func init() {
	f := addCmd.Flags()
	f.StringVar(&addFlags.baseURL, "base-url", "", "API base URL (required)")
	f.StringVar(&addFlags.model, "model", "", "default model (ANTHROPIC_MODEL)")
	f.StringVar(&addFlags.opus, "opus", "", "model used for opus requests")
	f.StringVar(&addFlags.sonnet, "sonnet", "", "model used for sonnet requests")
	f.StringVar(&addFlags.haiku, "haiku", "", "model used for haiku requests")
	f.BoolVar(&addFlags.force, "force", false, "update the profile if it already exists")
	addCmd.MarkFlagRequired("base-url")
	rootCmd.AddCommand(addCmd)
}
