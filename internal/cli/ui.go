package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/datawhiz/whiz/internal/tui"
)

func newUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Launch the whiz TUI",
		Long:  "Launch the whiz terminal user interface. This is also the default when whiz is run without a subcommand.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(a)
		},
	}
}

func runUI(a *app) error {
	if !hasTTY() {
		return fmt.Errorf("the TUI requires an interactive terminal; use the CLI subcommands instead")
	}
	if !a.creds.Authenticated() {
		return fmt.Errorf("not signed in; run `whiz signin` first")
	}

	return tui.Run(tui.Config{
		App:         a.cfg,
		Client:      a.apiClient(),
		Credentials: a.creds,
	})
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
