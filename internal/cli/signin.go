package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/datawhiz/whiz/internal/api"
	"github.com/datawhiz/whiz/internal/credentials"
)

func newSignInCmd(a *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to your DataWhiz account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignIn(cmd, a, email)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")

	return cmd
}

func runSignIn(cmd *cobra.Command, a *app, email string) error {
	ctx := context.Background()

	if email == "" {
		var err error
		email, err = promptLine(cmd, "Email: ")
		if err != nil {
			return err
		}
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	password, err := promptPassword(cmd, "Password: ")
	if err != nil {
		return err
	}

	pair, err := a.apiClient().SignIn(ctx, email, password)
	if err != nil {
		return fmt.Errorf("%s", api.UserMessage(err, "sign-in failed"))
	}

	if err := a.creds.SetSession(email, credentials.TokenPair{
		Access:  pair.Access,
		Refresh: pair.Refresh,
	}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", email)
	return nil
}

// promptLine reads a single trimmed line from stdin.
func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo when stdin is a terminal,
// falling back to a plain line read otherwise.
func promptPassword(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(cmd, prompt)
	}

	fmt.Fprint(cmd.OutOrStdout(), prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}
