package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datawhiz/whiz/internal/api"
)

func newProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in account profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(cmd, a)
		},
	}
}

func runProfile(cmd *cobra.Command, a *app) error {
	if !a.creds.Authenticated() {
		return fmt.Errorf("not signed in; run `whiz signin` first")
	}

	profile, err := a.apiClient().Profile(context.Background())
	if err != nil {
		return fmt.Errorf("%s", api.UserMessage(err, "failed to load profile"))
	}

	if profile.AvatarURL != "" {
		if err := a.creds.SetAvatar(profile.AvatarURL); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:     %s\n", profile.DisplayName())
	fmt.Fprintf(out, "Username: %s\n", profile.Username)
	fmt.Fprintf(out, "Email:    %s\n", profile.Email)
	if profile.DateJoined != "" {
		fmt.Fprintf(out, "Joined:   %s\n", profile.DateJoined)
	}
	return nil
}
