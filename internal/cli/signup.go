package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/datawhiz/whiz/internal/api"
)

func newSignUpCmd(a *app) *cobra.Command {
	var (
		email     string
		username  string
		firstName string
		lastName  string
		avatar    string
	)

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new DataWhiz account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignUp(cmd, a, api.SignUpRequest{
				Email:      email,
				Username:   username,
				FirstName:  firstName,
				LastName:   lastName,
				AvatarPath: avatar,
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Path to an avatar image")

	return cmd
}

func runSignUp(cmd *cobra.Command, a *app, req api.SignUpRequest) error {
	ctx := context.Background()

	var err error
	if req.Email = strings.TrimSpace(req.Email); req.Email == "" {
		if req.Email, err = promptLine(cmd, "Email: "); err != nil {
			return err
		}
	}
	if req.Email == "" {
		return fmt.Errorf("email is required")
	}
	if req.Username = strings.TrimSpace(req.Username); req.Username == "" {
		if req.Username, err = promptLine(cmd, "Username: "); err != nil {
			return err
		}
	}

	if req.Password, err = promptPassword(cmd, "Password: "); err != nil {
		return err
	}
	if req.ConfirmPassword, err = promptPassword(cmd, "Confirm password: "); err != nil {
		return err
	}
	if req.Password != req.ConfirmPassword {
		return fmt.Errorf("passwords do not match")
	}

	if err := a.apiClient().SignUp(ctx, req); err != nil {
		return fmt.Errorf("%s", api.UserMessage(err, "registration failed"))
	}

	if req.AvatarPath != "" {
		if err := a.creds.SetAvatar(req.AvatarPath); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s. Run `whiz signin` to sign in.\n", req.Email)
	return nil
}
