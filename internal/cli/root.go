// Package cli implements the whiz command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/datawhiz/whiz/internal/api"
	"github.com/datawhiz/whiz/internal/config"
	"github.com/datawhiz/whiz/internal/credentials"
	"github.com/datawhiz/whiz/internal/logging"
)

// Execute runs the whiz CLI.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

// app carries the dependencies shared by every subcommand. It is filled
// in by the root command's PersistentPreRunE after flags are parsed.
type app struct {
	cfg   *config.Config
	creds *credentials.Store
}

func newRootCmd(version string) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "whiz",
		Short:         "Chat with your data from the terminal",
		Long:          "whiz is a terminal client for DataWhiz: upload data files, ask questions, and manage your account.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.creds != nil {
				_ = a.creds.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(a)
		},
	}

	cmd.PersistentFlags().String("config", "", "Path to config file")
	cmd.PersistentFlags().String("api-url", "", "Override the API base URL")
	cmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")

	cmd.AddCommand(
		newSignInCmd(a),
		newSignUpCmd(a),
		newSignOutCmd(a),
		newProfileCmd(a),
		newUICmd(a),
	)

	return cmd
}

// setup loads configuration, initializes logging, and opens the
// credential store.
func (a *app) setup(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if apiURL, _ := cmd.Flags().GetString("api-url"); apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logCfg := logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		EnableCaller: cfg.Logging.EnableCaller,
	}
	if cfg.Logging.File != "" {
		logFile, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logCfg.Output = logFile
	}
	logging.Init(logCfg)

	creds, err := credentials.Open(cfg.CredentialsPath(), cfg.CredentialsKeyPath())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.creds = creds
	return nil
}

// apiClient builds an API client backed by the credential store.
func (a *app) apiClient() *api.Client {
	return api.NewClient(api.Config{
		BaseURL: a.cfg.API.BaseURL,
		Timeout: a.cfg.API.Timeout,
		Tokens:  a.creds,
	})
}
