// Package cmd provides the command-line interface for prtitle.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danielolaszy/prtitle/internal/actions"
	"github.com/danielolaszy/prtitle/internal/config"
	"github.com/danielolaszy/prtitle/internal/logging"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the prtitle command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "prtitle",
		Short: "prtitle validates pull request titles against JIRA",
		Long: `prtitle is a CI helper that checks a pull request title against a pattern
and verifies that the JIRA issue it references exists and is a standard issue
(anything but a sub-task or an epic).

Results are printed as GitHub Actions workflow commands and the step output
'valid' is set to true or false.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("env-file", config.DefaultEnvFile, "dotenv file read before environment variables")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newPullRequestCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newClassifyCmd())

	return rootCmd
}

// Execute runs the command tree with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// loadConfig resolves configuration for cmd and points the logger at its stderr.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		level, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return nil, err
		}
		cfg.LogLevel = strings.ToLower(level)
	}

	logging.SetupLogger(cmd.ErrOrStderr(), logging.LogLevel(cfg.LogLevel))
	logging.Debug("configuration loaded",
		"env_file", envFile,
		"jira_url", cfg.Jira.URL,
		"jira_username", cfg.Jira.Username,
		"jira_password", logging.MaskSensitive(cfg.Jira.Password))

	return cfg, nil
}

// configError reports a configuration problem as an error annotation.
func configError(w *actions.Writer, err error) error {
	var missingErr *config.MissingVarsError
	if errors.As(err, &missingErr) {
		w.Error(fmt.Sprintf("Missing required environment variables: %s", strings.Join(missingErr.Vars, ", ")))
	} else {
		w.Error(fmt.Sprintf("Invalid configuration: %v", err))
	}
	return &ExitError{Code: ExitConfig, Err: err}
}

// failure reports an error that prevented a verdict.
func failure(w *actions.Writer, err error) error {
	w.Error(err.Error())
	return &ExitError{Code: ExitFailure, Err: err}
}
