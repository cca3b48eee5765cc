package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/danielolaszy/prtitle/internal/actions"
	"github.com/danielolaszy/prtitle/internal/config"
	"github.com/danielolaszy/prtitle/internal/jira"
	"github.com/danielolaszy/prtitle/internal/validator"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify ISSUE-KEY",
		Short: "Check whether a JIRA issue is a standard issue",
		Long: `Look up a single JIRA issue and report whether a pull request may reference it.
Sub-tasks, epics and unknown keys are not standard. Exits 1 when the issue is
not standard.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := actions.NewWriter(cmd.ErrOrStderr(), "")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return configError(w, err)
			}
			if err := config.ValidateJiraConfig(cfg); err != nil {
				return configError(w, err)
			}

			jiraClient, err := jira.NewClient(cfg.Jira)
			if err != nil {
				return configError(w, err)
			}

			return runClassify(cmd.Context(), cmd.OutOrStdout(), jiraClient, args[0])
		},
	}
}

func runClassify(ctx context.Context, out io.Writer, classifier validator.IssueClassifier, key string) error {
	if extracted, ok := validator.ExtractIssueKey(key); !ok || extracted != key {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("invalid issue key %q: expected the form ABC-123", key)}
	}

	standard, err := classifier.IsStandardIssue(ctx, key)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	if !standard {
		fmt.Fprintf(out, "%s is not a standard issue type or does not exist\n", key)
		return &ExitError{Code: ExitInvalid, Err: fmt.Errorf("%w: %s is not a standard issue", ErrRejected, key)}
	}

	fmt.Fprintf(out, "%s is a standard issue\n", key)
	return nil
}
