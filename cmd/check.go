package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielolaszy/prtitle/internal/actions"
	"github.com/danielolaszy/prtitle/internal/config"
	"github.com/danielolaszy/prtitle/internal/jira"
	"github.com/danielolaszy/prtitle/internal/logging"
	"github.com/danielolaszy/prtitle/internal/validator"
	"github.com/danielolaszy/prtitle/pkg/models"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a pull request title",
		Long: `Validate a pull request title against a pattern and JIRA.

The title is read from TITLE (or --title) and the pattern from PATTERN
(or --pattern). Without a pattern, titles must look like:

  feat(ABC-123): add login

where the type is one of feat, fix, docs, style, refactor, perf, test or chore.
The issue key is then looked up in JIRA using INPUT_JIRA_URL, INPUT_JIRA_USERNAME
and INPUT_JIRA_PASSWORD (JIRA_URL, JIRA_USERNAME and JIRA_PASSWORD are used
as fallbacks).

Exit status is 0 for a valid title, 1 for an invalid title or missing
configuration and 2 when JIRA could not be queried.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := actions.NewWriter(cmd.OutOrStdout(), "")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return configError(w, err)
			}
			w = actions.NewWriter(cmd.OutOrStdout(), cfg.OutputFile)

			if cmd.Flags().Changed("title") {
				cfg.Title, _ = cmd.Flags().GetString("title")
			}
			if cmd.Flags().Changed("pattern") {
				cfg.Pattern, _ = cmd.Flags().GetString("pattern")
			}

			if err := config.ValidateCheckConfig(cfg); err != nil {
				return configError(w, err)
			}

			jiraClient, err := jira.NewClient(cfg.Jira)
			if err != nil {
				return configError(w, err)
			}

			return runCheck(cmd.Context(), w, cfg.Title, cfg.Pattern, jiraClient)
		},
	}

	checkCmd.Flags().String("title", "", "pull request title; overrides TITLE")
	checkCmd.Flags().String("pattern", "", "title pattern; overrides PATTERN")

	return checkCmd
}

// runCheck validates title and reports the verdict through w.
func runCheck(ctx context.Context, w *actions.Writer, title, pattern string, classifier validator.IssueClassifier) error {
	v, err := validator.New(pattern, classifier)
	if err != nil {
		return failure(w, err)
	}

	logging.Info("validating pull request title", "title", title)

	result, err := v.Validate(ctx, title)
	if err != nil {
		if errors.Is(err, validator.ErrMalformedTitle) {
			logging.Error("title matched the pattern without an issue key", "title", title)
		}
		return failure(w, err)
	}

	return report(w, title, result)
}

// report prints the verdict annotation and the 'valid' step output.
func report(w *actions.Writer, title string, result models.ValidationResult) error {
	if result.Valid {
		w.Notice(fmt.Sprintf("PR title \"%s\" is valid.", title))
	} else {
		w.Error(fmt.Sprintf("PR title \"%s\" is not valid - %s", title, result.Message))
	}

	if err := w.SetOutput("valid", fmt.Sprintf("%t", result.Valid)); err != nil {
		logging.Warn("failed to write step output", "error", err)
	}

	logging.Info("validation complete", "title", title, "valid", result.Valid, "message", result.Message)

	if !result.Valid {
		return &ExitError{Code: ExitInvalid, Err: fmt.Errorf("%w: %s", ErrRejected, result.Message)}
	}
	return nil
}
