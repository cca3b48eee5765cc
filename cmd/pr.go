package cmd

import (
	"context"
	"errors"

	"github.com/danielolaszy/prtitle/internal/actions"
	"github.com/danielolaszy/prtitle/internal/config"
	"github.com/danielolaszy/prtitle/internal/github"
	"github.com/danielolaszy/prtitle/internal/jira"
	"github.com/danielolaszy/prtitle/internal/logging"
	"github.com/danielolaszy/prtitle/internal/validator"
	"github.com/spf13/cobra"
)

// PullRequestFetcher looks up the current title of a pull request.
type PullRequestFetcher interface {
	PullRequestTitle(ctx context.Context, repository string, number int) (string, error)
}

func newPullRequestCmd() *cobra.Command {
	prCmd := &cobra.Command{
		Use:   "pr",
		Short: "Fetch a pull request title from GitHub and validate it",
		Long: `Fetch the title of a pull request from GitHub and validate it exactly like
'prtitle check'.

The repository comes from GITHUB_REPOSITORY (or --repository) and the pull
request number from PR_NUMBER, --number or a refs/pull/N/merge GITHUB_REF.
GITHUB_TOKEN authenticates the request; set GITHUB_DOMAIN for GitHub Enterprise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := actions.NewWriter(cmd.OutOrStdout(), "")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return configError(w, err)
			}
			w = actions.NewWriter(cmd.OutOrStdout(), cfg.OutputFile)

			if cmd.Flags().Changed("repository") {
				cfg.GitHub.Repository, _ = cmd.Flags().GetString("repository")
			}
			if cmd.Flags().Changed("number") {
				cfg.GitHub.PullRequest, _ = cmd.Flags().GetInt("number")
			}
			if cmd.Flags().Changed("pattern") {
				cfg.Pattern, _ = cmd.Flags().GetString("pattern")
			}

			number, err := validatePullRequestConfig(cfg)
			if err != nil {
				return configError(w, err)
			}

			githubClient, err := github.NewClient(cfg.GitHub)
			if err != nil {
				return configError(w, err)
			}

			jiraClient, err := jira.NewClient(cfg.Jira)
			if err != nil {
				return configError(w, err)
			}

			return runPullRequestCheck(cmd.Context(), w, githubClient, cfg.GitHub.Repository, number, cfg.Pattern, jiraClient)
		},
	}

	prCmd.Flags().StringP("repository", "r", "", "GitHub repository (e.g., 'owner/repo'); overrides GITHUB_REPOSITORY")
	prCmd.Flags().IntP("number", "n", 0, "pull request number; overrides PR_NUMBER")
	prCmd.Flags().String("pattern", "", "title pattern; overrides PATTERN")

	return prCmd
}

// validatePullRequestConfig collects every missing variable for the pr command and
// resolves the pull request number.
func validatePullRequestConfig(cfg *config.Config) (int, error) {
	var missingVars []string

	var missingErr *config.MissingVarsError
	if err := config.ValidateGitHubConfig(cfg); err != nil {
		if !errors.As(err, &missingErr) {
			return 0, err
		}
		missingVars = append(missingVars, missingErr.Vars...)
	}

	number, ok := github.PullRequestNumber(cfg.GitHub)
	if !ok {
		missingVars = append(missingVars, "PR_NUMBER")
	}

	if err := config.ValidateJiraConfig(cfg); err != nil {
		if !errors.As(err, &missingErr) {
			return 0, err
		}
		missingVars = append(missingVars, missingErr.Vars...)
	}

	if len(missingVars) > 0 {
		return 0, &config.MissingVarsError{Vars: missingVars}
	}
	return number, nil
}

// runPullRequestCheck fetches the title of pull request number and validates it.
func runPullRequestCheck(ctx context.Context, w *actions.Writer, fetcher PullRequestFetcher, repository string, number int, pattern string, classifier validator.IssueClassifier) error {
	title, err := fetcher.PullRequestTitle(ctx, repository, number)
	if err != nil {
		return failure(w, err)
	}

	logging.Info("fetched pull request title", "repository", repository, "number", number)
	return runCheck(ctx, w, title, pattern, classifier)
}
