package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/danielolaszy/prtitle/internal/actions"
	"github.com/danielolaszy/prtitle/internal/config"
	"github.com/danielolaszy/prtitle/internal/jira"
	"github.com/danielolaszy/prtitle/pkg/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// IssueSearcher runs JQL queries.
type IssueSearcher interface {
	Search(ctx context.Context, jql string, maxResults int) ([]models.WorkItem, error)
}

func newSearchCmd() *cobra.Command {
	searchCmd := &cobra.Command{
		Use:   "search JQL",
		Short: "Run a JQL query and list the matching issues",
		Long: `Run a JQL query against JIRA and print the key, id, issue type and status
of every matching issue.

Example:
  prtitle search 'project = ABC AND status = "In Progress"' -o yaml`,
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

			maxResults, err := cmd.Flags().GetInt("max-results")
			if err != nil {
				return err
			}
			format, err := cmd.Flags().GetString("output")
			if err != nil {
				return err
			}

			jiraClient, err := jira.NewClient(cfg.Jira)
			if err != nil {
				return configError(w, err)
			}

			if err := runSearch(cmd.Context(), cmd.OutOrStdout(), jiraClient, args[0], maxResults, format); err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}
			return nil
		},
	}

	searchCmd.Flags().Int("max-results", 0, "maximum number of issues to return (default JIRA_MAX_RESULTS or 1000)")
	searchCmd.Flags().StringP("output", "o", "text", "output format: text, json or yaml")

	return searchCmd
}

func runSearch(ctx context.Context, out io.Writer, searcher IssueSearcher, jql string, maxResults int, format string) error {
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q: expected text, json or yaml", format)
	}

	items, err := searcher.Search(ctx, jql, maxResults)
	if err != nil {
		return err
	}

	return writeWorkItems(out, items, format)
}

func writeWorkItems(out io.Writer, items []models.WorkItem, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("failed to encode issues: %w", err)
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tID\tTYPE\tSTATUS")
		for _, item := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Key, item.ID, item.IssueType, item.Status)
		}
		return tw.Flush()
	}
}
