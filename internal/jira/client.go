// Package jira looks up and classifies JIRA issues.
package jira

import (
	"context"
	"errors"
	"fmt"
	"strings"

	jira "github.com/andygrunwald/go-jira"
	"github.com/danielolaszy/prtitle/internal/config"
	"github.com/danielolaszy/prtitle/internal/logging"
	"github.com/danielolaszy/prtitle/pkg/models"
)

// ErrQuery is returned for every failed search, whether the cause was the network,
// authentication or an unreadable response.
var ErrQuery = errors.New("error executing jira query")

// nonStandardTypes are the lower-cased issue types a pull request must not reference.
var nonStandardTypes = map[string]bool{
	"sub-task": true,
	"epic":     true,
}

// searchFields limits the search response to what a WorkItem needs.
var searchFields = []string{"issuetype", "status"}

// Client handles interactions with the JIRA API.
type Client struct {
	client     *jira.Client
	maxResults int
}

// NewClient creates a JIRA client that authenticates with basic auth.
func NewClient(cfg config.JiraConfig) (*Client, error) {
	if err := config.ValidateJiraConfig(&config.Config{Jira: cfg}); err != nil {
		return nil, err
	}

	// Create JIRA authentication transport
	tp := jira.BasicAuthTransport{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	httpClient := tp.Client()
	httpClient.Timeout = cfg.Timeout

	// Create JIRA client
	client, err := jira.NewClient(httpClient, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = config.DefaultMaxResults
	}

	logging.Debug("jira client configured",
		"url", cfg.URL,
		"username", cfg.Username,
		"password", logging.MaskSensitive(cfg.Password),
		"max_results", maxResults)

	return &Client{
		client:     client,
		maxResults: maxResults,
	}, nil
}

// Search runs a JQL query and returns up to maxResults matching work items.
// A non-positive maxResults uses the client's configured maximum.
func (c *Client) Search(ctx context.Context, jql string, maxResults int) ([]models.WorkItem, error) {
	return c.search(ctx, jql, &jira.SearchOptions{
		MaxResults: c.limit(maxResults),
		Fields:     searchFields,
	})
}

// IsStandardIssue reports whether key refers to an existing issue whose type is
// neither a sub-task nor an epic. A key JIRA does not know is not standard.
func (c *Client) IsStandardIssue(ctx context.Context, key string) (bool, error) {
	// validateQuery=warn turns "issue does not exist" into an empty result
	// instead of a 400 response.
	items, err := c.search(ctx, fmt.Sprintf(`issueKey = "%s"`, key), &jira.SearchOptions{
		MaxResults:    c.maxResults,
		Fields:        searchFields,
		ValidateQuery: "warn",
	})
	if err != nil {
		return false, err
	}

	// An unknown key yields no issues
	if len(items) == 0 {
		logging.Info("issue not found in jira", "issue_key", key)
		return false, nil
	}

	standard := IsStandardType(items[0].IssueType)
	logging.Info("classified jira issue",
		"issue_key", key,
		"issue_type", items[0].IssueType,
		"standard", standard)
	return standard, nil
}

// IsStandardType reports whether issueType, compared case-insensitively, is outside
// the {sub-task, epic} exclusion set.
func IsStandardType(issueType string) bool {
	return !nonStandardTypes[strings.ToLower(issueType)]
}

func (c *Client) search(ctx context.Context, jql string, opts *jira.SearchOptions) ([]models.WorkItem, error) {
	logging.Debug("executing jira query", "jql", jql, "max_results", opts.MaxResults)

	// Run the search
	issues, resp, err := c.client.Issue.SearchWithContext(ctx, jql, opts)
	if err != nil {
		// Status code is only known when JIRA answered
		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode
		}
		logging.Error("jira query failed",
			"jql", jql,
			"status_code", statusCode,
			"error", err.Error())
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	// Convert issues to work items
	items := make([]models.WorkItem, 0, len(issues))
	for _, issue := range issues {
		items = append(items, toWorkItem(issue))
	}

	logging.Debug("jira query complete", "jql", jql, "count", len(items))
	return items, nil
}

func (c *Client) limit(maxResults int) int {
	if maxResults <= 0 {
		return c.maxResults
	}
	return maxResults
}

func toWorkItem(issue jira.Issue) models.WorkItem {
	item := models.WorkItem{
		Key: issue.Key,
		ID:  issue.ID,
	}
	if issue.Fields == nil {
		return item
	}

	// Type is a value, status may be absent
	item.IssueType = issue.Fields.Type.Name
	if issue.Fields.Status != nil {
		item.Status = issue.Fields.Status.Name
	}
	return item
}
