package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/danielolaszy/prtitle/pkg/models"
)

// envVars lists every variable the configuration loader reads.
var envVars = []string{
	"TITLE", "PATTERN", "LOG_LEVEL", "GITHUB_OUTPUT",
	"INPUT_JIRA_URL", "INPUT_JIRA_USERNAME", "INPUT_JIRA_PASSWORD",
	"JIRA_URL", "JIRA_USERNAME", "JIRA_PASSWORD", "JIRA_MAX_RESULTS", "JIRA_TIMEOUT",
	"GITHUB_TOKEN", "GITHUB_DOMAIN", "GITHUB_REPOSITORY", "PR_NUMBER", "GITHUB_REF",
}

// clearEnv blanks the configuration variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range envVars {
		t.Setenv(name, "")
	}
}

// executeRoot runs the command tree with args and returns stdout and the error.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	t.Logf("stderr: %s", stderr.String())
	return stdout.String(), err
}

// MockClassifier implements validator.IssueClassifier for testing.
type MockClassifier struct {
	IsStandardIssueFunc func(ctx context.Context, key string) (bool, error)
	Calls               int
}

func (m *MockClassifier) IsStandardIssue(ctx context.Context, key string) (bool, error) {
	m.Calls++
	if m.IsStandardIssueFunc != nil {
		return m.IsStandardIssueFunc(ctx, key)
	}
	return false, errors.New("IsStandardIssue not implemented")
}

func standardIssue(standard bool) *MockClassifier {
	return &MockClassifier{
		IsStandardIssueFunc: func(ctx context.Context, key string) (bool, error) {
			return standard, nil
		},
	}
}

// MockSearcher implements IssueSearcher for testing.
type MockSearcher struct {
	SearchFunc func(ctx context.Context, jql string, maxResults int) ([]models.WorkItem, error)
}

func (m *MockSearcher) Search(ctx context.Context, jql string, maxResults int) ([]models.WorkItem, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, jql, maxResults)
	}
	return nil, errors.New("Search not implemented")
}

// MockFetcher implements PullRequestFetcher for testing.
type MockFetcher struct {
	PullRequestTitleFunc func(ctx context.Context, repository string, number int) (string, error)
}

func (m *MockFetcher) PullRequestTitle(ctx context.Context, repository string, number int) (string, error) {
	if m.PullRequestTitleFunc != nil {
		return m.PullRequestTitleFunc(ctx, repository, number)
	}
	return "", errors.New("PullRequestTitle not implemented")
}
