package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielolaszy/prtitle/internal/actions"
	"github.com/danielolaszy/prtitle/internal/jira"
	"github.com/danielolaszy/prtitle/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCheck(t *testing.T) {
	testCases := []struct {
		name       string
		title      string
		pattern    string
		classifier *MockClassifier
		wantCode   int
		wantOutput string
		wantCalls  int
	}{
		{
			name:       "Valid title",
			title:      "feat(ABC-123): add login",
			classifier: standardIssue(true),
			wantCode:   ExitValid,
			wantOutput: "::notice::PR title \"feat(ABC-123): add login\" is valid.\n" +
				"::set-output name=valid::true\n",
			wantCalls: 1,
		},
		{
			name:       "Epic",
			title:      "fix(XYZ-9): patch",
			classifier: standardIssue(false),
			wantCode:   ExitInvalid,
			wantOutput: "::error::PR title \"fix(XYZ-9): patch\" is not valid - " +
				"Issue key XYZ-9 is not a standard issue type or does not exists in JIRA.\n" +
				"::set-output name=valid::false\n",
			wantCalls: 1,
		},
		{
			name:       "Pattern mismatch makes no lookup",
			title:      "update stuff",
			classifier: standardIssue(true),
			wantCode:   ExitInvalid,
			wantOutput: "::error::PR title \"update stuff\" is not valid - Title does not match the required pattern.\n" +
				"::set-output name=valid::false\n",
			wantCalls: 0,
		},
		{
			name:  "Lookup failure",
			title: "feat(ABC-123): add login",
			classifier: &MockClassifier{
				IsStandardIssueFunc: func(ctx context.Context, key string) (bool, error) {
					return false, fmt.Errorf("%w: 401 Unauthorized", jira.ErrQuery)
				},
			},
			wantCode: ExitFailure,
			wantOutput: "::error::failed to classify ABC-123: error executing jira query: " +
				"401 Unauthorized\n",
			wantCalls: 1,
		},
		{
			name:       "Malformed title",
			title:      "release: 1.0",
			pattern:    `release: .+`,
			classifier: standardIssue(true),
			wantCode:   ExitFailure,
			wantOutput: "::error::title matches the pattern but contains no issue key: \"release: 1.0\"\n",
			wantCalls:  0,
		},
		{
			name:       "Invalid pattern",
			title:      "feat(ABC-123): add login",
			pattern:    `feat(`,
			classifier: standardIssue(true),
			wantCode:   ExitFailure,
			wantCalls:  0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := actions.NewWriter(&buf, "")

			err := runCheck(context.Background(), w, tc.title, tc.pattern, tc.classifier)

			assert.Equal(t, tc.wantCode, ExitCode(err))
			if tc.wantOutput != "" {
				assert.Equal(t, tc.wantOutput, buf.String())
			}
			assert.Equal(t, tc.wantCalls, tc.classifier.Calls)
		})
	}
}

func TestRunCheckMalformedTitleError(t *testing.T) {
	var buf bytes.Buffer
	err := runCheck(context.Background(), actions.NewWriter(&buf, ""), "release: 1.0", `release: .+`, standardIssue(true))
	assert.True(t, errors.Is(err, validator.ErrMalformedTitle))
}

func TestCheckCommandMissingTitle(t *testing.T) {
	clearEnv(t)
	t.Setenv("INPUT_JIRA_URL", "https://jira.example.com")
	t.Setenv("INPUT_JIRA_USERNAME", "ci-bot")
	t.Setenv("INPUT_JIRA_PASSWORD", "secret")

	out, err := executeRoot(t, "check", "--env-file=")

	assert.Equal(t, 1, ExitCode(err))
	assert.Equal(t, "::error::Missing required environment variables: TITLE\n", out)
}

func TestCheckCommandMissingEverything(t *testing.T) {
	clearEnv(t)

	out, err := executeRoot(t, "check", "--env-file=")

	assert.Equal(t, ExitConfig, ExitCode(err))
	assert.Equal(t, "::error::Missing required environment variables: "+
		"TITLE, INPUT_JIRA_URL, INPUT_JIRA_USERNAME, INPUT_JIRA_PASSWORD\n", out)
}

// fakeJira serves a single issue of the given type for every search.
func fakeJira(t *testing.T, issueType string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/search", r.URL.Path)
		fmt.Fprintf(w, `{"issues":[{"id":"10123","key":"ABC-123","fields":{"issuetype":{"name":%q},"status":{"name":"Open"}}}]}`,
			issueType)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheckCommandEndToEnd(t *testing.T) {
	testCases := []struct {
		name       string
		issueType  string
		wantCode   int
		wantOutput string
	}{
		{name: "Story", issueType: "Story", wantCode: ExitValid, wantOutput: "\ntrue\n"},
		{name: "Sub-task", issueType: "Sub-task", wantCode: ExitInvalid, wantOutput: "\nfalse\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			server := fakeJira(t, tc.issueType)
			outputFile := filepath.Join(t.TempDir(), "github_output")
			require.NoError(t, os.WriteFile(outputFile, nil, 0o644))

			t.Setenv("TITLE", "feat(ABC-123): add login")
			t.Setenv("INPUT_JIRA_URL", server.URL)
			t.Setenv("INPUT_JIRA_USERNAME", "ci-bot")
			t.Setenv("INPUT_JIRA_PASSWORD", "secret")
			t.Setenv("GITHUB_OUTPUT", outputFile)

			_, err := executeRoot(t, "check", "--env-file=")
			assert.Equal(t, tc.wantCode, ExitCode(err))

			content, err := os.ReadFile(outputFile)
			require.NoError(t, err)
			assert.Contains(t, string(content), "valid<<")
			assert.Contains(t, string(content), tc.wantOutput)
		})
	}
}

func TestCheckCommandFlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	server := fakeJira(t, "Task")

	t.Setenv("TITLE", "not a valid title")
	t.Setenv("INPUT_JIRA_URL", server.URL)
	t.Setenv("INPUT_JIRA_USERNAME", "ci-bot")
	t.Setenv("INPUT_JIRA_PASSWORD", "secret")

	out, err := executeRoot(t, "check", "--env-file=", "--title", "[ABC-123] add login", "--pattern", `\[[A-Z]+-\d+\] .+`)
	require.NoError(t, err)
	assert.Contains(t, out, "::notice::PR title \"[ABC-123] add login\" is valid.")
}

func TestCheckCommandReadsEnvFile(t *testing.T) {
	clearEnv(t)
	server := fakeJira(t, "Story")

	envFile := filepath.Join(t.TempDir(), ".env.local")
	require.NoError(t, os.WriteFile(envFile, []byte(fmt.Sprintf(
		"TITLE=feat(ABC-123): add login\nJIRA_URL=%s\nJIRA_USERNAME=ci-bot\nJIRA_PASSWORD=secret\n", server.URL)), 0o600))

	out, err := executeRoot(t, "check", "--env-file", envFile)
	require.NoError(t, err)
	assert.Contains(t, out, "::set-output name=valid::true")
}

func TestCheckCommandJiraUnavailable(t *testing.T) {
	clearEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	t.Setenv("TITLE", "feat(ABC-123): add login")
	t.Setenv("INPUT_JIRA_URL", server.URL)
	t.Setenv("INPUT_JIRA_USERNAME", "ci-bot")
	t.Setenv("INPUT_JIRA_PASSWORD", "wrong")

	out, err := executeRoot(t, "check", "--env-file=")
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.ErrorIs(t, err, jira.ErrQuery)
	assert.Contains(t, out, "::error::failed to classify ABC-123: error executing jira query")
}

func TestCheckCommandInvalidJiraTimeout(t *testing.T) {
	for _, value := range []string{"30", "thirty"} {
		t.Run(value, func(t *testing.T) {
			clearEnv(t)
			server := fakeJira(t, "Story")

			t.Setenv("TITLE", "feat(ABC-123): add login")
			t.Setenv("INPUT_JIRA_URL", server.URL)
			t.Setenv("INPUT_JIRA_USERNAME", "ci-bot")
			t.Setenv("INPUT_JIRA_PASSWORD", "secret")
			t.Setenv("JIRA_TIMEOUT", value)

			out, err := executeRoot(t, "check", "--env-file=")

			assert.Equal(t, ExitConfig, ExitCode(err))
			assert.Contains(t, out, "::error::Invalid configuration: invalid JIRA_TIMEOUT")
			assert.NotContains(t, out, "set-output")
		})
	}
}
