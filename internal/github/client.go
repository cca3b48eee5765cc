// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/danielolaszy/prtitle/internal/config"
	"github.com/danielolaszy/prtitle/internal/logging"
	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"
)

var pullRefPattern = regexp.MustCompile(`^refs/pull/(\d+)/(?:merge|head)$`)

// Client encapsulates the GitHub API client.
type Client struct {
	client *github.Client
}

// NewClient creates a GitHub API client for cfg.Domain, authenticated with cfg.Token.
// Domains other than github.com are treated as GitHub Enterprise installations.
func NewClient(cfg config.GitHubConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token not found in configuration")
	}

	domain := cfg.Domain
	if domain == "" {
		domain = "github.com"
	}

	// Enterprise installations serve the API under /api/v3
	apiURL := "https://api.github.com/"
	if domain != "github.com" {
		apiURL = fmt.Sprintf("https://%s/api/v3/", domain)
	}

	logging.Debug("github configuration",
		"domain", domain,
		"api_url", apiURL,
		"token", logging.MaskSensitive(cfg.Token))

	return newClient(cfg.Token, apiURL)
}

func newClient(token, apiURL string) (*Client, error) {
	// Create OAuth2 token source
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	// Create GitHub client
	client := github.NewClient(tc)

	// Point the client at the resolved API URL
	parsedURL, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid github api url: %w", err)
	}
	client.BaseURL = parsedURL
	client.UploadURL = parsedURL

	return &Client{client: client}, nil
}

// PullRequestTitle fetches the title of pull request number in repository.
// The repository should be in the format "owner/repo".
func (c *Client) PullRequestTitle(ctx context.Context, repository string, number int) (string, error) {
	// Parse owner/repo
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return "", err
	}

	// Fetch the pull request
	pr, resp, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode
		}
		logging.Error("failed to get pull request",
			"repository", repository,
			"number", number,
			"status_code", statusCode,
			"error", err.Error())
		return "", fmt.Errorf("failed to get pull request %s#%d: %w", repository, number, err)
	}

	logging.Debug("fetched pull request", "repository", repository, "number", number, "title", pr.GetTitle())
	return pr.GetTitle(), nil
}

// PullRequestNumber returns the configured pull request number, falling back to the
// number embedded in a refs/pull/N/merge workflow ref.
func PullRequestNumber(cfg config.GitHubConfig) (int, bool) {
	// Explicit number wins over the ref
	if cfg.PullRequest > 0 {
		return cfg.PullRequest, true
	}
	return PullRequestNumberFromRef(cfg.Ref)
}

// PullRequestNumberFromRef parses refs/pull/N/merge and refs/pull/N/head.
func PullRequestNumberFromRef(ref string) (int, bool) {
	matches := pullRefPattern.FindStringSubmatch(ref)
	if len(matches) != 2 {
		return 0, false
	}
	number, err := strconv.Atoi(matches[1])
	if err != nil || number <= 0 {
		return 0, false
	}
	return number, true
}

func splitRepository(repository string) (string, string, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format: %s, expected format: owner/repo", repository)
	}
	return parts[0], parts[1], nil
}
