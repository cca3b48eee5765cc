// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultEnvFile is the dotenv file read before environment variables are applied.
const DefaultEnvFile = ".env.local"

// DefaultMaxResults caps the number of issues a single JIRA search returns.
const DefaultMaxResults = 1000

// ErrMissingVars is matched by every *MissingVarsError.
var ErrMissingVars = errors.New("missing required environment variables")

// MissingVarsError lists the required variables that were not provided.
type MissingVarsError struct {
	Vars []string
}

func (e *MissingVarsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingVars, strings.Join(e.Vars, ", "))
}

// Is reports whether target is ErrMissingVars.
func (e *MissingVarsError) Is(target error) bool {
	return target == ErrMissingVars
}

// Config holds all configuration parameters for the application.
type Config struct {
	// Title is the pull request title to validate.
	Title string
	// Pattern overrides the default title pattern when set.
	Pattern string
	// LogLevel is one of debug, info, warn or error.
	LogLevel string
	// OutputFile is the GitHub Actions step output file, if any.
	OutputFile string

	Jira   JiraConfig
	GitHub GitHubConfig
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL        string
	Username   string
	Password   string
	MaxResults int
	// Timeout bounds each JIRA HTTP request. Zero means no timeout.
	Timeout time.Duration
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token      string
	Domain     string
	Repository string
	// PullRequest is the pull request number, zero when unknown.
	PullRequest int
	// Ref is the workflow ref, e.g. refs/pull/42/merge.
	Ref string
}

// keys lists every configuration key. Each one maps to the upper-cased environment
// variable of the same name and to the same entry in the dotenv file.
var keys = []string{
	"title",
	"pattern",
	"log_level",
	"github_output",
	"input_jira_url",
	"input_jira_username",
	"input_jira_password",
	"jira_url",
	"jira_username",
	"jira_password",
	"jira_max_results",
	"jira_timeout",
	"github_token",
	"github_domain",
	"github_repository",
	"pr_number",
	"github_ref",
}

// LoadConfig reads envFile (when it exists) and the process environment into a Config.
// Environment variables take precedence over values from the file. The INPUT_JIRA_*
// variables take precedence over their JIRA_* counterparts.
func LoadConfig(envFile string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", strings.ToUpper(key), err)
		}
	}

	v.SetDefault("jira_max_results", DefaultMaxResults)
	v.SetDefault("log_level", "info")
	v.SetDefault("github_domain", "github.com")

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		}
	}

	timeout, err := parseTimeout(v.GetString("jira_timeout"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		Title:      v.GetString("title"),
		Pattern:    v.GetString("pattern"),
		LogLevel:   strings.ToLower(v.GetString("log_level")),
		OutputFile: v.GetString("github_output"),
		Jira: JiraConfig{
			URL:        firstNonEmpty(v.GetString("input_jira_url"), v.GetString("jira_url")),
			Username:   firstNonEmpty(v.GetString("input_jira_username"), v.GetString("jira_username")),
			Password:   firstNonEmpty(v.GetString("input_jira_password"), v.GetString("jira_password")),
			MaxResults: v.GetInt("jira_max_results"),
			Timeout:    timeout,
		},
		GitHub: GitHubConfig{
			Token:       v.GetString("github_token"),
			Domain:      v.GetString("github_domain"),
			Repository:  v.GetString("github_repository"),
			PullRequest: v.GetInt("pr_number"),
			Ref:         v.GetString("github_ref"),
		},
	}

	if config.Jira.MaxResults <= 0 {
		config.Jira.MaxResults = DefaultMaxResults
	}

	return config, nil
}

// ValidateCheckConfig validates everything a title check needs: the title itself
// and the JIRA connection.
func ValidateCheckConfig(config *Config) error {
	var missingVars []string
	if config.Title == "" {
		missingVars = append(missingVars, "TITLE")
	}
	missingVars = append(missingVars, missingJiraVars(config)...)

	if len(missingVars) > 0 {
		return &MissingVarsError{Vars: missingVars}
	}
	return nil
}

// ValidateJiraConfig validates JIRA-specific configuration.
func ValidateJiraConfig(config *Config) error {
	if missingVars := missingJiraVars(config); len(missingVars) > 0 {
		return &MissingVarsError{Vars: missingVars}
	}
	return nil
}

// ValidateGitHubConfig validates the configuration needed to fetch a pull request.
func ValidateGitHubConfig(config *Config) error {
	var missingVars []string
	if config.GitHub.Token == "" {
		missingVars = append(missingVars, "GITHUB_TOKEN")
	}
	if config.GitHub.Repository == "" {
		missingVars = append(missingVars, "GITHUB_REPOSITORY")
	}

	if len(missingVars) > 0 {
		return &MissingVarsError{Vars: missingVars}
	}
	return nil
}

func missingJiraVars(config *Config) []string {
	var missingVars []string
	if config.Jira.URL == "" {
		missingVars = append(missingVars, "INPUT_JIRA_URL")
	}
	if config.Jira.Username == "" {
		missingVars = append(missingVars, "INPUT_JIRA_USERNAME")
	}
	if config.Jira.Password == "" {
		missingVars = append(missingVars, "INPUT_JIRA_PASSWORD")
	}
	return missingVars
}

// parseTimeout reads JIRA_TIMEOUT as a Go duration such as "30s". A bare number is
// rejected since it has no unit.
func parseTimeout(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}

	timeout, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid JIRA_TIMEOUT %q: expected a duration such as 30s: %w", value, err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("invalid JIRA_TIMEOUT %q: must not be negative", value)
	}
	return timeout, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
