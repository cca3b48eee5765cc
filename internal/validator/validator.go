// Package validator decides whether a pull request title is acceptable.
package validator

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/danielolaszy/prtitle/internal/logging"
	"github.com/danielolaszy/prtitle/pkg/models"
)

// DefaultPattern requires a conventional-commit type tag, a parenthesized issue key,
// a colon, a space and a non-empty description.
const DefaultPattern = `^(feat|fix|docs|style|refactor|perf|test|chore)\([A-Z]+-\d+\): .+`

const (
	// MessageValid is reported when the title and its issue both pass.
	MessageValid = "Title is valid and issue exists in Jira."
	// MessagePatternMismatch is reported when the title fails the syntactic check.
	MessagePatternMismatch = "Title does not match the required pattern."
)

// ErrMalformedTitle is returned when a title matches the pattern but carries no issue key.
// This only happens with a custom pattern that does not embed one.
var ErrMalformedTitle = errors.New("title matches the pattern but contains no issue key")

var issueKeyPattern = regexp.MustCompile(`[A-Z]+-\d+`)

// IssueClassifier decides whether an issue key refers to a standard issue.
type IssueClassifier interface {
	IsStandardIssue(ctx context.Context, key string) (bool, error)
}

// Validator checks titles against a pattern and an issue tracker.
type Validator struct {
	pattern    *regexp.Regexp
	classifier IssueClassifier
}

// New compiles pattern and returns a Validator. An empty pattern selects
// DefaultPattern. The pattern only matches at the start of a title.
func New(pattern string, classifier IssueClassifier) (*Validator, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("invalid title pattern %q: %w", pattern, err)
	}

	return &Validator{
		pattern:    re,
		classifier: classifier,
	}, nil
}

// Validate checks title. A title that fails the pattern is rejected without
// consulting the classifier. Negative verdicts are results, not errors; an error
// means the verdict could not be reached.
func (v *Validator) Validate(ctx context.Context, title string) (models.ValidationResult, error) {
	if !v.pattern.MatchString(title) {
		logging.Info("title does not match pattern", "title", title, "pattern", v.pattern.String())
		return models.ValidationResult{Valid: false, Message: MessagePatternMismatch}, nil
	}

	key, ok := ExtractIssueKey(title)
	if !ok {
		return models.ValidationResult{}, fmt.Errorf("%w: %q", ErrMalformedTitle, title)
	}

	standard, err := v.classifier.IsStandardIssue(ctx, key)
	if err != nil {
		return models.ValidationResult{}, fmt.Errorf("failed to classify %s: %w", key, err)
	}

	if !standard {
		return models.ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("Issue key %s is not a standard issue type or does not exists in JIRA.", key),
		}, nil
	}

	return models.ValidationResult{Valid: true, Message: MessageValid}, nil
}

// ExtractIssueKey returns the first issue key (e.g. "ABC-123") found in title.
func ExtractIssueKey(title string) (string, bool) {
	key := issueKeyPattern.FindString(title)
	return key, key != ""
}
