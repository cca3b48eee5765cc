// Package models defines data structures shared across the application.
package models

// WorkItem represents a JIRA issue as returned by a search.
type WorkItem struct {
	// Key is the full JIRA issue identifier (e.g., "ABC-123")
	Key string `json:"key" yaml:"key"`

	// ID is the numeric identifier JIRA assigns to the issue
	ID string `json:"id" yaml:"id"`

	// IssueType is the JIRA issue type name (e.g., "Story", "Epic", "Sub-task")
	IssueType string `json:"issue_type" yaml:"issue_type"`

	// Status is the name of the issue's current workflow status
	Status string `json:"status" yaml:"status"`
}

// ValidationResult is the verdict for a single pull request title.
type ValidationResult struct {
	// Valid reports whether the title passed every check
	Valid bool

	// Message is a human-readable explanation of the verdict
	Message string
}
