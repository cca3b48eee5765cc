// Package actions writes GitHub Actions workflow commands and step outputs.
package actions

import (
	"fmt"
	"io"

	"github.com/sethvargo/go-githubactions"
)

const outputFileEnv = "GITHUB_OUTPUT"

// Writer emits workflow commands to out. When outputFile is set, step outputs are
// also appended to it (the file GitHub exposes as $GITHUB_OUTPUT).
type Writer struct {
	action     *githubactions.Action
	outputFile string
}

// NewWriter returns a Writer for out. outputFile may be empty.
func NewWriter(out io.Writer, outputFile string) *Writer {
	// The output file comes from configuration, not from the process environment.
	getenv := func(key string) string {
		if key == outputFileEnv {
			return outputFile
		}
		return ""
	}

	return &Writer{
		action:     githubactions.New(githubactions.WithWriter(out), githubactions.WithGetenv(getenv)),
		outputFile: outputFile,
	}
}

// Notice prints a ::notice:: annotation.
func (w *Writer) Notice(msg string) {
	w.action.Noticef("%s", msg)
}

// Error prints an ::error:: annotation.
func (w *Writer) Error(msg string) {
	w.action.Errorf("%s", msg)
}

// SetOutput publishes a step output. The legacy ::set-output command is always
// printed; the output file is written as well when one is configured.
func (w *Writer) SetOutput(name, value string) (err error) {
	w.action.IssueCommand(&githubactions.Command{
		Name:       "set-output",
		Message:    value,
		Properties: githubactions.CommandProperties{"name": name},
	})

	if w.outputFile == "" {
		return nil
	}

	// go-githubactions panics when the file command cannot be written.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to write output %s: %v", name, r)
		}
	}()
	w.action.SetOutput(name, value)
	return nil
}
