// Package scanerr defines the error taxonomy for the scanner.
//
// Errors fall into three classes: usage errors (bad arguments, exit code 1),
// fatal I/O errors (missing root, unwritable output, exit code 2), and
// per-entry warnings that never abort a scan. Only the first two classes are
// represented as error values; warnings are reported through the Walker's
// warning callback and absorbed.
package scanerr

import (
	"errors"
	"fmt"
)

// Sentinel errors usable with errors.Is.
var (
	// ErrRootNotFound indicates the scan root does not exist.
	ErrRootNotFound = errors.New("scan root does not exist")

	// ErrRootNotDirectory indicates the scan root is not a directory.
	ErrRootNotDirectory = errors.New("scan root is not a directory")

	// ErrOutputWrite indicates the results file could not be created or written.
	ErrOutputWrite = errors.New("failed to write results file")

	// ErrEmptyRuleSet indicates a rule override produced no usable rules.
	ErrEmptyRuleSet = errors.New("rule set is empty")
)

// UsageError represents invalid arguments or configuration supplied by the
// user. It maps to exit code 1.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage error: %v", e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// Usage wraps err as a UsageError.
func Usage(err error) error {
	if err == nil {
		return nil
	}
	return &UsageError{Err: err}
}

// Usagef creates a UsageError from a format string.
func Usagef(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// FatalIOError represents an unrecoverable filesystem failure: the root path
// is missing or not a directory, or the output file cannot be written. It
// maps to exit code 2.
type FatalIOError struct {
	Path string
	Err  error
}

func (e *FatalIOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("fatal I/O error on %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("fatal I/O error: %v", e.Err)
}

func (e *FatalIOError) Unwrap() error {
	return e.Err
}

// FatalIO wraps err as a FatalIOError for the given path.
func FatalIO(path string, err error) error {
	if err == nil {
		return nil
	}
	return &FatalIOError{Path: path, Err: err}
}

// ExitCode maps an error to the process exit code contract:
// 0 success, 1 usage error, 2 fatal I/O error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ioErr *FatalIOError
	if errors.As(err, &ioErr) {
		return 2
	}
	return 1
}
