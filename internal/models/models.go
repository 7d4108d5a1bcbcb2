// Package models defines the record types passed between the walker,
// matcher, and reporter.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vscan/vscan-backup-file-detector/internal/rules"
)

// Candidate is a filesystem entry under evaluation: the path as discovered
// during traversal plus its base name. Candidates are read-only and
// discarded after matching.
type Candidate struct {
	// Path is the file path as yielded by the walker, rooted at the scan root.
	Path string `json:"path"`

	// Name is the base name of the file.
	Name string `json:"name"`
}

// Finding is a candidate confirmed to match a rule. Each matched path yields
// exactly one finding, for the first rule that matched it. Findings are
// never mutated after creation.
type Finding struct {
	Candidate Candidate  `json:"candidate"`
	Rule      rules.Rule `json:"rule"`
}

// RunResult is the finalized outcome of one scan invocation: the ordered
// findings plus summary counters.
type RunResult struct {
	// RunID uniquely identifies this invocation.
	RunID uuid.UUID `json:"run_id"`

	// Root is the directory that was scanned.
	Root string `json:"root"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Findings in the order they were recorded.
	Findings []Finding `json:"findings"`

	// FilesScanned counts every file the walker yielded, matched or not.
	FilesScanned int `json:"files_scanned"`

	// DirsScanned counts every directory the walker entered.
	DirsScanned int `json:"dirs_scanned"`

	// Warnings counts per-entry errors that were absorbed during traversal.
	Warnings int `json:"warnings"`
}

// Duration returns the wall time of the scan.
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
