// Package report accumulates findings and emits the final scan output.
//
// The reporter is the only component that performs output I/O. Results go
// to the stdout stream (and optionally to a file), diagnostics and notices
// go to stderr, so piping the results never captures anything but findings.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/vscan/vscan-backup-file-detector/internal/filelock"
	"github.com/vscan/vscan-backup-file-detector/internal/models"
	"github.com/vscan/vscan-backup-file-detector/internal/scanerr"
	"github.com/vscan/vscan-backup-file-detector/internal/walker"
)

// FormatText emits one tab-separated "path<TAB>reason" line per finding.
const FormatText = "text"

// FormatJSON emits the full RunResult as a single JSON document.
const FormatJSON = "json"

// Options configures a Reporter.
type Options struct {
	// Stdout receives the results stream. Defaults to os.Stdout.
	Stdout io.Writer

	// Stderr receives notices (e.g. "no backup files found"). Defaults to
	// os.Stderr.
	Stderr io.Writer

	// OutputFile, when non-empty, additionally receives the plain
	// (uncolored) results, written atomically.
	OutputFile string

	// Format is FormatText or FormatJSON. Empty means FormatText.
	Format string

	// Root is the scanned directory, recorded in the RunResult.
	Root string
}

// Reporter collects findings during a scan and emits them on completion.
// Record is not safe for concurrent use; the scan pipeline is single
// threaded by design.
type Reporter struct {
	opts     Options
	findings []models.Finding
	runID    uuid.UUID
	started  time.Time
	colorize bool
}

// New creates a Reporter. The run ID and start time are fixed at creation.
func New(opts Options) *Reporter {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Format == "" {
		opts.Format = FormatText
	}
	return &Reporter{
		opts:     opts,
		runID:    uuid.New(),
		started:  time.Now(),
		colorize: stdoutIsTerminal(opts.Stdout),
	}
}

func stdoutIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Record stores one finding. Findings are kept in recording order.
func (r *Reporter) Record(f models.Finding) {
	r.findings = append(r.findings, f)
}

// Count returns the number of findings recorded so far.
func (r *Reporter) Count() int {
	return len(r.findings)
}

// Finalize closes the run and produces its RunResult. The traversal stats
// supply the scanned-file and warning counters.
func (r *Reporter) Finalize(stats walker.Stats) *models.RunResult {
	return &models.RunResult{
		RunID:        r.runID,
		Root:         r.opts.Root,
		StartedAt:    r.started,
		FinishedAt:   time.Now(),
		Findings:     r.findings,
		FilesScanned: stats.Files,
		DirsScanned:  stats.Dirs,
		Warnings:     stats.Warnings,
	}
}

// Emit writes the finalized result to stdout and, when configured, to the
// output file. A file write failure is fatal; the pre-existing file content
// is left intact because the write is atomic.
func (r *Reporter) Emit(res *models.RunResult) error {
	plain, err := r.render(res)
	if err != nil {
		return err
	}

	if r.colorize && r.opts.Format == FormatText {
		r.emitColorized(res)
	} else {
		fmt.Fprint(r.opts.Stdout, plain)
	}

	if len(res.Findings) == 0 && r.opts.Format == FormatText {
		fmt.Fprintln(r.opts.Stderr, "no backup files found")
	}

	if r.opts.OutputFile != "" {
		if err := r.writeFile(r.opts.OutputFile, []byte(plain)); err != nil {
			return err
		}
	}
	return nil
}

// render produces the plain (uncolored) output bytes for the configured
// format. This is exactly what an output file receives.
func (r *Reporter) render(res *models.RunResult) (string, error) {
	if r.opts.Format == FormatJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode result: %w", err)
		}
		return string(data) + "\n", nil
	}

	var out string
	for _, f := range res.Findings {
		out += fmt.Sprintf("%s\t%s\n", f.Candidate.Path, f.Rule.Reason)
	}
	return out, nil
}

func (r *Reporter) emitColorized(res *models.RunResult) {
	pathColor := color.New(color.FgCyan)
	reasonColor := color.New(color.FgYellow)
	for _, f := range res.Findings {
		fmt.Fprintf(r.opts.Stdout, "%s\t%s\n",
			pathColor.Sprint(f.Candidate.Path),
			reasonColor.Sprint(f.Rule.Reason))
	}
}

// writeFile writes the results file atomically under an advisory lock so
// two concurrent scans targeting the same file cannot interleave.
func (r *Reporter) writeFile(path string, data []byte) error {
	lock := filelock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return scanerr.FatalIO(path, fmt.Errorf("%w: %v", scanerr.ErrOutputWrite, err))
	}
	defer lock.Unlock()

	if err := filelock.AtomicWrite(path, data); err != nil {
		return scanerr.FatalIO(path, fmt.Errorf("%w: %v", scanerr.ErrOutputWrite, err))
	}
	return nil
}
