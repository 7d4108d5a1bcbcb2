// Package walker enumerates candidate files under a root directory.
//
// Traversal is error tolerant: unreadable directories and per-entry stat
// failures are reported through the Warn hook and skipped, so a single bad
// subtree never aborts a scan. Only a missing or non-directory root is
// fatal. Each Walk call starts a fresh traversal; there is no resumable
// state.
package walker

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/vscan/vscan-backup-file-detector/internal/models"
	"github.com/vscan/vscan-backup-file-detector/internal/scanerr"
)

// Options configures a Walker.
type Options struct {
	// MaxDepth limits how many directory levels are scanned
	// (0 = unlimited, 1 = root directory only).
	MaxDepth int

	// FollowSymlinks descends into symlinked directories. Cycles are broken
	// by tracking the resolved real path of every directory entered; no real
	// path is visited twice.
	FollowSymlinks bool

	// Sorted yields entries within each directory in lexical order. The
	// default is whatever order the directory delivers them in.
	Sorted bool

	// ExcludeDirs is a list of directory base names to skip entirely.
	ExcludeDirs []string

	// Warn receives per-entry failures (permission, stat) that were absorbed.
	// May be nil.
	Warn func(path string, err error)

	// Progress is invoked for each directory entered. May be nil.
	Progress func(dir string)
}

// Stats summarizes one traversal.
type Stats struct {
	// Files is the number of candidates yielded.
	Files int
	// Dirs is the number of directories entered, the root included.
	Dirs int
	// Warnings is the number of absorbed per-entry failures.
	Warnings int
}

// Walker traverses a directory tree and yields one Candidate per file.
type Walker struct {
	opts    Options
	exclude map[string]bool
}

// New creates a Walker with the given options.
func New(opts Options) *Walker {
	exclude := make(map[string]bool, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		exclude[d] = true
	}
	return &Walker{opts: opts, exclude: exclude}
}

// Walk traverses root depth-first and calls fn for every file found, in
// traversal order. A missing or non-directory root returns a FatalIOError.
// An error returned by fn aborts the traversal and is returned as is.
func (w *Walker) Walk(root string, fn func(models.Candidate) error) (Stats, error) {
	var stats Stats

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, scanerr.FatalIO(root, scanerr.ErrRootNotFound)
		}
		return stats, scanerr.FatalIO(root, err)
	}
	if !info.IsDir() {
		return stats, scanerr.FatalIO(root, scanerr.ErrRootNotDirectory)
	}

	visited := make(map[string]bool)
	if real, err := filepath.EvalSymlinks(root); err == nil {
		visited[real] = true
	}

	err = w.walkDir(root, 1, visited, &stats, fn)
	return stats, err
}

// walkDir scans one directory at the given depth (root is depth 1).
func (w *Walker) walkDir(dir string, depth int, visited map[string]bool, stats *Stats, fn func(models.Candidate) error) error {
	stats.Dirs++
	if w.opts.Progress != nil {
		w.opts.Progress(dir)
	}

	f, err := os.Open(dir)
	if err != nil {
		w.warn(stats, dir, err)
		return nil
	}
	entries, err := f.ReadDir(-1)
	f.Close()
	if err != nil {
		w.warn(stats, dir, err)
		return nil
	}

	if w.opts.Sorted {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if w.shouldDescend(entry.Name(), depth) {
				if err := w.walkDir(path, depth+1, visited, stats, fn); err != nil {
					return err
				}
			}
			continue
		}

		if entry.Type()&os.ModeSymlink != 0 && w.opts.FollowSymlinks {
			target, err := os.Stat(path)
			if err != nil {
				w.warn(stats, path, err)
				continue
			}
			if target.IsDir() {
				if !w.shouldDescend(entry.Name(), depth) {
					continue
				}
				real, err := filepath.EvalSymlinks(path)
				if err != nil {
					w.warn(stats, path, err)
					continue
				}
				if visited[real] {
					continue
				}
				visited[real] = true
				if err := w.walkDir(path, depth+1, visited, stats, fn); err != nil {
					return err
				}
				continue
			}
		}

		stats.Files++
		if err := fn(models.Candidate{Path: path, Name: entry.Name()}); err != nil {
			return err
		}
	}

	return nil
}

// shouldDescend decides whether to enter a subdirectory of a directory at
// the given depth.
func (w *Walker) shouldDescend(name string, parentDepth int) bool {
	if w.exclude[name] {
		return false
	}
	if w.opts.MaxDepth > 0 && parentDepth+1 > w.opts.MaxDepth {
		return false
	}
	return true
}

func (w *Walker) warn(stats *Stats, path string, err error) {
	stats.Warnings++
	if w.opts.Warn != nil {
		w.opts.Warn(path, err)
	}
}
