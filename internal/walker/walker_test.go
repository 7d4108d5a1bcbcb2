package walker

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/vscan/vscan-backup-file-detector/internal/models"
	"github.com/vscan/vscan-backup-file-detector/internal/scanerr"
)

// writeTree creates the given relative file paths under root
func writeTree(t *testing.T, root string, files []string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
}

// collect walks root and returns the yielded base names
func collect(t *testing.T, w *Walker, root string) ([]string, Stats) {
	t.Helper()
	var names []string
	stats, err := w.Walk(root, func(c models.Candidate) error {
		names = append(names, c.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return names, stats
}

func TestWalkBasic(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{
		"a.bak",
		"b.txt",
		"sub/c.old",
		"sub/deep/d.tmp",
	})

	names, stats := collect(t, New(Options{}), tmpDir)

	sort.Strings(names)
	want := []string{"a.bak", "b.txt", "c.old", "d.tmp"}
	if len(names) != len(want) {
		t.Fatalf("yielded %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("name %d = %q, want %q", i, names[i], want[i])
		}
	}

	if stats.Files != 4 {
		t.Errorf("stats.Files = %d, want 4", stats.Files)
	}
	if stats.Dirs != 3 {
		t.Errorf("stats.Dirs = %d, want 3", stats.Dirs)
	}
	if stats.Warnings != 0 {
		t.Errorf("stats.Warnings = %d, want 0", stats.Warnings)
	}
}

func TestWalkEmptyDirectory(t *testing.T) {
	names, stats := collect(t, New(Options{}), t.TempDir())

	if len(names) != 0 {
		t.Errorf("yielded %v from empty directory", names)
	}
	if stats.Files != 0 || stats.Dirs != 1 {
		t.Errorf("stats = %+v, want Files=0 Dirs=1", stats)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	w := New(Options{})
	_, err := w.Walk(filepath.Join(t.TempDir(), "does-not-exist"), func(models.Candidate) error {
		t.Fatal("callback invoked for missing root")
		return nil
	})

	if err == nil {
		t.Fatal("Walk() error = nil, want fatal error")
	}
	if !errors.Is(err, scanerr.ErrRootNotFound) {
		t.Errorf("error = %v, want ErrRootNotFound", err)
	}
	var ioErr *scanerr.FatalIOError
	if !errors.As(err, &ioErr) {
		t.Errorf("error is not a FatalIOError: %v", err)
	}
	if scanerr.ExitCode(err) != 2 {
		t.Errorf("ExitCode(err) = %d, want 2", scanerr.ExitCode(err))
	}
}

func TestWalkRootNotDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	_, err := New(Options{}).Walk(file, func(models.Candidate) error { return nil })
	if !errors.Is(err, scanerr.ErrRootNotDirectory) {
		t.Errorf("error = %v, want ErrRootNotDirectory", err)
	}
}

func TestWalkMaxDepth(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{
		"top.txt",
		"sub/mid.txt",
		"sub/deep/bottom.txt",
	})

	tests := []struct {
		maxDepth int
		want     []string
	}{
		{1, []string{"top.txt"}},
		{2, []string{"mid.txt", "top.txt"}},
		{0, []string{"bottom.txt", "mid.txt", "top.txt"}},
	}

	for _, tt := range tests {
		names, _ := collect(t, New(Options{MaxDepth: tt.maxDepth}), tmpDir)
		sort.Strings(names)
		if len(names) != len(tt.want) {
			t.Errorf("MaxDepth=%d yielded %v, want %v", tt.maxDepth, names, tt.want)
			continue
		}
		for i := range tt.want {
			if names[i] != tt.want[i] {
				t.Errorf("MaxDepth=%d name %d = %q, want %q", tt.maxDepth, i, names[i], tt.want[i])
			}
		}
	}
}

func TestWalkExcludeDirs(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{
		"keep.txt",
		".git/objects/blob",
		"node_modules/pkg/index.js",
		"src/main.go",
	})

	names, _ := collect(t, New(Options{ExcludeDirs: []string{".git", "node_modules"}}), tmpDir)

	sort.Strings(names)
	want := []string{"keep.txt", "main.go"}
	if len(names) != len(want) {
		t.Fatalf("yielded %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("name %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestWalkSorted(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"c.txt", "a.txt", "b.txt"})

	names, _ := collect(t, New(Options{Sorted: true}), tmpDir)

	want := []string{"a.txt", "b.txt", "c.txt"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("sorted name %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestWalkSymlinksNotFollowedByDefault(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"real/inner.bak"})
	link := filepath.Join(tmpDir, "link")
	if err := os.Symlink(filepath.Join(tmpDir, "real"), link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	names, _ := collect(t, New(Options{}), tmpDir)

	count := 0
	for _, n := range names {
		if n == "inner.bak" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("inner.bak yielded %d times, want 1 (symlinked dir must not be followed)", count)
	}
}

// TestWalkSymlinkCycle verifies traversal terminates and yields each real
// path once even when symlinks form a cycle
func TestWalkSymlinkCycle(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"sub/file.bak"})
	// sub/loop -> tmpDir creates a cycle
	if err := os.Symlink(tmpDir, filepath.Join(tmpDir, "sub", "loop")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	var paths []string
	w := New(Options{FollowSymlinks: true})
	_, err := w.Walk(tmpDir, func(c models.Candidate) error {
		paths = append(paths, c.Path)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	seen := make(map[string]int)
	for _, p := range paths {
		real, err := filepath.EvalSymlinks(p)
		if err != nil {
			t.Fatalf("EvalSymlinks(%s): %v", p, err)
		}
		seen[real]++
	}
	for real, n := range seen {
		if n > 1 {
			t.Errorf("real path %s yielded %d times", real, n)
		}
	}
	if len(seen) != 1 {
		t.Errorf("yielded %d real paths, want 1 (file.bak)", len(seen))
	}
}

func TestWalkSymlinkedFileFollowed(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"target.bak"})
	if err := os.Symlink(filepath.Join(tmpDir, "target.bak"), filepath.Join(tmpDir, "alias.bak")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	names, _ := collect(t, New(Options{FollowSymlinks: true}), tmpDir)
	sort.Strings(names)
	if len(names) != 2 {
		t.Errorf("yielded %v, want alias.bak and target.bak", names)
	}
}

func TestWalkUnreadableDirWarnsAndContinues(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("running as root, permission checks are bypassed")
	}

	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"readable/a.bak", "locked/b.bak"})
	locked := filepath.Join(tmpDir, "locked")
	if err := os.Chmod(locked, 0000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	var warned []string
	w := New(Options{
		Sorted: true,
		Warn:   func(path string, err error) { warned = append(warned, path) },
	})
	names, stats := collect(t, w, tmpDir)

	found := false
	for _, n := range names {
		if n == "a.bak" {
			found = true
		}
	}
	if !found {
		t.Error("a.bak not yielded after sibling directory failed")
	}
	if stats.Warnings == 0 || len(warned) == 0 {
		t.Errorf("expected warnings for unreadable directory, got stats=%+v warned=%v", stats, warned)
	}
}

// TestWalkFreshTraversal verifies each Walk call restarts from scratch
func TestWalkFreshTraversal(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"a.txt", "b.txt"})

	w := New(Options{})
	first, _ := collect(t, w, tmpDir)
	second, _ := collect(t, w, tmpDir)

	if len(first) != 2 || len(second) != 2 {
		t.Errorf("repeat traversals yielded %d then %d files, want 2 and 2", len(first), len(second))
	}
}

func TestWalkCallbackErrorAborts(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"a.txt", "b.txt", "c.txt"})

	sentinel := errors.New("stop")
	w := New(Options{Sorted: true})
	calls := 0
	_, err := w.Walk(tmpDir, func(models.Candidate) error {
		calls++
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Errorf("Walk() error = %v, want sentinel", err)
	}
	if calls != 1 {
		t.Errorf("callback called %d times after error, want 1", calls)
	}
}
