// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func startNotifier(t *testing.T, cfg NotifyConfig) <-chan []string {
	t.Helper()
	changes := make(chan []string, 10)
	cfg.OnChange = func(changed []string) { changes <- changed }
	n, err := NewNotifier(cfg)
	if err != nil {
		t.Fatalf("NewNotifier() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})
	return changes
}

func writeAll(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestNotifier_Debounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	changes := startNotifier(t, NotifyConfig{Roots: []string{"."}, BaseDir: dir, Debounce: 150 * time.Millisecond})

	writeAll(t, dir, "a.txt", "b.txt", "c.txt")

	seen := map[string]bool{}
	for len(seen) < 3 {
		batch := recv(t, changes, "debounced change")
		if !slices.IsSorted(batch) {
			t.Errorf("batch %v is not sorted", batch)
		}
		for _, p := range batch {
			seen[p] = true
		}
	}
	for _, want := range []string{"a.txt", "b.txt", "c.txt"} {
		if !seen[want] {
			t.Errorf("%s not reported, saw %v", want, seen)
		}
	}
}

func TestNotifier_Ignores(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	changes := startNotifier(t, NotifyConfig{
		Roots:    []string{"."},
		BaseDir:  dir,
		Ignore:   []string{"**/*.log"},
		Debounce: 50 * time.Millisecond,
	})

	writeAll(t, dir, "debug.log", "x.swp")
	time.Sleep(200 * time.Millisecond)
	writeAll(t, dir, "main.go")

	batch := recv(t, changes, "change for main.go")
	if slices.Contains(batch, "debug.log") || slices.Contains(batch, "x.swp") {
		t.Errorf("ignored files reported: %v", batch)
	}
	if !slices.Contains(batch, "main.go") {
		t.Errorf("main.go missing from %v", batch)
	}
}

func TestNotifier_NewDirectoriesAreWatched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	changes := startNotifier(t, NotifyConfig{Roots: []string{"."}, BaseDir: dir, Debounce: 50 * time.Millisecond})

	sub := filepath.Join(dir, "pkg")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	recv(t, changes, "directory creation")
	time.Sleep(100 * time.Millisecond)
	writeAll(t, sub, "inner.go")

	deadline := time.After(waitTimeout)
	for {
		select {
		case batch := <-changes:
			if slices.Contains(batch, filepath.Join("pkg", "inner.go")) {
				return
			}
		case <-deadline:
			t.Fatal("file in new directory not reported")
		}
	}
}

func TestNotifier_FileRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAll(t, dir, "config.yml", "other.txt")
	changes := startNotifier(t, NotifyConfig{Roots: []string{"config.yml", "missing"}, BaseDir: dir, Debounce: 20 * time.Millisecond})

	writeAll(t, dir, "config.yml")
	if batch := recv(t, changes, "file change"); !slices.Equal(batch, []string{"config.yml"}) {
		t.Errorf("batch = %v", batch)
	}
}

func TestNewNotifier_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := NewNotifier(NotifyConfig{Roots: []string{"nope"}, BaseDir: dir}); !errors.Is(err, ErrNoWatchablePaths) {
		t.Errorf("missing roots: error = %v, want ErrNoWatchablePaths", err)
	}
	if _, err := NewNotifier(NotifyConfig{Roots: []string{"."}, BaseDir: dir, Ignore: []string{"[unclosed"}}); err == nil {
		t.Error("invalid ignore pattern should fail")
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	ignores := DefaultIgnores()
	ignores[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores must return a copy")
	}
	n := &Notifier{ignores: DefaultIgnores()}
	for _, p := range []string{".git/HEAD", "web/node_modules/x/index.js", "a/b.swp", "notes~"} {
		if !n.isIgnored(p) {
			t.Errorf("%s should be ignored by default", p)
		}
	}
	if n.isIgnored("src/main.go") {
		t.Error("src/main.go should not be ignored")
	}
}
