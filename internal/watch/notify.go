// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last filesystem event before a
// notification fires.
const DefaultDebounce = 500 * time.Millisecond

// ErrNoWatchablePaths is returned when none of the notifier roots exist.
var ErrNoWatchablePaths = errors.New("no watchable paths")

// defaultIgnores are never reported: VCS metadata, dependency caches, editor swap
// files and OS metadata.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

type (
	// NotifyConfig configures a Notifier.
	NotifyConfig struct {
		// Roots are the files and directories to watch, relative to BaseDir unless
		// absolute. Directories are watched recursively.
		Roots []string
		// BaseDir anchors Roots and the paths reported to OnChange. Empty means the
		// working directory.
		BaseDir string
		// Ignore is merged with the default ignore patterns (doublestar syntax).
		Ignore []string
		// Debounce falls back to DefaultDebounce when not positive.
		Debounce time.Duration
		// OnChange receives the sorted set of changed paths once the debounce window
		// closes. It must not block.
		OnChange func(changed []string)
		Logger   *log.Logger
	}

	// Notifier reports debounced filesystem changes below a set of roots.
	Notifier struct {
		cfg      NotifyConfig
		fsw      *fsnotify.Watcher
		ignores  []string
		debounce time.Duration
		baseDir  string
		logger   *log.Logger
	}
)

// NewNotifier validates the ignore patterns and registers every root. Roots that do
// not exist are skipped with a warning; if none is left ErrNoWatchablePaths is
// returned.
func NewNotifier(cfg NotifyConfig) (*Notifier, error) {
	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		baseDir = wd
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	for _, pat := range cfg.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q", pat)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	n := &Notifier{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		debounce: debounce,
		baseDir:  absBase,
		logger:   logger,
	}
	if err := n.addRoots(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("closing watcher after init failure", "err", closeErr)
		}
		return nil, err
	}
	return n, nil
}

// Run delivers notifications until ctx is cancelled. It returns nil on cancellation
// and an error when the underlying watcher breaks.
func (n *Notifier) Run(ctx context.Context) error {
	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		mu.Lock()
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()
		if len(changed) > 0 && n.cfg.OnChange != nil {
			n.cfg.OnChange(changed)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := n.fsw.Close(); err != nil {
			n.logger.Warn("closing fsnotify watcher", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-n.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			rel := n.relative(evt.Name)
			if n.isIgnored(rel) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				n.maybeAddDir(evt.Name)
			}
			n.logger.Debug("filesystem event", "path", rel, "op", evt.Op.String())

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(n.debounce, fire)
			} else {
				timer.Reset(n.debounce)
			}
			mu.Unlock()

		case err, ok := <-n.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalNotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			n.logger.Warn("fsnotify error", "err", err)
		}
	}
}

func (n *Notifier) addRoots() error {
	added := 0
	for _, root := range n.cfg.Roots {
		path := root
		if !filepath.IsAbs(path) {
			path = filepath.Join(n.baseDir, path)
		}
		info, err := os.Stat(path)
		if err != nil {
			n.logger.Warn("skipping watch path", "path", root, "err", err)
			continue
		}
		if !info.IsDir() {
			if err := n.fsw.Add(path); err != nil {
				return fmt.Errorf("watch: add file %q: %w", path, err)
			}
			added++
			continue
		}
		count, err := n.addTree(path)
		if err != nil {
			return err
		}
		added += count
	}
	if added == 0 {
		return ErrNoWatchablePaths
	}
	return nil
}

// addTree registers root and every non-ignored directory below it.
func (n *Notifier) addTree(root string) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			n.logger.Warn("skipping inaccessible path", "path", path, "err", walkErr)
			return nil //nolint:nilerr // unreadable directories are skipped
		}
		if !d.IsDir() {
			return nil
		}
		rel := n.relative(path)
		if n.isIgnored(rel) || n.isIgnored(rel+"/") {
			return filepath.SkipDir
		}
		if err := n.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("watch: walk %q: %w", root, err)
	}
	return count, nil
}

// maybeAddDir extends a recursive watch to a directory created after startup.
func (n *Notifier) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	rel := n.relative(path)
	if n.isIgnored(rel) || n.isIgnored(rel+"/") {
		return
	}
	if err := n.fsw.Add(path); err != nil {
		n.logger.Warn("watching new directory", "path", path, "err", err)
	}
}

func (n *Notifier) relative(path string) string {
	rel, err := filepath.Rel(n.baseDir, path)
	if err != nil {
		return path
	}
	return rel
}

func (n *Notifier) isIgnored(rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range n.ignores {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}
