// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// MinInterval is the shortest interval an IntervalPoller waits between changes.
const MinInterval = 100 * time.Millisecond

type (
	// Change is one trigger firing. ID becomes CHANGED in the run's environment.
	Change struct {
		ID string
	}

	// Poller blocks until the next change or until ctx is done. An error other than
	// the context's ends supervision.
	Poller interface {
		Poll(ctx context.Context) (Change, error)
	}

	// ProbeFunc runs a trigger command or script and returns its output.
	ProbeFunc func(ctx context.Context) (string, error)

	// IntervalPoller fires every Interval.
	IntervalPoller struct {
		Interval time.Duration
		Clock    Clock
	}

	// ProbePoller runs Probe on every poll. Completion is the change; the first
	// non-empty output line is its ID. Probe starts are spaced at least Pace apart
	// and a failing probe is retried after Pace. Pace is never below MinInterval.
	ProbePoller struct {
		Probe  ProbeFunc
		Pace   time.Duration
		Clock  Clock
		Logger *log.Logger

		lastStart time.Time
	}

	// NotifyPoller runs Probe once to list paths, one per line, then reports
	// filesystem changes below them. The change ID is the newline-joined sorted list
	// of changed paths.
	NotifyPoller struct {
		Probe    ProbeFunc
		BaseDir  string
		Ignore   []string
		Debounce time.Duration
		Logger   *log.Logger

		changes chan []string
		failed  chan error
	}
)

// Poll waits one interval.
func (p *IntervalPoller) Poll(ctx context.Context) (Change, error) {
	clock := p.Clock
	if clock == nil {
		clock = RealClock{}
	}
	select {
	case <-ctx.Done():
		return Change{}, ctx.Err()
	case <-clock.After(max(p.Interval, MinInterval)):
		return Change{}, nil
	}
}

// Poll runs the probe until it succeeds.
func (p *ProbePoller) Poll(ctx context.Context) (Change, error) {
	clock := p.Clock
	if clock == nil {
		clock = RealClock{}
	}
	logger := p.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	pace := max(p.Pace, MinInterval)
	for {
		if !p.lastStart.IsZero() {
			if wait := pace - clock.Now().Sub(p.lastStart); wait > 0 {
				select {
				case <-ctx.Done():
					return Change{}, ctx.Err()
				case <-clock.After(wait):
				}
			}
		}
		p.lastStart = clock.Now()

		out, err := p.Probe(ctx)
		if ctx.Err() != nil {
			return Change{}, ctx.Err()
		}
		if err != nil {
			logger.Warn("watch trigger failed, retrying", "err", err, "retry", pace)
			continue
		}
		return Change{ID: FirstLine(out)}, nil
	}
}

// Poll starts the notifier on first use and returns the next batch of changes.
func (p *NotifyPoller) Poll(ctx context.Context) (Change, error) {
	if p.changes == nil {
		if err := p.start(ctx); err != nil {
			return Change{}, err
		}
	}
	select {
	case <-ctx.Done():
		return Change{}, ctx.Err()
	case err := <-p.failed:
		return Change{}, err
	case changed := <-p.changes:
		return Change{ID: strings.Join(changed, "\n")}, nil
	}
}

func (p *NotifyPoller) start(ctx context.Context) error {
	out, err := p.Probe(ctx)
	if err != nil {
		return err
	}
	roots := Lines(out)
	if len(roots) == 0 {
		return ErrNoWatchablePaths
	}

	changes := make(chan []string, 1)
	n, err := NewNotifier(NotifyConfig{
		Roots:    roots,
		BaseDir:  p.BaseDir,
		Ignore:   p.Ignore,
		Debounce: p.Debounce,
		Logger:   p.Logger,
		OnChange: func(changed []string) { offer(changes, changed) },
	})
	if err != nil {
		return err
	}

	p.changes = changes
	p.failed = make(chan error, 1)
	go func() {
		if err := n.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.failed <- err
		}
	}()
	return nil
}

// offer puts v in the one-slot channel ch, replacing any value not yet taken. ch
// must have a single sender.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}

// FirstLine returns the first non-empty line of s, trimmed.
func FirstLine(s string) string {
	for line := range strings.Lines(s) {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// Lines returns the non-empty trimmed lines of s.
func Lines(s string) []string {
	var out []string
	for line := range strings.Lines(s) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
