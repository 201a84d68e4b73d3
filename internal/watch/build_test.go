// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rfilerunner/rfile/internal/engine"
	"github.com/rfilerunner/rfile/internal/output"
	"github.com/rfilerunner/rfile/internal/runtime"
	"github.com/rfilerunner/rfile/pkg/rfile"
)

// scriptedRunner prints "<name> ran", exits with the configured code and reports
// every request on ran.
type scriptedRunner struct {
	mu    sync.Mutex
	codes map[string]runtime.ExitCode
	ran   chan *runtime.Request
}

func (r *scriptedRunner) Run(_ context.Context, req *runtime.Request) *runtime.Result {
	r.mu.Lock()
	code := r.codes[req.Name]
	r.mu.Unlock()
	if req.Output != nil {
		fmt.Fprintf(req.Output, "%s ran\n", req.Name)
	}
	select {
	case r.ran <- req:
	default:
	}
	return runtime.NewExitCodeResult(code)
}

func buildFixture(t *testing.T, runner engine.Runner, pairs ...string) (*engine.Executor, *rfile.Manifest) {
	t.Helper()
	var entries []rfile.Entry
	for i := 0; i < len(pairs); i += 2 {
		entries = append(entries, rfile.Entry{Name: pairs[i], Script: pairs[i+1]})
	}
	m, err := rfile.NewManifest(entries)
	if err != nil {
		t.Fatal(err)
	}
	return engine.New(m, runner, output.NewSink(&bytes.Buffer{})), m
}

func requestFor(t *testing.T, m *rfile.Manifest, name string) engine.Request {
	t.Helper()
	spec, _ := m.Lookup(name)
	args, err := rfile.Bind(spec, nil)
	if err != nil {
		t.Fatal(err)
	}
	return engine.Request{Spec: spec, Args: args}
}

func TestForCommand_Pollers(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{ran: make(chan *runtime.Request, 1)}
	ex, m := buildFixture(t, runner,
		"tick", "# watch: 1.5\necho tick\n",
		"probe", "git rev-parse HEAD",
		"cmd", "# watch: probe\necho cmd\n",
		"script", "# watch: ls *.go\necho script\n",
		"plain", "echo plain",
	)

	tests := []struct {
		name  string
		mode  Mode
		check func(Poller) bool
	}{
		{"tick", ModePoll, func(p Poller) bool {
			ip, ok := p.(*IntervalPoller)
			return ok && ip.Interval == 1500*time.Millisecond
		}},
		{"tick", ModeNotify, func(p Poller) bool { _, ok := p.(*IntervalPoller); return ok }},
		{"cmd", ModePoll, func(p Poller) bool { _, ok := p.(*ProbePoller); return ok }},
		{"script", ModePoll, func(p Poller) bool { _, ok := p.(*ProbePoller); return ok }},
		{"script", ModeNotify, func(p Poller) bool { _, ok := p.(*NotifyPoller); return ok }},
	}
	for _, tt := range tests {
		sup, err := ForCommand(ex, runner, requestFor(t, m, tt.name), Options{Mode: tt.mode})
		if err != nil {
			t.Fatalf("ForCommand(%s) error = %v", tt.name, err)
		}
		if !tt.check(sup.cfg.Poller) {
			t.Errorf("ForCommand(%s, %s) poller = %T", tt.name, tt.mode, sup.cfg.Poller)
		}
	}

	if _, err := ForCommand(ex, runner, requestFor(t, m, "plain"), Options{}); !errors.Is(err, ErrNotWatched) {
		t.Errorf("unwatched command: error = %v, want ErrNotWatched", err)
	}
}

func TestForCommand_ScriptTriggerAndInlineCatch(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{
		codes: map[string]runtime.ExitCode{"serve": 1},
		ran:   make(chan *runtime.Request, 100),
	}
	ex, m := buildFixture(t, runner, "serve", "# watch: cat version\n# catch: echo \"$ERROR\"\nexit 1\n")

	sup, err := ForCommand(ex, runner, requestFor(t, m, "serve"), Options{PollInterval: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = sup.Run(ctx) }()

	var order []string
	for {
		req := recv(t, runner.ran, "runner request")
		order = append(order, req.Name)
		if req.Name != "serve-catch" {
			continue
		}
		if req.Body != "echo \"$ERROR\"" {
			t.Errorf("catch body = %q", req.Body)
		}
		if req.Overlay[runtime.EnvError] != "serve ran\n" {
			t.Errorf("ERROR = %q, want the failed run's output", req.Overlay[runtime.EnvError])
		}
		if req.Overlay[runtime.EnvChanged] != "serve-watch ran" {
			t.Errorf("CHANGED = %q, want the probe's first line", req.Overlay[runtime.EnvChanged])
		}
		break
	}
	want := []string{"serve-watch", "serve", "serve-catch"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("run order = %v, want %v", order, want)
	}
}

func TestNewCatch_NamedCommand(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{ran: make(chan *runtime.Request, 10)}
	ex, m := buildFixture(t, runner,
		"serve", "# watch: 1\n# catch: notify\nexit 1\n",
		"notify", "echo \"$ERROR\"",
	)
	spec, _ := m.Lookup("serve")
	catch := NewCatch(ex, spec, map[string]string{"BASE": "1"})
	if err := catch(context.Background(), map[string]string{runtime.EnvError: "boom"}); err != nil {
		t.Fatal(err)
	}
	req := recv(t, runner.ran, "catch command")
	if req.Name != "notify" || req.Overlay["BASE"] != "1" || req.Overlay[runtime.EnvError] != "boom" {
		t.Errorf("catch request = %s %v", req.Name, req.Overlay)
	}
}
