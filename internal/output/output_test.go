// SPDX-License-Identifier: MPL-2.0

package output

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestLineWriter_FramesCompleteLines(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	w := NewLineWriter(NewSink(&out), "a | ")

	for _, chunk := range []string{"hel", "lo\nwor", "ld\r\n", "tail"} {
		if _, err := w.Write([]byte(chunk)); err != nil {
			t.Fatal(err)
		}
	}
	if got := out.String(); got != "a | hello\na | world\n" {
		t.Errorf("before Flush = %q", got)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "a | hello\na | world\na | tail\n" {
		t.Errorf("after Flush = %q", got)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if strings.Count(out.String(), "tail") != 1 {
		t.Error("second Flush must not repeat the tail")
	}
}

func TestSink_ConcurrentLinesNeverInterleave(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sink := NewSink(&out)
	lanes := Lanes([]string{"a", "bb", "ccc"})

	var wg sync.WaitGroup
	for _, lane := range lanes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := sink.WriterFor(lane)
			for i := range 200 {
				line := fmt.Sprintf("%s-line-%03d\n", lane.Name, i)
				// Write in two pieces to exercise partial buffering.
				_, _ = w.Write([]byte(line[:3]))
				_, _ = w.Write([]byte(line[3:]))
			}
			_ = w.Flush()
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 600 {
		t.Fatalf("got %d lines, want 600", len(lines))
	}
	for _, l := range lines {
		prefix, body, ok := strings.Cut(l, " | ")
		if !ok {
			t.Fatalf("line without prefix: %q", l)
		}
		name := strings.TrimSpace(prefix)
		if len(prefix) != 3 {
			t.Errorf("prefix %q not padded to width 3", prefix)
		}
		if !strings.HasPrefix(body, name+"-line-") {
			t.Errorf("line %q belongs to another lane", l)
		}
	}
}

func TestSink_ZeroLaneIsUnprefixed(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	w := NewSink(&out).WriterFor(Lane{})
	_, _ = w.Write([]byte("goodbye\n"))
	_, _ = w.Write([]byte("partial"))
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "goodbye\npartial" {
		t.Errorf("output = %q", out.String())
	}
}

func TestLanes(t *testing.T) {
	t.Parallel()

	lanes := Lanes([]string{"a", "build"})
	if lanes[0].Width != 5 || lanes[1].Index != 1 {
		t.Errorf("Lanes() = %+v", lanes)
	}
	if Lanes(nil) == nil || len(Lanes(nil)) != 0 {
		t.Error("Lanes(nil) should be empty")
	}
	if (Lane{}).Prefix() != "" {
		t.Error("zero lane must have no prefix")
	}
}

func TestCapture(t *testing.T) {
	t.Parallel()

	var c Capture
	_, _ = c.Write([]byte("\x1b[31mboom\x1b[0m\n"))
	_, _ = c.Write([]byte("plain\n"))
	if c.Raw() != "\x1b[31mboom\x1b[0m\nplain\n" {
		t.Errorf("Raw() = %q", c.Raw())
	}
	if c.Stripped() != "boom\nplain\n" {
		t.Errorf("Stripped() = %q", c.Stripped())
	}
}
