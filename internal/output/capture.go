// SPDX-License-Identifier: MPL-2.0

package output

import (
	"bytes"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

// Capture records raw output for a catch handler.
type Capture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write appends p.
func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// Lines returns a writer that adds only complete lines to the capture. Each process
// of a parallel set gets its own, so siblings cannot split each other's lines.
func (c *Capture) Lines() *LineWriter {
	return NewLineWriter(NewSink(c), "")
}

// Raw returns everything written so far, escape sequences included.
func (c *Capture) Raw() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Stripped returns the output with ANSI escape sequences removed.
func (c *Capture) Stripped() string {
	return Strip(c.Raw())
}

// Strip removes ANSI escape sequences from s.
func Strip(s string) string {
	return ansi.Strip(s)
}
