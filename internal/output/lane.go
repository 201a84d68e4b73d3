// SPDX-License-Identifier: MPL-2.0

package output

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// laneColors rotate across branches of a parallel set: blue, purple, green, yellow,
// light red, light green.
var laneColors = []lipgloss.Color{"4", "5", "2", "11", "9", "10"}

// Lane identifies one branch of a parallel set. The zero Lane means the process runs
// alone and its output is not prefixed.
type Lane struct {
	Name string
	// Index selects the prefix colour.
	Index int
	// Width is the longest sibling name; shorter names are padded to it.
	Width int
}

// IsZero reports whether the lane is unprefixed.
func (l Lane) IsZero() bool { return l.Name == "" }

// Style returns the lipgloss style of the lane's name.
func (l Lane) Style() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(laneColors[l.Index%len(laneColors)])
}

// Prefix returns `<name><padding> | `, with the name coloured.
func (l Lane) Prefix() string {
	if l.IsZero() {
		return ""
	}
	pad := max(l.Width-len(l.Name), 0)
	return l.Style().Render(l.Name) + strings.Repeat(" ", pad) + " | "
}

// Writer is where one process writes its combined stdout and stderr.
type Writer interface {
	io.Writer
	// Flush emits any buffered partial line.
	Flush() error
}

type passthrough struct{ sink *Sink }

func (p passthrough) Write(b []byte) (int, error) { return p.sink.Write(b) }
func (passthrough) Flush() error                  { return nil }

// WriterFor returns the writer a process in lane should use: unprefixed pass-through
// for the zero lane, a prefixing LineWriter otherwise.
func (s *Sink) WriterFor(lane Lane) Writer {
	if lane.IsZero() {
		return passthrough{sink: s}
	}
	return NewLineWriter(s, lane.Prefix())
}

// Lanes builds one lane per name, padded to the longest.
func Lanes(names []string) []Lane {
	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}
	lanes := make([]Lane, len(names))
	for i, n := range names {
		lanes[i] = Lane{Name: n, Index: i, Width: width}
	}
	return lanes
}
