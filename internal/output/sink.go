// SPDX-License-Identifier: MPL-2.0

package output

import (
	"io"
	"sync"
)

// Sink is the shared, mutex-guarded destination for all child output.
type Sink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSink returns a Sink writing to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Write writes p in one locked call.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// writeFramed writes prefix, line and a trailing newline as one locked write.
func (s *Sink) writeFramed(prefix string, line []byte) error {
	buf := make([]byte, 0, len(prefix)+len(line)+1)
	buf = append(buf, prefix...)
	buf = append(buf, line...)
	buf = append(buf, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(buf)
	return err
}
