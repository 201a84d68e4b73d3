// SPDX-License-Identifier: MPL-2.0

package output

import (
	"bytes"
	"sync"
)

// LineWriter buffers partial lines and forwards each complete line to its Sink with a
// fixed prefix. It is safe for concurrent use; a child's stdout and stderr may share one.
type LineWriter struct {
	sink   *Sink
	prefix string

	mu  sync.Mutex
	buf []byte
}

// NewLineWriter returns a LineWriter that frames lines with prefix.
func NewLineWriter(sink *Sink, prefix string) *LineWriter {
	return &LineWriter{sink: sink, prefix: prefix}
}

// Write emits every complete line in p and keeps the trailing partial line.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimRight(w.buf[:i], "\r")
		if err := w.sink.writeFramed(w.prefix, line); err != nil {
			return len(p), err
		}
		w.buf = w.buf[i+1:]
	}
	if len(w.buf) == 0 {
		w.buf = nil
	}
	return len(p), nil
}

// Flush emits a pending partial line, terminated with a newline.
func (w *LineWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) == 0 {
		return nil
	}
	line := bytes.TrimRight(w.buf, "\r")
	w.buf = nil
	return w.sink.writeFramed(w.prefix, line)
}
