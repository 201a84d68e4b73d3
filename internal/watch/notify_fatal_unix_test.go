// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"fmt"
	"syscall"
	"testing"
)

func TestIsFatalNotifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{syscall.ENOSPC, true},
		{syscall.EMFILE, true},
		{fmt.Errorf("inotify: %w", syscall.ENFILE), true},
		{syscall.EACCES, false},
		{fmt.Errorf("transient"), false},
	}
	for _, tt := range tests {
		if got := isFatalNotifyError(tt.err); got != tt.want {
			t.Errorf("isFatalNotifyError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
