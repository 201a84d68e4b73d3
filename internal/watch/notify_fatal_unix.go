// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// isFatalNotifyError reports inotify resource exhaustion: the watch limit (ENOSPC)
// or the process/system descriptor limits (EMFILE, ENFILE).
func isFatalNotifyError(err error) bool {
	return errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE)
}
