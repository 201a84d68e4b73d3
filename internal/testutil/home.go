// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

// SetConfigHome points the user configuration directory at dir for the rest of the
// test: XDG_CONFIG_HOME and HOME on Unix, APPDATA and USERPROFILE on Windows.
// Tests calling it cannot run in parallel.
func SetConfigHome(t *testing.T, dir string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
		t.Setenv("USERPROFILE", dir)
		return
	}
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
}
