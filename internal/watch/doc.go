// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a command whenever its `watch:` trigger reports a change.
//
// A Supervisor owns the loop: a Poller produces Changes, each change runs the
// command tree with CHANGED set, and a failed run is handed to the `catch:` step with
// ERROR and ERROR_COLOR set. With `cancel` a new change kills the run in flight;
// without it the change waits in a single slot where the latest one wins.
//
// Triggers are an interval, a manifest command or an inline script. In notify mode
// the command or script runs once to list paths, and a Notifier backed by fsnotify
// turns filesystem events below those paths into changes.
package watch
