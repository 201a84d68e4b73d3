// SPDX-License-Identifier: MPL-2.0

// Package output multiplexes child process output onto one terminal.
//
// Every process writes through a Sink, which serializes writes with a mutex. Processes
// running in a parallel set write through a LineWriter that frames each complete line
// as `<name> | <line>` and hands it to the Sink in a single call, so lines from
// concurrent branches never interleave mid-line. Capture records the raw combined
// output of one run for catch handlers.
package output
