// SPDX-License-Identifier: MPL-2.0

// Package runtime runs one command body as a child process, or in-process for the
// virtual interpreter.
//
// A Runner dispatches on the interpreter kind of the request:
//   - shell: the body is written to a temp script with a `set -e` preamble and run as
//     `<shell> <script> <positional args...>`
//   - python: the preamble imports a fixed set of modules and defines `args`
//   - other: the body runs as `<interpreter> <script> <positional args...>`
//   - virtual: the body is parsed and run by the embedded mvdan/sh interpreter
//
// Children run in their own process group so that cancelling the request context
// kills the whole subtree. Stdout and stderr share one writer, which keeps their
// relative order and lets callers frame lines without races.
//
// The environment of a child is built by EnvBuilder: host environment, then bound
// arguments (unset ones removed), then the request overlay, which wins.
package runtime
