// SPDX-License-Identifier: MPL-2.0

// Package engine executes a command together with its `dep:` graph.
//
// Sequential dependencies run in declaration order and stop at the first failure.
// Parallel dependencies all run to completion; the first failure is recorded and the
// dependent body is skipped (fail-together). There is no memoization: a command
// reached by two paths runs twice. Bound CLI arguments apply to the requested command
// only; the environment overlay applies to the whole tree.
package engine
