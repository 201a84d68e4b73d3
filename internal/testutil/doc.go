// SPDX-License-Identifier: MPL-2.0

// Package testutil holds helpers shared by tests: a fake clock for the watch
// pollers, filesystem helpers and config-home isolation.
package testutil
