// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown explanations
// for common failures, rendered with glamour.
package issue
