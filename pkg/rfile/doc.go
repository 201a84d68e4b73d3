// SPDX-License-Identifier: MPL-2.0

// Package rfile provides the data model and loading pipeline for rfile manifests.
//
// An rfile is a YAML mapping from command name to script text. Each script may start
// with a header of comment directives (shell:, help:, arg:, dep:, parallel, watch:,
// cancel, catch:) that Parse turns into a CommandSpec. NewManifest validates a whole
// table of commands (unique names, no dependency cycles) and classifies watch
// triggers once every name is known. Manifest.Resolve maps a user token to a command
// by exact name or unique prefix, and Bind turns supplied CLI values into BoundArgs.
//
// A Manifest is immutable after construction and safe to share between goroutines.
package rfile
