// SPDX-License-Identifier: MPL-2.0

// Package config loads the rfile configuration with Viper, using CUE as the file
// format.
//
// The file is config.cue in the platform configuration directory (see ConfigDir) or
// the path given with --config. It is validated against the embedded
// config_schema.cue before being merged over the defaults. RFILE_* environment
// variables override both, e.g. RFILE_WATCH_MODE=notify.
package config
