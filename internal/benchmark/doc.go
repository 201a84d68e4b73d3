// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation. They cover the
// hot paths of a run:
//   - manifest decoding and directive parsing
//   - command resolution
//   - environment building and the virtual interpreter
//   - dependency execution through the output multiplexer
//
// To generate a profile, run:
//
//	go test -run '^$' -bench . -cpuprofile default.pgo ./internal/benchmark
package benchmark
