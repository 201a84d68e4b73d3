// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/rfilerunner/rfile/pkg/rfile"
)

// Overlay variables set by the engine and the watch supervisor.
const (
	EnvChanged    = "CHANGED"
	EnvError      = "ERROR"
	EnvErrorColor = "ERROR_COLOR"
	EnvRunID      = "RFILE_RUN_ID"
)

type (
	// EnvBuilder builds a child environment. Precedence, lowest first:
	//
	//  1. Host environment
	//  2. Bound arguments (unset arguments remove the variable)
	//  3. Overlay (CHANGED, ERROR, ERROR_COLOR, RFILE_RUN_ID)
	EnvBuilder struct {
		// Environ returns the host environment as "KEY=VALUE" strings.
		// When nil, os.Environ() is used.
		Environ func() []string
	}
)

// NewEnvBuilder creates an EnvBuilder reading the process environment.
func NewEnvBuilder() *EnvBuilder {
	return &EnvBuilder{}
}

// Build returns the environment map for a child.
func (b *EnvBuilder) Build(args rfile.BoundArgs, overlay map[string]string) map[string]string {
	environ := os.Environ
	if b.Environ != nil {
		environ = b.Environ
	}

	env := make(map[string]string)
	for _, kv := range environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}

	set, unset := args.Env()
	for _, name := range unset {
		delete(env, name)
	}
	maps.Copy(env, set)
	maps.Copy(env, overlay)
	return env
}

// EnvToSlice converts an environment map to sorted "KEY=VALUE" strings.
func EnvToSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		out = append(out, k+"="+env[k])
	}
	return out
}
