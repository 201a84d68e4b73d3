// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rfilerunner/rfile/pkg/rfile"
)

const pythonPreamble = `import os
import sys
import subprocess
import math
import re
import json
import random


class dotdict(dict):
    __getattr__ = dict.get
    __setattr__ = dict.__setitem__
    __delattr__ = dict.__delitem__


args = dotdict(%s)
`

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// ShellPreamble is prepended to shell bodies.
func ShellPreamble(verbose bool) string {
	if verbose {
		return "set -ex\n"
	}
	return "set -e\n"
}

// PythonPreamble is prepended to python bodies; it binds args.
func PythonPreamble(args rfile.BoundArgs) string {
	return fmt.Sprintf(pythonPreamble, args.PythonLiteral())
}

// preamble returns the text placed before the body for kind.
func (r *Runner) preamble(kind rfile.InterpreterKind, args rfile.BoundArgs) string {
	switch kind {
	case rfile.InterpreterShell, rfile.InterpreterVirtual:
		return ShellPreamble(r.verbose)
	case rfile.InterpreterPython:
		return PythonPreamble(args)
	default:
		return ""
	}
}

// writeScript writes preamble and body to a new temp file and returns its path.
// The caller removes it.
func (r *Runner) writeScript(name, preamble, body string) (string, error) {
	label := unsafeNameChars.ReplaceAllString(name, "_")
	f, err := os.CreateTemp(r.tempDir, "rfile-"+label+"-*")
	if err != nil {
		return "", fmt.Errorf("create temp script: %w", err)
	}
	var sb strings.Builder
	sb.WriteString(preamble)
	sb.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		sb.WriteByte('\n')
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write temp script: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write temp script: %w", err)
	}
	return f.Name(), nil
}
