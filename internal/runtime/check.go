// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/rfilerunner/rfile/pkg/rfile"
)

// SyntaxCheck parses a body the way its interpreter would without running it. Only
// the default shell, bash, sh, dash, ksh and the virtual interpreter are checked;
// other interpreters always yield nil.
func SyntaxCheck(name, body string, interp rfile.Interpreter) error {
	variant, ok := syntaxVariant(interp)
	if !ok {
		return nil
	}
	_, err := syntax.NewParser(syntax.Variant(variant)).Parse(strings.NewReader(body), name)
	return err
}

func syntaxVariant(interp rfile.Interpreter) (syntax.LangVariant, bool) {
	switch interp.Kind {
	case rfile.InterpreterVirtual:
		return syntax.LangBash, true
	case rfile.InterpreterShell:
		if interp.IsDefault() {
			return syntax.LangBash, true
		}
		switch strings.TrimSuffix(filepath.Base(interp.Path), ".exe") {
		case "bash":
			return syntax.LangBash, true
		case "sh", "dash":
			return syntax.LangPOSIX, true
		case "ksh":
			return syntax.LangMirBSDKorn, true
		}
	}
	return 0, false
}
