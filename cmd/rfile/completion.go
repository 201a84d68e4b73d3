// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/rfilerunner/rfile/pkg/rfile"
)

const fishCompletion = `function __r_completions
    set prev_arg (commandline -pco)
    r --completions --prev "$prev_arg"
end

complete -c r -k -a '(__r_completions)' --no-files
`

// renderCompletions answers the completion protocol. With prev set it prints one
// `candidate<TAB>description` line per candidate: the commands after `r`, the
// command's `--arg` names after `r <command>`. Without prev it prints the fish
// script that calls back into this protocol.
func renderCompletions(w io.Writer, m *rfile.Manifest, prev string, prevSet bool) {
	if !prevSet {
		fmt.Fprint(w, fishCompletion)
		return
	}

	words := strings.Fields(prev)
	switch len(words) {
	case 1:
		for _, spec := range m.Commands() {
			fmt.Fprintf(w, "%s\t%s\n", spec.Name, spec.Summary())
		}
	case 2:
		spec, ok := m.Lookup(words[1])
		if !ok {
			return
		}
		for _, a := range spec.Args {
			fmt.Fprintf(w, "--%s\t%s\n", a.Name, a.Description)
		}
	}
}
