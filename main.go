// SPDX-License-Identifier: MPL-2.0

// Command r runs the commands of an rfile.
package main

import cmd "github.com/rfilerunner/rfile/cmd/rfile"

func main() {
	cmd.Execute()
}
