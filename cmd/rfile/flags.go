// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/rfilerunner/rfile/pkg/rfile"
)

type (
	// globalFlags are the options read before the command name.
	globalFlags struct {
		rfile       string
		configPath  string
		prev        string
		prevSet     bool
		verbose     bool
		help        bool
		check       bool
		completions bool
		showConfig  bool
		version     bool
	}

	// commandFlags are the options read after the command name: the command's
	// declared arguments plus -h and -v.
	commandFlags struct {
		// values holds only the arguments given on the command line.
		values  map[string]string
		help    bool
		verbose bool
	}
)

// parseGlobalFlags reads global flags up to the first positional word, which is the
// command token. The token and everything after it are returned unparsed.
func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var g globalFlags
	fs := pflag.NewFlagSet("r", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)

	fs.StringVarP(&g.rfile, "rfile", "r", "", "the YAML rfile to use (rfile in the current directory or a parent by default)")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "verbose output for debugging")
	fs.BoolVarP(&g.help, "help", "h", false, "show help")
	fs.StringVar(&g.configPath, "config", "", "config file (default is the rfile config directory's config.cue)")
	fs.BoolVar(&g.check, "check", false, "validate the rfile and exit")
	fs.BoolVar(&g.completions, "completions", false, "print shell completions")
	fs.StringVar(&g.prev, "prev", "", "previous words of the command line, for --completions")
	fs.BoolVar(&g.showConfig, "show-config", false, "print the effective configuration")
	fs.BoolVar(&g.version, "version", false, "print the version")

	if err := fs.Parse(args); err != nil {
		return g, nil, &UsageError{Err: err}
	}
	g.prevSet = fs.Changed("prev")
	return g, fs.Args(), nil
}

// parseCommandFlags reads `--<arg> VALUE` pairs for spec. Arguments not declared by
// spec and stray positional words are usage errors.
func parseCommandFlags(spec *rfile.CommandSpec, args []string) (commandFlags, error) {
	cf := commandFlags{values: make(map[string]string)}
	fs := pflag.NewFlagSet(spec.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	values := make(map[string]*string, len(spec.Args))
	for _, a := range spec.Args {
		values[a.Name] = fs.String(a.Name, "", a.Description)
	}
	if _, ok := values["help"]; !ok {
		fs.BoolVarP(&cf.help, "help", "h", false, "show this help message and exit")
	}
	if _, ok := values["verbose"]; !ok {
		fs.BoolVarP(&cf.verbose, "verbose", "v", false, "verbose output for debugging")
	}

	if err := fs.Parse(args); err != nil {
		return cf, &UsageError{Err: fmt.Errorf("%s: %w", spec.Name, err)}
	}
	if fs.NArg() > 0 {
		return cf, &UsageError{Err: fmt.Errorf("%s: unexpected argument %q", spec.Name, fs.Arg(0))}
	}
	fs.Visit(func(f *pflag.Flag) {
		if v, ok := values[f.Name]; ok {
			cf.values[f.Name] = *v
		}
	})
	return cf, nil
}
