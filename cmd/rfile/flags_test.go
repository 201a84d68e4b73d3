// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"maps"
	"slices"
	"testing"

	"github.com/rfilerunner/rfile/pkg/rfile"
)

func TestParseGlobalFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantRest []string
		check    func(t *testing.T, g globalFlags)
	}{
		{
			name:     "stops at the command",
			args:     []string{"-v", "-r", "x.yml", "build", "--out", "dir", "-h"},
			wantRest: []string{"build", "--out", "dir", "-h"},
			check: func(t *testing.T, g globalFlags) {
				if !g.verbose || g.rfile != "x.yml" || g.help {
					t.Errorf("flags = %+v", g)
				}
			},
		},
		{
			name: "completions",
			args: []string{"--completions", "--prev", "r build"},
			check: func(t *testing.T, g globalFlags) {
				if !g.completions || g.prev != "r build" || !g.prevSet {
					t.Errorf("flags = %+v", g)
				}
			},
		},
		{
			name: "empty prev is still set",
			args: []string{"--completions", "--prev="},
			check: func(t *testing.T, g globalFlags) {
				if !g.prevSet {
					t.Error("--prev= should count as given")
				}
			},
		},
		{
			name: "informational",
			args: []string{"--check", "--show-config", "--version", "--config", "c.cue"},
			check: func(t *testing.T, g globalFlags) {
				if !g.check || !g.showConfig || !g.version || g.configPath != "c.cue" {
					t.Errorf("flags = %+v", g)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g, rest, err := parseGlobalFlags(tt.args)
			if err != nil {
				t.Fatalf("parseGlobalFlags() error = %v", err)
			}
			if !slices.Equal(rest, tt.wantRest) {
				t.Errorf("rest = %q, want %q", rest, tt.wantRest)
			}
			tt.check(t, g)
		})
	}
}

func TestParseGlobalFlags_Unknown(t *testing.T) {
	t.Parallel()

	_, _, err := parseGlobalFlags([]string{"--name", "x"})
	if !errors.Is(err, ErrUsage) {
		t.Errorf("error = %v, want ErrUsage", err)
	}
}

func TestParseCommandFlags(t *testing.T) {
	t.Parallel()

	spec, err := rfile.Parse("build", "# arg: out-dir (target)\n# arg: tag\necho\n")
	if err != nil {
		t.Fatal(err)
	}

	cf, err := parseCommandFlags(spec, []string{"--out-dir", "dist", "--tag=", "-v"})
	if err != nil {
		t.Fatalf("parseCommandFlags() error = %v", err)
	}
	if !maps.Equal(cf.values, map[string]string{"out-dir": "dist", "tag": ""}) {
		t.Errorf("values = %v", cf.values)
	}
	if !cf.verbose || cf.help {
		t.Errorf("verbose = %v, help = %v", cf.verbose, cf.help)
	}

	cf, err = parseCommandFlags(spec, nil)
	if err != nil || len(cf.values) != 0 {
		t.Errorf("no flags: values = %v, err = %v", cf.values, err)
	}

	for _, args := range [][]string{{"--nope", "1"}, {"stray"}, {"--tag"}} {
		if _, err := parseCommandFlags(spec, args); !errors.Is(err, ErrUsage) {
			t.Errorf("parseCommandFlags(%q) error = %v, want ErrUsage", args, err)
		}
	}
}

func TestParseCommandFlags_ArgShadowsBuiltin(t *testing.T) {
	t.Parallel()

	spec, err := rfile.Parse("x", "# arg: verbose\necho\n")
	if err != nil {
		t.Fatal(err)
	}
	cf, err := parseCommandFlags(spec, []string{"--verbose", "loud"})
	if err != nil {
		t.Fatal(err)
	}
	if cf.values["verbose"] != "loud" || cf.verbose {
		t.Errorf("flags = %+v", cf)
	}
}
