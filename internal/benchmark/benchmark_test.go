// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/rfilerunner/rfile/internal/engine"
	"github.com/rfilerunner/rfile/internal/output"
	"github.com/rfilerunner/rfile/internal/runtime"
	"github.com/rfilerunner/rfile/pkg/rfile"
)

// sampleRfile is a representative manifest using every directive.
const sampleRfile = `
hello: |
  # help: say hello
  # arg: name (who to greet)
  echo "hello $NAME"

build: |
  # Compile everything
  # dep: hello
  # arg: out-dir (where binaries go)
  # arg: tag
  echo building into "$OUT_DIR"

check: |
  # parallel
  # dep: lint
  # dep: test
  # dep: vet

lint: echo lint
test: echo test
vet: echo vet

serve: |
  # watch: 2
  # cancel
  # catch: echo "failed: $ERROR"
  echo serving

py: |
  # shell: python3
  # arg: count
  print(args.count)
`

func complexRfile() string {
	var sb strings.Builder
	for i := range 50 {
		fmt.Fprintf(&sb, "cmd%02d: |\n  # help: command %d\n  # arg: value%d (a value)\n", i, i, i)
		if i > 0 {
			fmt.Fprintf(&sb, "  # dep: cmd%02d\n", i-1)
		}
		sb.WriteString("  echo \"$VALUE\"\n")
	}
	return sb.String()
}

func mustManifest(b *testing.B, data string) *rfile.Manifest {
	b.Helper()
	entries, err := rfile.DecodeEntries([]byte(data))
	if err != nil {
		b.Fatalf("DecodeEntries failed: %v", err)
	}
	m, err := rfile.NewManifest(entries)
	if err != nil {
		b.Fatalf("NewManifest failed: %v", err)
	}
	return m
}

// BenchmarkManifestLoading benchmarks YAML decoding plus directive parsing and cycle
// detection.
func BenchmarkManifestLoading(b *testing.B) {
	data := []byte(sampleRfile)

	b.ResetTimer()
	for b.Loop() {
		entries, err := rfile.DecodeEntries(data)
		if err != nil {
			b.Fatalf("DecodeEntries failed: %v", err)
		}
		if _, err := rfile.NewManifest(entries); err != nil {
			b.Fatalf("NewManifest failed: %v", err)
		}
	}
}

// BenchmarkManifestLoadingComplex benchmarks a long dependency chain.
func BenchmarkManifestLoadingComplex(b *testing.B) {
	data := []byte(complexRfile())

	b.ResetTimer()
	for b.Loop() {
		entries, err := rfile.DecodeEntries(data)
		if err != nil {
			b.Fatalf("DecodeEntries failed: %v", err)
		}
		if _, err := rfile.NewManifest(entries); err != nil {
			b.Fatalf("NewManifest failed: %v", err)
		}
	}
}

// BenchmarkDirectiveParsing benchmarks parsing one command header.
func BenchmarkDirectiveParsing(b *testing.B) {
	const text = "# help: build it\n# arg: out-dir (target)\n# dep: a\n# dep: b\n# parallel\n# watch: 5\n# cancel\necho build\n"

	b.ResetTimer()
	for b.Loop() {
		if _, err := rfile.Parse("build", text); err != nil {
			b.Fatalf("Parse failed: %v", err)
		}
	}
}

// BenchmarkCommandResolution benchmarks exact, prefix and failed lookups.
func BenchmarkCommandResolution(b *testing.B) {
	m := mustManifest(b, complexRfile())
	tokens := []string{"cmd00", "cmd49", "cmd1", "cmd4"}

	b.ResetTimer()
	for b.Loop() {
		for _, token := range tokens {
			_, _ = m.Resolve(token)
		}
		_, _ = m.Resolve("zzz")
	}
}

// BenchmarkEnvBuilding benchmarks merging host, argument and overlay variables.
func BenchmarkEnvBuilding(b *testing.B) {
	m := mustManifest(b, sampleRfile)
	spec, _ := m.Lookup("build")
	args, err := rfile.Bind(spec, map[string]string{"out-dir": "dist"})
	if err != nil {
		b.Fatal(err)
	}
	env := runtime.NewEnvBuilder()
	overlay := map[string]string{runtime.EnvChanged: "main.go", runtime.EnvRunID: "bench"}

	b.ResetTimer()
	for b.Loop() {
		_ = env.Build(args, overlay)
	}
}

// BenchmarkRuntimeVirtual benchmarks the embedded shell.
func BenchmarkRuntimeVirtual(b *testing.B) {
	runner := runtime.NewRunner()
	req := &runtime.Request{
		Name:        "bench",
		Body:        "for i in 1 2 3; do x=\"$x$i\"; done\necho \"$x\"\n",
		Interpreter: rfile.Interpreter{Kind: rfile.InterpreterVirtual, Path: rfile.VirtualShell},
		Dir:         b.TempDir(),
		Output:      io.Discard,
	}

	b.ResetTimer()
	for b.Loop() {
		if result := runner.Run(b.Context(), req); !result.Success() {
			b.Fatalf("Run failed: %+v", result)
		}
	}
}

// BenchmarkParallelExecution benchmarks a parallel dependency set whose output goes
// through prefixed lanes.
func BenchmarkParallelExecution(b *testing.B) {
	m := mustManifest(b, sampleRfile)
	runner := runtime.NewRunner(runtime.WithDefaultShell(rfile.VirtualShell))
	ex := engine.New(m, runner, output.NewSink(io.Discard), engine.WithDir(b.TempDir()))
	spec, _ := m.Lookup("check")
	args, err := rfile.Bind(spec, nil)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for b.Loop() {
		if err := ex.Execute(b.Context(), engine.Request{Spec: spec, Args: args}); err != nil {
			b.Fatalf("Execute failed: %v", err)
		}
	}
}

// BenchmarkLineFraming benchmarks concurrent-safe line framing with prefixes.
func BenchmarkLineFraming(b *testing.B) {
	sink := output.NewSink(io.Discard)
	lanes := output.Lanes([]string{"lint", "test", "vet"})
	chunk := []byte(strings.Repeat("some output text\n", 64))

	b.ResetTimer()
	for b.Loop() {
		for _, lane := range lanes {
			w := sink.WriterFor(lane)
			_, _ = w.Write(chunk)
			_ = w.Flush()
		}
	}
}
