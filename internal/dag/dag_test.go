// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestTopologicalSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		edges [][2]string
		nodes []string
		want  []string
	}{
		{name: "empty", want: nil},
		{name: "single command", nodes: []string{"build"}, want: []string{"build"}},
		{
			name:  "chain",
			edges: [][2]string{{"fetch", "build"}, {"build", "release"}},
			want:  []string{"fetch", "build", "release"},
		},
		{
			name:  "duplicate dep edges",
			edges: [][2]string{{"lint", "ci"}, {"lint", "ci"}},
			want:  []string{"lint", "ci"},
		},
		{
			name:  "independent commands keep declaration order",
			nodes: []string{"c", "a", "b"},
			want:  []string{"c", "a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := New()
			for _, n := range tt.nodes {
				g.AddNode(n)
			}
			for _, e := range tt.edges {
				g.AddEdge(e[0], e[1])
			}
			got, err := g.TopologicalSort()
			if err != nil {
				t.Fatalf("TopologicalSort() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("TopologicalSort() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopologicalSort_Diamond(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("a", "c")
	g.AddEdge("b", "d")
	g.AddEdge("c", "d")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order[0] != "a" || order[len(order)-1] != "d" {
		t.Errorf("order = %v, want a first and d last", order)
	}
}

func TestTopologicalSort_Cycles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		edges [][2]string
		want  []string
	}{
		{name: "self dependency", edges: [][2]string{{"a", "a"}}, want: []string{"a", "a"}},
		{name: "two commands", edges: [][2]string{{"a", "b"}, {"b", "a"}}, want: []string{"a", "b", "a"}},
		{
			name:  "three commands behind an entry",
			edges: [][2]string{{"entry", "x"}, {"x", "y"}, {"y", "z"}, {"z", "x"}},
			want:  []string{"x", "y", "z", "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := New()
			for _, e := range tt.edges {
				g.AddEdge(e[0], e[1])
			}
			_, err := g.TopologicalSort()
			var cycleErr *CycleError
			if !errors.As(err, &cycleErr) {
				t.Fatalf("expected *CycleError, got %T: %v", err, err)
			}
			if !errors.Is(err, ErrCycle) {
				t.Error("CycleError should wrap ErrCycle")
			}
			if !slices.Equal(cycleErr.Cycle, tt.want) {
				t.Errorf("Cycle = %v, want %v", cycleErr.Cycle, tt.want)
			}
		})
	}
}

func TestFindCycle_Acyclic(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("a", "c")
	g.AddEdge("c", "b")
	if cycle := g.FindCycle(); cycle != nil {
		t.Errorf("FindCycle() = %v, want nil", cycle)
	}
}

func TestCycleError_Message(t *testing.T) {
	t.Parallel()
	err := &CycleError{Cycle: []string{"a", "b", "a"}}
	if got, want := err.Error(), "dependency cycle detected: a -> b -> a"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
