package graphcycle

import (
	"errors"
	"slices"
	"testing"
)

func detect(graph map[string][]string, starts ...string) error {
	return Detect(Config[string]{
		Starts: starts,
		Next: func(n string) ([]string, error) {
			return graph[n], nil
		},
	})
}

func TestDetectCyclePath(t *testing.T) {
	graph := map[string][]string{
		"root":   {"a"},
		"a":      {"b"},
		"b":      {"c"},
		"c":      {"a"},
		"unused": nil,
	}
	err := detect(graph, "root")
	var cycle CycleError[string]
	if !errors.As(err, &cycle) {
		t.Fatalf("Detect() error = %v, want CycleError[string]", err)
	}
	if cycle.Key != "a" {
		t.Fatalf("Key = %q, want %q", cycle.Key, "a")
	}
	if want := []string{"a", "b", "c", "a"}; !slices.Equal(cycle.Path, want) {
		t.Fatalf("Path = %v, want %v", cycle.Path, want)
	}
}

func TestDetectSelfLoop(t *testing.T) {
	err := detect(map[string][]string{"g": {"g"}}, "g")
	var cycle CycleError[string]
	if !errors.As(err, &cycle) {
		t.Fatalf("Detect() error = %v, want CycleError[string]", err)
	}
	if want := []string{"g", "g"}; !slices.Equal(cycle.Path, want) {
		t.Fatalf("Path = %v, want %v", cycle.Path, want)
	}
}

func TestDetectDiamondIsAcyclic(t *testing.T) {
	graph := map[string][]string{
		"top":   {"left", "right"},
		"left":  {"base"},
		"right": {"base"},
		"base":  nil,
	}
	if err := detect(graph, "top", "left"); err != nil {
		t.Fatalf("Detect() error = %v, want nil", err)
	}
}

func TestDetectVisitsFinishedNodesOnce(t *testing.T) {
	graph := map[string][]string{
		"a": {"shared"},
		"b": {"shared"},
		"c": {"shared", "a"},
	}
	calls := make(map[string]int)
	err := Detect(Config[string]{
		Starts: []string{"a", "b", "c"},
		Next: func(n string) ([]string, error) {
			calls[n]++
			return graph[n], nil
		},
	})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	for n, c := range calls {
		if c != 1 {
			t.Fatalf("Next(%q) called %d times, want 1", n, c)
		}
	}
}

func TestDetectCycleOffStartPath(t *testing.T) {
	graph := map[string][]string{
		"start": {"leaf", "x"},
		"leaf":  nil,
		"x":     {"y"},
		"y":     {"x"},
	}
	var cycle CycleError[string]
	if !errors.As(detect(graph, "start"), &cycle) {
		t.Fatal("Detect() missed cycle")
	}
	if want := []string{"x", "y", "x"}; !slices.Equal(cycle.Path, want) {
		t.Fatalf("Path = %v, want %v", cycle.Path, want)
	}
}

func TestDetectNextError(t *testing.T) {
	boom := errors.New("boom")
	err := Detect(Config[int]{
		Starts: []int{1},
		Next:   func(int) ([]int, error) { return nil, boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Detect() error = %v, want %v", err, boom)
	}
}

func TestDetectNilNext(t *testing.T) {
	if err := Detect(Config[int]{Starts: []int{1}}); err == nil {
		t.Fatal("Detect() error = nil, want error")
	}
}
