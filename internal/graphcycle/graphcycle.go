// Package graphcycle detects cycles in directed graphs given as callbacks.
package graphcycle

import (
	"errors"
	"fmt"
	"slices"
)

// CycleError reports a cycle closing at Key. Path lists the nodes of the
// cycle starting and ending at Key.
type CycleError[K comparable] struct {
	Key  K
	Path []K
}

func (e CycleError[K]) Error() string {
	return fmt.Sprintf("cycle detected: %v", e.Path)
}

// Config describes the graph to walk. Next returns the successors of a node;
// an error from Next stops the walk and is returned as is.
type Config[K comparable] struct {
	Starts []K
	Next   func(K) ([]K, error)
}

// frame is one node on the walk path with the successors still to visit.
type frame[K comparable] struct {
	key  K
	next []K
}

// Detect walks edges depth first from each start and reports the first cycle
// reached. Nodes finished by an earlier start are not walked again.
func Detect[K comparable](cfg Config[K]) error {
	if cfg.Next == nil {
		return errors.New("cycle detect: next function is nil")
	}
	done := make(map[K]struct{})
	onPath := make(map[K]struct{})

	for _, start := range cfg.Starts {
		if _, ok := done[start]; ok {
			continue
		}
		next, err := cfg.Next(start)
		if err != nil {
			return err
		}
		path := []frame[K]{{key: start, next: next}}
		onPath[start] = struct{}{}

		for len(path) > 0 {
			top := &path[len(path)-1]
			if len(top.next) == 0 {
				delete(onPath, top.key)
				done[top.key] = struct{}{}
				path = path[:len(path)-1]
				continue
			}
			key := top.next[0]
			top.next = top.next[1:]

			if _, ok := onPath[key]; ok {
				return CycleError[K]{Key: key, Path: cyclePath(path, key)}
			}
			if _, ok := done[key]; ok {
				continue
			}
			succ, err := cfg.Next(key)
			if err != nil {
				return err
			}
			onPath[key] = struct{}{}
			path = append(path, frame[K]{key: key, next: succ})
		}
	}
	return nil
}

func cyclePath[K comparable](path []frame[K], key K) []K {
	start := slices.IndexFunc(path, func(f frame[K]) bool { return f.key == key })
	out := make([]K, 0, len(path)-start+1)
	for _, f := range path[start:] {
		out = append(out, f.key)
	}
	return append(out, key)
}
