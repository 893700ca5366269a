// Package resolver partitions a source set into sources whose dependency
// closure is satisfiable within the set and sources that are not.
package resolver

import (
	"github.com/jacoelho/yang/internal/source"
)

// Entry is one candidate source with its declared dependencies.
type Entry struct {
	ID   source.Identifier
	Deps []source.Dependency
}

// Unsatisfied lists the dependencies of Source that match no candidate.
type Unsatisfied struct {
	Source  source.Identifier
	Missing []source.Dependency
}

// Result is the outcome of one resolution. It is never mutated after Resolve
// returns.
type Result struct {
	Resolved   []source.Identifier
	Unresolved []source.Identifier
	// Unsatisfied holds, in input order, each unresolved source that has at
	// least one dependency matching no candidate at all. Sources that are
	// unresolved only through a cycle or through another unresolved source
	// have no entry.
	Unsatisfied []Unsatisfied

	bindings map[bindingKey]source.Identifier
}

type bindingKey struct {
	from source.Identifier
	dep  source.Dependency
}

// OK reports whether every input source was resolved.
func (r *Result) OK() bool {
	return len(r.Unresolved) == 0
}

// Link returns the resolved source a dependency of from is bound to.
func (r *Result) Link(from source.Identifier, dep source.Dependency) (source.Identifier, bool) {
	id, ok := r.bindings[bindingKey{from: from, dep: dep}]
	return id, ok
}

// Resolve grows a satisfied set to a fixpoint: a source joins once every
// dependency matches a source already in the set. Members of a dependency
// cycle can never join first and stay unresolved. Entry order breaks ties and
// fixes output order; duplicate identifiers keep the first entry.
func Resolve(entries []Entry, policy Policy) *Result {
	if policy == nil {
		policy = RevisionPolicy{}
	}
	entries = dedupe(entries)

	all := make([]source.Identifier, len(entries))
	for i, e := range entries {
		all[i] = e.ID
	}

	satisfied := make(map[source.Identifier]bool, len(entries))
	var pool []source.Identifier
	for progress := true; progress; {
		progress = false
		for _, e := range entries {
			if satisfied[e.ID] || !matchesAll(policy, e, pool) {
				continue
			}
			satisfied[e.ID] = true
			pool = inputOrder(all, satisfied)
			progress = true
		}
	}

	res := &Result{bindings: make(map[bindingKey]source.Identifier)}
	for _, e := range entries {
		if satisfied[e.ID] {
			res.Resolved = append(res.Resolved, e.ID)
			for _, dep := range e.Deps {
				if id, ok := policy.Match(dep, pool); ok {
					res.bindings[bindingKey{from: e.ID, dep: dep}] = id
				}
			}
			continue
		}
		res.Unresolved = append(res.Unresolved, e.ID)
		var missing []source.Dependency
		for _, dep := range e.Deps {
			if _, ok := policy.Match(dep, all); !ok {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			res.Unsatisfied = append(res.Unsatisfied, Unsatisfied{Source: e.ID, Missing: missing})
		}
	}
	return res
}

func matchesAll(policy Policy, e Entry, pool []source.Identifier) bool {
	for _, dep := range e.Deps {
		if _, ok := policy.Match(dep, pool); !ok {
			return false
		}
	}
	return true
}

func inputOrder(all []source.Identifier, keep map[source.Identifier]bool) []source.Identifier {
	out := make([]source.Identifier, 0, len(keep))
	for _, id := range all {
		if keep[id] {
			out = append(out, id)
		}
	}
	return out
}

func dedupe(entries []Entry) []Entry {
	seen := make(map[source.Identifier]struct{}, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}
