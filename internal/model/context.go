package model

import (
	"strings"

	"github.com/jacoelho/yang/internal/source"
)

// SchemaContext is the root aggregate of effective modules from one resolved
// source set. It is immutable and safe for concurrent use.
type SchemaContext struct {
	modules     []*Module
	byNamespace map[string][]*Module
}

// NewSchemaContext builds a context over modules in the given order.
func NewSchemaContext(modules []*Module) *SchemaContext {
	sc := &SchemaContext{
		modules:     modules,
		byNamespace: make(map[string][]*Module, len(modules)),
	}
	for _, m := range modules {
		sc.byNamespace[m.Namespace] = append(sc.byNamespace[m.Namespace], m)
	}
	return sc
}

// Modules returns all modules in build order.
func (sc *SchemaContext) Modules() []*Module {
	return sc.modules
}

// FindModule returns the module with name and revision. An empty revision
// selects the latest revision present.
func (sc *SchemaContext) FindModule(name string, revision source.Revision) (*Module, bool) {
	var best *Module
	for _, m := range sc.modules {
		if m.Name != name {
			continue
		}
		if revision != "" {
			if m.Revision == revision {
				return m, true
			}
			continue
		}
		if best == nil || m.Revision.Compare(best.Revision) > 0 {
			best = m
		}
	}
	return best, best != nil
}

// FindModuleByNamespace returns the modules declaring namespace.
func (sc *SchemaContext) FindModuleByNamespace(namespace string) []*Module {
	return sc.byNamespace[namespace]
}

// FindNode returns the schema node at path.
func (sc *SchemaContext) FindNode(path SchemaPath) (SchemaNode, bool) {
	if len(path) == 0 {
		return nil, false
	}
	var nodes []SchemaNode
	for _, m := range sc.byNamespace[path[0].Module.Namespace] {
		if path[0].Module.Revision == "" || m.Revision == path[0].Module.Revision {
			nodes = append(nodes, m.Nodes...)
		}
	}
	var cur SchemaNode
	for _, q := range path {
		cur = nil
		for _, n := range nodes {
			if n.QName() == q {
				cur = n
				break
			}
		}
		if cur == nil {
			return nil, false
		}
		nodes = cur.Children()
	}
	return cur, true
}

// FindNodeByNames resolves a path of local names starting at the top-level
// nodes of module, for example "interfaces/interface/name".
func (sc *SchemaContext) FindNodeByNames(module *Module, path string) (SchemaNode, bool) {
	nodes := module.Nodes
	var cur SchemaNode
	for _, name := range strings.Split(strings.Trim(path, "/"), "/") {
		next, ok := findChild(nodes, name)
		if !ok {
			return nil, false
		}
		cur = next
		nodes = cur.Children()
	}
	return cur, cur != nil
}

// Walk visits every schema node depth-first in declaration order. Returning
// false from fn skips the node's children.
func (sc *SchemaContext) Walk(fn func(SchemaNode) bool) {
	var walk func([]SchemaNode)
	walk = func(nodes []SchemaNode) {
		for _, n := range nodes {
			if fn(n) {
				walk(n.Children())
			}
		}
	}
	for _, m := range sc.modules {
		walk(m.Nodes)
	}
}
