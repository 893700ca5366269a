// Package model holds the immutable declared and effective statement model
// and the SchemaContext that aggregates effective modules.
//
// Values in this package are built once by the reactor and must not be
// modified afterwards; they are shared by every holder of a SchemaContext.
package model

import (
	"strings"

	"github.com/jacoelho/yang/internal/source"
)

// QNameModule identifies the namespace a name belongs to.
type QNameModule struct {
	Namespace string
	Revision  source.Revision
}

// QName is a namespace-qualified name.
type QName struct {
	Module QNameModule
	Name   string
}

// String renders (namespace?revision=rev)name.
func (q QName) String() string {
	if q.Module.Namespace == "" {
		return q.Name
	}
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(q.Module.Namespace)
	if q.Module.Revision != "" {
		b.WriteString("?revision=")
		b.WriteString(string(q.Module.Revision))
	}
	b.WriteByte(')')
	b.WriteString(q.Name)
	return b.String()
}

// SchemaPath is an absolute path of schema node names from the root.
type SchemaPath []QName

// String renders the path using local names, for example /interfaces/interface.
func (p SchemaPath) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, q := range p {
		b.WriteByte('/')
		b.WriteString(q.Name)
	}
	return b.String()
}

// Child returns a new path with q appended.
func (p SchemaPath) Child(q QName) SchemaPath {
	out := make(SchemaPath, len(p), len(p)+1)
	copy(out, p)
	return append(out, q)
}

// Equal reports whether both paths name the same node.
func (p SchemaPath) Equal(other SchemaPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
