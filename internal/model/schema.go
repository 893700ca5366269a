package model

import "github.com/jacoelho/yang/internal/source"

// Status is the lifecycle status of a definition.
type Status string

const (
	StatusCurrent    Status = "current"
	StatusDeprecated Status = "deprecated"
	StatusObsolete   Status = "obsolete"
)

// SchemaNode is an effective statement that occupies a position in the
// schema tree.
type SchemaNode interface {
	Effective
	QName() QName
	Path() SchemaPath
	// Children returns child schema nodes in declaration order.
	Children() []SchemaNode
}

// DataNode is the effective form of container, list, leaf, leaf-list, choice,
// case, anydata, anyxml, rpc, action, input, output and notification.
type DataNode struct {
	Base
	Name        QName
	SchemaPath  SchemaPath
	Nodes       []SchemaNode
	Description string
	Reference   string
	Status      Status
	// Config is false when the node or an ancestor declares config false.
	Config    bool
	Mandatory bool
	Presence  string
	// Type is set for leaf and leaf-list.
	Type     *TypeDefinition
	Default  string
	Units    string
	Keys     []QName
	MinElems int
	// MaxElems is zero when unbounded.
	MaxElems int
	Musts    []string
	// AddedByUses marks nodes instantiated from a grouping.
	AddedByUses bool
	// Augmenting marks nodes injected by an augment.
	Augmenting bool
}

func (n *DataNode) QName() QName           { return n.Name }
func (n *DataNode) Path() SchemaPath       { return n.SchemaPath }
func (n *DataNode) Children() []SchemaNode { return n.Nodes }

// Child returns the direct child schema node with the given local name.
func (n *DataNode) Child(name string) (SchemaNode, bool) {
	return findChild(n.Nodes, name)
}

func findChild(nodes []SchemaNode, name string) (SchemaNode, bool) {
	for _, c := range nodes {
		if c.QName().Name == name {
			return c, true
		}
	}
	return nil, false
}

// Import is one effective import of a module.
type Import struct {
	Module   string
	Prefix   string
	Revision source.Revision
	SemVer   source.SemVer
}

// Module is the effective form of a module or submodule. Data definitions of
// included submodules are merged into the owning module.
type Module struct {
	Base
	Name         string
	Namespace    string
	Prefix       string
	Revision     source.Revision
	SemVer       source.SemVer
	YangVersion  string
	Organization string
	Contact      string
	Description  string
	// BelongsTo is set for submodules.
	BelongsTo   string
	Imports     []Import
	Nodes       []SchemaNode
	Features    []QName
	Identities  []*Identity
	Extensions  []*Extension
	Typedefs    []*TypeDefinition
	Deviations  []*Deviation
	Augments    []*Augment
	SubModules  []*Module
	ID          source.Identifier
	QNameModule QNameModule
}

// Submodules returns the submodules included by this module.
func (m *Module) Submodules() []*Module { return m.SubModules }

// Children returns top-level schema nodes.
func (m *Module) Children() []SchemaNode { return m.Nodes }

// Child returns the top-level schema node with the given local name.
func (m *Module) Child(name string) (SchemaNode, bool) {
	return findChild(m.Nodes, name)
}

// Extension is an effective extension definition.
type Extension struct {
	Base
	Name QName
	// ArgumentName is the argument name declared by the argument
	// substatement, empty when the extension takes no argument.
	ArgumentName string
	// YinElement reports whether the argument maps to a YIN element.
	YinElement  bool
	Description string
	Status      Status
}

// Identity is an effective identity definition.
type Identity struct {
	Base
	Name  QName
	Bases []QName
}

// Augment is an effective augment statement with its resolved target.
type Augment struct {
	Base
	Target SchemaPath
}

// DeviateKind is the operation of one deviate statement.
type DeviateKind string

const (
	DeviateNotSupported DeviateKind = "not-supported"
	DeviateAdd          DeviateKind = "add"
	DeviateReplace      DeviateKind = "replace"
	DeviateDelete       DeviateKind = "delete"
)

// Deviate is one effective deviate statement.
type Deviate struct {
	Base
	Kind DeviateKind
}

// Deviation is an effective deviation statement.
type Deviation struct {
	Base
	Target      SchemaPath
	Description string
	Reference   string
	Deviates    []*Deviate
}
