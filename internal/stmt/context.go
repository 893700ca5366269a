package stmt

import (
	"github.com/jacoelho/yang/internal/ast"
	"github.com/jacoelho/yang/internal/model"
	"github.com/jacoelho/yang/internal/source"
)

// Namespace selects where a named definition is stored and how it is found.
type Namespace uint8

const (
	// NamespaceModule maps module name and name@revision to module roots
	// across the whole build.
	NamespaceModule Namespace = iota
	// NamespaceSubmodule maps submodule name and name@revision to submodule
	// roots across the whole build.
	NamespaceSubmodule
	// NamespacePrefix maps a prefix to a module root within one source.
	NamespacePrefix
	// NamespaceGrouping and NamespaceTypedef are lexically scoped: lookups
	// walk enclosing statements, then the owning module's top level
	// (including submodules).
	NamespaceGrouping
	NamespaceTypedef
	// NamespaceFeature, NamespaceIdentity and NamespaceExtension are scoped
	// to the owning module, shared by its submodules.
	NamespaceFeature
	NamespaceIdentity
	NamespaceExtension
)

// Keys for data the module and submodule supports attach to source roots.
const (
	// DataModule holds the model.QNameModule of a root.
	DataModule = "stmt.module"
	// DataOwner holds the module root Context a root belongs to.
	DataOwner = "stmt.owner"
)

// CopyOptions controls how a subtree is copied.
type CopyOptions struct {
	// Module overrides the namespace of the copied schema nodes. Zero keeps
	// the namespace the destination parent provides.
	Module      model.QNameModule
	AddedByUses bool
	Augmenting  bool
	// After places the copy right after this sibling; nil appends.
	After Context
}

// Context is the build-time view of one statement handed to supports. It is
// only valid during a build and is not safe for concurrent use.
type Context interface {
	Keyword() string
	RawArgument() string
	HasArgument() bool
	// Argument is the parsed argument, nil before statement definition.
	Argument() any
	Position() ast.Position
	Source() source.Identifier
	Support() Support
	// Declared is nil before full declaration.
	Declared() model.Declared

	Parent() Context
	Root() Context
	// Substatements returns live children, including copies added by
	// mutations and excluding removed statements.
	Substatements() []Context
	First(keyword string) Context
	All(keyword string) []Context

	// Module is the namespace of schema nodes defined at this statement.
	Module() model.QNameModule
	// OwnerModule returns the module root this statement belongs to; for
	// submodules it is the belongs-to module.
	OwnerModule() (Context, bool)
	// ResolvePrefix returns the module root bound to prefix in the lexical
	// scope of this statement. The empty prefix yields the owning module of
	// the source the statement was written in.
	ResolvePrefix(prefix string) (Context, bool)
	// Linked returns the root a dependency of this statement's source was
	// bound to by the resolver.
	Linked(dep source.Dependency) (Context, bool)
	QName() model.QName
	SchemaPath() model.SchemaPath

	// Define binds name to value in ns, scoped by the namespace kind
	// relative to this statement.
	Define(ns Namespace, name string, value Context) error
	Lookup(ns Namespace, name string) (Context, bool)
	// LookupIn searches the module-level namespace of another module root.
	LookupIn(ns Namespace, module Context, name string) (Context, bool)

	FeatureEnabled(q model.QName) bool
	// Effective builds, or returns the memoized, effective statement.
	Effective() (model.Effective, error)

	// Mutation primitives, valid during the effective model phase.
	Remove()
	Removed() bool
	InTemplate() bool
	CopyTo(parent Context, opts CopyOptions) Context
	AddedByUses() bool
	Augmenting() bool
	// SetData and Data attach support-private values to the statement.
	SetData(key string, value any)
	Data(key string) any
}
