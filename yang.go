// Package yang assembles YANG sources into an immutable schema context.
//
// A Factory fetches the requested sources from a Repository, checks that
// every import and include is satisfiable within the fetched set, and runs
// the statement reactor over it. Completed contexts are cached per mode
// for as long as a caller holds on to them.
package yang

import (
	"fmt"

	"github.com/jacoelho/yang/internal/model"
	"github.com/jacoelho/yang/internal/repository"
	"github.com/jacoelho/yang/internal/source"
	"github.com/jacoelho/yang/internal/stmt"
)

type (
	// SourceIdentifier names a source: module or submodule name, optional
	// revision and optional semantic version.
	SourceIdentifier = source.Identifier
	// Revision is a YYYY-MM-DD revision date.
	Revision = source.Revision
	// SemVer is a semantic version.
	SemVer = source.SemVer
	// Dependency is one import, include or belongs-to of a source.
	Dependency = source.Dependency
	// ParsedSource is a parsed, unlinked source.
	ParsedSource = source.ParsedSource
	// Repository fetches parsed sources.
	Repository = source.Repository
	// RepositoryFunc adapts a function to Repository.
	RepositoryFunc = source.RepositoryFunc
	// SchemaContext is an assembled, immutable set of effective modules.
	SchemaContext = model.SchemaContext
	// Module is an effective module.
	Module = model.Module
	// SchemaNode is an effective schema tree node.
	SchemaNode = model.SchemaNode
	// DataNode is an effective data definition, operation or notification.
	DataNode = model.DataNode
	// TypeDefinition is an effective type.
	TypeDefinition = model.TypeDefinition
	// QName is a namespace-qualified name.
	QName = model.QName
	// StatementSupport implements one statement keyword.
	StatementSupport = stmt.Support
	// BaseStatementSupport is a StatementSupport with no-op hooks, meant to
	// be embedded.
	BaseStatementSupport = stmt.BaseSupport
	// StatementContext is the build-time view of one statement handed to a
	// StatementSupport.
	StatementContext = stmt.Context
	// Cardinalities maps substatement keywords to allowed occurrences.
	Cardinalities = stmt.Cardinalities
	// DeclaredStatement is a statement as written.
	DeclaredStatement = model.Declared
	// EffectiveStatement is the resolved form of a statement.
	EffectiveStatement = model.Effective
)

// ErrSourceNotFound is returned by the bundled repositories when no source
// matches a request.
var ErrSourceNotFound = source.ErrNotFound

// Mode selects how sources are identified and dependencies matched.
type Mode int

const (
	// ModePlain identifies sources by name and revision. Imports match an
	// exact revision, or the latest one when none is given.
	ModePlain Mode = iota
	// ModeSemVer also identifies sources by semantic version. Imports with an
	// openconfig-version match the highest compatible version.
	ModeSemVer
)

func (m Mode) String() string {
	switch m {
	case ModePlain:
		return "plain"
	case ModeSemVer:
		return "semver"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses "plain" or "semver".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "plain", "":
		return ModePlain, nil
	case "semver":
		return ModeSemVer, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

// identity maps a source identifier to the key it is known by in mode m.
func (m Mode) identity(id SourceIdentifier) SourceIdentifier {
	if m == ModeSemVer {
		return id
	}
	return id.WithoutSemVer()
}

// ParseSourceIdentifier parses name[@revision][#semver].
func ParseSourceIdentifier(s string) (SourceIdentifier, error) {
	return source.ParseIdentifier(s)
}

// ParseSource parses YANG text into a source.
func ParseSource(data []byte, location string) (*ParsedSource, error) {
	return source.Parse(data, location)
}

// NewMemoryRepository returns a concurrency-safe in-memory repository.
func NewMemoryRepository(sources ...*ParsedSource) *repository.Memory {
	return repository.NewMemory(sources...)
}

// NewURLRepository returns a repository over the .yang files under base,
// which may be a local path or any URL scheme supported by afs.
func NewURLRepository(base string) *repository.URL {
	return repository.NewURL(base)
}
