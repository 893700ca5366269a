package source

import (
	"errors"
	"fmt"

	"github.com/jacoelho/yang/internal/ast"
)

// DependencyKind distinguishes import from include.
type DependencyKind uint8

const (
	DependencyImport DependencyKind = iota
	DependencyInclude
)

func (k DependencyKind) String() string {
	if k == DependencyInclude {
		return "include"
	}
	return "import"
}

// Dependency is one import or include declared by a source. Revision and
// SemVer are constraints; either may be absent.
type Dependency struct {
	Kind     DependencyKind
	Name     string
	Revision Revision
	SemVer   SemVer
	// Prefix is the local prefix bound by an import. Empty for includes.
	Prefix string
}

// String renders the dependency target as name[@revision][#semver].
func (d Dependency) String() string {
	return Identifier{Name: d.Name, Revision: d.Revision, SemVer: d.SemVer}.String()
}

// Kind distinguishes modules from submodules.
type Kind uint8

const (
	KindModule Kind = iota
	KindSubmodule
)

func (k Kind) String() string {
	if k == KindSubmodule {
		return "submodule"
	}
	return "module"
}

// DependencyInfo is the self-contained metadata of one source, extracted from
// its top-level statement before any linking.
type DependencyInfo struct {
	ID   Identifier
	Kind Kind
	// BelongsTo names the owning module of a submodule.
	BelongsTo    string
	Dependencies []Dependency
}

var (
	errInvalidRoot       = errors.New("top-level statement must be module or submodule")
	errMissingName       = errors.New("missing module name")
	errMissingBelongsTo  = errors.New("submodule has no belongs-to statement")
	errMissingImportName = errors.New("import or include without a name")
)

// ExtractInfo reads identity and dependency metadata from a module or
// submodule statement. The module revision is the latest revision statement;
// the semantic version comes from an openconfig-version style extension.
func ExtractInfo(root *ast.Statement) (DependencyInfo, error) {
	if root == nil {
		return DependencyInfo{}, errInvalidRoot
	}
	var info DependencyInfo
	switch root.Keyword {
	case "module":
		info.Kind = KindModule
	case "submodule":
		info.Kind = KindSubmodule
	default:
		return DependencyInfo{}, fmt.Errorf("%w: got %q at line %d", errInvalidRoot, root.Keyword, root.Pos.Line)
	}
	if root.Argument == "" {
		return DependencyInfo{}, errMissingName
	}
	info.ID.Name = root.Argument

	for _, rev := range root.All("revision") {
		r, err := ParseRevision(rev.Argument)
		if err != nil {
			return DependencyInfo{}, fmt.Errorf("%s: line %d: %w", root.Argument, rev.Pos.Line, err)
		}
		if r.Compare(info.ID.Revision) > 0 {
			info.ID.Revision = r
		}
	}
	if v, ok, err := semVerOf(root); err != nil {
		return DependencyInfo{}, fmt.Errorf("%s: %w", root.Argument, err)
	} else if ok {
		info.ID.SemVer = v
	}

	if info.Kind == KindSubmodule {
		bt := root.First("belongs-to")
		if bt == nil || bt.Argument == "" {
			return DependencyInfo{}, fmt.Errorf("%s: %w", root.Argument, errMissingBelongsTo)
		}
		info.BelongsTo = bt.Argument
	}

	for _, sub := range root.Substatements {
		var kind DependencyKind
		switch sub.Keyword {
		case "import":
			kind = DependencyImport
		case "include":
			kind = DependencyInclude
		default:
			continue
		}
		dep, err := extractDependency(kind, sub)
		if err != nil {
			return DependencyInfo{}, fmt.Errorf("%s: line %d: %w", root.Argument, sub.Pos.Line, err)
		}
		info.Dependencies = append(info.Dependencies, dep)
	}
	return info, nil
}

func extractDependency(kind DependencyKind, stmt *ast.Statement) (Dependency, error) {
	if stmt.Argument == "" {
		return Dependency{}, errMissingImportName
	}
	dep := Dependency{Kind: kind, Name: stmt.Argument}
	if rd := stmt.First("revision-date"); rd != nil {
		r, err := ParseRevision(rd.Argument)
		if err != nil {
			return Dependency{}, err
		}
		dep.Revision = r
	}
	if p := stmt.First("prefix"); p != nil && kind == DependencyImport {
		dep.Prefix = p.Argument
	}
	v, ok, err := semVerOf(stmt)
	if err != nil {
		return Dependency{}, err
	}
	if ok {
		dep.SemVer = v
	}
	return dep, nil
}

// semVerOf looks for an openconfig-version or semantic-version extension
// statement among the direct substatements.
func semVerOf(stmt *ast.Statement) (SemVer, bool, error) {
	for _, local := range []string{"openconfig-version", "semantic-version"} {
		ext := stmt.FirstLocal(local)
		if ext == nil || ext.Prefix() == "" {
			continue
		}
		v, err := ParseSemVer(ext.Argument)
		if err != nil {
			return "", false, fmt.Errorf("line %d: %w", ext.Pos.Line, err)
		}
		return v, true, nil
	}
	return "", false, nil
}
