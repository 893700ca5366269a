// Package reactor assembles parsed sources into an effective schema context.
//
// A build runs five phases over the whole source set. A phase starts only
// after the previous one completed for every statement of every source, so
// any definition made in phase N is visible to all of phase N+1 regardless
// of source order:
//
//	PreLinkage          module names and own prefixes
//	Linkage             imports, includes, belongs-to
//	StatementDefinition arguments, definitions, extension supports
//	FullDeclaration     declared statements
//	Effective           mutations, then effective statements
package reactor

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	yangerrors "github.com/jacoelho/yang/errors"
	"github.com/jacoelho/yang/internal/ast"
	"github.com/jacoelho/yang/internal/model"
	"github.com/jacoelho/yang/internal/resolver"
	"github.com/jacoelho/yang/internal/source"
	"github.com/jacoelho/yang/internal/stmt"
)

// Phase is a reactor build phase.
type Phase int

const (
	// PhaseInit is the state of a statement tree before any hook has run.
	PhaseInit Phase = iota
	// PhasePreLinkage publishes module identities and namespaces.
	PhasePreLinkage
	// PhaseLinkage binds linkage statements to the sources the resolver chose.
	PhaseLinkage
	// PhaseStatementDefinition parses arguments and defines named statements.
	PhaseStatementDefinition
	// PhaseFullDeclaration builds the declared statement tree.
	PhaseFullDeclaration
	// PhaseEffective applies mutations and builds the effective model.
	PhaseEffective
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhasePreLinkage:
		return "pre-linkage"
	case PhaseLinkage:
		return "linkage"
	case PhaseStatementDefinition:
		return "statement-definition"
	case PhaseFullDeclaration:
		return "full-declaration"
	case PhaseEffective:
		return "effective"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Linker binds a declared dependency of a source to the source satisfying it.
// *resolver.Result implements it.
type Linker interface {
	Link(from source.Identifier, dep source.Dependency) (source.Identifier, bool)
}

// Options configures one build.
type Options struct {
	// Registry supplies statement supports. Required.
	Registry *stmt.Registry
	// Linker binds imports and includes. When nil, the sources are resolved
	// with the revision policy.
	Linker Linker
	// Identity maps a source identifier to the key the Linker uses. Nil
	// means the identifier itself.
	Identity func(source.Identifier) source.Identifier
	// Features decides whether a feature is enabled. Nil enables all.
	Features func(model.QName) bool
	Logger   *zap.Logger
}

type build struct {
	registry *stmt.Registry
	linker   Linker
	identity func(source.Identifier) source.Identifier
	features func(model.QName) bool
	log      *zap.Logger

	roots     []*stmtContext
	rootsByID map[source.Identifier]*stmtContext
	global    map[stmt.Namespace]map[string]*stmtContext
	scoped    map[*stmtContext]map[stmt.Namespace]map[string]*stmtContext
	pending   []*stmtContext
}

// Build runs the reactor over sources. On success the returned context holds
// every module, in source order; submodules are reachable only through
// their owning module. Any failure aborts the build with no partial result.
func Build(sources []*source.ParsedSource, opts Options) (*model.SchemaContext, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("reactor: %w", errors.New("nil registry"))
	}
	b := &build{
		registry:  opts.Registry,
		linker:    opts.Linker,
		identity:  opts.Identity,
		features:  opts.Features,
		log:       opts.Logger,
		rootsByID: make(map[source.Identifier]*stmtContext, len(sources)),
		global: map[stmt.Namespace]map[string]*stmtContext{
			stmt.NamespaceModule:    {},
			stmt.NamespaceSubmodule: {},
		},
		scoped: make(map[*stmtContext]map[stmt.Namespace]map[string]*stmtContext),
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	if b.identity == nil {
		b.identity = func(id source.Identifier) source.Identifier { return id }
	}
	if err := b.load(sources); err != nil {
		return nil, err
	}
	if b.linker == nil {
		b.linker = resolver.Resolve(entries(sources, b.identity), resolver.RevisionPolicy{})
	}

	steps := []struct {
		phase Phase
		run   func() error
	}{
		{PhasePreLinkage, b.hookPhase(stmt.Support.OnPreLinkage)},
		{PhaseLinkage, b.hookPhase(stmt.Support.OnLinkage)},
		{PhaseStatementDefinition, b.statementDefinition},
		{PhaseFullDeclaration, b.fullDeclaration},
		{PhaseEffective, b.mutate},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			b.log.Debug("phase failed", zap.Stringer("phase", s.phase), zap.Error(err))
			return nil, err
		}
		b.log.Debug("phase complete", zap.Stringer("phase", s.phase), zap.Int("sources", len(b.roots)))
	}
	return b.effective()
}

func entries(sources []*source.ParsedSource, identity func(source.Identifier) source.Identifier) []resolver.Entry {
	out := make([]resolver.Entry, len(sources))
	for i, src := range sources {
		out[i] = resolver.Entry{ID: identity(src.ID), Deps: src.Info.Dependencies}
	}
	return out
}

// load creates the statement tree of every source and resolves supports
// of unprefixed keywords.
func (b *build) load(sources []*source.ParsedSource) error {
	for _, src := range sources {
		if src == nil || src.AST == nil {
			return &yangerrors.ReactorError{Code: yangerrors.ErrInvalidRoot, Message: "empty source"}
		}
		if kw := src.AST.Keyword; kw != "module" && kw != "submodule" {
			return &yangerrors.ReactorError{
				Code:    yangerrors.ErrInvalidRoot,
				Source:  src.ID,
				Line:    src.AST.Pos.Line,
				Column:  src.AST.Pos.Column,
				Keyword: kw,
				Message: "root statement must be module or submodule",
			}
		}
		key := b.identity(src.ID)
		if _, dup := b.rootsByID[key]; dup {
			return &yangerrors.ReactorError{
				Code:    yangerrors.ErrDuplicateModule,
				Source:  src.ID,
				Message: fmt.Sprintf("source %s appears more than once", key),
			}
		}
		root := b.newContext(src, src.AST, nil)
		b.roots = append(b.roots, root)
		b.rootsByID[key] = root
	}
	return nil
}

func (b *build) newContext(src *source.ParsedSource, st *ast.Statement, parent *stmtContext) *stmtContext {
	c := &stmtContext{
		b:       b,
		src:     src,
		keyword: st.Keyword,
		raw:     st.Argument,
		hasArg:  st.HasArgument,
		pos:     st.Pos,
		parent:  parent,
	}
	if !c.prefixed() {
		if s, ok := b.registry.Lookup(st.Keyword); ok {
			c.support = s
		} else {
			c.support = b.registry.Unknown()
		}
	}
	c.children = make([]*stmtContext, 0, len(st.Substatements))
	for _, sub := range st.Substatements {
		c.children = append(c.children, b.newContext(src, sub, c))
	}
	return c
}

// walk visits every statement of every source top-down.
func (b *build) walk(fn func(*stmtContext) error) error {
	var visit func(*stmtContext) error
	visit = func(c *stmtContext) error {
		if err := fn(c); err != nil {
			return err
		}
		for _, ch := range c.children {
			if err := visit(ch); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range b.roots {
		if err := visit(r); err != nil {
			return err
		}
	}
	return nil
}

func (b *build) hookPhase(hook func(stmt.Support, stmt.Context) error) func() error {
	return func() error {
		return b.walk(func(c *stmtContext) error {
			if c.support != nil {
				if err := hook(c.support, c); err != nil {
					return b.locate(c, err)
				}
			}
			return nil
		})
	}
}

// statementDefinition parses arguments and registers definitions for
// builtin statements first, then binds extension instances to supports once
// every extension definition is known, then checks cardinalities.
func (b *build) statementDefinition() error {
	define := func(c *stmtContext) error {
		arg, err := c.support.ParseArgument(c, c.raw)
		if err != nil {
			return b.locate(c, err)
		}
		c.arg = arg
		if err := c.support.OnStatementDefinition(c); err != nil {
			return b.locate(c, err)
		}
		return nil
	}
	err := b.walk(func(c *stmtContext) error {
		if c.support == nil {
			return nil
		}
		return define(c)
	})
	if err != nil {
		return err
	}
	err = b.walk(func(c *stmtContext) error {
		if c.support != nil {
			return nil
		}
		s, err := b.extensionSupport(c)
		if err != nil {
			return b.locate(c, err)
		}
		c.support = s
		return define(c)
	})
	if err != nil {
		return err
	}
	return b.walk(func(c *stmtContext) error {
		kws := make([]string, len(c.children))
		for i, ch := range c.children {
			kws[i] = ch.keyword
		}
		if err := c.support.Substatements().Check(c.keyword, kws, b.registry.Known); err != nil {
			return b.locate(c, err)
		}
		return nil
	})
}

func (b *build) extensionSupport(c *stmtContext) (stmt.Support, error) {
	module, local, err := stmt.ResolveName(c, c.keyword)
	if err != nil {
		return nil, err
	}
	if _, ok := c.LookupIn(stmt.NamespaceExtension, module, local); !ok {
		return nil, stmt.Errorf(yangerrors.ErrUnknownExtension, "extension %s is not defined in module %s", local, module.RawArgument())
	}
	if s, ok := b.registry.Extension(module.RawArgument(), local); ok {
		return s, nil
	}
	return b.registry.Unknown(), nil
}

func (b *build) fullDeclaration() error {
	var declare func(*stmtContext) error
	declare = func(c *stmtContext) error {
		subs := make([]model.Declared, 0, len(c.children))
		for _, ch := range c.children {
			if err := declare(ch); err != nil {
				return err
			}
			subs = append(subs, ch.declared)
		}
		d, err := c.support.CreateDeclared(c, subs)
		if err != nil {
			return b.locate(c, err)
		}
		c.declared = d
		return nil
	}
	for _, r := range b.roots {
		if err := declare(r); err != nil {
			return err
		}
	}
	return b.hookPhase(stmt.Support.OnFullDeclaration)()
}

// track queues statements that rewrite the tree. Statements inside
// templates only act once copied out.
func (b *build) track(c *stmtContext) {
	var visit func(*stmtContext)
	visit = func(c *stmtContext) {
		if stmt.IsTemplate(c.support) {
			return
		}
		if _, ok := c.support.(stmt.Mutator); ok && !c.mutated {
			b.pending = append(b.pending, c)
		}
		for _, ch := range c.children {
			visit(ch)
		}
	}
	visit(c)
}

// mutate applies pending mutations in step order. After any progress the
// loop restarts from the lowest step, so expansions are visible to every
// later step. Mutations still not ready when nothing progresses fail the
// build with their last cause.
func (b *build) mutate() error {
	for _, r := range b.roots {
		b.track(r)
	}
	for {
		progressed := false
		for step := stmt.StepIncludes; step <= stmt.StepDeviations && !progressed; step++ {
			for i := 0; i < len(b.pending); i++ {
				c := b.pending[i]
				m := c.support.(stmt.Mutator)
				if c.mutated || m.MutationStep() != step {
					continue
				}
				if c.detached() {
					c.mutated = true
					continue
				}
				err := m.Mutate(c)
				if errors.Is(err, stmt.ErrNotReady) {
					c.lastErr = err
					continue
				}
				if err != nil {
					return b.locate(c, err)
				}
				c.mutated = true
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	for _, c := range b.pending {
		if c.mutated || c.detached() {
			continue
		}
		cause := c.lastErr
		if cause == nil {
			cause = stmt.Errorf(yangerrors.ErrStalled, "%s %s made no progress", c.keyword, c.raw)
		}
		return b.locate(c, cause)
	}
	b.log.Debug("mutations applied", zap.Int("statements", len(b.pending)))
	return nil
}

func (b *build) effective() (*model.SchemaContext, error) {
	var modules []*model.Module
	for _, r := range b.roots {
		e, err := r.Effective()
		if err != nil {
			return nil, err
		}
		if r.keyword != "module" {
			continue
		}
		m, ok := e.(*model.Module)
		if !ok {
			return nil, b.locate(r, stmt.Errorf(yangerrors.ErrInvalidRoot, "module %s has no module effective statement", r.raw))
		}
		modules = append(modules, m)
	}
	return model.NewSchemaContext(modules), nil
}

func (b *build) moduleScope(owner *stmtContext, ns stmt.Namespace) map[string]*stmtContext {
	byNS := b.scoped[owner]
	if byNS == nil {
		byNS = make(map[stmt.Namespace]map[string]*stmtContext)
		b.scoped[owner] = byNS
	}
	m := byNS[ns]
	if m == nil {
		m = make(map[string]*stmtContext)
		byNS[ns] = m
	}
	return m
}

// lookupGlobal finds name@revision exactly, or the latest revision when
// name carries none.
func (b *build) lookupGlobal(ns stmt.Namespace, name string) *stmtContext {
	m := b.global[ns]
	if strings.Contains(name, "@") {
		return m[name]
	}
	if c, ok := m[name]; ok {
		return c
	}
	var (
		best    *stmtContext
		bestRev string
	)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		n, rev, ok := strings.Cut(k, "@")
		if !ok || n != name {
			continue
		}
		if best == nil || rev > bestRev {
			best, bestRev = m[k], rev
		}
	}
	return best
}

// locate attaches the failing statement's location to err. Errors already
// carrying a location pass through; errors from outside the reactor error
// family become invalid argument errors.
func (b *build) locate(c *stmtContext, err error) error {
	err = stmt.Cause(err)
	lex := c.lexical()
	re, ok := yangerrors.AsReactor(err)
	if !ok {
		return &yangerrors.ReactorError{
			Code:    yangerrors.ErrInvalidArgument,
			Source:  lex.src.ID,
			Line:    lex.pos.Line,
			Column:  lex.pos.Column,
			Keyword: c.keyword,
			Message: "invalid statement",
			Cause:   err,
		}
	}
	if re.Line != 0 || re.Source.Name != "" {
		return err
	}
	located := *re
	located.Source = lex.src.ID
	located.Line = lex.pos.Line
	located.Column = lex.pos.Column
	located.Keyword = c.keyword
	return &located
}
