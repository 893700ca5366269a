package reactor

import (
	"slices"
	"strings"

	yangerrors "github.com/jacoelho/yang/errors"
	"github.com/jacoelho/yang/internal/ast"
	"github.com/jacoelho/yang/internal/model"
	"github.com/jacoelho/yang/internal/source"
	"github.com/jacoelho/yang/internal/stmt"
)

// stmtContext is one build-time statement. Children are owned; parent and
// origin are back-references used for lookups only.
type stmtContext struct {
	b   *build
	src *source.ParsedSource

	keyword string
	raw     string
	hasArg  bool
	pos     ast.Position

	parent   *stmtContext
	children []*stmtContext
	// origin is the statement this one was copied from; lexical lookups
	// (prefixes, groupings, typedefs) follow it.
	origin *stmtContext

	support  stmt.Support
	arg      any
	declared model.Declared

	effective model.Effective
	building  bool

	module      *model.QNameModule
	removed     bool
	mutated     bool
	lastErr     error
	addedByUses bool
	augmenting  bool

	local map[stmt.Namespace]map[string]*stmtContext
	data  map[string]any
}

var _ stmt.Context = (*stmtContext)(nil)

func (c *stmtContext) Keyword() string          { return c.keyword }
func (c *stmtContext) RawArgument() string      { return c.raw }
func (c *stmtContext) HasArgument() bool        { return c.hasArg }
func (c *stmtContext) Argument() any            { return c.arg }
func (c *stmtContext) Position() ast.Position   { return c.pos }
func (c *stmtContext) Source() source.Identifier { return c.src.ID }
func (c *stmtContext) Support() stmt.Support    { return c.support }
func (c *stmtContext) Declared() model.Declared { return c.declared }
func (c *stmtContext) AddedByUses() bool        { return c.addedByUses }
func (c *stmtContext) Augmenting() bool         { return c.augmenting }

func (c *stmtContext) Parent() stmt.Context {
	if c.parent == nil {
		return nil
	}
	return c.parent
}

func (c *stmtContext) root() *stmtContext {
	cur := c
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

func (c *stmtContext) Root() stmt.Context { return c.root() }

// lexical returns the statement as originally written.
func (c *stmtContext) lexical() *stmtContext {
	cur := c
	for cur.origin != nil {
		cur = cur.origin
	}
	return cur
}

func (c *stmtContext) live() []*stmtContext {
	out := make([]*stmtContext, 0, len(c.children))
	for _, ch := range c.children {
		if !ch.removed {
			out = append(out, ch)
		}
	}
	return out
}

func (c *stmtContext) Substatements() []stmt.Context {
	live := c.live()
	out := make([]stmt.Context, len(live))
	for i, ch := range live {
		out[i] = ch
	}
	return out
}

func (c *stmtContext) First(keyword string) stmt.Context {
	for _, ch := range c.children {
		if !ch.removed && ch.keyword == keyword {
			return ch
		}
	}
	return nil
}

func (c *stmtContext) All(keyword string) []stmt.Context {
	var out []stmt.Context
	for _, ch := range c.children {
		if !ch.removed && ch.keyword == keyword {
			out = append(out, ch)
		}
	}
	return out
}

func (c *stmtContext) Module() model.QNameModule {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.module != nil {
			return *cur.module
		}
		if cur.parent == nil {
			m, _ := cur.data[stmt.DataModule].(model.QNameModule)
			return m
		}
	}
	return model.QNameModule{}
}

func (c *stmtContext) owner() (*stmtContext, bool) {
	r := c.lexical().root()
	o, ok := r.data[stmt.DataOwner].(*stmtContext)
	return o, ok && o != nil
}

func (c *stmtContext) OwnerModule() (stmt.Context, bool) {
	o, ok := c.owner()
	if !ok {
		return nil, false
	}
	return o, true
}

func (c *stmtContext) ResolvePrefix(prefix string) (stmt.Context, bool) {
	if prefix == "" {
		return c.OwnerModule()
	}
	r := c.lexical().root()
	m, ok := r.local[stmt.NamespacePrefix][prefix]
	if !ok {
		return nil, false
	}
	return m, true
}

func (c *stmtContext) Linked(dep source.Dependency) (stmt.Context, bool) {
	r := c.lexical().root()
	declared := dep
	for _, d := range r.src.Info.Dependencies {
		if d.Kind == dep.Kind && d.Name == dep.Name && (dep.Prefix == "" || d.Prefix == dep.Prefix) {
			declared = d
			break
		}
	}
	to, ok := c.b.linker.Link(c.b.identity(r.src.ID), declared)
	if !ok {
		return nil, false
	}
	target, ok := c.b.rootsByID[to]
	if !ok {
		return nil, false
	}
	return target, true
}

func (c *stmtContext) QName() model.QName {
	name := c.raw
	if !c.hasArg {
		name = c.keyword
	}
	return model.QName{Module: c.Module(), Name: name}
}

func (c *stmtContext) SchemaPath() model.SchemaPath {
	if c.parent == nil {
		return nil
	}
	p := c.parent.SchemaPath()
	if stmt.IsSchemaTreeNode(c.support) {
		return p.Child(c.QName())
	}
	return p
}

func (c *stmtContext) scope(ns stmt.Namespace, create bool) map[string]*stmtContext {
	if c.local == nil {
		if !create {
			return nil
		}
		c.local = make(map[stmt.Namespace]map[string]*stmtContext)
	}
	m := c.local[ns]
	if m == nil && create {
		m = make(map[string]*stmtContext)
		c.local[ns] = m
	}
	return m
}

func (c *stmtContext) Define(ns stmt.Namespace, name string, value stmt.Context) error {
	v, ok := value.(*stmtContext)
	if !ok {
		return stmt.Errorf(yangerrors.ErrDuplicateDefinition, "foreign statement context for %s", name)
	}
	switch ns {
	case stmt.NamespaceModule, stmt.NamespaceSubmodule:
		if _, dup := c.b.global[ns][name]; dup {
			return stmt.Errorf(yangerrors.ErrDuplicateModule, "%s %s is defined more than once", c.keyword, name)
		}
		c.b.global[ns][name] = v
		return nil
	case stmt.NamespacePrefix:
		m := c.root().scope(ns, true)
		if prev, dup := m[name]; dup && prev != v {
			return stmt.Errorf(yangerrors.ErrDuplicateDefinition, "prefix %s is bound more than once", name)
		}
		m[name] = v
		return nil
	case stmt.NamespaceGrouping, stmt.NamespaceTypedef:
		scope := c.parent
		if scope == nil {
			scope = c
		}
		m := scope.scope(ns, true)
		if _, dup := m[name]; dup {
			return stmt.Errorf(yangerrors.ErrDuplicateDefinition, "%s %s is defined more than once", c.keyword, name)
		}
		m[name] = v
		if scope.parent != nil {
			return nil
		}
	}
	owner, ok := c.owner()
	if !ok {
		return stmt.Errorf(yangerrors.ErrUnknownModule, "%s %s has no owning module", c.keyword, name)
	}
	m := c.b.moduleScope(owner, ns)
	if _, dup := m[name]; dup {
		return stmt.Errorf(yangerrors.ErrDuplicateDefinition, "%s %s is defined more than once in module %s", c.keyword, name, owner.raw)
	}
	m[name] = v
	return nil
}

func (c *stmtContext) Lookup(ns stmt.Namespace, name string) (stmt.Context, bool) {
	var found *stmtContext
	switch ns {
	case stmt.NamespaceModule, stmt.NamespaceSubmodule:
		found = c.b.lookupGlobal(ns, name)
	case stmt.NamespacePrefix:
		found = c.lexical().root().scope(ns, false)[name]
	case stmt.NamespaceGrouping, stmt.NamespaceTypedef:
		for cur := c.lexical(); cur != nil && found == nil; cur = cur.parent {
			found = cur.scope(ns, false)[name]
		}
		if found == nil {
			if owner, ok := c.owner(); ok {
				found = c.b.moduleScope(owner, ns)[name]
			}
		}
	default:
		if owner, ok := c.owner(); ok {
			found = c.b.moduleScope(owner, ns)[name]
		}
	}
	if found == nil {
		return nil, false
	}
	return found, true
}

func (c *stmtContext) LookupIn(ns stmt.Namespace, module stmt.Context, name string) (stmt.Context, bool) {
	m, ok := module.(*stmtContext)
	if !ok {
		return nil, false
	}
	found := c.b.moduleScope(m, ns)[name]
	if found == nil {
		return nil, false
	}
	return found, true
}

func (c *stmtContext) FeatureEnabled(q model.QName) bool {
	return c.b.features == nil || c.b.features(q)
}

func (c *stmtContext) Effective() (model.Effective, error) {
	if c.effective != nil {
		return c.effective, nil
	}
	if c.building {
		return nil, c.b.locate(c, stmt.Errorf(yangerrors.ErrUnknownType, "%s %s is defined in terms of itself", c.keyword, c.raw))
	}
	c.building = true
	defer func() { c.building = false }()

	var subs []model.Effective
	if !stmt.IsTemplate(c.support) {
		for _, ch := range c.live() {
			e, err := ch.Effective()
			if err != nil {
				return nil, err
			}
			subs = append(subs, e)
		}
	}
	e, err := c.support.CreateEffective(c, subs)
	if err != nil {
		return nil, c.b.locate(c, err)
	}
	c.effective = e
	return e, nil
}

func (c *stmtContext) Remove()       { c.removed = true }
func (c *stmtContext) Removed() bool { return c.removed }

// detached reports whether the statement or an ancestor was removed.
func (c *stmtContext) detached() bool {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.removed {
			return true
		}
	}
	return false
}

func (c *stmtContext) InTemplate() bool {
	for cur := c.parent; cur != nil; cur = cur.parent {
		if stmt.IsTemplate(cur.support) {
			return true
		}
	}
	return false
}

func (c *stmtContext) CopyTo(parent stmt.Context, opts stmt.CopyOptions) stmt.Context {
	p := parent.(*stmtContext)
	cp := c.copyTree(p, opts)
	if opts.Module != (model.QNameModule{}) {
		m := opts.Module
		cp.module = &m
	}
	idx := len(p.children)
	if after, ok := opts.After.(*stmtContext); ok && after != nil {
		if i := slices.Index(p.children, after); i >= 0 {
			idx = i + 1
		}
	}
	p.children = slices.Insert(p.children, idx, cp)
	c.b.track(cp)
	return cp
}

func (c *stmtContext) copyTree(parent *stmtContext, opts stmt.CopyOptions) *stmtContext {
	cp := &stmtContext{
		b:           c.b,
		src:         c.src,
		keyword:     c.keyword,
		raw:         c.raw,
		hasArg:      c.hasArg,
		pos:         c.pos,
		parent:      parent,
		origin:      c,
		support:     c.support,
		arg:         c.arg,
		declared:    c.declared,
		mutated:     c.mutated,
		addedByUses: c.addedByUses || opts.AddedByUses,
		augmenting:  c.augmenting || opts.Augmenting,
	}
	if len(c.data) > 0 {
		cp.data = make(map[string]any, len(c.data))
		for k, v := range c.data {
			cp.data[k] = v
		}
	}
	for _, ch := range c.children {
		if ch.removed {
			continue
		}
		cp.children = append(cp.children, ch.copyTree(cp, opts))
	}
	return cp
}

func (c *stmtContext) SetData(key string, value any) {
	if c.data == nil {
		c.data = make(map[string]any)
	}
	c.data[key] = value
}

func (c *stmtContext) Data(key string) any { return c.data[key] }

func (c *stmtContext) prefixed() bool { return strings.Contains(c.keyword, ":") }
