package rfc6020

import (
	yangerrors "github.com/jacoelho/yang/errors"
	"github.com/jacoelho/yang/internal/model"
	"github.com/jacoelho/yang/internal/source"
	"github.com/jacoelho/yang/internal/stmt"
)

type moduleSupport struct {
	stmt.BaseSupport
	submodule bool
}

func (s moduleSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	return parseIdentifier(ctx, raw)
}

func latestRevision(ctx stmt.Context) source.Revision {
	var latest source.Revision
	for _, r := range ctx.All("revision") {
		if rev, err := source.ParseRevision(r.RawArgument()); err == nil && rev.Compare(latest) > 0 {
			latest = rev
		}
	}
	return latest
}

func rawOf(ctx stmt.Context, keyword string) string {
	if sub := ctx.First(keyword); sub != nil {
		return sub.RawArgument()
	}
	return ""
}

// OnPreLinkage publishes the module identity, namespace and own prefix.
func (s moduleSupport) OnPreLinkage(ctx stmt.Context) error {
	key := source.Identifier{Name: ctx.RawArgument(), Revision: latestRevision(ctx)}.String()
	if s.submodule {
		return ctx.Define(stmt.NamespaceSubmodule, key, ctx)
	}
	if err := ctx.Define(stmt.NamespaceModule, key, ctx); err != nil {
		return err
	}
	ctx.SetData(stmt.DataOwner, ctx)
	ctx.SetData(stmt.DataModule, model.QNameModule{Namespace: rawOf(ctx, "namespace"), Revision: latestRevision(ctx)})
	return ctx.Define(stmt.NamespacePrefix, rawOf(ctx, "prefix"), ctx)
}

func (s moduleSupport) CreateEffective(ctx stmt.Context, subs []model.Effective) (model.Effective, error) {
	m := &model.Module{
		Base:        model.NewBase(ctx.Keyword(), ctx.Argument(), ctx.Declared(), subs),
		Name:        ctx.RawArgument(),
		Revision:    latestRevision(ctx),
		ID:          ctx.Source(),
		QNameModule: ctx.Module(),
		Namespace:   ctx.Module().Namespace,
		YangVersion: "1",
	}
	if owner, ok := ctx.OwnerModule(); ok && s.submodule {
		m.BelongsTo = owner.RawArgument()
	}
	m.Prefix = rawOf(ctx, "prefix")
	for _, sub := range subs {
		switch e := sub.(type) {
		case model.SchemaNode:
			m.Nodes = append(m.Nodes, e)
		case *model.Identity:
			m.Identities = append(m.Identities, e)
		case *model.Extension:
			m.Extensions = append(m.Extensions, e)
		case *model.Typedef:
			m.Typedefs = append(m.Typedefs, e.Definition)
		case *model.Deviation:
			m.Deviations = append(m.Deviations, e)
		case *model.Augment:
			m.Augments = append(m.Augments, e)
		case *model.Unknown:
			if e.Extension.Name == "openconfig-version" || e.Extension.Name == "semantic-version" {
				m.SemVer = source.SemVer(e.NodeParameter)
			}
		}
		switch sub.Keyword() {
		case "yang-version":
			m.YangVersion, _ = sub.Argument().(string)
		case "organization":
			m.Organization, _ = sub.Argument().(string)
		case "contact":
			m.Contact, _ = sub.Argument().(string)
		case "description":
			m.Description, _ = sub.Argument().(string)
		case "belongs-to":
			m.Prefix, _ = model.FirstArgument[string](sub, "prefix")
		case "feature":
			m.Features = append(m.Features, model.QName{Module: m.QNameModule, Name: sub.Argument().(string)})
		case "import":
			imp := model.Import{Module: sub.Argument().(string)}
			imp.Prefix, _ = model.FirstArgument[string](sub, "prefix")
			imp.Revision, _ = model.FirstArgument[source.Revision](sub, "revision-date")
			m.Imports = append(m.Imports, imp)
		case "include":
			if g, ok := sub.(*includeEffective); ok && g.submodule != nil {
				m.SubModules = append(m.SubModules, g.submodule)
			}
		}
	}
	return m, nil
}

type importSupport struct {
	stmt.BaseSupport
}

func (importSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	return parseIdentifier(ctx, raw)
}

// OnLinkage binds the import prefix to the module the resolver selected.
func (importSupport) OnLinkage(ctx stmt.Context) error {
	prefix := rawOf(ctx, "prefix")
	dep := source.Dependency{Kind: source.DependencyImport, Name: ctx.RawArgument(), Prefix: prefix}
	target, ok := ctx.Linked(dep)
	if !ok {
		return stmt.Errorf(yangerrors.ErrUnknownModule, "imported module %s is not part of the build", ctx.RawArgument())
	}
	return ctx.Define(stmt.NamespacePrefix, prefix, target)
}

const dataSubmodule = "rfc6020.submodule"

type includeSupport struct {
	stmt.BaseSupport
}

func (includeSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	return parseIdentifier(ctx, raw)
}

// OnLinkage attaches the included submodule.
func (includeSupport) OnLinkage(ctx stmt.Context) error {
	dep := source.Dependency{Kind: source.DependencyInclude, Name: ctx.RawArgument()}
	target, ok := ctx.Linked(dep)
	if !ok {
		return stmt.Errorf(yangerrors.ErrUnknownModule, "included submodule %s is not part of the build", ctx.RawArgument())
	}
	ctx.SetData(dataSubmodule, target)
	return nil
}

func (includeSupport) MutationStep() stmt.MutationStep { return stmt.StepIncludes }

// Mutate merges the submodule's schema tree into the owning module.
func (includeSupport) Mutate(ctx stmt.Context) error {
	sub, ok := ctx.Data(dataSubmodule).(stmt.Context)
	if !ok {
		return stmt.Errorf(yangerrors.ErrUnknownModule, "submodule %s not linked", ctx.RawArgument())
	}
	owner, ok := ctx.OwnerModule()
	if !ok {
		return stmt.Errorf(yangerrors.ErrUnknownModule, "no owning module for include %s", ctx.RawArgument())
	}
	if b, ok := sub.Data(stmt.DataOwner).(stmt.Context); !ok || b != owner {
		return stmt.Errorf(yangerrors.ErrUnknownModule, "submodule %s does not belong to %s", sub.RawArgument(), owner.RawArgument())
	}
	mergedKey := "rfc6020.merged." + sub.RawArgument()
	if owner.Data(mergedKey) != nil {
		return nil
	}
	owner.SetData(mergedKey, true)
	for _, child := range sub.Substatements() {
		if stmt.IsSchemaTreeNode(child.Support()) || child.Keyword() == "uses" {
			child.CopyTo(owner, stmt.CopyOptions{})
		}
	}
	return nil
}

type includeEffective struct {
	model.Generic
	submodule *model.Module
}

func (includeSupport) CreateEffective(ctx stmt.Context, subs []model.Effective) (model.Effective, error) {
	e := &includeEffective{Generic: model.Generic{Base: model.NewBase(ctx.Keyword(), ctx.Argument(), ctx.Declared(), subs)}}
	if sub, ok := ctx.Data(dataSubmodule).(stmt.Context); ok {
		eff, err := sub.Effective()
		if err != nil {
			return nil, err
		}
		e.submodule, _ = eff.(*model.Module)
	}
	return e, nil
}

type belongsToSupport struct {
	stmt.BaseSupport
}

func (belongsToSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	return parseIdentifier(ctx, raw)
}

// OnLinkage attaches the submodule to its module and binds the module prefix.
func (belongsToSupport) OnLinkage(ctx stmt.Context) error {
	module, ok := ctx.Lookup(stmt.NamespaceModule, ctx.RawArgument())
	if !ok {
		return stmt.Errorf(yangerrors.ErrUnknownModule, "belongs-to module %s is not part of the build", ctx.RawArgument())
	}
	root := ctx.Root()
	root.SetData(stmt.DataOwner, module)
	root.SetData(stmt.DataModule, module.Module())
	return ctx.Define(stmt.NamespacePrefix, rawOf(ctx, "prefix"), module)
}
