package rfc6020

import (
	"errors"

	yangerrors "github.com/jacoelho/yang/errors"
	"github.com/jacoelho/yang/internal/graphcycle"
	"github.com/jacoelho/yang/internal/model"
	"github.com/jacoelho/yang/internal/stmt"
)

type groupingSupport struct {
	stmt.BaseSupport
}

func (groupingSupport) Template() bool { return true }

func (groupingSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	return parseIdentifier(ctx, raw)
}

func (groupingSupport) OnStatementDefinition(ctx stmt.Context) error {
	return ctx.Define(stmt.NamespaceGrouping, ctx.RawArgument(), ctx)
}

type usesSupport struct {
	stmt.BaseSupport
}

func (usesSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	return parsePrefixedIdentifier(ctx, raw)
}

func (usesSupport) MutationStep() stmt.MutationStep { return stmt.StepGroupings }

func findGrouping(ctx stmt.Context) (stmt.Context, error) {
	g, ok, err := stmt.LookupName(ctx, stmt.NamespaceGrouping, ctx.RawArgument())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, stmt.Errorf(yangerrors.ErrUnknownGrouping, "grouping %s not found", ctx.RawArgument())
	}
	return g, nil
}

// usesWithin collects uses statements nested in a grouping, excluding those
// inside nested groupings, which are checked when they are used.
func usesWithin(g stmt.Context) []stmt.Context {
	var out []stmt.Context
	var walk func(stmt.Context)
	walk = func(c stmt.Context) {
		for _, sub := range c.Substatements() {
			if stmt.IsTemplate(sub.Support()) {
				continue
			}
			if sub.Keyword() == "uses" {
				out = append(out, sub)
			}
			walk(sub)
		}
	}
	walk(g)
	return out
}

const dataAcyclic = "rfc6020.acyclic"

// checkGroupingCycle rejects groupings that instantiate themselves directly
// or through other groupings.
func checkGroupingCycle(start stmt.Context) error {
	if start.Data(dataAcyclic) != nil {
		return nil
	}
	err := graphcycle.Detect(graphcycle.Config[stmt.Context]{
		Starts: []stmt.Context{start},
		Next: func(g stmt.Context) ([]stmt.Context, error) {
			var next []stmt.Context
			for _, u := range usesWithin(g) {
				target, err := findGrouping(u)
				if err != nil {
					return nil, err
				}
				next = append(next, target)
			}
			return next, nil
		},
	})
	var cycle graphcycle.CycleError[stmt.Context]
	if errors.As(err, &cycle) {
		names := make([]string, len(cycle.Path))
		for i, g := range cycle.Path {
			names[i] = g.RawArgument()
		}
		return stmt.Errorf(yangerrors.ErrGroupingCycle, "grouping %s instantiates itself via %v", cycle.Key.RawArgument(), names)
	}
	if err != nil {
		return err
	}
	start.SetData(dataAcyclic, true)
	return nil
}

const dataExpanded = "rfc6020.expanded"

// Mutate copies the grouping's schema nodes next to the uses statement. A
// uses whose own if-feature is false is removed without copying. Refines
// and augments under uses run as their own mutations once the copies, and
// any uses nested in them, exist.
func (usesSupport) Mutate(ctx stmt.Context) error {
	g, err := findGrouping(ctx)
	if err != nil {
		return err
	}
	if err := checkGroupingCycle(g); err != nil {
		return err
	}
	for _, cond := range ctx.All("if-feature") {
		ok, err := evalIfFeature(cond, 0)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Remove()
			return nil
		}
	}
	parent := ctx.Parent()
	after := ctx
	for _, child := range g.Substatements() {
		if !stmt.IsSchemaTreeNode(child.Support()) && child.Keyword() != "uses" {
			continue
		}
		after = child.CopyTo(parent, stmt.CopyOptions{AddedByUses: true, After: after})
	}
	ctx.SetData(dataExpanded, true)
	return nil
}

type refineSupport struct {
	stmt.BaseSupport
}

func (refineSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	return parseSchemaNodeID(false)(ctx, raw)
}

func (refineSupport) MutationStep() stmt.MutationStep { return stmt.StepRefines }

var multiValued = map[string]bool{"must": true, "if-feature": true, "unique": true}

// Mutate applies the refine to its target among the nodes the enclosing
// uses instantiated. Single-valued properties replace the target's own.
func (refineSupport) Mutate(ctx stmt.Context) error {
	uses := ctx.Parent()
	if uses == nil || uses.Keyword() != "uses" {
		return nil
	}
	if uses.Data(dataExpanded) == nil {
		return stmt.NotReady(stmt.Errorf(yangerrors.ErrStalled, "uses %s is not expanded", uses.RawArgument()))
	}
	segs, _ := ctx.Argument().([]string)
	target, err := stmt.FindTarget(ctx, uses.Parent(), segs)
	if err != nil {
		// nested uses may still be copying the target in
		return stmt.NotReady(err)
	}
	for _, prop := range ctx.Substatements() {
		if !multiValued[prop.Keyword()] {
			for _, existing := range target.All(prop.Keyword()) {
				existing.Remove()
			}
		}
		prop.CopyTo(target, stmt.CopyOptions{})
	}
	return nil
}

// usesEffective is the effective form of uses: it carries the grouping
// name; the instantiated nodes live beside it in the parent.
type usesEffective struct {
	model.Generic
	Grouping model.QName
}

func (usesSupport) CreateEffective(ctx stmt.Context, subs []model.Effective) (model.Effective, error) {
	q, err := stmt.QNameOf(ctx, ctx.RawArgument())
	if err != nil {
		return nil, err
	}
	return &usesEffective{
		Generic:  model.Generic{Base: model.NewBase(ctx.Keyword(), ctx.Argument(), ctx.Declared(), subs)},
		Grouping: q,
	}, nil
}

// CreateEffective keeps templates shallow: their content is instantiated by
// uses and built at the instantiation site.
func (groupingSupport) CreateEffective(ctx stmt.Context, _ []model.Effective) (model.Effective, error) {
	return &model.Generic{Base: model.NewBase(ctx.Keyword(), ctx.Argument(), ctx.Declared(), nil)}, nil
}
