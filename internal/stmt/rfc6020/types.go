package rfc6020

import (
	"strings"

	yangerrors "github.com/jacoelho/yang/errors"
	"github.com/jacoelho/yang/internal/model"
	"github.com/jacoelho/yang/internal/stmt"
)

type typedefSupport struct {
	stmt.BaseSupport
}

func (typedefSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	if model.IsBuiltinType(raw) {
		return nil, invalid(ctx.Keyword(), raw, "name that is not a builtin type")
	}
	return parseIdentifier(ctx, raw)
}

func (typedefSupport) OnStatementDefinition(ctx stmt.Context) error {
	return ctx.Define(stmt.NamespaceTypedef, ctx.RawArgument(), ctx)
}

func (typedefSupport) CreateEffective(ctx stmt.Context, subs []model.Effective) (model.Effective, error) {
	def := &model.TypeDefinition{Name: ctx.QName(), Status: model.StatusCurrent}
	for _, sub := range subs {
		switch sub.Keyword() {
		case "type":
			if t, ok := sub.(*model.TypeStatement); ok {
				def.BaseType = t.Definition
			}
		case "default":
			def.Default, _ = sub.Argument().(string)
		case "units":
			def.Units, _ = sub.Argument().(string)
		case "description":
			def.Description, _ = sub.Argument().(string)
		case "status":
			def.Status, _ = sub.Argument().(model.Status)
		}
	}
	if def.BaseType != nil {
		if def.Default == "" {
			def.Default = def.BaseType.Default
		}
		if def.Units == "" {
			def.Units = def.BaseType.Units
		}
	}
	return &model.Typedef{Base: model.NewBase(ctx.Keyword(), ctx.Argument(), ctx.Declared(), subs), Definition: def}, nil
}

type typeSupport struct {
	stmt.BaseSupport
}

func (typeSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	if model.IsBuiltinType(raw) {
		return raw, nil
	}
	return parsePrefixedIdentifier(ctx, raw)
}

// baseDefinition resolves the named type: a builtin or a typedef reachable
// from the statement's lexical scope.
func baseDefinition(ctx stmt.Context) (*model.TypeDefinition, error) {
	name := ctx.RawArgument()
	if !strings.Contains(name, ":") {
		if def, ok := model.BuiltinType(name); ok {
			return def, nil
		}
	}
	td, found, err := stmt.LookupName(ctx, stmt.NamespaceTypedef, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, stmt.Errorf(yangerrors.ErrUnknownType, "type %s is not defined", name)
	}
	eff, err := td.Effective()
	if err != nil {
		return nil, err
	}
	typedef, ok := eff.(*model.Typedef)
	if !ok {
		return nil, stmt.Errorf(yangerrors.ErrUnknownType, "%s is not a typedef", name)
	}
	return typedef.Definition, nil
}

// CreateEffective resolves the base type and derives a restricted type only
// when restriction substatements are present.
func (typeSupport) CreateEffective(ctx stmt.Context, subs []model.Effective) (model.Effective, error) {
	base, err := baseDefinition(ctx)
	if err != nil {
		return nil, err
	}
	var r model.Restrictions
	for _, sub := range subs {
		switch sub.Keyword() {
		case "range":
			r.Range, _ = sub.Argument().(string)
		case "length":
			r.Length, _ = sub.Argument().(string)
		case "pattern":
			if p, ok := sub.Argument().(string); ok {
				r.Patterns = append(r.Patterns, p)
			}
		case "enum":
			if e, ok := sub.Argument().(string); ok {
				r.Enums = append(r.Enums, e)
			}
		case "bit":
			if b, ok := sub.Argument().(string); ok {
				r.Bits = append(r.Bits, b)
			}
		case "fraction-digits":
			r.FractionDigits, _ = sub.Argument().(int)
		case "path":
			r.Path, _ = sub.Argument().(string)
		case "type":
			if t, ok := sub.(*model.TypeStatement); ok {
				r.Union = append(r.Union, t.Definition)
			}
		}
	}
	if bases := ctx.All("base"); len(bases) > 0 {
		r.IdentityBases, err = resolveIdentities(ctx)
		if err != nil {
			return nil, err
		}
	}
	return &model.TypeStatement{
		Base:       model.NewBase(ctx.Keyword(), ctx.Argument(), ctx.Declared(), subs),
		Definition: model.Restrict(base, r),
	}, nil
}
