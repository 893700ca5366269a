package rfc6020

import (
	yangerrors "github.com/jacoelho/yang/errors"
	"github.com/jacoelho/yang/internal/model"
	"github.com/jacoelho/yang/internal/stmt"
)

type deviationSupport struct {
	stmt.BaseSupport
}

func (deviationSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	return parseSchemaNodeID(true)(ctx, raw)
}

func (deviationSupport) MutationStep() stmt.MutationStep { return stmt.StepDeviations }

// singleValued properties may occur at most once on a target.
var singleValued = map[string]bool{
	"config": true, "mandatory": true, "min-elements": true, "max-elements": true,
	"type": true, "units": true,
}

// Mutate applies each deviate to the target in order.
func (deviationSupport) Mutate(ctx stmt.Context) error {
	target, err := resolveTarget(ctx)
	if err != nil {
		return err
	}
	ctx.SetData(dataTarget, target.SchemaPath())
	for _, d := range ctx.All("deviate") {
		kind, _ := d.Argument().(model.DeviateKind)
		if err := applyDeviate(kind, d, target); err != nil {
			return err
		}
		if kind == model.DeviateNotSupported {
			return nil
		}
	}
	return nil
}

func applyDeviate(kind model.DeviateKind, d, target stmt.Context) error {
	switch kind {
	case model.DeviateNotSupported:
		target.Remove()
	case model.DeviateAdd:
		for _, prop := range d.Substatements() {
			if singleValued[prop.Keyword()] || (prop.Keyword() == "default" && target.Keyword() != "leaf-list") {
				if target.First(prop.Keyword()) != nil {
					return stmt.Errorf(yangerrors.ErrInvalidDeviation, "deviate add: %s already present on %s", prop.Keyword(), target.RawArgument())
				}
			}
			prop.CopyTo(target, stmt.CopyOptions{})
		}
	case model.DeviateReplace:
		for _, prop := range d.Substatements() {
			existing := target.All(prop.Keyword())
			if len(existing) == 0 {
				return stmt.Errorf(yangerrors.ErrInvalidDeviation, "deviate replace: %s not present on %s", prop.Keyword(), target.RawArgument())
			}
			for _, e := range existing {
				e.Remove()
			}
			prop.CopyTo(target, stmt.CopyOptions{})
		}
	case model.DeviateDelete:
		for _, prop := range d.Substatements() {
			found := false
			for _, e := range target.All(prop.Keyword()) {
				if e.RawArgument() == prop.RawArgument() {
					e.Remove()
					found = true
					break
				}
			}
			if !found {
				return stmt.Errorf(yangerrors.ErrInvalidDeviation, "deviate delete: %s %q not present on %s", prop.Keyword(), prop.RawArgument(), target.RawArgument())
			}
		}
	}
	return nil
}

func (deviationSupport) CreateEffective(ctx stmt.Context, subs []model.Effective) (model.Effective, error) {
	path, _ := ctx.Data(dataTarget).(model.SchemaPath)
	dev := &model.Deviation{
		Base:   model.NewBase(ctx.Keyword(), ctx.Argument(), ctx.Declared(), subs),
		Target: path,
	}
	for _, sub := range subs {
		switch e := sub.(type) {
		case *model.Deviate:
			dev.Deviates = append(dev.Deviates, e)
		default:
			switch sub.Keyword() {
			case "description":
				dev.Description, _ = sub.Argument().(string)
			case "reference":
				dev.Reference, _ = sub.Argument().(string)
			}
		}
	}
	return dev, nil
}

type deviateSupport struct {
	stmt.BaseSupport
}

func (deviateSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	switch k := model.DeviateKind(raw); k {
	case model.DeviateNotSupported, model.DeviateAdd, model.DeviateReplace, model.DeviateDelete:
		return k, nil
	}
	return nil, invalid(ctx.Keyword(), raw, "not-supported, add, replace or delete")
}

func (deviateSupport) CreateEffective(ctx stmt.Context, subs []model.Effective) (model.Effective, error) {
	kind, _ := ctx.Argument().(model.DeviateKind)
	return &model.Deviate{Base: model.NewBase(ctx.Keyword(), ctx.Argument(), ctx.Declared(), subs), Kind: kind}, nil
}
