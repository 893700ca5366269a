package rfc6020

import (
	"errors"

	yangerrors "github.com/jacoelho/yang/errors"
	"github.com/jacoelho/yang/internal/model"
	"github.com/jacoelho/yang/internal/stmt"
)

const dataTarget = "rfc6020.target"

type augmentSupport struct {
	stmt.BaseSupport
}

func (augmentSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	return parseAugmentTarget(ctx, raw)
}

func (augmentSupport) MutationStep() stmt.MutationStep { return stmt.StepAugments }

// resolveTarget finds the schema node named by a target argument. A target
// that does not exist yet may be created by a later mutation, so it is
// reported as not ready.
func resolveTarget(ctx stmt.Context) (stmt.Context, error) {
	segs, _ := ctx.Argument().([]string)
	var (
		target stmt.Context
		err    error
	)
	if parent := ctx.Parent(); parent != nil && parent.Keyword() == "uses" {
		target, err = stmt.FindTarget(ctx, parent.Parent(), segs)
	} else {
		target, err = stmt.FindAbsoluteTarget(ctx, segs)
	}
	if err != nil {
		var re *yangerrors.ReactorError
		if errors.As(err, &re) && re.Code == yangerrors.ErrMissingTarget {
			return nil, stmt.NotReady(stmt.Errorf(yangerrors.ErrMissingTarget, "%s target %s not found", ctx.Keyword(), ctx.RawArgument()))
		}
		return nil, err
	}
	return target, nil
}

// Mutate injects the augmenting schema nodes into the target. They keep the
// namespace of the augmenting module.
func (augmentSupport) Mutate(ctx stmt.Context) error {
	target, err := resolveTarget(ctx)
	if err != nil {
		return err
	}
	ctx.SetData(dataTarget, target.SchemaPath())
	for _, child := range ctx.Substatements() {
		if !stmt.IsSchemaTreeNode(child.Support()) && child.Keyword() != "uses" {
			continue
		}
		child.CopyTo(target, stmt.CopyOptions{Module: ctx.Module(), Augmenting: true})
	}
	return nil
}

// CreateEffective keeps only non-schema substatements; the augmenting nodes
// are built at the target.
func (augmentSupport) CreateEffective(ctx stmt.Context, subs []model.Effective) (model.Effective, error) {
	var kept []model.Effective
	for _, s := range subs {
		if _, ok := s.(model.SchemaNode); !ok {
			kept = append(kept, s)
		}
	}
	path, _ := ctx.Data(dataTarget).(model.SchemaPath)
	return &model.Augment{
		Base:   model.NewBase(ctx.Keyword(), ctx.Argument(), ctx.Declared(), kept),
		Target: path,
	}, nil
}
