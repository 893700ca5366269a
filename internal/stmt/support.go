// Package stmt defines the statement support contract the reactor drives:
// per-keyword argument parsing, substatement cardinalities, phase hooks and
// declared/effective construction, plus the registry that maps keywords to
// supports.
package stmt

import (
	"github.com/jacoelho/yang/internal/model"
)

// Support is the behavior registered for one statement keyword.
type Support interface {
	Keyword() string
	// ParseArgument converts the raw argument. It runs once linkage is
	// complete, so prefixes may be resolved.
	ParseArgument(ctx Context, raw string) (any, error)
	// Substatements returns the allowed substatement cardinalities. A nil
	// table disables checking.
	Substatements() Cardinalities
	CreateDeclared(ctx Context, subs []model.Declared) (model.Declared, error)
	CreateEffective(ctx Context, subs []model.Effective) (model.Effective, error)

	OnPreLinkage(ctx Context) error
	OnLinkage(ctx Context) error
	OnStatementDefinition(ctx Context) error
	OnFullDeclaration(ctx Context) error
}

// SchemaTreeSupport is implemented by supports whose statements are schema
// tree nodes (data definitions, operations, input/output, notifications).
type SchemaTreeSupport interface {
	SchemaTreeNode() bool
}

// TemplateSupport is implemented by supports whose statements are templates
// (groupings): their subtrees are not mutated or built in place.
type TemplateSupport interface {
	Template() bool
}

// MutationStep orders model mutations. Lower steps run first, and the
// reactor restarts from the lowest step after any progress.
type MutationStep int

const (
	StepIncludes MutationStep = iota
	StepGroupings
	StepRefines
	StepFeatures
	StepAugments
	StepDeviations
)

// Mutator is implemented by supports that rewrite the statement tree during
// the effective model phase (uses, refine, if-feature, augment, deviation,
// include).
// Mutate may return an error matching ErrNotReady to be retried later.
type Mutator interface {
	MutationStep() MutationStep
	Mutate(ctx Context) error
}

// IsSchemaTreeNode reports whether s produces schema tree nodes.
func IsSchemaTreeNode(s Support) bool {
	st, ok := s.(SchemaTreeSupport)
	return ok && st.SchemaTreeNode()
}

// IsTemplate reports whether s produces templates.
func IsTemplate(s Support) bool {
	t, ok := s.(TemplateSupport)
	return ok && t.Template()
}

// BaseSupport provides no-op hooks, a string argument, a generic declared
// statement and a generic effective statement. Supports embed it and
// override what they need.
type BaseSupport struct {
	Name  string
	Cards Cardinalities
}

func (b BaseSupport) Keyword() string              { return b.Name }
func (b BaseSupport) Substatements() Cardinalities { return b.Cards }

func (BaseSupport) ParseArgument(_ Context, raw string) (any, error) { return raw, nil }

func (BaseSupport) OnPreLinkage(Context) error          { return nil }
func (BaseSupport) OnLinkage(Context) error             { return nil }
func (BaseSupport) OnStatementDefinition(Context) error { return nil }
func (BaseSupport) OnFullDeclaration(Context) error     { return nil }

// CreateDeclared builds a generic declared statement.
func (BaseSupport) CreateDeclared(ctx Context, subs []model.Declared) (model.Declared, error) {
	return model.NewDeclared(ctx.Keyword(), ctx.RawArgument(), ctx.Argument(), ctx.Position(), subs), nil
}

// CreateEffective builds a generic effective statement.
func (BaseSupport) CreateEffective(ctx Context, subs []model.Effective) (model.Effective, error) {
	return &model.Generic{Base: model.NewBase(ctx.Keyword(), ctx.Argument(), ctx.Declared(), subs)}, nil
}
