package rfc6020

import (
	"strings"

	yangerrors "github.com/jacoelho/yang/errors"
	"github.com/jacoelho/yang/internal/model"
	"github.com/jacoelho/yang/internal/stmt"
)

type featureSupport struct {
	stmt.BaseSupport
}

func (featureSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	return parseIdentifier(ctx, raw)
}

func (featureSupport) OnStatementDefinition(ctx stmt.Context) error {
	return ctx.Define(stmt.NamespaceFeature, ctx.RawArgument(), ctx)
}

type ifFeatureSupport struct {
	stmt.BaseSupport
}

// ParseArgument parses an if-feature expression into a tree.
func (ifFeatureSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	p := &featureExprParser{tokens: tokenizeFeatureExpr(raw)}
	expr, err := p.parseOr()
	if err != nil || p.pos != len(p.tokens) {
		return nil, invalid(ctx.Keyword(), raw, "if-feature expression")
	}
	return expr, nil
}

func (ifFeatureSupport) MutationStep() stmt.MutationStep { return stmt.StepFeatures }

// Mutate removes the parent statement when the condition is false.
func (ifFeatureSupport) Mutate(ctx stmt.Context) error {
	parent := ctx.Parent()
	if parent == nil || parent.Keyword() == "feature" || parent.Keyword() == "refine" {
		return nil
	}
	ok, err := evalIfFeature(ctx, 0)
	if err != nil {
		return err
	}
	if !ok {
		parent.Remove()
	}
	return nil
}

// maxFeatureDepth bounds feature-on-feature dependency chains.
const maxFeatureDepth = 64

func evalIfFeature(ctx stmt.Context, depth int) (bool, error) {
	expr, _ := ctx.Argument().(featureExpr)
	if expr == nil {
		return true, nil
	}
	return expr.eval(func(name string) (bool, error) {
		def, found, err := stmt.LookupName(ctx, stmt.NamespaceFeature, name)
		if err != nil {
			return false, err
		}
		if !found {
			return false, stmt.Errorf(yangerrors.ErrUnknownFeature, "feature %s is not defined", name)
		}
		return featureEnabled(def, depth+1)
	})
}

// featureEnabled reports whether a feature is enabled by the predicate and
// all of its own if-feature conditions.
func featureEnabled(def stmt.Context, depth int) (bool, error) {
	if depth > maxFeatureDepth {
		return false, stmt.Errorf(yangerrors.ErrUnknownFeature, "feature %s depends on itself", def.RawArgument())
	}
	if !def.FeatureEnabled(def.QName()) {
		return false, nil
	}
	for _, cond := range def.All("if-feature") {
		ok, err := evalIfFeature(cond, depth)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

type featureExpr interface {
	eval(lookup func(string) (bool, error)) (bool, error)
}

type featureRef string

func (f featureRef) eval(lookup func(string) (bool, error)) (bool, error) { return lookup(string(f)) }

type featureNot struct{ x featureExpr }

func (n featureNot) eval(lookup func(string) (bool, error)) (bool, error) {
	v, err := n.x.eval(lookup)
	return !v, err
}

type featureBin struct {
	and  bool
	l, r featureExpr
}

func (b featureBin) eval(lookup func(string) (bool, error)) (bool, error) {
	l, err := b.l.eval(lookup)
	if err != nil {
		return false, err
	}
	r, err := b.r.eval(lookup)
	if err != nil {
		return false, err
	}
	if b.and {
		return l && r, nil
	}
	return l || r, nil
}

func tokenizeFeatureExpr(s string) []string {
	s = strings.NewReplacer("(", " ( ", ")", " ) ").Replace(s)
	return strings.Fields(s)
}

type featureExprParser struct {
	tokens []string
	pos    int
}

func (p *featureExprParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *featureExprParser) parseOr() (featureExpr, error) {
	l, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek() == "or" {
		p.pos++
		r, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l = featureBin{l: l, r: r}
	}
	return l, nil
}

func (p *featureExprParser) parseAnd() (featureExpr, error) {
	l, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.peek() == "and" {
		p.pos++
		r, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		l = featureBin{and: true, l: l, r: r}
	}
	return l, nil
}

func (p *featureExprParser) parseFactor() (featureExpr, error) {
	tok := p.peek()
	switch tok {
	case "not":
		p.pos++
		x, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return featureNot{x: x}, nil
	case "(":
		p.pos++
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, errFeatureExpr
		}
		p.pos++
		return x, nil
	case "", ")", "and", "or":
		return nil, errFeatureExpr
	}
	p.pos++
	return featureRef(tok), nil
}

var errFeatureExpr = stmt.Errorf(yangerrors.ErrInvalidArgument, "malformed if-feature expression")

type identitySupport struct {
	stmt.BaseSupport
}

func (identitySupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	return parseIdentifier(ctx, raw)
}

func (identitySupport) OnStatementDefinition(ctx stmt.Context) error {
	return ctx.Define(stmt.NamespaceIdentity, ctx.RawArgument(), ctx)
}

func resolveIdentities(ctx stmt.Context) ([]model.QName, error) {
	var out []model.QName
	for _, b := range ctx.All("base") {
		def, found, err := stmt.LookupName(b, stmt.NamespaceIdentity, b.RawArgument())
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, stmt.Errorf(yangerrors.ErrUnknownIdentity, "identity %s is not defined", b.RawArgument())
		}
		out = append(out, def.QName())
	}
	return out, nil
}

func (identitySupport) CreateEffective(ctx stmt.Context, subs []model.Effective) (model.Effective, error) {
	bases, err := resolveIdentities(ctx)
	if err != nil {
		return nil, err
	}
	return &model.Identity{
		Base:  model.NewBase(ctx.Keyword(), ctx.Argument(), ctx.Declared(), subs),
		Name:  ctx.QName(),
		Bases: bases,
	}, nil
}
