package rfc6020

import (
	"github.com/jacoelho/yang/internal/model"
	"github.com/jacoelho/yang/internal/source"
	"github.com/jacoelho/yang/internal/stmt"
)

type extensionSupport struct {
	stmt.BaseSupport
}

func (extensionSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	return parseIdentifier(ctx, raw)
}

func (extensionSupport) OnStatementDefinition(ctx stmt.Context) error {
	return ctx.Define(stmt.NamespaceExtension, ctx.RawArgument(), ctx)
}

func (extensionSupport) CreateEffective(ctx stmt.Context, subs []model.Effective) (model.Effective, error) {
	ext := &model.Extension{
		Base:   model.NewBase(ctx.Keyword(), ctx.Argument(), ctx.Declared(), subs),
		Name:   ctx.QName(),
		Status: model.StatusCurrent,
	}
	for _, sub := range subs {
		switch sub.Keyword() {
		case "argument":
			ext.ArgumentName, _ = sub.Argument().(string)
			ext.YinElement, _ = model.FirstArgument[bool](sub, "yin-element")
		case "description":
			ext.Description, _ = sub.Argument().(string)
		case "status":
			ext.Status, _ = sub.Argument().(model.Status)
		}
	}
	return ext, nil
}

// UnknownSupport handles extension instances and keywords without a
// registered support. It accepts any argument and any substatements.
type UnknownSupport struct {
	stmt.BaseSupport
	parse argParser
}

// NewUnknownSupport returns the catch-all support.
func NewUnknownSupport() UnknownSupport {
	return UnknownSupport{}
}

func (s UnknownSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	if s.parse != nil {
		return s.parse(ctx, raw)
	}
	return raw, nil
}

func (UnknownSupport) CreateEffective(ctx stmt.Context, subs []model.Effective) (model.Effective, error) {
	u := &model.Unknown{
		Base:          model.NewBase(ctx.Keyword(), ctx.Argument(), ctx.Declared(), subs),
		NodeParameter: ctx.RawArgument(),
		Path:          ctx.SchemaPath(),
	}
	if q, err := stmt.QNameOf(ctx, ctx.Keyword()); err == nil && ctx.Keyword() != q.Name {
		u.Extension = q
	}
	return u, nil
}

// openconfigVersion is the support of the openconfig-version extension: an
// unknown statement whose argument must be a semantic version.
func openconfigVersion() UnknownSupport {
	return UnknownSupport{
		BaseSupport: stmt.BaseSupport{Name: "openconfig-version", Cards: none},
		parse: func(ctx stmt.Context, raw string) (any, error) {
			v, err := source.ParseSemVer(raw)
			if err != nil {
				return nil, invalid(ctx.Keyword(), raw, "semantic version")
			}
			return v, nil
		},
	}
}
