package rfc6020

import (
	"strings"

	"github.com/jacoelho/yang/internal/model"
	"github.com/jacoelho/yang/internal/stmt"
)

// schemaNodeSupport covers every statement that occupies the schema tree.
type schemaNodeSupport struct {
	stmt.BaseSupport
	// anonymous nodes (input, output) take no argument.
	anonymous bool
}

func newSchemaNode(keyword string, cards stmt.Cardinalities) schemaNodeSupport {
	return schemaNodeSupport{BaseSupport: stmt.BaseSupport{Name: keyword, Cards: cards}}
}

func (s schemaNodeSupport) SchemaTreeNode() bool { return true }

func (s schemaNodeSupport) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	if s.anonymous {
		return nil, nil
	}
	return parseIdentifier(ctx, raw)
}

// effectiveConfig walks ancestors for the nearest config statement.
func effectiveConfig(ctx stmt.Context) bool {
	for cur := ctx; cur != nil; cur = cur.Parent() {
		switch cur.Keyword() {
		case "input", "output", "notification", "rpc", "action":
			return true
		}
		if c := cur.First("config"); c != nil {
			if v, ok := c.Argument().(bool); ok {
				return v
			}
		}
	}
	return true
}

func (s schemaNodeSupport) CreateEffective(ctx stmt.Context, subs []model.Effective) (model.Effective, error) {
	n := &model.DataNode{
		Base:        model.NewBase(ctx.Keyword(), ctx.Argument(), ctx.Declared(), subs),
		Name:        ctx.QName(),
		SchemaPath:  ctx.SchemaPath(),
		Status:      model.StatusCurrent,
		Config:      effectiveConfig(ctx),
		AddedByUses: ctx.AddedByUses(),
		Augmenting:  ctx.Augmenting(),
	}
	for _, sub := range subs {
		if child, ok := sub.(model.SchemaNode); ok {
			n.Nodes = append(n.Nodes, child)
			continue
		}
		switch sub.Keyword() {
		case "description":
			n.Description, _ = sub.Argument().(string)
		case "reference":
			n.Reference, _ = sub.Argument().(string)
		case "status":
			n.Status, _ = sub.Argument().(model.Status)
		case "mandatory":
			n.Mandatory, _ = sub.Argument().(bool)
		case "presence":
			n.Presence, _ = sub.Argument().(string)
		case "default":
			n.Default, _ = sub.Argument().(string)
		case "units":
			n.Units, _ = sub.Argument().(string)
		case "min-elements":
			n.MinElems, _ = sub.Argument().(int)
		case "max-elements":
			n.MaxElems, _ = sub.Argument().(int)
		case "must":
			if m, ok := sub.Argument().(string); ok {
				n.Musts = append(n.Musts, m)
			}
		case "type":
			if t, ok := sub.(*model.TypeStatement); ok {
				n.Type = t.Definition
			}
		case "key":
			raw, _ := sub.Argument().(string)
			for _, k := range strings.Fields(raw) {
				q, err := stmt.QNameOf(ctx, k)
				if err != nil {
					return nil, err
				}
				// keys name children, which live in this node's namespace
				n.Keys = append(n.Keys, model.QName{Module: ctx.Module(), Name: q.Name})
			}
		}
	}
	if n.Type != nil {
		if n.Default == "" {
			n.Default = n.Type.Default
		}
		if n.Units == "" {
			n.Units = n.Type.Units
		}
	}
	return n, nil
}

func schemaNodeSupports() []stmt.Support {
	input := newSchemaNode("input", ioCards)
	input.anonymous = true
	output := newSchemaNode("output", ioCards)
	output.anonymous = true
	return []stmt.Support{
		newSchemaNode("container", containerCards),
		newSchemaNode("leaf", leafCards),
		newSchemaNode("leaf-list", leafListCards),
		newSchemaNode("list", listCards),
		newSchemaNode("choice", choiceCards),
		newSchemaNode("case", caseCards),
		newSchemaNode("anydata", anyCards),
		newSchemaNode("anyxml", anyCards),
		newSchemaNode("rpc", operationCards),
		newSchemaNode("action", operationCards),
		newSchemaNode("notification", notificationCards),
		input,
		output,
	}
}
