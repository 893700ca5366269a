package stmt

import (
	"strings"

	yangerrors "github.com/jacoelho/yang/errors"
	"github.com/jacoelho/yang/internal/model"
)

// ResolveName splits a possibly prefixed name and returns the module root
// the prefix is bound to. Unprefixed names belong to the module the
// statement is written in.
func ResolveName(ctx Context, name string) (Context, string, error) {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		prefix, local = "", name
	}
	if local == "" {
		return nil, "", Errorf(yangerrors.ErrInvalidArgument, "empty name in %q", name)
	}
	module, found := ctx.ResolvePrefix(prefix)
	if !found {
		return nil, "", Errorf(yangerrors.ErrUnknownPrefix, "prefix %q is not bound", prefix)
	}
	return module, local, nil
}

// QNameOf resolves a possibly prefixed name to a QName.
func QNameOf(ctx Context, name string) (model.QName, error) {
	module, local, err := ResolveName(ctx, name)
	if err != nil {
		return model.QName{}, err
	}
	return model.QName{Module: module.Module(), Name: local}, nil
}

// LookupName finds a definition named by a possibly prefixed name. Names in
// the statement's own module use lexical scoping; names in other modules are
// looked up among that module's top-level definitions.
func LookupName(ctx Context, ns Namespace, name string) (Context, bool, error) {
	module, local, err := ResolveName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if own, ok := ctx.ResolvePrefix(""); ok && own == module {
		found, ok := ctx.Lookup(ns, local)
		return found, ok, nil
	}
	found, ok := ctx.LookupIn(ns, module, local)
	return found, ok, nil
}

// ParseSchemaNodeID parses an absolute (/a:b/a:c) or descendant (b/c)
// schema node identifier into prefixed segments.
func ParseSchemaNodeID(arg string) (segments []string, absolute bool, err error) {
	arg = strings.TrimSpace(arg)
	absolute = strings.HasPrefix(arg, "/")
	trimmed := strings.TrimPrefix(arg, "/")
	if trimmed == "" {
		return nil, absolute, Errorf(yangerrors.ErrInvalidArgument, "empty schema node identifier %q", arg)
	}
	segments = strings.Split(trimmed, "/")
	for _, s := range segments {
		if s == "" {
			return nil, absolute, Errorf(yangerrors.ErrInvalidArgument, "invalid schema node identifier %q", arg)
		}
	}
	return segments, absolute, nil
}

// FindSchemaChild returns the live schema tree child of parent with qname.
func FindSchemaChild(parent Context, q model.QName) (Context, bool) {
	for _, c := range parent.Substatements() {
		if !IsSchemaTreeNode(c.Support()) {
			continue
		}
		if c.QName() == q {
			return c, true
		}
	}
	return nil, false
}

// FindTarget walks schema node segments from start, resolving each segment's
// prefix in the lexical scope of ctx.
func FindTarget(ctx, start Context, segments []string) (Context, error) {
	cur := start
	for _, seg := range segments {
		q, err := QNameOf(ctx, seg)
		if err != nil {
			return nil, err
		}
		next, ok := FindSchemaChild(cur, q)
		if !ok {
			return nil, Errorf(yangerrors.ErrMissingTarget, "schema node %s not found", seg)
		}
		cur = next
	}
	return cur, nil
}

// FindAbsoluteTarget resolves an absolute schema node identifier. The first
// segment selects the module whose top level is searched.
func FindAbsoluteTarget(ctx Context, segments []string) (Context, error) {
	module, _, err := ResolveName(ctx, segments[0])
	if err != nil {
		return nil, err
	}
	return FindTarget(ctx, module, segments)
}
