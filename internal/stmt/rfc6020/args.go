package rfc6020

import (
	"fmt"
	"strconv"

	yangerrors "github.com/jacoelho/yang/errors"
	"github.com/jacoelho/yang/internal/model"
	"github.com/jacoelho/yang/internal/source"
	"github.com/jacoelho/yang/internal/stmt"
	"github.com/jacoelho/yang/internal/yangtext"
)

type argParser func(ctx stmt.Context, raw string) (any, error)

func invalid(keyword, raw, want string) error {
	return stmt.Errorf(yangerrors.ErrInvalidArgument, "%s %q: want %s", keyword, raw, want)
}

func parseString(_ stmt.Context, raw string) (any, error) { return raw, nil }

func parseIdentifier(ctx stmt.Context, raw string) (any, error) {
	if !yangtext.IsIdentifier(raw) {
		return nil, invalid(ctx.Keyword(), raw, "identifier")
	}
	return raw, nil
}

// parsePrefixedIdentifier accepts prefix:name or name.
func parsePrefixedIdentifier(ctx stmt.Context, raw string) (any, error) {
	if _, _, err := stmt.ResolveName(ctx, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func parseBool(ctx stmt.Context, raw string) (any, error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return nil, invalid(ctx.Keyword(), raw, "true or false")
}

func parseStatus(ctx stmt.Context, raw string) (any, error) {
	switch s := model.Status(raw); s {
	case model.StatusCurrent, model.StatusDeprecated, model.StatusObsolete:
		return s, nil
	}
	return nil, invalid(ctx.Keyword(), raw, "current, deprecated or obsolete")
}

func parseRevision(ctx stmt.Context, raw string) (any, error) {
	r, err := source.ParseRevision(raw)
	if err != nil {
		return nil, stmt.Errorf(yangerrors.ErrInvalidArgument, "%s: %v", ctx.Keyword(), err)
	}
	return r, nil
}

func parseNonNegative(ctx stmt.Context, raw string) (any, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, invalid(ctx.Keyword(), raw, "non-negative integer")
	}
	return n, nil
}

// parseMaxElements yields 0 for unbounded.
func parseMaxElements(ctx stmt.Context, raw string) (any, error) {
	if raw == "unbounded" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return nil, invalid(ctx.Keyword(), raw, "positive integer or unbounded")
	}
	return n, nil
}

func parseFractionDigits(ctx stmt.Context, raw string) (any, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 18 {
		return nil, invalid(ctx.Keyword(), raw, "integer 1..18")
	}
	return n, nil
}

func parseInteger(ctx stmt.Context, raw string) (any, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, invalid(ctx.Keyword(), raw, "integer")
	}
	return n, nil
}

func parseEnum(values ...string) argParser {
	return func(ctx stmt.Context, raw string) (any, error) {
		for _, v := range values {
			if raw == v {
				return raw, nil
			}
		}
		return nil, invalid(ctx.Keyword(), raw, fmt.Sprintf("one of %v", values))
	}
}

func parseSchemaNodeID(absolute bool) argParser {
	return func(ctx stmt.Context, raw string) (any, error) {
		segs, abs, err := stmt.ParseSchemaNodeID(raw)
		if err != nil {
			return nil, err
		}
		if abs != absolute {
			want := "descendant schema node identifier"
			if absolute {
				want = "absolute schema node identifier"
			}
			return nil, invalid(ctx.Keyword(), raw, want)
		}
		for _, s := range segs {
			if _, _, err := stmt.ResolveName(ctx, s); err != nil {
				return nil, err
			}
		}
		return segs, nil
	}
}

// parseAugmentTarget accepts an absolute identifier, or a descendant one when
// the augment is inside uses.
func parseAugmentTarget(ctx stmt.Context, raw string) (any, error) {
	inUses := ctx.Parent() != nil && ctx.Parent().Keyword() == "uses"
	return parseSchemaNodeID(!inUses)(ctx, raw)
}
