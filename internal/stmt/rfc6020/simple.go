package rfc6020

import (
	"github.com/jacoelho/yang/internal/stmt"
)

// simple is a support defined only by keyword, argument rule and
// substatement table.
type simple struct {
	stmt.BaseSupport
	parse argParser
}

func newSimple(keyword string, parse argParser, cards stmt.Cardinalities) simple {
	return simple{BaseSupport: stmt.BaseSupport{Name: keyword, Cards: cards}, parse: parse}
}

func (s simple) ParseArgument(ctx stmt.Context, raw string) (any, error) {
	if s.parse == nil {
		return raw, nil
	}
	return s.parse(ctx, raw)
}

func metaSupports() []stmt.Support {
	return []stmt.Support{
		newSimple("yang-version", parseEnum("1", "1.1"), none),
		newSimple("namespace", parseString, none),
		newSimple("prefix", parseIdentifier, none),
		newSimple("organization", parseString, none),
		newSimple("contact", parseString, none),
		newSimple("description", parseString, none),
		newSimple("reference", parseString, none),
		newSimple("revision", parseRevision, revisionCards),
		newSimple("revision-date", parseRevision, none),
		newSimple("units", parseString, none),
		newSimple("default", parseString, none),
		newSimple("presence", parseString, none),
		newSimple("key", parseString, none),
		newSimple("unique", parseString, none),
		newSimple("must", parseString, mustCards),
		newSimple("when", parseString, docs),
		newSimple("error-message", parseString, none),
		newSimple("error-app-tag", parseString, none),
		newSimple("status", parseStatus, none),
		newSimple("config", parseBool, none),
		newSimple("mandatory", parseBool, none),
		newSimple("yin-element", parseBool, none),
		newSimple("require-instance", parseBool, none),
		newSimple("min-elements", parseNonNegative, none),
		newSimple("max-elements", parseMaxElements, none),
		newSimple("ordered-by", parseEnum("system", "user"), none),
		newSimple("fraction-digits", parseFractionDigits, none),
		newSimple("range", parseString, restrictCards),
		newSimple("length", parseString, restrictCards),
		newSimple("pattern", parseString, patternCards),
		newSimple("modifier", parseEnum("invert-match"), none),
		newSimple("enum", parseString, enumCards),
		newSimple("bit", parseIdentifier, bitCards),
		newSimple("value", parseInteger, none),
		newSimple("position", parseNonNegative, none),
		newSimple("path", parseString, none),
		newSimple("base", parsePrefixedIdentifier, none),
		newSimple("argument", parseIdentifier, argumentCards),
	}
}
