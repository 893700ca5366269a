// Package ast holds the raw, unlinked statement tree produced by a source
// parser. Trees are immutable once returned by a parser.
package ast

import "strings"

// Position locates a statement in its source document.
type Position struct {
	Line   int
	Column int
}

// Statement is one raw statement: keyword, optional argument and nested
// statements in declaration order.
type Statement struct {
	Keyword       string
	Argument      string
	HasArgument   bool
	Pos           Position
	Substatements []*Statement
}

// Prefix returns the prefix of a prefixed (extension) keyword, or "".
func (s *Statement) Prefix() string {
	if s == nil {
		return ""
	}
	prefix, _, ok := strings.Cut(s.Keyword, ":")
	if !ok {
		return ""
	}
	return prefix
}

// LocalKeyword returns the keyword without its prefix.
func (s *Statement) LocalKeyword() string {
	if s == nil {
		return ""
	}
	if _, local, ok := strings.Cut(s.Keyword, ":"); ok {
		return local
	}
	return s.Keyword
}

// First returns the first direct substatement with the given keyword.
func (s *Statement) First(keyword string) *Statement {
	if s == nil {
		return nil
	}
	for _, sub := range s.Substatements {
		if sub.Keyword == keyword {
			return sub
		}
	}
	return nil
}

// All returns every direct substatement with the given keyword.
func (s *Statement) All(keyword string) []*Statement {
	if s == nil {
		return nil
	}
	var out []*Statement
	for _, sub := range s.Substatements {
		if sub.Keyword == keyword {
			out = append(out, sub)
		}
	}
	return out
}

// FirstLocal returns the first direct substatement whose local keyword
// matches, regardless of prefix.
func (s *Statement) FirstLocal(local string) *Statement {
	if s == nil {
		return nil
	}
	for _, sub := range s.Substatements {
		if sub.LocalKeyword() == local {
			return sub
		}
	}
	return nil
}
