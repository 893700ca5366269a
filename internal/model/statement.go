package model

import "github.com/jacoelho/yang/internal/ast"

// Declared is a statement as written in its source, after argument parsing
// and cardinality validation.
type Declared interface {
	Keyword() string
	RawArgument() string
	Argument() any
	Position() ast.Position
	Substatements() []Declared
}

// Effective is the resolved semantic form of a statement.
type Effective interface {
	Keyword() string
	Argument() any
	Declared() Declared
	Substatements() []Effective
}

// DeclaredStatement is the generic Declared implementation.
type DeclaredStatement struct {
	keyword string
	raw     string
	arg     any
	pos     ast.Position
	subs    []Declared
}

// NewDeclared builds a declared statement.
func NewDeclared(keyword, raw string, arg any, pos ast.Position, subs []Declared) *DeclaredStatement {
	return &DeclaredStatement{keyword: keyword, raw: raw, arg: arg, pos: pos, subs: subs}
}

func (d *DeclaredStatement) Keyword() string          { return d.keyword }
func (d *DeclaredStatement) RawArgument() string      { return d.raw }
func (d *DeclaredStatement) Argument() any            { return d.arg }
func (d *DeclaredStatement) Position() ast.Position   { return d.pos }
func (d *DeclaredStatement) Substatements() []Declared { return d.subs }

// Base carries the fields every effective statement shares. Concrete
// effective types embed it.
type Base struct {
	keyword  string
	arg      any
	declared Declared
	subs     []Effective
}

// NewBase builds the shared part of an effective statement.
func NewBase(keyword string, arg any, declared Declared, subs []Effective) Base {
	return Base{keyword: keyword, arg: arg, declared: declared, subs: subs}
}

func (b *Base) Keyword() string            { return b.keyword }
func (b *Base) Argument() any              { return b.arg }
func (b *Base) Declared() Declared         { return b.declared }
func (b *Base) Substatements() []Effective { return b.subs }

// FirstArgument returns the argument of the first substatement with keyword.
func FirstArgument[T any](e Effective, keyword string) (T, bool) {
	var zero T
	for _, sub := range e.Substatements() {
		if sub.Keyword() != keyword {
			continue
		}
		v, ok := sub.Argument().(T)
		return v, ok
	}
	return zero, false
}

// Generic is an effective statement with no keyword-specific accessors.
type Generic struct {
	Base
}

// Unknown is an effective extension instance or an unrecognised statement.
type Unknown struct {
	Base
	// Extension is the QName of the extension definition; zero for
	// unprefixed keywords with no registered support.
	Extension     QName
	NodeParameter string
	Path          SchemaPath
}
