// Package yangtext parses YANG text into raw ast statement trees.
package yangtext

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jacoelho/yang/internal/ast"
)

// DefaultMaxDepth bounds statement nesting when no limit is configured.
const DefaultMaxDepth = 512

var (
	errUnterminatedComment = errors.New("unterminated block comment")
	errUnterminatedString  = errors.New("unterminated quoted string")
	errInvalidEscape       = errors.New("invalid escape sequence")
	errInvalidKeyword      = errors.New("invalid statement keyword")
	errUnexpectedToken     = errors.New("unexpected token")
	errDepthLimit          = errors.New("statement depth exceeds limit")
	errNoStatement         = errors.New("no statement found")
	errTrailingContent     = errors.New("content after top-level statement")
)

// SyntaxError reports a lexical or grammar error with its position.
type SyntaxError struct {
	Pos    ast.Position
	Detail string
	Err    error
}

// Error formats the syntax error with location and cause.
func (e *SyntaxError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("yang syntax error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, msg)
}

// Unwrap exposes the underlying error.
func (e *SyntaxError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Options configures parsing limits.
type Options struct {
	MaxDepth int
}

// Parse parses one YANG document holding a single top-level statement.
func Parse(src []byte) (*ast.Statement, error) {
	return ParseWithOptions(src, Options{})
}

// ParseWithOptions parses with explicit limits.
func ParseWithOptions(src []byte, opts Options) (*ast.Statement, error) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	p := &parser{lex: newLexer(string(src)), maxDepth: maxDepth}
	if err := p.fill(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokenEOF {
		return nil, &SyntaxError{Pos: p.tok.pos, Err: errNoStatement}
	}
	root, err := p.statement(1)
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokenEOF {
		return nil, &SyntaxError{Pos: p.tok.pos, Err: errTrailingContent}
	}
	return root, nil
}

type parser struct {
	lex      *lexer
	tok      token
	maxDepth int
}

func (p *parser) fill() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) statement(depth int) (*ast.Statement, error) {
	if depth > p.maxDepth {
		return nil, &SyntaxError{Pos: p.tok.pos, Err: errDepthLimit}
	}
	if p.tok.kind != tokenString || p.tok.quoted {
		return nil, p.unexpected("statement keyword")
	}
	if !validKeyword(p.tok.text) {
		return nil, &SyntaxError{Pos: p.tok.pos, Detail: p.tok.text, Err: errInvalidKeyword}
	}
	stmt := &ast.Statement{Keyword: p.tok.text, Pos: p.tok.pos}
	if err := p.fill(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokenString {
		arg, err := p.argument()
		if err != nil {
			return nil, err
		}
		stmt.Argument = arg
		stmt.HasArgument = true
	}
	switch p.tok.kind {
	case tokenSemicolon:
		return stmt, p.fill()
	case tokenOpen:
		if err := p.fill(); err != nil {
			return nil, err
		}
		for p.tok.kind != tokenClose {
			if p.tok.kind == tokenEOF {
				return nil, p.unexpected("'}'")
			}
			child, err := p.statement(depth + 1)
			if err != nil {
				return nil, err
			}
			stmt.Substatements = append(stmt.Substatements, child)
		}
		return stmt, p.fill()
	default:
		return nil, p.unexpected("';' or '{'")
	}
}

// argument reads one argument, joining quoted fragments separated by '+'.
func (p *parser) argument() (string, error) {
	first := p.tok
	if err := p.fill(); err != nil {
		return "", err
	}
	if !first.quoted {
		return first.text, nil
	}
	var b strings.Builder
	b.WriteString(first.text)
	for p.tok.kind == tokenPlus {
		if err := p.fill(); err != nil {
			return "", err
		}
		if p.tok.kind != tokenString || !p.tok.quoted {
			return "", p.unexpected("quoted string after '+'")
		}
		b.WriteString(p.tok.text)
		if err := p.fill(); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func (p *parser) unexpected(want string) error {
	got := p.tok.kind.String()
	if p.tok.kind == tokenString {
		got = fmt.Sprintf("%q", p.tok.text)
	}
	return &SyntaxError{Pos: p.tok.pos, Detail: fmt.Sprintf("got %s, want %s", got, want), Err: errUnexpectedToken}
}

func validKeyword(keyword string) bool {
	prefix, local, ok := strings.Cut(keyword, ":")
	if !ok {
		return IsIdentifier(keyword)
	}
	return IsIdentifier(prefix) && IsIdentifier(local)
}

// IsIdentifier reports whether s is a YANG identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case i > 0 && (c >= '0' && c <= '9' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
