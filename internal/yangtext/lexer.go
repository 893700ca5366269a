package yangtext

import (
	"strings"
	"unicode/utf8"

	"github.com/jacoelho/yang/internal/ast"
)

type tokenKind uint8

const (
	tokenEOF tokenKind = iota
	tokenOpen
	tokenClose
	tokenSemicolon
	tokenString
	tokenPlus
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of input"
	case tokenOpen:
		return "'{'"
	case tokenClose:
		return "'}'"
	case tokenSemicolon:
		return "';'"
	case tokenPlus:
		return "'+'"
	default:
		return "string"
	}
}

type token struct {
	kind   tokenKind
	text   string
	quoted bool
	pos    ast.Position
}

// lexer splits YANG text into statement tokens. Line and column are 1-based;
// columns count runes.
type lexer struct {
	src  string
	off  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	src = strings.TrimPrefix(src, "\ufeff")
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) pos() ast.Position {
	return ast.Position{Line: l.line, Column: l.col}
}

func (l *lexer) peekByte(n int) byte {
	if l.off+n >= len(l.src) {
		return 0
	}
	return l.src[l.off+n]
}

func (l *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) skipSpaceAndComments() error {
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peekByte(1) == '/':
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.advance()
			}
		case c == '/' && l.peekByte(1) == '*':
			start := l.pos()
			l.advance()
			l.advance()
			closed := false
			for l.off < len(l.src) {
				if l.src[l.off] == '*' && l.peekByte(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				return &SyntaxError{Pos: start, Err: errUnterminatedComment}
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) next() (token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return token{}, err
	}
	start := l.pos()
	if l.off >= len(l.src) {
		return token{kind: tokenEOF, pos: start}, nil
	}
	switch l.src[l.off] {
	case '{':
		l.advance()
		return token{kind: tokenOpen, pos: start}, nil
	case '}':
		l.advance()
		return token{kind: tokenClose, pos: start}, nil
	case ';':
		l.advance()
		return token{kind: tokenSemicolon, pos: start}, nil
	case '+':
		if l.isConcatenation() {
			l.advance()
			return token{kind: tokenPlus, pos: start}, nil
		}
	case '"':
		text, err := l.doubleQuoted()
		if err != nil {
			return token{}, err
		}
		return token{kind: tokenString, text: text, quoted: true, pos: start}, nil
	case '\'':
		text, err := l.singleQuoted()
		if err != nil {
			return token{}, err
		}
		return token{kind: tokenString, text: text, quoted: true, pos: start}, nil
	}
	return token{kind: tokenString, text: l.unquoted(), pos: start}, nil
}

// isConcatenation reports whether a '+' at the cursor stands alone and is
// therefore the string concatenation operator.
func (l *lexer) isConcatenation() bool {
	next := l.peekByte(1)
	return next == 0 || next == ' ' || next == '\t' || next == '\r' || next == '\n' || next == '"' || next == '\''
}

func (l *lexer) unquoted() string {
	begin := l.off
	for l.off < len(l.src) {
		c := l.src[l.off]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == ';' || c == '{' || c == '}' || c == '"' || c == '\'' {
			break
		}
		if c == '/' && (l.peekByte(1) == '/' || l.peekByte(1) == '*') {
			break
		}
		l.advance()
	}
	return l.src[begin:l.off]
}

func (l *lexer) singleQuoted() (string, error) {
	start := l.pos()
	l.advance()
	begin := l.off
	for l.off < len(l.src) {
		if l.src[l.off] == '\'' {
			text := l.src[begin:l.off]
			l.advance()
			return text, nil
		}
		l.advance()
	}
	return "", &SyntaxError{Pos: start, Err: errUnterminatedString}
}

// doubleQuoted decodes a double-quoted string, applying escape sequences and
// stripping the indentation of continuation lines up to the column following
// the opening quote.
func (l *lexer) doubleQuoted() (string, error) {
	start := l.pos()
	indent := start.Column
	l.advance()
	var b strings.Builder
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch c {
		case '"':
			l.advance()
			return b.String(), nil
		case '\\':
			escPos := l.pos()
			l.advance()
			if l.off >= len(l.src) {
				return "", &SyntaxError{Pos: start, Err: errUnterminatedString}
			}
			switch l.src[l.off] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				return "", &SyntaxError{Pos: escPos, Err: errInvalidEscape}
			}
			l.advance()
		case '\n':
			trimTrailingSpace(&b)
			b.WriteByte('\n')
			l.advance()
			for skipped := 0; skipped < indent && l.off < len(l.src); skipped++ {
				ws := l.src[l.off]
				if ws != ' ' && ws != '\t' {
					break
				}
				l.advance()
			}
		default:
			b.WriteRune(l.advance())
		}
	}
	return "", &SyntaxError{Pos: start, Err: errUnterminatedString}
}

func trimTrailingSpace(b *strings.Builder) {
	s := b.String()
	trimmed := strings.TrimRight(s, " \t\r")
	if len(trimmed) == len(s) {
		return
	}
	b.Reset()
	b.WriteString(trimmed)
}
