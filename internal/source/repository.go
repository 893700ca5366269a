package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/jacoelho/yang/internal/ast"
	"github.com/jacoelho/yang/internal/yangtext"
)

// ErrNotFound reports that a repository holds no source matching the request.
var ErrNotFound = errors.New("source not found")

// ParsedSource is a parsed but unlinked source. ID is the identity the
// repository reports, which may fill in fields the caller omitted.
type ParsedSource struct {
	ID       Identifier
	AST      *ast.Statement
	Info     DependencyInfo
	Location string
}

// Repository fetches parsed sources. Implementations must be safe for
// concurrent use.
type Repository interface {
	Fetch(ctx context.Context, id Identifier) (*ParsedSource, error)
}

// RepositoryFunc adapts a function to Repository.
type RepositoryFunc func(ctx context.Context, id Identifier) (*ParsedSource, error)

// Fetch implements Repository.
func (f RepositoryFunc) Fetch(ctx context.Context, id Identifier) (*ParsedSource, error) {
	return f(ctx, id)
}

// New builds a ParsedSource from a raw statement tree.
func New(root *ast.Statement, location string) (*ParsedSource, error) {
	info, err := ExtractInfo(root)
	if err != nil {
		if location != "" {
			return nil, fmt.Errorf("%s: %w", location, err)
		}
		return nil, err
	}
	return &ParsedSource{ID: info.ID, AST: root, Info: info, Location: location}, nil
}

// Parse parses YANG text and builds a ParsedSource.
func Parse(data []byte, location string) (*ParsedSource, error) {
	root, err := yangtext.Parse(data)
	if err != nil {
		if location != "" {
			return nil, fmt.Errorf("parse %s: %w", location, err)
		}
		return nil, fmt.Errorf("parse: %w", err)
	}
	return New(root, location)
}

// Matches reports whether a source with identity have satisfies a request
// for want: name must be equal and every field set in want must match.
func Matches(want, have Identifier) bool {
	if want.Name != have.Name {
		return false
	}
	if want.Revision != "" && want.Revision != have.Revision {
		return false
	}
	if want.SemVer != "" && want.SemVer != have.SemVer {
		return false
	}
	return true
}
