package stmt

import (
	"errors"
	"fmt"
	"maps"

	yangerrors "github.com/jacoelho/yang/errors"
)

// ErrNotReady marks a mutation whose prerequisites do not exist yet.
var ErrNotReady = errors.New("statement prerequisites not ready")

type notReadyError struct {
	cause error
}

func (e *notReadyError) Error() string        { return e.cause.Error() }
func (e *notReadyError) Unwrap() error        { return e.cause }
func (e *notReadyError) Is(target error) bool { return target == ErrNotReady }

// NotReady wraps cause so the mutation is retried. If it never becomes ready,
// cause is reported.
func NotReady(cause error) error {
	return &notReadyError{cause: cause}
}

// Cause returns the error wrapped by NotReady, or err itself.
func Cause(err error) error {
	var nr *notReadyError
	if errors.As(err, &nr) {
		return nr.cause
	}
	return err
}

// Errorf builds a reactor error with code. The reactor fills in the source
// and position of the failing statement.
func Errorf(code yangerrors.Code, format string, args ...any) error {
	return &yangerrors.ReactorError{Code: code, Message: fmt.Sprintf(format, args...)}
}

type extensionKey struct {
	module string
	name   string
}

// Registry maps keywords, and extension (module, name) pairs, to supports.
// Keywords with no entry fall back to the unknown support. A Registry is
// read-only once handed to a build; use Clone before modifying a shared one.
type Registry struct {
	byKeyword  map[string]Support
	extensions map[extensionKey]Support
	unknown    Support
}

// NewRegistry builds an empty registry with the given fallback support.
func NewRegistry(unknown Support) *Registry {
	return &Registry{
		byKeyword:  make(map[string]Support),
		extensions: make(map[extensionKey]Support),
		unknown:    unknown,
	}
}

// Register adds or replaces the support for its keyword.
func (r *Registry) Register(s Support) {
	r.byKeyword[s.Keyword()] = s
}

// RegisterExtension adds or replaces the support for an extension defined by
// module.
func (r *Registry) RegisterExtension(module, name string, s Support) {
	r.extensions[extensionKey{module: module, name: name}] = s
}

// Lookup returns the support for a builtin keyword.
func (r *Registry) Lookup(keyword string) (Support, bool) {
	s, ok := r.byKeyword[keyword]
	return s, ok
}

// Known reports whether keyword has a registered support.
func (r *Registry) Known(keyword string) bool {
	_, ok := r.byKeyword[keyword]
	return ok
}

// Extension returns the support registered for an extension.
func (r *Registry) Extension(module, name string) (Support, bool) {
	s, ok := r.extensions[extensionKey{module: module, name: name}]
	return s, ok
}

// Unknown returns the fallback support.
func (r *Registry) Unknown() Support {
	return r.unknown
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	return &Registry{
		byKeyword:  maps.Clone(r.byKeyword),
		extensions: maps.Clone(r.extensions),
		unknown:    r.unknown,
	}
}
