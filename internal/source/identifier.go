// Package source defines source identities, declared dependency metadata and
// the repository contract used to fetch parsed sources.
package source

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const revisionLayout = "2006-01-02"

// Revision is a YANG revision date (YYYY-MM-DD). The zero value means absent.
type Revision string

// ParseRevision validates s as a revision date.
func ParseRevision(s string) (Revision, error) {
	if _, err := time.Parse(revisionLayout, s); err != nil {
		return "", fmt.Errorf("invalid revision %q: want YYYY-MM-DD", s)
	}
	return Revision(s), nil
}

// IsZero reports whether the revision is absent.
func (r Revision) IsZero() bool { return r == "" }

// Compare orders revisions chronologically. An absent revision sorts before
// any concrete date.
func (r Revision) Compare(other Revision) int {
	// YYYY-MM-DD compares lexically in date order.
	return strings.Compare(string(r), string(other))
}

// SemVer is a semantic version without the leading "v" (for example "1.2.0").
// The zero value means absent.
type SemVer string

// ParseSemVer validates s as a semantic version. A leading "v" is accepted and
// stripped.
func ParseSemVer(s string) (SemVer, error) {
	s = strings.TrimPrefix(s, "v")
	if !semver.IsValid("v" + s) {
		return "", fmt.Errorf("invalid semantic version %q", s)
	}
	return SemVer(s), nil
}

// IsZero reports whether the version is absent.
func (v SemVer) IsZero() bool { return v == "" }

// Major returns the major component, for example "v1".
func (v SemVer) Major() string {
	return semver.Major(v.canonical())
}

// Compare orders versions by semantic version precedence.
func (v SemVer) Compare(other SemVer) int {
	return semver.Compare(v.canonical(), other.canonical())
}

func (v SemVer) canonical() string {
	if v == "" {
		return ""
	}
	return "v" + string(v)
}

// Identifier names one source: a module or submodule name with optional
// revision and semantic version. Identifiers are comparable and usable as map
// keys; all three fields take part in equality.
type Identifier struct {
	Name     string
	Revision Revision
	SemVer   SemVer
}

// String renders name[@revision][#semver].
func (id Identifier) String() string {
	var b strings.Builder
	b.WriteString(id.Name)
	if id.Revision != "" {
		b.WriteByte('@')
		b.WriteString(string(id.Revision))
	}
	if id.SemVer != "" {
		b.WriteByte('#')
		b.WriteString(string(id.SemVer))
	}
	return b.String()
}

// WithoutSemVer drops the semantic version, giving the plain-mode identity.
func (id Identifier) WithoutSemVer() Identifier {
	id.SemVer = ""
	return id
}

// ParseIdentifier parses name[@revision][#semver].
func ParseIdentifier(s string) (Identifier, error) {
	var id Identifier
	rest, ver, hasVer := strings.Cut(s, "#")
	name, rev, hasRev := strings.Cut(rest, "@")
	if name == "" {
		return Identifier{}, fmt.Errorf("parse identifier %q: empty name", s)
	}
	id.Name = name
	if hasRev {
		r, err := ParseRevision(rev)
		if err != nil {
			return Identifier{}, fmt.Errorf("parse identifier %q: %w", s, err)
		}
		id.Revision = r
	}
	if hasVer {
		v, err := ParseSemVer(ver)
		if err != nil {
			return Identifier{}, fmt.Errorf("parse identifier %q: %w", s, err)
		}
		id.SemVer = v
	}
	return id, nil
}
