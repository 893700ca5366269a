package resolver

import "github.com/jacoelho/yang/internal/source"

// Policy matches one declared dependency against candidate identifiers given
// in input order.
type Policy interface {
	Match(dep source.Dependency, candidates []source.Identifier) (source.Identifier, bool)
}

// RevisionPolicy matches by revision date. A dependency with a revision
// matches only that exact revision; one without matches the most recent
// revision of the named source. An absent revision is older than any date.
// Residual ties keep the earliest candidate.
type RevisionPolicy struct{}

// Match implements Policy.
func (RevisionPolicy) Match(dep source.Dependency, candidates []source.Identifier) (source.Identifier, bool) {
	var (
		best  source.Identifier
		found bool
	)
	for _, c := range candidates {
		if c.Name != dep.Name {
			continue
		}
		if dep.Revision != "" {
			if c.Revision == dep.Revision {
				return c, true
			}
			continue
		}
		if !found || c.Revision.Compare(best.Revision) > 0 {
			best, found = c, true
		}
	}
	return best, found
}

// SemVerPolicy matches by semantic version compatibility: a candidate with
// the same major version at or above the requested version qualifies, and the
// highest qualifying version wins. Dependencies without a version fall back to
// RevisionPolicy.
type SemVerPolicy struct{}

// Match implements Policy.
func (SemVerPolicy) Match(dep source.Dependency, candidates []source.Identifier) (source.Identifier, bool) {
	if dep.SemVer.IsZero() {
		return RevisionPolicy{}.Match(dep, candidates)
	}
	major := dep.SemVer.Major()
	var (
		best  source.Identifier
		found bool
	)
	for _, c := range candidates {
		if c.Name != dep.Name || c.SemVer.IsZero() {
			continue
		}
		if dep.Revision != "" && c.Revision != dep.Revision {
			continue
		}
		if c.SemVer.Major() != major || c.SemVer.Compare(dep.SemVer) < 0 {
			continue
		}
		if !found || better(c, best) {
			best, found = c, true
		}
	}
	return best, found
}

func better(c, best source.Identifier) bool {
	if cmp := c.SemVer.Compare(best.SemVer); cmp != 0 {
		return cmp > 0
	}
	return c.Revision.Compare(best.Revision) > 0
}
