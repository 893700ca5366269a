package stmt

import (
	"fmt"
	"slices"
	"strings"

	yangerrors "github.com/jacoelho/yang/errors"
)

// Unbounded marks a cardinality without an upper limit.
const Unbounded = -1

// Cardinality is the allowed occurrence range of one substatement.
type Cardinality struct {
	Min int
	Max int
}

var (
	Optional   = Cardinality{Min: 0, Max: 1}
	Required   = Cardinality{Min: 1, Max: 1}
	Many       = Cardinality{Min: 0, Max: Unbounded}
	AtLeastOne = Cardinality{Min: 1, Max: Unbounded}
)

func (c Cardinality) String() string {
	if c.Max == Unbounded {
		return fmt.Sprintf("%d..n", c.Min)
	}
	return fmt.Sprintf("%d..%d", c.Min, c.Max)
}

// Cardinalities maps substatement keywords to their allowed occurrences.
type Cardinalities map[string]Cardinality

// Merge returns a new table with the entries of both; other wins.
func (c Cardinalities) Merge(other Cardinalities) Cardinalities {
	out := make(Cardinalities, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Check validates keyword counts of the direct substatements of parent.
// Prefixed (extension) keywords are always allowed; builtin keywords missing
// from the table are rejected when known reports them as builtin.
func (c Cardinalities) Check(parent string, children []string, known func(string) bool) error {
	if c == nil {
		return nil
	}
	counts := make(map[string]int, len(children))
	for _, kw := range children {
		if strings.Contains(kw, ":") {
			continue
		}
		if _, ok := c[kw]; !ok {
			if known != nil && known(kw) {
				return Errorf(yangerrors.ErrCardinality, "%s is not allowed in %s", kw, parent)
			}
			continue
		}
		counts[kw]++
	}
	keys := make([]string, 0, len(c))
	for kw := range c {
		keys = append(keys, kw)
	}
	slices.Sort(keys)
	for _, kw := range keys {
		card := c[kw]
		n := counts[kw]
		if n < card.Min {
			return Errorf(yangerrors.ErrCardinality, "%s requires %s %s, found %d", parent, card, kw, n)
		}
		if card.Max != Unbounded && n > card.Max {
			return Errorf(yangerrors.ErrCardinality, "%s allows %s %s, found %d", parent, card, kw, n)
		}
	}
	return nil
}
