// Package rewrite implements the MiniCon rewriting algorithm: the
// homomorphism kernel, MCD construction, and rewriting combination steps
// that turn a query plus a set of candidate views into the set of ways the
// query can be answered entirely from those views.
package rewrite

import "github.com/arjunsethi/minicon/query"

// Mapping is a variable substitution from a view's variable names to the
// query variable (or constant) names they are bound to. It is the φ of the
// MiniCon paper.
type Mapping map[string]string

// clone returns an independent copy of m.
func (m Mapping) clone() Mapping {
	c := make(Mapping, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// compatible reports whether m and other agree on every key they share.
func (m Mapping) compatible(other Mapping) bool {
	for k, v := range m {
		if ov, ok := other[k]; ok && ov != v {
			return false
		}
	}
	return true
}

// merge returns the union of m and other. Callers must check compatible
// first; merge does not itself detect conflicts.
func (m Mapping) merge(other Mapping) Mapping {
	merged := m.clone()
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// TryMap attempts to extend existing with the homomorphism implied by
// mapping viewAtom onto queryAtom, positionally. It fails if the atoms'
// relations or arities differ, if a view variable would need two different
// images, or if a view constant does not match the query atom's term in the
// same position exactly. On success it returns the merged mapping; existing
// itself is never mutated.
//
// There is no backtracking: the mapping between one atom pair is uniquely
// determined by position, so a single pass either succeeds or fails.
func TryMap(viewAtom, queryAtom query.Atom, existing Mapping) (Mapping, bool) {
	if viewAtom.Relation != queryAtom.Relation {
		return nil, false
	}
	if viewAtom.Arity() != queryAtom.Arity() {
		return nil, false
	}

	local := Mapping{}
	for i, vt := range viewAtom.Terms {
		qt := queryAtom.Terms[i]
		if vt.IsVariable() {
			if bound, ok := local[vt.Name]; ok {
				if bound != qt.Name {
					return nil, false
				}
			} else {
				local[vt.Name] = qt.Name
			}
		} else {
			if qt.IsVariable() || vt.Name != qt.Name {
				return nil, false
			}
		}
	}

	if !existing.compatible(local) {
		return nil, false
	}
	return existing.merge(local), true
}
