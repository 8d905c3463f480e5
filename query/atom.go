package query

import "strings"

// Atom is a relational predicate R(t1, ..., tn) with positional terms.
type Atom struct {
	Relation string
	Terms    []Term
}

func NewAtom(relation string, terms ...Term) Atom {
	return Atom{Relation: relation, Terms: terms}
}

func (a Atom) Arity() int { return len(a.Terms) }

// Less gives atoms a lexicographic order by (relation, terms...), used to
// make MCD and rewriting enumeration deterministic.
func (a Atom) Less(other Atom) bool {
	if a.Relation != other.Relation {
		return a.Relation < other.Relation
	}
	for i := 0; i < len(a.Terms) && i < len(other.Terms); i++ {
		if !a.Terms[i].Equal(other.Terms[i]) {
			return a.Terms[i].Less(other.Terms[i])
		}
	}
	return len(a.Terms) < len(other.Terms)
}

func (a Atom) Equal(other Atom) bool {
	if a.Relation != other.Relation || len(a.Terms) != len(other.Terms) {
		return false
	}
	for i := range a.Terms {
		if !a.Terms[i].Equal(other.Terms[i]) {
			return false
		}
	}
	return true
}

func (a Atom) String() string {
	parts := make([]string, len(a.Terms))
	for i, t := range a.Terms {
		parts[i] = t.String()
	}
	return a.Relation + "(" + strings.Join(parts, ", ") + ")"
}
