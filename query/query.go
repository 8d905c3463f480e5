package query

import (
	"strings"

	"github.com/arjunsethi/minicon/internal/set"
)

// ConjunctiveQuery is the immutable canonical form Q(head) :- body produced
// by Compile. It is used uniformly for queries and views.
type ConjunctiveQuery struct {
	Name string
	Head []Term
	Body []Atom
}

// Variables returns every variable mentioned anywhere in the query (head or
// body).
func (q *ConjunctiveQuery) Variables() set.Set[string] {
	vars := set.Set[string]{}
	for _, t := range q.Head {
		if t.IsVariable() {
			vars.Add(t.Name)
		}
	}
	for _, a := range q.Body {
		for _, t := range a.Terms {
			if t.IsVariable() {
				vars.Add(t.Name)
			}
		}
	}
	return vars
}

// HeadVariables returns the distinguished (head) variables of the query.
func (q *ConjunctiveQuery) HeadVariables() set.Set[string] {
	vars := set.Set[string]{}
	for _, t := range q.Head {
		if t.IsVariable() {
			vars.Add(t.Name)
		}
	}
	return vars
}

// RelationArity reports the arity every atom over rel must share, and
// whether rel appears in the body at all.
func (q *ConjunctiveQuery) RelationArity(rel string) (int, bool) {
	for _, a := range q.Body {
		if a.Relation == rel {
			return a.Arity(), true
		}
	}
	return 0, false
}

// String renders the query in Datalog-ish head-and-body form, for
// diagnostics only — the core never parses or compares on this output.
func (q *ConjunctiveQuery) String() string {
	var b strings.Builder
	b.WriteString(q.Name)
	b.WriteString("(")
	for i, t := range q.Head {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	b.WriteString(") :- ")
	for i, a := range q.Body {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	return b.String()
}
