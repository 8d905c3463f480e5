package query

import (
	"golang.org/x/exp/slices"

	"github.com/arjunsethi/minicon/sqlast"
)

// placeholderColumn names the synthetic term emitted for a FROM table that
// contributes no bound variable (spec.md 4.1 step 4).
const placeholderColumn = "$"

// unionFind merges canonical attribute keys joined by equality predicates.
// union always attaches the lexicographically larger root under the
// smaller one, so the final representative of any class is that class's
// global minimum regardless of the order predicates are processed in —
// the determinism spec.md 4.1 requires.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: map[string]string{}}
}

func (u *unionFind) find(x string) string {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
		return x
	}
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	// Path compression.
	for u.parent[x] != root {
		next := u.parent[x]
		u.parent[x] = root
		x = next
	}
	return root
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}

// CompileSQL parses sql and compiles it into canonical conjunctive-query
// form under the given name.
func CompileSQL(sql string, name string) (*ConjunctiveQuery, error) {
	ast, err := sqlast.ParseString(sql)
	if err != nil {
		return nil, &MalformedQueryError{Message: err.Error()}
	}
	return Compile(ast, name)
}

// Compile turns a parsed SQL query into its canonical conjunctive-query
// form: it resolves aliases, unifies equi-joined attributes to a single
// variable per canonical key, and emits one atom per FROM table with terms
// sorted by canonical key (spec.md section 4.1).
func Compile(ast *sqlast.Query, name string) (*ConjunctiveQuery, error) {
	if len(ast.From) == 0 {
		return nil, NewMalformedQuery(ast.Pos, "FROM clause has no tables")
	}

	aliasToTable := map[string]string{}
	var tables []string
	seenTable := map[string]bool{}
	for _, ref := range ast.From {
		aliasToTable[ref.Table] = ref.Table
		if ref.Alias != "" {
			aliasToTable[ref.Alias] = ref.Table
		}
		if !seenTable[ref.Table] {
			seenTable[ref.Table] = true
			tables = append(tables, ref.Table)
		}
	}

	// canonicalKey resolves attr to its canonical key. A qualified attribute
	// always keys as Table.column (a qualifier that is neither a FROM table
	// nor an alias is passed through as-is, per spec.md 4.1's "unknown tokens ... passed
	// through as-is"). A bare attribute over the sole FROM table also keys
	// as Table.column, preserving the round-trip law of spec.md 4.1 ("A a"
	// and bare "A" parse identically). A bare attribute with more than one
	// FROM table has no schema to resolve it against, so — matching how
	// the source keys compliance nodes on the literal attribute text
	// regardless of table — it keys as the bare column name instead of
	// being rejected as ambiguous.
	canonicalKey := func(attr *sqlast.Attr) string {
		if attr.Table != "" {
			if t, ok := aliasToTable[attr.Table]; ok {
				return t + "." + attr.Column
			}
			return attr.Table + "." + attr.Column
		}
		if len(tables) == 1 {
			return tables[0] + "." + attr.Column
		}
		return attr.Column
	}

	// attrTables lists the FROM tables whose atom should carry attr's
	// variable: exactly the one table a qualified (or unambiguous bare)
	// attribute resolves to, or every FROM table for an attribute with no
	// schema to pin it to one.
	attrTables := func(attr *sqlast.Attr) []string {
		if attr.Table != "" {
			if t, ok := aliasToTable[attr.Table]; ok {
				return []string{t}
			}
			return []string{attr.Table}
		}
		return tables
	}

	uf := newUnionFind()
	keyTables := map[string][]string{}

	register := func(attr *sqlast.Attr) string {
		k := canonicalKey(attr)
		uf.find(k) // ensure it is registered even if never joined
		if _, ok := keyTables[k]; !ok {
			keyTables[k] = attrTables(attr)
		}
		return k
	}

	for _, pred := range ast.Where {
		leftKey := register(pred.Left)
		rightKey := register(pred.Right)
		uf.union(leftKey, rightKey)
	}

	headKeys := make([]string, len(ast.Select))
	for i, attr := range ast.Select {
		headKeys[i] = register(attr)
	}

	keysByTable := map[string][]string{}
	for k, ts := range keyTables {
		for _, t := range ts {
			keysByTable[t] = append(keysByTable[t], k)
		}
	}
	for t := range keysByTable {
		slices.Sort(keysByTable[t])
	}

	body := make([]Atom, 0, len(tables))
	for _, t := range tables {
		keys := keysByTable[t]
		var terms []Term
		if len(keys) == 0 {
			terms = []Term{Variable(t + "." + placeholderColumn)}
		} else {
			terms = make([]Term, len(keys))
			for i, k := range keys {
				terms[i] = Variable(uf.find(k))
			}
		}
		body = append(body, NewAtom(t, terms...))
	}

	head := make([]Term, len(headKeys))
	for i, k := range headKeys {
		head[i] = Variable(uf.find(k))
	}

	result := &ConjunctiveQuery{Name: name, Head: head, Body: body}
	if err := checkNoArityDrift(result); err != nil {
		return nil, err
	}
	return result, nil
}

// checkNoArityDrift is a defensive assertion, not a user-facing validation:
// within a single compiled query, a relation can only appear once in the
// FROM list (Compile dedups by table name), so it is structurally
// impossible for two atoms over the same relation to disagree on arity. It
// exists to name the offending relation immediately if that ever stops
// being true, rather than surfacing as a confusing downstream MCD failure.
//
// Arity differing for the same relation ACROSS queries and views is not a
// bug: a view that projects fewer columns of a relation than the query
// legitimately produces a lower-arity atom, and the homomorphism kernel in
// package rewrite simply treats that as "this view cannot cover this
// subgoal" rather than an error (spec.md 4.4).
func checkNoArityDrift(q *ConjunctiveQuery) error {
	arity := map[string]int{}
	for _, a := range q.Body {
		if want, ok := arity[a.Relation]; ok {
			if want != a.Arity() {
				return &ArityMismatchError{Relation: a.Relation, Want: want, Got: a.Arity()}
			}
		} else {
			arity[a.Relation] = a.Arity()
		}
	}
	return nil
}
