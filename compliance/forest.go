package compliance

// Rule is a single (location, attribute, relation, transferability,
// constraint) statement: at location, the given attribute of the given
// relation is available and may (or may not) leave that location. An empty
// Relation means the rule applies to the bare attribute name regardless of
// which relation carries it — used for result-location rules in
// particular (spec.md 9).
type Rule struct {
	Location    string
	Attribute   string
	Relation    string
	CanTransfer bool
	Constraint  string
}

// canonicalAttribute returns the attribute name this rule matches in an
// attribute graph: Table.column if Relation is set, else the bare
// attribute name.
func (r Rule) canonicalAttribute() string {
	if r.Relation == "" {
		return r.Attribute
	}
	return r.Relation + "." + r.Attribute
}

// Forest is the per-location graph of attributes that location's rules
// mention. It starts with no edges; edges are inherited from the query's
// attribute graph during the per-location view computation in C8.
type Forest = Graph

// BuildForests groups rules by location and, for each, inserts one node per
// attribute with a compulsory annotation built from the rule's constraint
// string (an empty constraint means "no constraint").
func BuildForests(rules []Rule) map[string]*Forest {
	forests := map[string]*Forest{}
	for _, r := range rules {
		f, ok := forests[r.Location]
		if !ok {
			f = NewGraph()
			forests[r.Location] = f
		}
		f.AddNode(r.canonicalAttribute(), Annotation{Predicate: r.Constraint, IsCompulsory: true})
	}
	return forests
}
