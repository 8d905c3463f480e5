package compliance

import (
	"github.com/arjunsethi/minicon/query"
	"github.com/arjunsethi/minicon/sqlast"
)

// BuildAttributeGraph builds the typed attribute graph for ast directly
// from the parsed SQL form, deliberately bypassing C1's union-find
// unification: every SELECT and WHERE attribute becomes its own node,
// named by canonical key, with no variable-sharing collapse.
//
// Nodes are the canonical attributes appearing in the SELECT list plus
// those on either side of a WHERE equality. For each predicate `a.x = b.y`:
// a RELATIONAL edge if a and b are the same relation, otherwise a JOIN
// edge. Every edge is created with weight 1 (spec.md 4.6); the evaluator's
// weight threshold is a separate, independently tunable constant.
func BuildAttributeGraph(ast *sqlast.Query) (*Graph, error) {
	aliasToTable, tables, err := resolveAliases(ast)
	if err != nil {
		return nil, err
	}

	// resolveTable returns the table attr is qualified to. A bare attribute
	// resolves to the sole FROM table when there is only one; with more
	// than one FROM table there is no schema to resolve it against, so it
	// returns "" rather than erroring — matching how the source keys
	// attribute-graph and forest nodes on the literal attribute text,
	// qualified or not, instead of resolving against a schema.
	resolveTable := func(attr *sqlast.Attr) string {
		if attr.Table != "" {
			if t, ok := aliasToTable[attr.Table]; ok {
				return t
			}
			return attr.Table
		}
		if len(tables) == 1 {
			return tables[0]
		}
		return ""
	}

	key := func(attr *sqlast.Attr) string {
		if t := resolveTable(attr); t != "" {
			return t + "." + attr.Column
		}
		return attr.Column
	}

	g := NewGraph()

	for _, attr := range ast.Select {
		g.AddNode(key(attr))
	}

	for _, pred := range ast.Where {
		leftKey, rightKey := key(pred.Left), key(pred.Right)
		g.AddNode(leftKey)
		g.AddNode(rightKey)

		leftTable, rightTable := resolveTable(pred.Left), resolveTable(pred.Right)
		typ := Join
		if leftTable != "" && leftTable == rightTable {
			typ = Relational
		}
		g.AddEdge(leftKey, rightKey, typ, 1)
	}

	return g, nil
}

// resolveAliases builds the alias-to-table map and the ordered, deduped
// list of FROM tables for ast, used by BuildAttributeGraph. Package
// query's Compile builds the same map with its own copy of this loop.
func resolveAliases(ast *sqlast.Query) (map[string]string, []string, error) {
	if len(ast.From) == 0 {
		return nil, nil, query.NewMalformedQuery(ast.Pos, "FROM clause has no tables")
	}
	aliasToTable := map[string]string{}
	var tables []string
	seen := map[string]bool{}
	for _, ref := range ast.From {
		aliasToTable[ref.Table] = ref.Table
		if ref.Alias != "" {
			aliasToTable[ref.Alias] = ref.Table
		}
		if !seen[ref.Table] {
			seen[ref.Table] = true
			tables = append(tables, ref.Table)
		}
	}
	return aliasToTable, tables, nil
}
