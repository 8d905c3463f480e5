// Package minicon answers two questions about conjunctive SQL queries over
// a fixed relational schema: which combinations of views can rewrite a
// query (the MiniCon algorithm), and whether a query can be answered at a
// given location without violating per-location data-transfer rules.
//
// Both entry points parse their own SQL; every other package in this
// module works over the already-canonical query.ConjunctiveQuery or
// compliance.Graph forms.
package minicon

import (
	"fmt"

	"github.com/arjunsethi/minicon/compliance"
	"github.com/arjunsethi/minicon/query"
	"github.com/arjunsethi/minicon/rewrite"
	"github.com/arjunsethi/minicon/sqlast"
)

// Rewrite enumerates every way querySQL can be answered entirely from the
// given views: each returned rewriting names the views used, their merged
// variable mapping, and the query subgoals they cover (which always equals
// the full query body on success). A nil, empty slice is a normal result —
// it means no rewriting exists — never an error.
func Rewrite(querySQL string, viewSQLs []string) ([]rewrite.Rewriting, error) {
	q, err := query.CompileSQL(querySQL, "Q")
	if err != nil {
		return nil, err
	}

	views := make([]*query.ConjunctiveQuery, len(viewSQLs))
	for i, sql := range viewSQLs {
		v, err := query.CompileSQL(sql, fmt.Sprintf("V%d", i))
		if err != nil {
			return nil, err
		}
		views[i] = v
	}

	mcds := rewrite.BuildMCDs(q, views)
	return rewrite.Combine(q, mcds), nil
}

// CheckCompliance decides whether querySQL can be answered at
// resultLocation without violating any rule. It is total: a result
// location named by no rule is treated as an empty forest (spec.md 6, 9),
// never as an error; the only errors are malformed input.
func CheckCompliance(querySQL string, rules []compliance.Rule, resultLocation string) (bool, error) {
	ast, err := sqlast.ParseString(querySQL)
	if err != nil {
		return false, &query.MalformedQueryError{Message: err.Error()}
	}

	for _, r := range rules {
		if err := compliance.ValidateRule(r); err != nil {
			return false, err
		}
	}

	graph, err := compliance.BuildAttributeGraph(ast)
	if err != nil {
		return false, err
	}

	selectAttrs := canonicalSelectAttrs(ast)

	return compliance.CheckCompliance(graph, selectAttrs, rules, resultLocation), nil
}

// canonicalSelectAttrs resolves each SELECT attribute of ast to its
// canonical key, in SELECT order — the order the connectivity test in C8
// walks projections in. A qualified attribute (or a bare one over the sole
// FROM table) resolves to Table.column; a bare attribute with more than one
// FROM table has no schema to resolve it against, so it keys by its bare
// column name instead, matching compliance.BuildAttributeGraph's node keys
// for the same attribute.
func canonicalSelectAttrs(ast *sqlast.Query) []string {
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

	attrs := make([]string, len(ast.Select))
	for i, attr := range ast.Select {
		table := attr.Table
		if table != "" {
			if t, ok := aliasToTable[table]; ok {
				table = t
			}
			attrs[i] = table + "." + attr.Column
			continue
		}
		if len(tables) == 1 {
			attrs[i] = tables[0] + "." + attr.Column
			continue
		}
		attrs[i] = attr.Column
	}
	return attrs
}
