package compliance

import (
	"strings"

	"github.com/arjunsethi/minicon/internal/set"
)

// bareColumn strips a canonical Table.column key down to its column, or
// returns attr unchanged if it carries no table qualifier. A rule with an
// empty Relation is stored under this bare form, and is matched against
// any relation carrying that column (spec.md 9): L_R's bare-attribute rules
// apply irrespective of which relation the query actually drew the column
// from.
func bareColumn(attr string) string {
	if i := strings.LastIndex(attr, "."); i >= 0 {
		return attr[i+1:]
	}
	return attr
}

// resultNodeFor looks up attr in the result location's forest, falling
// back to its bare column form for rules entered without a relation.
func resultNodeFor(resultForest *Forest, attr string) (Node, bool) {
	if n, ok := resultForest.Nodes[attr]; ok {
		return n, true
	}
	n, ok := resultForest.Nodes[bareColumn(attr)]
	return n, ok
}

// edgeWeightThreshold is the exclusive upper bound on edge weight when
// building a per-location view graph: only edges lighter than it are
// admitted. Every edge the front end creates today has
// weight 1, so the threshold is inert over the current rule shape — it is
// kept as an explicit knob because GROUPBY edges are reserved to carry
// higher weights later (spec.md 4.6, 9).
const edgeWeightThreshold = 3

// blockedAtResultLocation returns the canonical attributes for which some
// non-transferable rule is recorded at resultLocation. Under the "open L_R"
// semantics this evaluator follows (spec.md 9), an attribute L_R's forest
// says nothing about is admitted by default; a blocking rule here denies
// the attribute whatever the result forest's annotations say.
func blockedAtResultLocation(rules []Rule, resultLocation string) set.Set[string] {
	blocked := set.Set[string]{}
	for _, r := range rules {
		if r.Location == resultLocation && !r.CanTransfer {
			blocked.Add(r.canonicalAttribute())
		}
	}
	return blocked
}

// perLocationView builds location's contribution to the merged compliance
// graph (spec.md 4.8 step 1): every node of the query's attribute graph
// that is also a node of location's forest, admitted unless a
// non-transferable rule blocks it at the result location, and — when the
// result forest has a matching node — only if it is annotation-compatible
// with that node. Every
// query-graph edge under the weight threshold whose endpoints are both
// admitted is carried over.
func perLocationView(queryGraph *Graph, locForest *Forest, resultForest *Forest, blocked set.Set[string]) *Graph {
	view := NewGraph()

	for attr, node := range locForest.Nodes {
		if !queryGraph.HasNode(attr) {
			continue
		}
		if blocked.Contains(attr) || blocked.Contains(bareColumn(attr)) {
			continue
		}
		if resultNode, ok := resultNodeFor(resultForest, attr); ok {
			if !node.compatible(resultNode) {
				continue
			}
		}
		view.AddNode(attr, node.Annotations...)
	}

	for _, e := range queryGraph.Edges {
		if e.Weight >= edgeWeightThreshold {
			continue
		}
		if !view.HasNode(e.From) || !view.HasNode(e.To) {
			continue
		}
		view.AddEdge(e.From, e.To, e.Type, e.Weight)
	}

	return view
}

// mergeViews unions per-location views into one graph: nodes merged by
// name, with the first occurrence's annotations kept, edges concatenated.
func mergeViews(views []*Graph) *Graph {
	merged := NewGraph()
	for _, v := range views {
		for attr, node := range v.Nodes {
			if !merged.HasNode(attr) {
				merged.AddNode(attr, node.Annotations...)
			}
		}
		merged.Edges = append(merged.Edges, v.Edges...)
	}
	return merged
}

// CheckCompliance decides whether a query, represented by queryGraph and
// its ordered SELECT list selectAttrs, can be answered at resultLocation
// under rules. It is total: every input, however pathological, yields true
// or false, never an error.
//
// A result location that names no rules at all is treated as having an
// empty forest rather than as an error: the natural answer under "open
// L_R" semantics is that nothing is blocked at a location nobody has
// written rules for (spec.md 6, 9).
func CheckCompliance(queryGraph *Graph, selectAttrs []string, rules []Rule, resultLocation string) bool {
	forests := BuildForests(rules)

	resultForest, ok := forests[resultLocation]
	if !ok {
		resultForest = NewGraph()
	}
	blocked := blockedAtResultLocation(rules, resultLocation)

	var views []*Graph
	for location, forest := range forests {
		if location == resultLocation {
			continue
		}
		views = append(views, perLocationView(queryGraph, forest, resultForest, blocked))
	}

	merged := mergeViews(views)

	for _, a := range selectAttrs {
		if !merged.HasNode(a) {
			return false
		}
	}
	return merged.Connected(selectAttrs)
}
