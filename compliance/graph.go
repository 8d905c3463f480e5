// Package compliance implements location-aware compliance checking: it
// builds a typed attribute graph from a query, a per-location forest of
// authorised attributes from a rule set, and decides whether the query's
// projections can be jointly materialised at a result location without
// violating any rule.
package compliance

import "github.com/arjunsethi/minicon/internal/set"

// EdgeType tags an Edge as a closed three-variant union. GROUPBY has no
// producer yet; it is reserved for aggregate dependencies and must still be
// handled by every exhaustive switch over EdgeType.
type EdgeType int

const (
	Join EdgeType = iota
	Relational
	GroupBy
)

func (t EdgeType) String() string {
	switch t {
	case Join:
		return "JOIN"
	case Relational:
		return "RELATIONAL"
	case GroupBy:
		return "GROUPBY"
	default:
		return "UNKNOWN"
	}
}

// Annotation is a constraint descriptor attached to a graph node: a
// predicate string plus whether it is compulsory. The empty predicate means
// "no constraint."
type Annotation struct {
	Predicate    string
	IsCompulsory bool
}

// intersects reports whether a and b can be jointly satisfied: either is
// unconstrained, or they name the identical predicate.
func (a Annotation) intersects(b Annotation) bool {
	if a.Predicate == "" || b.Predicate == "" {
		return true
	}
	return a.Predicate == b.Predicate
}

// Node is a canonical attribute with the annotations attached to it.
type Node struct {
	Attribute   string
	Annotations []Annotation
}

// compatible reports whether n is annotation-compatible with other: both
// have no annotations, or some pair of their annotations intersects.
func (n Node) compatible(other Node) bool {
	if len(n.Annotations) == 0 && len(other.Annotations) == 0 {
		return true
	}
	for _, a := range n.Annotations {
		for _, b := range other.Annotations {
			if a.intersects(b) {
				return true
			}
		}
	}
	return false
}

// Edge is a semantically-undirected relationship between two attributes.
type Edge struct {
	From, To string
	Type     EdgeType
	Weight   int
}

// Graph is a value type over canonical-attribute-string nodes; nodes are
// referenced by name, never by pointer, so graphs can be merged and copied
// freely.
type Graph struct {
	Nodes map[string]Node
	Edges []Edge
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{Nodes: map[string]Node{}}
}

// AddNode inserts attribute if absent, or appends ann to its existing
// annotations if present.
func (g *Graph) AddNode(attribute string, ann ...Annotation) {
	n, ok := g.Nodes[attribute]
	if !ok {
		n = Node{Attribute: attribute}
	}
	n.Annotations = append(n.Annotations, ann...)
	g.Nodes[attribute] = n
}

// HasNode reports whether attribute is a node of g.
func (g *Graph) HasNode(attribute string) bool {
	_, ok := g.Nodes[attribute]
	return ok
}

// AddEdge appends an edge; duplicate edges are permitted, mirroring how the
// evaluator concatenates edges when merging per-location views.
func (g *Graph) AddEdge(from, to string, typ EdgeType, weight int) {
	g.Edges = append(g.Edges, Edge{From: from, To: to, Type: typ, Weight: weight})
}

// adjacency builds an undirected adjacency list over g's edges, used by
// Connected.
func (g *Graph) adjacency() map[string][]string {
	adj := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
	}
	return adj
}

// Connected runs breadth-first search from start and reports whether every
// attribute in targets is reachable. A single-element targets list is
// connected iff start (which is always targets[0]) is itself a node.
func (g *Graph) Connected(targets []string) bool {
	if len(targets) == 0 {
		return true
	}
	start := targets[0]
	if !g.HasNode(start) {
		return false
	}
	if len(targets) == 1 {
		return true
	}

	adj := g.adjacency()
	visited := set.Of(start)
	fringe := []string{start}
	for len(fringe) > 0 {
		cur := fringe[0]
		fringe = fringe[1:]
		for _, next := range adj[cur] {
			if visited.Contains(next) {
				continue
			}
			visited.Add(next)
			fringe = append(fringe, next)
		}
	}

	for _, t := range targets {
		if !visited.Contains(t) {
			return false
		}
	}
	return true
}
