package compliance

import "testing"

func TestCheckComplianceSingleProjectionBoundary(t *testing.T) {
	// A query with one projection and no joins: compliance depends only on
	// whether that attribute is receivable at the result location.
	g := NewGraph()
	g.AddNode("customer.c_name")

	receivable := []Rule{
		{Location: "L1", Attribute: "c_name", Relation: "customer", CanTransfer: true},
		{Location: "LR", Attribute: "c_name", CanTransfer: true},
	}
	if !CheckCompliance(g, []string{"customer.c_name"}, receivable, "LR") {
		t.Error("single projection receivable at LR should be compliant")
	}

	blocked := []Rule{
		{Location: "L1", Attribute: "c_name", Relation: "customer", CanTransfer: true},
		{Location: "LR", Attribute: "c_name", CanTransfer: false},
	}
	if CheckCompliance(g, []string{"customer.c_name"}, blocked, "LR") {
		t.Error("single projection blocked at LR should be non-compliant")
	}
}

func TestCheckComplianceSingleProjectionMissingFromQuery(t *testing.T) {
	g := NewGraph()
	g.AddNode("customer.c_name")
	if CheckCompliance(g, []string{"customer.c_phone"}, nil, "LR") {
		t.Error("a SELECT attribute absent from the query graph can never be compliant")
	}
}

// crossLocationJoinGraph builds the attribute graph for
// SELECT customer.c_nationkey, nation.n_nationkey FROM customer, nation
// WHERE customer.c_nationkey = nation.n_nationkey directly, so the test does
// not depend on the SQL front end.
func crossLocationJoinGraph() *Graph {
	g := NewGraph()
	g.AddNode("customer.c_nationkey")
	g.AddNode("nation.n_nationkey")
	g.AddEdge("customer.c_nationkey", "nation.n_nationkey", Join, 1)
	return g
}

func TestCheckComplianceCrossLocationJoinPositive(t *testing.T) {
	// The join edge can only survive into the merged graph if some single
	// non-result location's forest contains both of its endpoints: per-
	// location views are computed independently, and an edge is only carried
	// over when both endpoints are already kept within that same view. Here
	// L1 sees both sides of the join.
	rules := []Rule{
		{Location: "L1", Attribute: "c_nationkey", Relation: "customer", CanTransfer: true},
		{Location: "L1", Attribute: "n_nationkey", Relation: "nation", CanTransfer: true},
		{Location: "LR", Attribute: "c_nationkey", CanTransfer: true},
		{Location: "LR", Attribute: "n_nationkey", CanTransfer: true},
	}
	g := crossLocationJoinGraph()
	if !CheckCompliance(g, []string{"customer.c_nationkey", "nation.n_nationkey"}, rules, "LR") {
		t.Error("join visible entirely within L1 should be compliant")
	}
}

func TestCheckComplianceCrossLocationJoinSplitAcrossLocationsIsNonCompliant(t *testing.T) {
	// Same query, but the two sides of the join are known to two different
	// locations: neither location's own view ever contains both endpoints,
	// so the join edge is dropped by every per-location view and the merged
	// graph leaves the two projections disconnected.
	rules := []Rule{
		{Location: "L1", Attribute: "c_nationkey", Relation: "customer", CanTransfer: true},
		{Location: "L2", Attribute: "n_nationkey", Relation: "nation", CanTransfer: true},
		{Location: "LR", Attribute: "c_nationkey", CanTransfer: true},
		{Location: "LR", Attribute: "n_nationkey", CanTransfer: true},
	}
	g := crossLocationJoinGraph()
	if CheckCompliance(g, []string{"customer.c_nationkey", "nation.n_nationkey"}, rules, "LR") {
		t.Error("join split across two locations with no shared view should be non-compliant")
	}
}

func TestCheckComplianceLRBlockingRuleFlipsToNonCompliant(t *testing.T) {
	rules := []Rule{
		{Location: "L1", Attribute: "c_nationkey", Relation: "customer", CanTransfer: true},
		{Location: "L1", Attribute: "n_nationkey", Relation: "nation", CanTransfer: true},
		{Location: "LR", Attribute: "n_nationkey", CanTransfer: false},
	}
	g := crossLocationJoinGraph()
	if CheckCompliance(g, []string{"customer.c_nationkey", "nation.n_nationkey"}, rules, "LR") {
		t.Error("a non-transferable rule at LR for n_nationkey should block it from the merged graph")
	}
}

func TestCheckComplianceAnnotationMismatchBlocksAdmission(t *testing.T) {
	rules := []Rule{
		{Location: "L1", Attribute: "c_nationkey", Relation: "customer", CanTransfer: true, Constraint: "masked"},
		{Location: "L1", Attribute: "n_nationkey", Relation: "nation", CanTransfer: true},
		{Location: "LR", Attribute: "c_nationkey", CanTransfer: true, Constraint: "plain"},
		{Location: "LR", Attribute: "n_nationkey", CanTransfer: true},
	}
	g := crossLocationJoinGraph()
	if CheckCompliance(g, []string{"customer.c_nationkey", "nation.n_nationkey"}, rules, "LR") {
		t.Error("L1's masked constraint is incompatible with LR's plain constraint, want non-compliant")
	}
}

func TestCheckComplianceUnknownResultLocationTreatedAsOpen(t *testing.T) {
	g := NewGraph()
	g.AddNode("customer.c_name")
	rules := []Rule{
		{Location: "L1", Attribute: "c_name", Relation: "customer", CanTransfer: true},
	}
	if !CheckCompliance(g, []string{"customer.c_name"}, rules, "LR-with-no-rules") {
		t.Error("a result location with no rules at all should admit by default under open-L_R semantics")
	}
}

func TestCheckComplianceAddingReceivableRuleCannotFlipCompliantToNonCompliant(t *testing.T) {
	g := NewGraph()
	g.AddNode("customer.c_name")
	base := []Rule{
		{Location: "L1", Attribute: "c_name", Relation: "customer", CanTransfer: true},
		{Location: "LR", Attribute: "c_name", CanTransfer: true},
	}
	if !CheckCompliance(g, []string{"customer.c_name"}, base, "LR") {
		t.Fatal("baseline expected compliant")
	}
	extended := append(append([]Rule{}, base...), Rule{Location: "LR", Attribute: "c_phone", CanTransfer: true})
	if !CheckCompliance(g, []string{"customer.c_name"}, extended, "LR") {
		t.Error("adding an unrelated receivable rule at LR flipped a compliant query to non-compliant")
	}
}

func TestCheckComplianceAddingNonTransferableRuleElsewhereCannotFlipNonCompliantToCompliant(t *testing.T) {
	g := crossLocationJoinGraph()
	base := []Rule{
		{Location: "L1", Attribute: "c_nationkey", Relation: "customer", CanTransfer: true},
		{Location: "L2", Attribute: "n_nationkey", Relation: "nation", CanTransfer: true},
	}
	attrs := []string{"customer.c_nationkey", "nation.n_nationkey"}
	if CheckCompliance(g, attrs, base, "LR") {
		t.Fatal("baseline expected non-compliant")
	}
	extended := append(append([]Rule{}, base...), Rule{Location: "L3", Attribute: "c_phone", Relation: "customer", CanTransfer: false})
	if CheckCompliance(g, attrs, extended, "LR") {
		t.Error("adding a non-transferable rule at a third location flipped a non-compliant query to compliant")
	}
}

func TestCheckComplianceDeterministicRegardlessOfRuleOrder(t *testing.T) {
	g := crossLocationJoinGraph()
	attrs := []string{"customer.c_nationkey", "nation.n_nationkey"}
	forward := []Rule{
		{Location: "L1", Attribute: "c_nationkey", Relation: "customer", CanTransfer: true},
		{Location: "L1", Attribute: "n_nationkey", Relation: "nation", CanTransfer: true},
		{Location: "LR", Attribute: "c_nationkey", CanTransfer: true},
		{Location: "LR", Attribute: "n_nationkey", CanTransfer: true},
	}
	reversed := make([]Rule, len(forward))
	for i, r := range forward {
		reversed[len(forward)-1-i] = r
	}
	if CheckCompliance(g, attrs, forward, "LR") != CheckCompliance(g, attrs, reversed, "LR") {
		t.Error("CheckCompliance verdict depends on rule order, want order-independence")
	}
}
