package rewrite

import (
	"testing"

	"github.com/arjunsethi/minicon/query"
)

func compileOrFatal(t *testing.T, sql, name string) *query.ConjunctiveQuery {
	t.Helper()
	q, err := query.CompileSQL(sql, name)
	if err != nil {
		t.Fatalf("CompileSQL(%q) returned error: %v", sql, err)
	}
	return q
}

func TestBuildMCDsClassicTwoRelationJoin(t *testing.T) {
	q := compileOrFatal(t, "SELECT R.x, S.z FROM R, S WHERE R.y = S.y", "Q")
	v1 := compileOrFatal(t, "SELECT R.x, R.y FROM R", "V1")
	v2 := compileOrFatal(t, "SELECT S.y, S.z FROM S", "V2")

	mcds := BuildMCDs(q, []*query.ConjunctiveQuery{v1, v2})
	if len(mcds) != 2 {
		t.Fatalf("BuildMCDs returned %d MCDs, want 2 (one per view): %+v", len(mcds), mcds)
	}

	for _, mcd := range mcds {
		if len(mcd.Covered) != 1 {
			t.Errorf("MCD for view %d covers %d subgoals, want exactly 1 (each view covers one subgoal here)", mcd.ViewIndex, len(mcd.Covered))
		}
	}
}

func TestBuildMCDsPreJoinedView(t *testing.T) {
	q := compileOrFatal(t, "SELECT R.x, S.z FROM R, S WHERE R.y = S.y", "Q")
	v3 := compileOrFatal(t, "SELECT R.x, S.z FROM R, S WHERE R.y = S.y", "V3")

	mcds := BuildMCDs(q, []*query.ConjunctiveQuery{v3})
	if len(mcds) != 1 {
		t.Fatalf("BuildMCDs returned %d MCDs, want 1: %+v", len(mcds), mcds)
	}
	if len(mcds[0].Covered) != 2 {
		t.Errorf("single view's MCD covers %d subgoals, want 2 (the whole query body)", len(mcds[0].Covered))
	}
}

func TestBuildMCDsDiscardsViewMissingHeadVariable(t *testing.T) {
	q := compileOrFatal(t, "SELECT R.x, R.y FROM R, S WHERE R.y = S.y", "Q")
	v7 := compileOrFatal(t, "SELECT R.x FROM R", "V7")

	mcds := BuildMCDs(q, []*query.ConjunctiveQuery{v7})
	if len(mcds) != 0 {
		t.Fatalf("BuildMCDs returned %d MCDs, want 0: R.x has arity 1 in V7 but 2 in Q, so V7 cannot even cover the R subgoal", len(mcds))
	}
}

func TestBuildMCDsDedupesIdenticalWitnesses(t *testing.T) {
	// Two atoms of the same view matching the same query subgoal with the
	// same resulting mapping must not produce two MCDs.
	q := compileOrFatal(t, "SELECT R.x FROM R", "Q")
	v := compileOrFatal(t, "SELECT R.x FROM R", "V")

	dup := &query.ConjunctiveQuery{Name: "V", Head: v.Head, Body: []query.Atom{v.Body[0], v.Body[0]}}

	first := BuildMCDs(q, []*query.ConjunctiveQuery{dup})
	second := BuildMCDs(q, []*query.ConjunctiveQuery{v, v})
	if len(first) != 1 {
		t.Fatalf("BuildMCDs with one view holding two identical atoms returned %d MCDs, want 1", len(first))
	}
	// Two distinct views at indices 0 and 1 produce two distinct MCDs (their
	// ViewIndex differs), which is correct — dedup is about identical
	// witnesses within the same view index, not across different ones.
	if len(second) != 2 {
		t.Fatalf("BuildMCDs with the same view twice (at different indices) returned %d MCDs, want 2", len(second))
	}
}
