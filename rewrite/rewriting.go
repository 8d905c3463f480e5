package rewrite

import (
	"fmt"

	"github.com/arjunsethi/minicon/internal/set"
	"github.com/arjunsethi/minicon/query"
)

// ViewUse is one occurrence of a view inside a Rewriting. Occurrence counts
// from 0; a view used twice in the same rewriting (a self-join at the view
// level) gets two ViewUse values, Occurrence 0 and 1, each carrying its own
// α-renamed copy of the view's variables so the two uses never alias.
type ViewUse struct {
	ViewIndex  int
	Occurrence int
	Mapping    Mapping
}

// Rewriting is one valid way of answering a query entirely from views.
// MCDIndices names, in combination order, which of the MCD builder's
// outputs were combined to produce it.
type Rewriting struct {
	MCDIndices    []int
	Views         []ViewUse
	Covered       set.Set[int]
	Distinguished set.Set[string]
}

// renameOnReuse suffixes every view-variable key in m so a view used more
// than once within one rewriting gets a disjoint variable namespace per
// use. Without this, a second use of the same view would silently collide
// with the first's bindings in the pairwise-compatibility check instead of
// being recognized as an independent self-join leg.
func renameOnReuse(m Mapping, occurrence int) Mapping {
	if occurrence == 0 {
		return m
	}
	suffix := fmt.Sprintf("#%d", occurrence)
	renamed := make(Mapping, len(m))
	for k, v := range m {
		renamed[k+suffix] = v
	}
	return renamed
}

// combineFrame is the saved state needed to undo one committed choice when
// backtracking out of it: the merged mapping, covered-subgoal set, and
// distinguished-variable set as they stood immediately before that choice,
// plus the occurrence counter it bumped.
type combineFrame struct {
	merged        Mapping
	covered       set.Set[int]
	distinguished set.Set[string]
	viewIndex     int
	occ           int
}

// Combine enumerates subsets of mcds in increasing size and returns every
// one that forms a valid rewriting of q (spec.md 4.5):
//  1. the union of covered subgoals spans the whole query body;
//  2. the union of distinguished variables is a superset of q's head
//     variables;
//  3. the members' mappings are pairwise compatible, once same-view reuse
//     has been renamed apart.
//
// A branch is pruned the moment the candidate being added conflicts with
// what has been chosen so far, rather than completing the combination
// first and rejecting it afterward. The subset search itself runs on an
// explicit frame stack rather than the Go call stack, so stack usage stays
// bounded by the subset size k regardless of how large mcds grows.
func Combine(q *query.ConjunctiveQuery, mcds []MCD) []Rewriting {
	n := len(mcds)
	headVars := q.HeadVariables()
	totalSubgoals := len(q.Body)

	var results []Rewriting

	for k := 1; k <= n; k++ {
		chosen := make([]int, 0, k)
		uses := make([]ViewUse, 0, k)
		var covered set.Set[int]
		var distinguished set.Set[string]
		var merged Mapping
		occCounts := map[int]int{}

		// next[d] is the next candidate index to try at depth d; it plays
		// the role the recursive version's "start" parameter played,
		// carried across iterations instead of being a fresh call
		// argument. frames holds, per committed depth, the state to
		// restore on backtrack.
		next := make([]int, k)
		frames := make([]combineFrame, 0, k)

		pop := func() int {
			depth := len(chosen)
			if depth == 0 {
				return -1
			}
			f := frames[len(frames)-1]
			frames = frames[:len(frames)-1]
			merged, covered, distinguished = f.merged, f.covered, f.distinguished
			occCounts[f.viewIndex] = f.occ
			chosen = chosen[:len(chosen)-1]
			uses = uses[:len(uses)-1]
			return depth - 1
		}

		depth := 0
		for depth >= 0 {
			if depth == k {
				if len(covered) == totalSubgoals && headVars.Subset(distinguished) {
					results = append(results, Rewriting{
						MCDIndices:    append([]int(nil), chosen...),
						Views:         append([]ViewUse(nil), uses...),
						Covered:       covered.Clone(),
						Distinguished: distinguished.Clone(),
					})
				}
				depth = pop()
				continue
			}

			advanced := false
			for next[depth] < n {
				i := next[depth]
				next[depth]++

				mcd := mcds[i]
				occ := occCounts[mcd.ViewIndex]
				renamed := renameOnReuse(mcd.Mapping, occ)
				if !merged.compatible(renamed) {
					continue
				}

				frames = append(frames, combineFrame{
					merged:        merged,
					covered:       covered,
					distinguished: distinguished,
					viewIndex:     mcd.ViewIndex,
					occ:           occ,
				})
				merged = merged.merge(renamed)
				covered = covered.Union(mcd.Covered)
				distinguished = distinguished.Union(mcd.Distinguished)
				occCounts[mcd.ViewIndex] = occ + 1
				chosen = append(chosen, i)
				uses = append(uses, ViewUse{ViewIndex: mcd.ViewIndex, Occurrence: occ, Mapping: renamed})

				depth++
				if depth < k {
					next[depth] = i + 1
				}
				advanced = true
				break
			}
			if !advanced {
				depth = pop()
			}
		}
	}

	return results
}
