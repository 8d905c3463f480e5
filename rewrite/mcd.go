package rewrite

import (
	"sort"
	"strconv"
	"strings"

	"github.com/arjunsethi/minicon/internal/set"
	"github.com/arjunsethi/minicon/query"
)

// MCD is a MiniCon Description: a witness that view ViewIndex, under
// Mapping, covers the query subgoals in Covered, and that the variables in
// Distinguished are the query head variables this MCD is able to recover.
type MCD struct {
	ViewIndex     int
	Covered       set.Set[int]
	Mapping       Mapping
	Distinguished set.Set[string]
}

// BuildMCDs computes every MCD for q against the given views, following
// the MiniCon paper's steps: for each view, seed one MCD
// per (query-subgoal, view-subgoal) pair that maps under the empty mapping,
// extend each seed to a fixed point, discard any MCD that fails the
// MiniCon head-variable property, then deduplicate and sort the survivors.
//
// An empty result for one view is not a failure — it only means that view
// cannot contribute to any rewriting.
func BuildMCDs(q *query.ConjunctiveQuery, views []*query.ConjunctiveQuery) []MCD {
	var mcds []MCD
	for viewIdx, view := range views {
		for sgIdx, queryAtom := range q.Body {
			for _, viewAtom := range view.Body {
				mapping, ok := TryMap(viewAtom, queryAtom, Mapping{})
				if !ok {
					continue
				}
				mcd := MCD{
					ViewIndex: viewIdx,
					Covered:   set.Of(sgIdx),
					Mapping:   mapping,
				}
				extend(&mcd, q, view)
				if !satisfiesHeadProperty(&mcd, q, view) {
					continue
				}
				mcd.Distinguished = distinguishedVars(&mcd, q, view)
				mcds = append(mcds, mcd)
			}
		}
	}
	return dedupeMCDs(mcds)
}

// extend repeatedly looks for an uncovered query subgoal that some view
// atom maps under the MCD's current mapping, and folds the first such
// atom's binding in. It terminates when a full pass covers nothing new.
func extend(mcd *MCD, q *query.ConjunctiveQuery, view *query.ConjunctiveQuery) {
	for {
		extended := false
		for sgIdx, queryAtom := range q.Body {
			if mcd.Covered.Contains(sgIdx) {
				continue
			}
			for _, viewAtom := range view.Body {
				merged, ok := TryMap(viewAtom, queryAtom, mcd.Mapping)
				if !ok {
					continue
				}
				mcd.Covered.Add(sgIdx)
				mcd.Mapping = merged
				extended = true
				break
			}
		}
		if !extended {
			return
		}
	}
}

// satisfiesHeadProperty checks the MiniCon property of spec.md 4.4: every
// query head variable that receives an image under the MCD's mapping must
// do so via a view variable that is itself exposed in the view's head. A
// single failure discards the whole MCD — a variable existential in the
// view but distinguished in the query can never be recovered by using this
// view alone.
func satisfiesHeadProperty(mcd *MCD, q *query.ConjunctiveQuery, view *query.ConjunctiveQuery) bool {
	headVars := q.HeadVariables()
	viewHeadVars := view.HeadVariables()
	for viewVar, queryVar := range mcd.Mapping {
		if !headVars.Contains(queryVar) {
			continue
		}
		if !viewHeadVars.Contains(viewVar) {
			return false
		}
	}
	return true
}

// distinguishedVars returns the query head variables this MCD recovers,
// having already passed satisfiesHeadProperty.
func distinguishedVars(mcd *MCD, q *query.ConjunctiveQuery, view *query.ConjunctiveQuery) set.Set[string] {
	headVars := q.HeadVariables()
	viewHeadVars := view.HeadVariables()
	dv := set.Set[string]{}
	for viewVar, queryVar := range mcd.Mapping {
		if headVars.Contains(queryVar) && viewHeadVars.Contains(viewVar) {
			dv.Add(queryVar)
		}
	}
	return dv
}

// mcdKey renders an MCD's (view index, covered-subgoal set, mapping) as a
// deterministic string, used both to deduplicate and to order MCDs.
func mcdKey(mcd MCD) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(mcd.ViewIndex))
	b.WriteByte('|')

	covered := mcd.Covered.Elems()
	sort.Ints(covered)
	for i, sg := range covered {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(sg))
	}
	b.WriteByte('|')

	keys := make([]string, 0, len(mcd.Mapping))
	for k := range mcd.Mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(mcd.Mapping[k])
	}
	return b.String()
}

func dedupeMCDs(mcds []MCD) []MCD {
	seen := map[string]bool{}
	keyed := make([]struct {
		key string
		mcd MCD
	}, 0, len(mcds))
	for _, m := range mcds {
		k := mcdKey(m)
		if seen[k] {
			continue
		}
		seen[k] = true
		keyed = append(keyed, struct {
			key string
			mcd MCD
		}{k, m})
	}
	sort.Slice(keyed, func(i, j int) bool { return keyed[i].key < keyed[j].key })

	out := make([]MCD, len(keyed))
	for i, kv := range keyed {
		out[i] = kv.mcd
	}
	return out
}
