package planner

import (
	"sort"

	"github.com/jaxwc/mapmyhealth/internal/belief"
	"github.com/jaxwc/mapmyhealth/internal/casefile"
	"github.com/jaxwc/mapmyhealth/internal/influence"
	"github.com/jaxwc/mapmyhealth/internal/pack"
)

// #region availability

// Available returns the actions the case is currently eligible for, in pack
// declaration order: preconditions satisfied, nothing forbidden present, and
// not already completed. Completed actions are never re-offered.
func Available(c casefile.CaseState, p *pack.ContentPack) []pack.ActionDef {
	var out []pack.ActionDef
	for _, a := range p.Actions {
		if c.HasCompleted(a.ID) {
			continue
		}
		if !preconditionsMet(a.Preconditions, c) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func preconditionsMet(pre pack.Preconditions, c casefile.CaseState) bool {
	for _, id := range pre.RequireFindings {
		if !c.IsPresent(id) {
			return false
		}
	}
	for _, id := range pre.ForbidFindings {
		if c.IsPresent(id) {
			return false
		}
	}
	for _, id := range pre.RequireActions {
		if !c.HasCompleted(id) {
			return false
		}
	}
	return true
}

// #endregion

// #region ranking

// DefaultTopActions caps the ranked action list.
const DefaultTopActions = 5

// RankActions scores every available action by value of information and
// sorts by utility descending. The sort is stable, so equal utilities keep
// pack declaration order.
func RankActions(current belief.Beliefs, c casefile.CaseState, conds []pack.ConditionDef, p *pack.ContentPack, weights influence.CostWeights, k int) []influence.ActionVOI {
	available := Available(c, p)
	ranked := make([]influence.ActionVOI, 0, len(available))
	for _, a := range available {
		ranked = append(ranked, influence.ScoreActionVOI(a, current, c, conds, p, weights))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Utility > ranked[j].Utility
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// #endregion
