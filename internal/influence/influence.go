package influence

import (
	"fmt"
	"sort"

	"github.com/jaxwc/mapmyhealth/internal/belief"
	"github.com/jaxwc/mapmyhealth/internal/casefile"
	"github.com/jaxwc/mapmyhealth/internal/pack"
)

// #region unknowns

// UnknownInfo scores one not-yet-known finding by how much its answer is
// expected to shrink diagnostic uncertainty.
type UnknownInfo struct {
	Finding          string
	Name             string
	ExpectedInfoGain float64 // bits, never negative
	Rationale        string
}

// DefaultTopUnknowns caps how many unknowns are surfaced.
const DefaultTopUnknowns = 5

// MostInformativeUnknowns ranks the findings the case has no value for by
// expected entropy reduction: each candidate is simulated present and then
// absent through a full belief recompute, and the two posterior entropies are
// averaged. Findings no condition's LR table references are omitted; they
// cannot move beliefs. Ties keep pack declaration order.
func MostInformativeUnknowns(current belief.Beliefs, c casefile.CaseState, conds []pack.ConditionDef, p *pack.ContentPack, k int) []UnknownInfo {
	entropyNow := belief.Entropy(current)

	var out []UnknownInfo
	for _, f := range p.Findings {
		if c.Known(f.ID) {
			continue
		}
		assoc := associatedConditions(f.ID, conds, current)
		if len(assoc) == 0 {
			continue
		}

		present := belief.Recompute(c.SetFinding(f.ID, pack.PresencePresent), conds, p)
		absent := belief.Recompute(c.SetFinding(f.ID, pack.PresenceAbsent), conds, p)
		avg := (belief.Entropy(present.Beliefs) + belief.Entropy(absent.Beliefs)) / 2

		gain := entropyNow - avg
		if gain < 0 {
			gain = 0
		}

		out = append(out, UnknownInfo{
			Finding:          f.ID,
			Name:             f.Name,
			ExpectedInfoGain: gain,
			Rationale:        unknownRationale(assoc),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpectedInfoGain > out[j].ExpectedInfoGain
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// associatedConditions returns the conditions whose LR tables reference the
// finding, ordered by current probability descending (ties keep declaration
// order).
func associatedConditions(findingID string, conds []pack.ConditionDef, current belief.Beliefs) []pack.ConditionDef {
	var assoc []pack.ConditionDef
	for _, cond := range conds {
		for _, row := range cond.LRTable {
			if row.Target == findingID {
				assoc = append(assoc, cond)
				break
			}
		}
	}
	sort.SliceStable(assoc, func(i, j int) bool {
		return current[assoc[i].ID] > current[assoc[j].ID]
	})
	return assoc
}

func unknownRationale(assoc []pack.ConditionDef) string {
	if len(assoc) == 1 {
		return fmt.Sprintf("would help confirm or rule out %s", assoc[0].Name)
	}
	return fmt.Sprintf("helps distinguish %s from %s", assoc[0].Name, assoc[1].Name)
}

// #endregion
