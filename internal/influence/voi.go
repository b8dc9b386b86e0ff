package influence

import (
	"fmt"

	"github.com/jaxwc/mapmyhealth/internal/belief"
	"github.com/jaxwc/mapmyhealth/internal/casefile"
	"github.com/jaxwc/mapmyhealth/internal/pack"
)

// #region cost-weights

// CostWeights scalarizes an action's costs against its information value.
// InfoGain multiplies expected bits gained; the rest multiply the matching
// cost fields and subtract.
type CostWeights struct {
	InfoGain   float64 `json:"infoGainWeight" yaml:"infoGainWeight"`
	Money      float64 `json:"money" yaml:"money"`
	TimeHours  float64 `json:"timeHours" yaml:"timeHours"`
	Difficulty float64 `json:"difficulty" yaml:"difficulty"`
	Risk       float64 `json:"risk" yaml:"risk"`
}

// DefaultCostWeights returns the stock trade-off profile.
func DefaultCostWeights() CostWeights {
	return CostWeights{
		InfoGain:   1.0,
		Money:      0.01,
		TimeHours:  0.1,
		Difficulty: 0.2,
		Risk:       0.5,
	}
}

// CostTotal applies the weights to a cost block.
func (w CostWeights) CostTotal(c pack.Costs) float64 {
	return w.Money*c.Money + w.TimeHours*c.TimeHours + w.Difficulty*c.Difficulty + w.Risk*c.Risk
}

// #endregion

// #region action-voi

// OutcomeProjection is one simulated outcome of an action: its estimated
// probability and the belief state it would lead to.
type OutcomeProjection struct {
	Outcome     string
	Label       string
	Probability float64
	Posterior   belief.Beliefs
	Entropy     float64
}

// ActionVOI is the value-of-information scoring for one action.
type ActionVOI struct {
	Action           string
	Name             string
	Kind             pack.ActionKind
	ExpectedInfoGain float64 // bits, never negative
	Costs            pack.Costs
	Utility          float64
	Outcomes         []OutcomeProjection
	Rationale        string
}

// ScoreActionVOI estimates what performing an action is worth right now.
// Each outcome gets a probability (test-binding mixture when available, else
// probability hints, else uniform) and a posterior belief preview; utility is
// weighted expected information gain minus weighted costs.
func ScoreActionVOI(action pack.ActionDef, current belief.Beliefs, c casefile.CaseState, conds []pack.ConditionDef, p *pack.ContentPack, weights CostWeights) ActionVOI {
	entropyNow := belief.Entropy(current)
	probs := outcomeProbabilities(action, current, c, conds, p)

	outcomes := make([]OutcomeProjection, 0, len(action.Outcomes))
	expectedEntropy := 0.0
	for i, o := range action.Outcomes {
		simulated := c
		for _, e := range o.Effects {
			simulated = simulated.SetFinding(e.Finding, e.Presence)
		}
		result := belief.Recompute(simulated, conds, p)
		h := belief.Entropy(result.Beliefs)
		expectedEntropy += probs[i] * h
		outcomes = append(outcomes, OutcomeProjection{
			Outcome:     o.ID,
			Label:       o.Label,
			Probability: probs[i],
			Posterior:   result.Beliefs,
			Entropy:     h,
		})
	}

	gain := entropyNow - expectedEntropy
	if gain < 0 || len(outcomes) == 0 {
		gain = 0
	}

	costTotal := weights.CostTotal(action.Costs)
	utility := weights.InfoGain*gain - costTotal

	return ActionVOI{
		Action:           action.ID,
		Name:             action.Name,
		Kind:             action.Kind,
		ExpectedInfoGain: gain,
		Costs:            action.Costs,
		Utility:          utility,
		Outcomes:         outcomes,
		Rationale:        fmt.Sprintf("expected gain %.2f bits against weighted cost %.2f", gain, costTotal),
	}
}

// outcomeProbabilities assigns one probability per outcome, in outcome order.
func outcomeProbabilities(action pack.ActionDef, current belief.Beliefs, c casefile.CaseState, conds []pack.ConditionDef, p *pack.ContentPack) []float64 {
	n := len(action.Outcomes)
	if n == 0 {
		return nil
	}

	if probs, ok := bindingProbabilities(action, current, c, conds, p); ok {
		return probs
	}

	// Hints, normalized; missing hints contribute nothing. All-zero falls
	// back to uniform.
	probs := make([]float64, n)
	sum := 0.0
	for i, o := range action.Outcomes {
		if o.ProbabilityHint != nil && *o.ProbabilityHint > 0 {
			probs[i] = *o.ProbabilityHint
			sum += probs[i]
		}
	}
	if sum <= 0 {
		for i := range probs {
			probs[i] = 1.0 / float64(n)
		}
		return probs
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// bindingProbabilities estimates positive/negative probabilities for a
// test-bound action from current beliefs: conditions whose LR tables cite the
// bound test contribute their probability mass as the diseased fraction, and
// the test's sensitivity/specificity mix the rest. The sens/spec come from
// the day band matching the case-level illness onset — the test has not been
// performed yet, so no per-finding onset exists to consult. Additional
// outcomes beyond the bound pair keep their hints, and the vector
// renormalizes.
func bindingProbabilities(action pack.ActionDef, current belief.Beliefs, c casefile.CaseState, conds []pack.ConditionDef, p *pack.ContentPack) ([]float64, bool) {
	b := action.TestBinding
	if b == nil {
		return nil, false
	}
	perf := p.Performance(b.PerformanceRef)
	if perf == nil {
		return nil, false
	}
	posIdx, negIdx := -1, -1
	for i, o := range action.Outcomes {
		switch o.ID {
		case b.PositiveOutcomeID:
			posIdx = i
		case b.NegativeOutcomeID:
			negIdx = i
		}
	}
	if posIdx < 0 || negIdx < 0 {
		return nil, false
	}

	diseased := 0.0
	for _, cond := range conds {
		for _, row := range cond.LRTable {
			if row.PerformanceRef == b.PerformanceRef {
				diseased += current[cond.ID]
				break
			}
		}
	}
	if diseased > 1 {
		diseased = 1
	}

	sens, spec := perf.Effective(c.DaysSinceOnset)
	pPos := diseased*sens + (1-diseased)*(1-spec)

	probs := make([]float64, len(action.Outcomes))
	probs[posIdx] = pPos
	probs[negIdx] = 1 - pPos
	sum := 1.0
	for i, o := range action.Outcomes {
		if i == posIdx || i == negIdx {
			continue
		}
		if o.ProbabilityHint != nil && *o.ProbabilityHint > 0 {
			probs[i] = *o.ProbabilityHint
			sum += probs[i]
		}
	}
	if sum > 1 {
		for i := range probs {
			probs[i] /= sum
		}
	}
	return probs, true
}

// #endregion
