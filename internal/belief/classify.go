package belief

import (
	"sort"

	"github.com/jaxwc/mapmyhealth/internal/pack"
)

// #region recommendation

// Recommendation is the engine's care recommendation.
type Recommendation string

const (
	RecommendUrgentCare      Recommendation = "urgent-care"
	RecommendTargetedCare    Recommendation = "targeted-care"
	RecommendSupportiveCare  Recommendation = "supportive-care"
	RecommendWatchfulWaiting Recommendation = "watchful-waiting"
)

// recommendFor maps a band category to a recommendation. Urgent-care is never
// produced here; that is triage's verdict alone.
func recommendFor(category pack.BandCategory) Recommendation {
	switch category {
	case pack.BandHighlyLikely:
		return RecommendTargetedCare
	case pack.BandLikely:
		return RecommendSupportiveCare
	default:
		return RecommendWatchfulWaiting
	}
}

// #endregion

// #region classify

// RankedCondition is one row of the ranked differential.
type RankedCondition struct {
	ID          string
	Name        string
	Probability float64
	Category    pack.BandCategory
	Why         WhyExplanation
}

// Classification is the ranked differential plus the overall verdict taken
// from the leader.
type Classification struct {
	Ranked         []RankedCondition
	Category       pack.BandCategory
	Recommendation Recommendation
}

// DefaultTopConditions caps how many ranked conditions a classification
// carries.
const DefaultTopConditions = 5

// Classify sorts conditions by descending probability and labels each with
// its own band category. The overall category and recommendation come from
// the leader; an empty condition list yields unknown and watchful-waiting.
// Ties keep pack declaration order. why may be nil when no evidence pass ran.
func Classify(b Beliefs, conds []pack.ConditionDef, why map[string]WhyExplanation, topN int) Classification {
	ranked := make([]RankedCondition, 0, len(conds))
	for _, cond := range conds {
		prob, ok := b[cond.ID]
		if !ok {
			continue
		}
		ranked = append(ranked, RankedCondition{
			ID:          cond.ID,
			Name:        cond.Name,
			Probability: prob,
			Category:    bandFor(cond, prob),
			Why:         whyOrNone(why, cond.ID),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Probability > ranked[j].Probability
	})

	if len(ranked) == 0 {
		return Classification{
			Category:       pack.BandUnknown,
			Recommendation: RecommendWatchfulWaiting,
		}
	}

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}

	leader := ranked[0]
	return Classification{
		Ranked:         ranked,
		Category:       leader.Category,
		Recommendation: recommendFor(leader.Category),
	}
}

// bandFor finds the band containing p. Probabilities outside every band form
// no valid category; that only happens on malformed band tables, and unknown
// is the honest answer there.
func bandFor(cond pack.ConditionDef, p float64) pack.BandCategory {
	for _, band := range cond.Bands {
		if band.Contains(p) {
			return band.Category
		}
	}
	return pack.BandUnknown
}

func whyOrNone(why map[string]WhyExplanation, id string) WhyExplanation {
	if why != nil {
		if w, ok := why[id]; ok {
			return w
		}
	}
	return WhyExplanation{Kind: WhyNone}
}

// #endregion
