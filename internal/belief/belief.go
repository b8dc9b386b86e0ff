package belief

import (
	"math"

	"github.com/jaxwc/mapmyhealth/internal/casefile"
	"github.com/jaxwc/mapmyhealth/internal/pack"
)

// #region beliefs

// Beliefs maps condition ids to probabilities. A normalized Beliefs sums to
// 1.0; ordering for display always comes from pack declaration order, never
// from map iteration.
type Beliefs map[string]float64

// Clone returns a copy.
func (b Beliefs) Clone() Beliefs {
	out := make(Beliefs, len(b))
	for id, p := range b {
		out[id] = p
	}
	return out
}

// Normalize scales beliefs to sum to 1.0. A zero or negative total cannot be
// scaled, so mass is redistributed uniformly instead; the second return
// reports that recovery.
func Normalize(b Beliefs) (Beliefs, bool) {
	out := make(Beliefs, len(b))
	if len(b) == 0 {
		return out, false
	}
	var sum float64
	for _, p := range b {
		sum += p
	}
	if sum <= 0 {
		uniform := 1.0 / float64(len(b))
		for id := range b {
			out[id] = uniform
		}
		return out, true
	}
	for id, p := range b {
		out[id] = p / sum
	}
	return out, false
}

// Entropy returns the Shannon entropy of the belief vector in bits. Zero
// entries contribute nothing. Certainty gives 0; a uniform spread over n
// conditions gives log2(n).
func Entropy(b Beliefs) float64 {
	var h float64
	for _, p := range b {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	if h < 0 {
		return 0
	}
	return h
}

// #endregion

// #region priors

// SeedPriors builds the starting belief distribution for the given
// conditions: each condition's prior is looked up against the patient
// demographics and the result is normalized.
func SeedPriors(c casefile.CaseState, conds []pack.ConditionDef) (Beliefs, bool) {
	raw := make(Beliefs, len(conds))
	for _, cond := range conds {
		raw[cond.ID] = priorFor(cond, c.Patient)
	}
	return Normalize(raw)
}

// priorFor picks the first demographic rule that matches, in declaration
// order, falling back to the default prior.
func priorFor(cond pack.ConditionDef, patient casefile.PatientData) float64 {
	for _, r := range cond.Priors.Rules {
		if matchRule(r, patient) {
			return r.Prior
		}
	}
	return cond.Priors.Default
}

// matchRule checks every constraint the rule sets. A constraint whose
// demographic is missing from the patient fails the match.
func matchRule(r pack.PriorRule, patient casefile.PatientData) bool {
	if r.AgeMin != nil || r.AgeMax != nil {
		if patient.Age == nil {
			return false
		}
		if r.AgeMin != nil && *patient.Age < *r.AgeMin {
			return false
		}
		if r.AgeMax != nil && *patient.Age >= *r.AgeMax {
			return false
		}
	}
	if r.Sex != "" && r.Sex != patient.Sex {
		return false
	}
	if r.Season != "" && r.Season != patient.Season {
		return false
	}
	if r.Pregnant != nil {
		if patient.Pregnant == nil || *patient.Pregnant != *r.Pregnant {
			return false
		}
	}
	return true
}

// #endregion

// #region why

// WhyKind distinguishes a populated explanation from an explicit
// not-supported marker.
type WhyKind string

const (
	WhyLREvidence WhyKind = "lr_evidence"
	WhyNone       WhyKind = "no_evidence"
)

// Contribution is one likelihood ratio actually applied to a condition.
type Contribution struct {
	Finding  string
	Presence pack.Presence
	LR       float64
	FromTest bool // ratio derived from test sensitivity/specificity
}

// WhyExplanation says which evidence moved a condition, or that none did.
type WhyExplanation struct {
	Kind          WhyKind
	Contributions []Contribution
}

// #endregion

// #region evidence

// EvidenceResult is the output of ApplyEvidence.
type EvidenceResult struct {
	Beliefs     Beliefs
	Why         map[string]WhyExplanation
	SkippedRefs int  // LR rows skipped over dangling content references
	ZeroSum     bool // posterior summed to zero and was redistributed
}

// ApplyEvidence folds the case's known findings into the prior beliefs. Each
// condition's probability moves through odds space: for every LR row whose
// target finding is known, odds multiply by the effective ratio, with at most
// one applied ratio per target per condition (rows that fail to resolve do
// not consume the slot). The posteriors renormalize at the end.
//
// ApplyEvidence must always be fed freshly seeded priors. Feeding it its own
// output would double-count every finding.
func ApplyEvidence(prior Beliefs, c casefile.CaseState, conds []pack.ConditionDef, p *pack.ContentPack) EvidenceResult {
	result := EvidenceResult{
		Why: make(map[string]WhyExplanation, len(conds)),
	}

	posterior := make(Beliefs, len(prior))
	for _, cond := range conds {
		prob, ok := prior[cond.ID]
		if !ok {
			continue
		}

		odds := toOdds(prob)
		why := WhyExplanation{Kind: WhyNone}
		seen := map[string]bool{}

		for _, row := range cond.LRTable {
			if seen[row.Target] {
				continue
			}
			if p.Finding(row.Target) == nil {
				result.SkippedRefs++
				continue
			}
			presence := c.Presence(row.Target)
			if presence == pack.PresenceUnknown {
				continue
			}

			lr, fromTest, ok := effectiveLR(row, presence, c.Onset(row.Target), p, &result)
			if !ok {
				continue
			}
			// A row consumes the per-target slot only once it applies, so a
			// broken first row does not shadow a valid later one.
			seen[row.Target] = true
			odds *= lr
			why.Kind = WhyLREvidence
			why.Contributions = append(why.Contributions, Contribution{
				Finding:  row.Target,
				Presence: presence,
				LR:       lr,
				FromTest: fromTest,
			})
		}

		posterior[cond.ID] = fromOdds(odds)
		result.Why[cond.ID] = why
	}

	result.Beliefs, result.ZeroSum = Normalize(posterior)
	return result
}

// Recompute runs the full seed-then-apply pipeline for a case. Every
// consumer that needs beliefs for a real or simulated case goes through
// this, which is what keeps evidence application idempotent.
func Recompute(c casefile.CaseState, conds []pack.ConditionDef, p *pack.ContentPack) EvidenceResult {
	prior, zero := SeedPriors(c, conds)
	result := ApplyEvidence(prior, c, conds, p)
	if zero {
		result.ZeroSum = true
	}
	return result
}

// effectiveLR resolves the ratio for one row and presence. A resolvable
// performance reference takes priority, using the day band matching the
// finding's own onset (or the case's, when the finding carries none); a
// dangling reference counts as skipped and falls back to the inline ratios.
func effectiveLR(row pack.LRRow, presence pack.Presence, daysSinceOnset *int, p *pack.ContentPack, result *EvidenceResult) (lr float64, fromTest bool, ok bool) {
	if row.PerformanceRef != "" {
		perf := p.Performance(row.PerformanceRef)
		if perf == nil {
			result.SkippedRefs++
		} else {
			sens, spec := perf.Effective(daysSinceOnset)
			if sens > 0 && sens < 1 && spec > 0 && spec < 1 {
				if presence == pack.PresencePresent {
					return sens / (1 - spec), true, true
				}
				return (1 - sens) / spec, true, true
			}
		}
	}

	if presence == pack.PresencePresent {
		lr = row.LRPresent
	} else {
		lr = row.LRAbsent
	}
	if lr <= 0 {
		result.SkippedRefs++
		return 0, false, false
	}
	return lr, false, true
}

// #endregion

// #region odds-helpers

const probEpsilon = 1e-12

// toOdds converts a probability to odds, clamping away from 0 and 1 so the
// transform stays finite.
func toOdds(p float64) float64 {
	if p < probEpsilon {
		p = probEpsilon
	}
	if p > 1-probEpsilon {
		p = 1 - probEpsilon
	}
	return p / (1 - p)
}

// fromOdds converts odds back to a probability.
func fromOdds(o float64) float64 {
	if math.IsInf(o, 1) {
		return 1
	}
	return o / (1 + o)
}

// #endregion
