package pack

import (
	"fmt"
	"math"
)

// #region result-types

// Check is one named validation check with its outcome.
type Check struct {
	Name   string
	Passed bool
	Detail string
}

// ValidationResult aggregates all checks run against a pack.
type ValidationResult struct {
	Passed bool
	Checks []Check
	Reason string
}

// #endregion

// #region validate

// Validate runs semantic checks on a loaded pack: id uniqueness, reference
// integrity, band coverage, and value ranges. Evaluation never requires a
// validated pack (dangling references degrade to skips there); this exists so
// authoring mistakes surface before a pack ships.
func Validate(p *ContentPack) ValidationResult {
	var checks []Check
	passed := true
	var failReasons []string

	record := func(name string, ok bool, detail string) {
		checks = append(checks, Check{Name: name, Passed: ok, Detail: detail})
		if !ok {
			passed = false
			failReasons = append(failReasons, detail)
		}
	}

	findings := make(map[string]bool, len(p.Findings))
	actions := make(map[string]bool, len(p.Actions))
	perf := make(map[string]bool, len(p.TestPerformance))

	// 1. Unique ids within each section
	{
		ok, detail := true, "all ids unique"
		for _, f := range p.Findings {
			if findings[f.ID] {
				ok, detail = false, fmt.Sprintf("duplicate finding id %q", f.ID)
			}
			findings[f.ID] = true
		}
		seen := map[string]bool{}
		for _, c := range p.Conditions {
			if seen[c.ID] {
				ok, detail = false, fmt.Sprintf("duplicate condition id %q", c.ID)
			}
			seen[c.ID] = true
		}
		for _, a := range p.Actions {
			if actions[a.ID] {
				ok, detail = false, fmt.Sprintf("duplicate action id %q", a.ID)
			}
			actions[a.ID] = true
		}
		for _, t := range p.TestPerformance {
			if perf[t.ID] {
				ok, detail = false, fmt.Sprintf("duplicate test performance id %q", t.ID)
			}
			perf[t.ID] = true
		}
		record("unique_ids", ok, detail)
	}

	// 2. Priors in [0, 1), including demographic overrides
	{
		ok, detail := true, "priors in range"
		for _, c := range p.Conditions {
			if c.Priors.Default < 0 || c.Priors.Default >= 1 {
				ok, detail = false, fmt.Sprintf("condition %q default prior %.4f outside [0,1)", c.ID, c.Priors.Default)
			}
			for i, r := range c.Priors.Rules {
				if r.Prior < 0 || r.Prior >= 1 {
					ok, detail = false, fmt.Sprintf("condition %q prior rule %d value %.4f outside [0,1)", c.ID, i, r.Prior)
				}
				if r.AgeMin != nil && r.AgeMax != nil && *r.AgeMax <= *r.AgeMin {
					ok, detail = false, fmt.Sprintf("condition %q prior rule %d has empty age range", c.ID, i)
				}
			}
		}
		record("prior_ranges", ok, detail)
	}

	// 3. Bands partition [0, 1): ordered, contiguous, known categories
	{
		ok, detail := true, "bands partition [0,1)"
		for _, c := range p.Conditions {
			ok2, d2 := checkBandPartition(c.ID, c.Bands)
			if !ok2 {
				ok, detail = false, d2
			}
		}
		record("band_partition", ok, detail)
	}

	// 4. LR rows: positive ratios, known targets, resolvable performance refs
	{
		ok, detail := true, "lr tables consistent"
		for _, c := range p.Conditions {
			seen := map[string]bool{}
			for _, row := range c.LRTable {
				if !findings[row.Target] {
					ok, detail = false, fmt.Sprintf("condition %q lr row targets unknown finding %q", c.ID, row.Target)
				}
				if seen[row.Target] {
					ok, detail = false, fmt.Sprintf("condition %q has duplicate lr rows for %q", c.ID, row.Target)
				}
				seen[row.Target] = true
				if row.LRPresent <= 0 || row.LRAbsent <= 0 {
					ok, detail = false, fmt.Sprintf("condition %q lr row %q has non-positive ratio", c.ID, row.Target)
				}
				if row.PerformanceRef != "" && !perf[row.PerformanceRef] {
					ok, detail = false, fmt.Sprintf("condition %q lr row %q references unknown test performance %q", c.ID, row.Target, row.PerformanceRef)
				}
			}
		}
		record("lr_tables", ok, detail)
	}

	// 5. Activation rules reference known findings
	{
		ok, detail := true, "activation references resolve"
		for _, c := range p.Conditions {
			for _, id := range append(append([]string{}, c.Activation.RequireAnyPresent...), c.Activation.RequireAllPresent...) {
				if !findings[id] {
					ok, detail = false, fmt.Sprintf("condition %q activation references unknown finding %q", c.ID, id)
				}
			}
		}
		record("activation_refs", ok, detail)
	}

	// 6. Actions: outcomes present, effects and preconditions resolve,
	// hints in range
	{
		ok, detail := true, "actions consistent"
		for _, a := range p.Actions {
			if len(a.Outcomes) == 0 {
				ok, detail = false, fmt.Sprintf("action %q has no outcomes", a.ID)
			}
			for _, o := range a.Outcomes {
				if o.ProbabilityHint != nil && (*o.ProbabilityHint < 0 || *o.ProbabilityHint > 1) {
					ok, detail = false, fmt.Sprintf("action %q outcome %q hint %.4f outside [0,1]", a.ID, o.ID, *o.ProbabilityHint)
				}
				for _, e := range o.Effects {
					if !findings[e.Finding] {
						ok, detail = false, fmt.Sprintf("action %q outcome %q writes unknown finding %q", a.ID, o.ID, e.Finding)
					}
					if e.Presence != PresencePresent && e.Presence != PresenceAbsent {
						ok, detail = false, fmt.Sprintf("action %q outcome %q effect presence %q invalid", a.ID, o.ID, e.Presence)
					}
				}
			}
			for _, id := range append(append([]string{}, a.Preconditions.RequireFindings...), a.Preconditions.ForbidFindings...) {
				if !findings[id] {
					ok, detail = false, fmt.Sprintf("action %q precondition references unknown finding %q", a.ID, id)
				}
			}
			for _, id := range a.Preconditions.RequireActions {
				if !actions[id] {
					ok, detail = false, fmt.Sprintf("action %q precondition references unknown action %q", a.ID, id)
				}
			}
		}
		record("action_refs", ok, detail)
	}

	// 7. Test bindings: performance and both outcome ids resolve
	{
		ok, detail := true, "test bindings resolve"
		for _, a := range p.Actions {
			b := a.TestBinding
			if b == nil {
				continue
			}
			if !perf[b.PerformanceRef] {
				ok, detail = false, fmt.Sprintf("action %q binding references unknown test performance %q", a.ID, b.PerformanceRef)
			}
			if a.Outcome(b.PositiveOutcomeID) == nil || a.Outcome(b.NegativeOutcomeID) == nil {
				ok, detail = false, fmt.Sprintf("action %q binding references outcome ids not on the action", a.ID)
			}
		}
		record("test_bindings", ok, detail)
	}

	// 8. Test performance values and band windows
	{
		ok, detail := true, "test performance in range"
		for _, t := range p.TestPerformance {
			if !validRate(t.Sensitivity) || !validRate(t.Specificity) {
				ok, detail = false, fmt.Sprintf("test %q base sens/spec outside (0,1)", t.ID)
			}
			lastTo := math.MinInt32
			for i, b := range t.Bands {
				if !validRate(b.Sensitivity) || !validRate(b.Specificity) {
					ok, detail = false, fmt.Sprintf("test %q band %d sens/spec outside (0,1)", t.ID, i)
				}
				if b.ToDay <= b.FromDay {
					ok, detail = false, fmt.Sprintf("test %q band %d has empty day window", t.ID, i)
				}
				if b.FromDay < lastTo {
					ok, detail = false, fmt.Sprintf("test %q band %d overlaps previous band", t.ID, i)
				}
				lastTo = b.ToDay
			}
		}
		record("test_performance", ok, detail)
	}

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("validation failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("validation failed: %d problems, first: %s", len(failReasons), failReasons[0])
		}
	}

	return ValidationResult{Passed: passed, Checks: checks, Reason: reason}
}

// #endregion

// #region helpers

func checkBandPartition(condID string, bands []ProbabilityBand) (bool, string) {
	if len(bands) == 0 {
		return false, fmt.Sprintf("condition %q has no probability bands", condID)
	}
	next := 0.0
	for i, b := range bands {
		if b.Category == "" {
			return false, fmt.Sprintf("condition %q band %d missing category", condID, i)
		}
		if math.Abs(b.Min-next) > 1e-9 {
			return false, fmt.Sprintf("condition %q band %d starts at %.4f, expected %.4f", condID, i, b.Min, next)
		}
		if b.Max <= b.Min {
			return false, fmt.Sprintf("condition %q band %d is empty", condID, i)
		}
		next = b.Max
	}
	if math.Abs(next-1.0) > 1e-9 {
		return false, fmt.Sprintf("condition %q bands end at %.4f, expected 1.0", condID, next)
	}
	return true, "bands partition [0,1)"
}

func validRate(v float64) bool {
	return v > 0 && v < 1
}

// #endregion
