package planner

import (
	"sort"

	"github.com/jaxwc/mapmyhealth/internal/belief"
	"github.com/jaxwc/mapmyhealth/internal/casefile"
	"github.com/jaxwc/mapmyhealth/internal/influence"
	"github.com/jaxwc/mapmyhealth/internal/pack"
	"github.com/jaxwc/mapmyhealth/internal/triage"
)

// #region config

// PlanConfig bounds the beam search. Depth and BeamWidth cap the work at
// roughly BeamWidth^Depth expansions, so callers wanting bounded latency tune
// these rather than cancel mid-search.
type PlanConfig struct {
	Depth         int
	BeamWidth     int
	StopOnRedFlag bool // stop a branch when a simulated outcome raises a red flag
}

// DefaultPlanConfig returns the stock search bounds.
func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		Depth:         2,
		BeamWidth:     3,
		StopOnRedFlag: true,
	}
}

// #endregion

// #region branch-types

// StopReason says why a branch stopped growing.
type StopReason string

const (
	StopConfirmed StopReason = "confirmed" // leader reached the highly-likely band
	StopRedFlag   StopReason = "red-flag"  // a simulated effect raised a red flag
	StopExhausted StopReason = "exhausted" // no eligible actions remained
	StopDepth     StopReason = "depth"     // search depth bound reached
)

// Step is one simulated action/outcome hop along a branch.
type Step struct {
	Action      string
	ActionName  string
	Outcome     string
	Probability float64
	Posterior   belief.Beliefs
}

// Branch is one candidate action sequence with its simulated end state.
// Branches are advisory plan previews; nothing executes them.
type Branch struct {
	Steps           []Step
	Beliefs         belief.Beliefs
	CumulativeCosts pack.Costs
	ExpectedUtility float64
	Stop            StopReason

	simCase casefile.CaseState
}

// #endregion

// #region beam-search

// PlanBranches looks ahead over action sequences with a depth-limited beam
// search. Each level ranks the actions still available to a branch's
// simulated case, spawns one child per outcome of the top actions, and keeps
// only the BeamWidth best children by expected utility. A branch stops early
// once its leader classifies as highly likely, or — when StopOnRedFlag is
// set — once a simulated effect turns a red-flag finding present.
//
// Expected utility accumulates parent utility plus outcome probability times
// the action's single-shot utility: a linear preview, not a full expectimax.
func PlanBranches(current belief.Beliefs, c casefile.CaseState, conds []pack.ConditionDef, p *pack.ContentPack, weights influence.CostWeights, cfg PlanConfig) []Branch {
	open := []Branch{{Beliefs: current, simCase: c}}
	var done []Branch

	for level := 0; level < cfg.Depth && len(open) > 0; level++ {
		var next []Branch
		for _, br := range open {
			if reason, stopped := branchStop(br, conds, p, cfg); stopped {
				br.Stop = reason
				done = append(done, br)
				continue
			}

			ranked := RankActions(br.Beliefs, br.simCase, conds, p, weights, cfg.BeamWidth)
			if len(ranked) == 0 {
				br.Stop = StopExhausted
				done = append(done, br)
				continue
			}

			for _, voi := range ranked {
				for _, out := range voi.Outcomes {
					next = append(next, extend(br, voi, out, p))
				}
			}
		}

		sort.SliceStable(next, func(i, j int) bool {
			return next[i].ExpectedUtility > next[j].ExpectedUtility
		})
		if len(next) > cfg.BeamWidth {
			next = next[:cfg.BeamWidth]
		}
		open = next
	}

	for _, br := range open {
		if reason, stopped := branchStop(br, conds, p, cfg); stopped {
			br.Stop = reason
		} else {
			br.Stop = StopDepth
		}
		done = append(done, br)
	}
	return done
}

// extend appends one action/outcome step to a branch.
func extend(parent Branch, voi influence.ActionVOI, out influence.OutcomeProjection, p *pack.ContentPack) Branch {
	simCase, _ := casefile.ApplyOutcome(parent.simCase, p, voi.Action, out.Outcome)

	steps := make([]Step, len(parent.Steps), len(parent.Steps)+1)
	copy(steps, parent.Steps)
	steps = append(steps, Step{
		Action:      voi.Action,
		ActionName:  voi.Name,
		Outcome:     out.Outcome,
		Probability: out.Probability,
		Posterior:   out.Posterior,
	})

	return Branch{
		Steps:   steps,
		Beliefs: out.Posterior,
		CumulativeCosts: pack.Costs{
			Money:      parent.CumulativeCosts.Money + voi.Costs.Money,
			TimeHours:  parent.CumulativeCosts.TimeHours + voi.Costs.TimeHours,
			Difficulty: parent.CumulativeCosts.Difficulty + voi.Costs.Difficulty,
			Risk:       parent.CumulativeCosts.Risk + voi.Costs.Risk,
		},
		ExpectedUtility: parent.ExpectedUtility + out.Probability*voi.Utility,
		simCase:         simCase,
	}
}

// branchStop checks a branch's simulated state against the early-exit rules.
func branchStop(br Branch, conds []pack.ConditionDef, p *pack.ContentPack, cfg PlanConfig) (StopReason, bool) {
	if cfg.StopOnRedFlag && triage.CheckRedFlags(br.simCase, p).Urgent {
		return StopRedFlag, true
	}
	cls := belief.Classify(br.Beliefs, conds, nil, 1)
	if cls.Category == pack.BandHighlyLikely {
		return StopConfirmed, true
	}
	return "", false
}

// #endregion
