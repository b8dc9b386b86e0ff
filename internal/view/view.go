package view

import (
	"github.com/jaxwc/mapmyhealth/internal/belief"
	"github.com/jaxwc/mapmyhealth/internal/casefile"
	"github.com/jaxwc/mapmyhealth/internal/compile"
	"github.com/jaxwc/mapmyhealth/internal/influence"
	"github.com/jaxwc/mapmyhealth/internal/pack"
	"github.com/jaxwc/mapmyhealth/internal/planner"
	"github.com/jaxwc/mapmyhealth/internal/triage"
)

// #region config

// Config bundles every knob BuildView honors. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	Weights         influence.CostWeights
	TopConditions   int
	TopUnknowns     int
	TopActions      int
	Plan            planner.PlanConfig
	IncludeBranches bool // multi-step plan previews are opt-in; they dominate the cost of a build
}

// DefaultConfig returns the stock evaluation parameters.
func DefaultConfig() Config {
	return Config{
		Weights:       influence.DefaultCostWeights(),
		TopConditions: belief.DefaultTopConditions,
		TopUnknowns:   influence.DefaultTopUnknowns,
		TopActions:    planner.DefaultTopActions,
		Plan:          planner.DefaultPlanConfig(),
	}
}

// #endregion

// #region view-types

// Diagnostics counts the degradations an evaluation absorbed instead of
// failing: dangling content references and zero-sum renormalizations.
type Diagnostics struct {
	SkippedRefs int
	ZeroSum     bool
}

// TopPanel is the condition/finding half of a view.
type TopPanel struct {
	KnownFindings     []casefile.FindingValue
	RankedConditions  []belief.RankedCondition
	ImportantUnknowns []influence.UnknownInfo
	Category          pack.BandCategory
	Recommendation    belief.Recommendation
}

// BottomPanel is the action/plan half of a view.
type BottomPanel struct {
	ActionRanking []influence.ActionVOI
	ActionTree    compile.StateTree
	ActionMap     compile.ActionMap
	Branches      []planner.Branch
}

// View is the full engine output for one case against one pack.
type View struct {
	Triage      triage.Result
	Top         TopPanel
	Bottom      BottomPanel
	Diagnostics Diagnostics
}

// #endregion

// #region build

// BuildView runs the whole pipeline for one case: triage first, and on an
// urgent hit everything downstream is skipped in favor of a fixed urgent
// view. Otherwise beliefs recompute from priors, unknowns and actions are
// ranked, and the lookahead tree is compiled. BuildView is a pure function of
// its three inputs and never mutates the case or the pack, so hosts may call
// it concurrently against a shared pack.
func BuildView(c casefile.CaseState, p *pack.ContentPack, cfg Config) View {
	tr := triage.CheckRedFlags(c, p)
	if tr.Urgent {
		return urgentView(c, tr)
	}

	conds := belief.ActiveConditions(c, p)
	ev := belief.Recompute(c, conds, p)
	cls := belief.Classify(ev.Beliefs, conds, ev.Why, cfg.TopConditions)

	unknowns := influence.MostInformativeUnknowns(ev.Beliefs, c, conds, p, cfg.TopUnknowns)
	ranked := planner.RankActions(ev.Beliefs, c, conds, p, cfg.Weights, cfg.TopActions)

	root := compile.State("root", ev.Beliefs, conds)
	tree := compile.ActionTree(root, ev.Beliefs, ranked, conds)

	var branches []planner.Branch
	if cfg.IncludeBranches {
		branches = planner.PlanBranches(ev.Beliefs, c, conds, p, cfg.Weights, cfg.Plan)
	}

	return View{
		Triage: tr,
		Top: TopPanel{
			KnownFindings:     knownFindings(c),
			RankedConditions:  cls.Ranked,
			ImportantUnknowns: unknowns,
			Category:          cls.Category,
			Recommendation:    cls.Recommendation,
		},
		Bottom: BottomPanel{
			ActionRanking: ranked,
			ActionTree:    tree,
			ActionMap:     compile.Flatten(tree),
			Branches:      branches,
		},
		Diagnostics: Diagnostics{
			SkippedRefs: ev.SkippedRefs,
			ZeroSum:     ev.ZeroSum,
		},
	}
}

// urgentView is the short-circuit output: known findings only, the fixed
// urgent-care recommendation, no ranked conditions, no unknowns, no actions,
// and a root-only state tree naming the first red flag.
func urgentView(c casefile.CaseState, tr triage.Result) View {
	tree := compile.StateTree{Root: compile.UrgentState(tr.Flags)}
	return View{
		Triage: tr,
		Top: TopPanel{
			KnownFindings:  knownFindings(c),
			Category:       pack.BandUnknown,
			Recommendation: belief.RecommendUrgentCare,
		},
		Bottom: BottomPanel{
			ActionTree: tree,
			ActionMap:  compile.Flatten(tree),
		},
	}
}

// knownFindings filters the case down to entries with a present or absent
// value, preserving case order.
func knownFindings(c casefile.CaseState) []casefile.FindingValue {
	var out []casefile.FindingValue
	for _, f := range c.Findings {
		if f.Presence == pack.PresencePresent || f.Presence == pack.PresenceAbsent {
			out = append(out, f)
		}
	}
	return out
}

// #endregion
