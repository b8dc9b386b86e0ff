package planner

import (
	"testing"

	"github.com/jaxwc/mapmyhealth/internal/belief"
	"github.com/jaxwc/mapmyhealth/internal/casefile"
	"github.com/jaxwc/mapmyhealth/internal/influence"
	"github.com/jaxwc/mapmyhealth/internal/pack"
)

func stdBands() []pack.ProbabilityBand {
	return []pack.ProbabilityBand{
		{Category: pack.BandVeryUnlikely, Min: 0, Max: 0.05},
		{Category: pack.BandNotLikely, Min: 0.05, Max: 0.2},
		{Category: pack.BandPossible, Min: 0.2, Max: 0.5},
		{Category: pack.BandLikely, Min: 0.5, Max: 0.8},
		{Category: pack.BandHighlyLikely, Min: 0.8, Max: 1.0},
	}
}

// makePlanPack holds two evenly matched conditions, one strongly
// discriminating question, one gated action, and one action whose outcome
// raises a red flag.
func makePlanPack() *pack.ContentPack {
	return &pack.ContentPack{
		Name: "plan",
		Findings: []pack.FindingDef{
			{ID: "f_a", Name: "Discriminator"},
			{ID: "f_req", Name: "Gate finding"},
			{ID: "f_flag", Name: "Alarm finding", RedFlag: true},
		},
		Conditions: []pack.ConditionDef{
			{ID: "cond_a", Name: "Condition A", Priors: pack.Priors{Default: 0.3}, Bands: stdBands(),
				LRTable: []pack.LRRow{{Target: "f_a", LRPresent: 9.0, LRAbsent: 0.1}}},
			{ID: "cond_b", Name: "Condition B", Priors: pack.Priors{Default: 0.3}, Bands: stdBands(),
				LRTable: []pack.LRRow{{Target: "f_a", LRPresent: 0.1, LRAbsent: 9.0}}},
		},
		Actions: []pack.ActionDef{
			{ID: "ask_a", Name: "Ask about discriminator", Kind: pack.ActionQuestion,
				Outcomes: []pack.OutcomeDef{
					{ID: "yes", Label: "Yes", Effects: []pack.FindingEffect{{Finding: "f_a", Presence: pack.PresencePresent}}},
					{ID: "no", Label: "No", Effects: []pack.FindingEffect{{Finding: "f_a", Presence: pack.PresenceAbsent}}},
				}},
			{ID: "gated", Name: "Gated action", Kind: pack.ActionTest,
				Preconditions: pack.Preconditions{RequireFindings: []string{"f_req"}},
				Outcomes:      []pack.OutcomeDef{{ID: "done", Label: "Done"}}},
			{ID: "risky", Name: "Risky maneuver", Kind: pack.ActionTrialTreatment,
				Outcomes: []pack.OutcomeDef{
					{ID: "reaction", Label: "Adverse reaction", Effects: []pack.FindingEffect{{Finding: "f_flag", Presence: pack.PresencePresent}}},
				}},
		},
	}
}

func planBeliefs(t *testing.T, c casefile.CaseState, p *pack.ContentPack) belief.Beliefs {
	t.Helper()
	return belief.Recompute(c, p.Conditions, p).Beliefs
}

func TestAvailableRequiresFindings(t *testing.T) {
	p := makePlanPack()

	// f_req unknown: gated must be excluded.
	c := casefile.CaseState{}
	for _, a := range Available(c, p) {
		if a.ID == "gated" {
			t.Fatal("gated action offered without its required finding")
		}
	}

	// f_req absent is not good enough either.
	c = c.SetFinding("f_req", pack.PresenceAbsent)
	for _, a := range Available(c, p) {
		if a.ID == "gated" {
			t.Fatal("gated action offered with required finding absent")
		}
	}

	// f_req present unlocks it.
	c = c.SetFinding("f_req", pack.PresencePresent)
	found := false
	for _, a := range Available(c, p) {
		if a.ID == "gated" {
			found = true
		}
	}
	if !found {
		t.Fatal("gated action missing once required finding is present")
	}
}

func TestAvailableForbidFindings(t *testing.T) {
	p := makePlanPack()
	p.Actions[0].Preconditions.ForbidFindings = []string{"f_flag"}

	c := casefile.CaseState{}.SetFinding("f_flag", pack.PresencePresent)
	for _, a := range Available(c, p) {
		if a.ID == "ask_a" {
			t.Fatal("action offered despite a forbidden finding being present")
		}
	}
}

func TestAvailableRetiresCompletedActions(t *testing.T) {
	p := makePlanPack()
	c := casefile.CaseState{
		CompletedActions: []casefile.CompletedAction{{Action: "ask_a", Outcome: "yes"}},
	}
	for _, a := range Available(c, p) {
		if a.ID == "ask_a" {
			t.Fatal("completed action must never be re-offered")
		}
	}
}

func TestAvailableRequiresCompletedActions(t *testing.T) {
	p := makePlanPack()
	p.Actions[1].Preconditions = pack.Preconditions{RequireActions: []string{"ask_a"}}

	c := casefile.CaseState{}
	for _, a := range Available(c, p) {
		if a.ID == "gated" {
			t.Fatal("action offered before its required prior action completed")
		}
	}

	c.CompletedActions = []casefile.CompletedAction{{Action: "ask_a", Outcome: "yes"}}
	found := false
	for _, a := range Available(c, p) {
		if a.ID == "gated" {
			found = true
		}
	}
	if !found {
		t.Fatal("action missing once its required prior action completed")
	}
}

func TestRankActionsSortsByUtility(t *testing.T) {
	p := makePlanPack()
	// Make the risky action expensive so it falls below the free question.
	p.Actions[2].Costs = pack.Costs{Money: 200, Risk: 0.8}

	c := casefile.CaseState{}
	ranked := RankActions(planBeliefs(t, c, p), c, p.Conditions, p, influence.DefaultCostWeights(), DefaultTopActions)

	if len(ranked) == 0 {
		t.Fatal("expected ranked actions")
	}
	if ranked[0].Action != "ask_a" {
		t.Fatalf("expected ask_a on top, got %s", ranked[0].Action)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Utility > ranked[i-1].Utility {
			t.Fatalf("ranking not descending at %d: %.4f > %.4f", i, ranked[i].Utility, ranked[i-1].Utility)
		}
	}
}

func TestRankActionsStableTies(t *testing.T) {
	p := makePlanPack()
	// Two information-free, cost-free actions tie at utility zero and must
	// keep pack declaration order.
	p.Actions = []pack.ActionDef{
		{ID: "noop_one", Name: "First no-op", Kind: pack.ActionQuestion,
			Outcomes: []pack.OutcomeDef{{ID: "ok", Label: "OK"}}},
		{ID: "noop_two", Name: "Second no-op", Kind: pack.ActionQuestion,
			Outcomes: []pack.OutcomeDef{{ID: "ok", Label: "OK"}}},
	}

	c := casefile.CaseState{}
	ranked := RankActions(planBeliefs(t, c, p), c, p.Conditions, p, influence.DefaultCostWeights(), DefaultTopActions)
	if len(ranked) != 2 || ranked[0].Action != "noop_one" || ranked[1].Action != "noop_two" {
		t.Fatalf("tie should keep declaration order, got %+v", ranked)
	}
}

func TestRankActionsTruncatesToK(t *testing.T) {
	p := makePlanPack()
	c := casefile.CaseState{}
	ranked := RankActions(planBeliefs(t, c, p), c, p.Conditions, p, influence.DefaultCostWeights(), 1)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 ranked action, got %d", len(ranked))
	}
}

func TestPlanBranchesDepthBound(t *testing.T) {
	p := makePlanPack()
	c := casefile.CaseState{}
	cfg := DefaultPlanConfig()
	cfg.Depth = 1

	branches := PlanBranches(planBeliefs(t, c, p), c, p.Conditions, p, influence.DefaultCostWeights(), cfg)
	if len(branches) == 0 {
		t.Fatal("expected branches")
	}
	for _, br := range branches {
		if len(br.Steps) > 1 {
			t.Fatalf("depth 1 search produced a branch with %d steps", len(br.Steps))
		}
	}
}

func TestPlanBranchesStopOnConfirmed(t *testing.T) {
	p := makePlanPack()
	// f_a present pushes Condition A to ~0.91, inside the highly-likely band.
	c := casefile.CaseState{}.SetFinding("f_a", pack.PresencePresent)

	branches := PlanBranches(planBeliefs(t, c, p), c, p.Conditions, p, influence.DefaultCostWeights(), DefaultPlanConfig())
	if len(branches) != 1 {
		t.Fatalf("expected single confirmed branch, got %d", len(branches))
	}
	if branches[0].Stop != StopConfirmed {
		t.Fatalf("expected confirmed stop, got %s", branches[0].Stop)
	}
	if len(branches[0].Steps) != 0 {
		t.Fatal("an already-confirmed case should not expand")
	}
}

func TestPlanBranchesRedFlagStop(t *testing.T) {
	p := makePlanPack()
	// Only the risky action remains so every branch walks into the red flag.
	p.Actions = p.Actions[2:]

	c := casefile.CaseState{}
	cfg := DefaultPlanConfig()
	cfg.Depth = 3
	cfg.BeamWidth = 2

	branches := PlanBranches(planBeliefs(t, c, p), c, p.Conditions, p, influence.DefaultCostWeights(), cfg)
	if len(branches) == 0 {
		t.Fatal("expected branches")
	}
	for _, br := range branches {
		if br.Stop != StopRedFlag {
			t.Fatalf("expected red-flag stop, got %s", br.Stop)
		}
		if len(br.Steps) != 1 {
			t.Fatalf("branch should stop right after the flagged outcome, got %d steps", len(br.Steps))
		}
	}
}

func TestPlanBranchesRedFlagStopDisabled(t *testing.T) {
	p := makePlanPack()
	p.Actions = p.Actions[2:]

	c := casefile.CaseState{}
	cfg := DefaultPlanConfig()
	cfg.Depth = 2
	cfg.StopOnRedFlag = false

	branches := PlanBranches(planBeliefs(t, c, p), c, p.Conditions, p, influence.DefaultCostWeights(), cfg)
	for _, br := range branches {
		if br.Stop == StopRedFlag {
			t.Fatal("red-flag stop fired while disabled")
		}
	}
}

func TestPlanBranchesBeamWidthBound(t *testing.T) {
	p := makePlanPack()
	c := casefile.CaseState{}
	cfg := PlanConfig{Depth: 1, BeamWidth: 1}

	branches := PlanBranches(planBeliefs(t, c, p), c, p.Conditions, p, influence.DefaultCostWeights(), cfg)
	if len(branches) != 1 {
		t.Fatalf("beam width 1 at depth 1 should yield 1 branch, got %d", len(branches))
	}
}

func TestPlanBranchesAccumulateCosts(t *testing.T) {
	p := makePlanPack()
	p.Actions[0].Costs = pack.Costs{Money: 10, TimeHours: 0.5}

	c := casefile.CaseState{}
	cfg := PlanConfig{Depth: 1, BeamWidth: 3}

	branches := PlanBranches(planBeliefs(t, c, p), c, p.Conditions, p, influence.DefaultCostWeights(), cfg)
	for _, br := range branches {
		if len(br.Steps) == 1 && br.Steps[0].Action == "ask_a" {
			if br.CumulativeCosts.Money != 10 || br.CumulativeCosts.TimeHours != 0.5 {
				t.Fatalf("costs not accumulated: %+v", br.CumulativeCosts)
			}
			return
		}
	}
	t.Fatal("no branch through ask_a found")
}
