package belief

import (
	"testing"

	"github.com/jaxwc/mapmyhealth/internal/casefile"
	"github.com/jaxwc/mapmyhealth/internal/pack"
)

func makeActivationPack() *pack.ContentPack {
	return &pack.ContentPack{
		Name: "activation",
		Findings: []pack.FindingDef{
			{ID: "fever", Name: "Fever"},
			{ID: "rash", Name: "Rash", Categories: []string{"derm"}},
			{ID: "joint_pain", Name: "Joint pain"},
		},
		Conditions: []pack.ConditionDef{
			{ID: "open", Name: "Open", Priors: pack.Priors{Default: 0.3}, Bands: stdBands()},
			{ID: "needs_rash", Name: "Needs rash", Priors: pack.Priors{Default: 0.3}, Bands: stdBands(),
				Activation: pack.ActivationRule{RequireAnyPresent: []string{"rash"}}},
			{ID: "needs_both", Name: "Needs both", Priors: pack.Priors{Default: 0.3}, Bands: stdBands(),
				Activation: pack.ActivationRule{RequireAllPresent: []string{"rash", "joint_pain"}}},
			{ID: "derm_context", Name: "Derm context", Priors: pack.Priors{Default: 0.3}, Bands: stdBands(),
				Contexts: []string{"derm"}},
		},
	}
}

func activeIDs(conds []pack.ConditionDef) []string {
	ids := make([]string, 0, len(conds))
	for _, c := range conds {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestActivationNoOpWithoutPresentFindings(t *testing.T) {
	p := makeActivationPack()

	// Empty case and absent-only case both keep the full list.
	got := ActiveConditions(casefile.CaseState{}, p)
	if len(got) != 4 {
		t.Fatalf("empty case should keep all conditions, got %v", activeIDs(got))
	}

	c := casefile.CaseState{}.SetFinding("fever", pack.PresenceAbsent)
	got = ActiveConditions(c, p)
	if len(got) != 4 {
		t.Fatalf("absent-only case should keep all conditions, got %v", activeIDs(got))
	}
}

func TestActivationPrunesUnmetRules(t *testing.T) {
	p := makeActivationPack()
	c := casefile.CaseState{}.SetFinding("fever", pack.PresencePresent)

	got := ActiveConditions(c, p)
	if len(got) != 1 || got[0].ID != "open" {
		t.Fatalf("expected only the unconditioned condition, got %v", activeIDs(got))
	}
}

func TestActivationRequireAnyAndAll(t *testing.T) {
	p := makeActivationPack()

	c := casefile.CaseState{}.SetFinding("rash", pack.PresencePresent)
	got := ActiveConditions(c, p)
	if len(got) != 3 || got[1].ID != "needs_rash" {
		t.Fatalf("rash alone should not admit needs_both, got %v", activeIDs(got))
	}

	c = c.SetFinding("joint_pain", pack.PresencePresent)
	got = ActiveConditions(c, p)
	if len(got) != 4 {
		t.Fatalf("rash plus joint pain should admit everything, got %v", activeIDs(got))
	}
}

func TestActivationContextCategoryOverlap(t *testing.T) {
	p := makeActivationPack()

	// Fever carries no categories, so the context-gated condition is pruned.
	c := casefile.CaseState{}.SetFinding("fever", pack.PresencePresent)
	got := ActiveConditions(c, p)
	for _, cond := range got {
		if cond.ID == "derm_context" {
			t.Fatalf("derm_context should be pruned without a derm finding, got %v", activeIDs(got))
		}
	}

	// Rash is tagged derm, which overlaps the condition's contexts.
	c = casefile.CaseState{}.SetFinding("rash", pack.PresencePresent)
	got = ActiveConditions(c, p)
	if got[len(got)-1].ID != "derm_context" {
		t.Fatalf("derm_context should activate on category overlap, got %v", activeIDs(got))
	}
}

func TestActivationRulesOrContextsAdmit(t *testing.T) {
	p := &pack.ContentPack{
		Name: "either",
		Findings: []pack.FindingDef{
			{ID: "wheeze", Name: "Wheeze", Categories: []string{"respiratory"}},
			{ID: "chest_pain", Name: "Chest pain"},
		},
		Conditions: []pack.ConditionDef{
			{ID: "either", Name: "Either path", Priors: pack.Priors{Default: 0.5}, Bands: stdBands(),
				Activation: pack.ActivationRule{RequireAnyPresent: []string{"chest_pain"}},
				Contexts:   []string{"respiratory"}},
			{ID: "open", Name: "Open", Priors: pack.Priors{Default: 0.5}, Bands: stdBands()},
		},
	}

	// Rule path: chest pain present, no category overlap.
	c := casefile.CaseState{}.SetFinding("chest_pain", pack.PresencePresent)
	if got := ActiveConditions(c, p); len(got) != 2 {
		t.Fatalf("rule match alone should admit the condition, got %v", activeIDs(got))
	}

	// Context path: wheeze present, rule unmet.
	c = casefile.CaseState{}.SetFinding("wheeze", pack.PresencePresent)
	if got := ActiveConditions(c, p); len(got) != 2 {
		t.Fatalf("context overlap alone should admit the condition, got %v", activeIDs(got))
	}
}

func TestActivationFeedsClassificationUnchangedWhenNothingPruned(t *testing.T) {
	p := makeActivationPack()
	c := casefile.CaseState{}.
		SetFinding("rash", pack.PresencePresent).
		SetFinding("joint_pain", pack.PresencePresent)

	// Nothing is pruned here, so filtering must not change the numbers.
	filtered, _ := SeedPriors(c, ActiveConditions(c, p))
	unfiltered, _ := SeedPriors(c, p.Conditions)

	for id, want := range unfiltered {
		approx(t, id, filtered[id], want, 1e-12)
	}
}
