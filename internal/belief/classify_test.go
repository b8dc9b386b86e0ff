package belief

import (
	"testing"

	"github.com/jaxwc/mapmyhealth/internal/pack"
)

func catConds(ids ...string) []pack.ConditionDef {
	conds := make([]pack.ConditionDef, 0, len(ids))
	for _, id := range ids {
		conds = append(conds, pack.ConditionDef{
			ID: id, Name: "Condition " + id, Priors: pack.Priors{Default: 0.1}, Bands: stdBands(),
		})
	}
	return conds
}

func TestClassifyRanksDescendingWithPerConditionBands(t *testing.T) {
	conds := catConds("a", "b", "c")
	b := Beliefs{"a": 0.33, "b": 0.54, "c": 0.13}

	cls := Classify(b, conds, nil, DefaultTopConditions)

	if len(cls.Ranked) != 3 {
		t.Fatalf("expected 3 ranked conditions, got %d", len(cls.Ranked))
	}
	if cls.Ranked[0].ID != "b" || cls.Ranked[1].ID != "a" || cls.Ranked[2].ID != "c" {
		t.Fatalf("unexpected order: %s %s %s", cls.Ranked[0].ID, cls.Ranked[1].ID, cls.Ranked[2].ID)
	}
	if cls.Ranked[0].Category != pack.BandLikely {
		t.Fatalf("0.54 should classify likely, got %s", cls.Ranked[0].Category)
	}
	if cls.Ranked[1].Category != pack.BandPossible {
		t.Fatalf("0.33 should classify possible, got %s", cls.Ranked[1].Category)
	}
	if cls.Ranked[2].Category != pack.BandNotLikely {
		t.Fatalf("0.13 should classify not-likely, got %s", cls.Ranked[2].Category)
	}
	if cls.Category != pack.BandLikely || cls.Recommendation != RecommendSupportiveCare {
		t.Fatalf("leader verdict wrong: %s / %s", cls.Category, cls.Recommendation)
	}
}

func TestClassifyTieKeepsDeclarationOrder(t *testing.T) {
	conds := catConds("first", "second")
	cls := Classify(Beliefs{"first": 0.5, "second": 0.5}, conds, nil, DefaultTopConditions)

	if cls.Ranked[0].ID != "first" {
		t.Fatalf("tie should keep pack order, got %s first", cls.Ranked[0].ID)
	}
}

func TestClassifyEmptyConditionList(t *testing.T) {
	cls := Classify(Beliefs{}, nil, nil, DefaultTopConditions)

	if len(cls.Ranked) != 0 {
		t.Fatal("expected empty ranking")
	}
	if cls.Category != pack.BandUnknown {
		t.Fatalf("expected unknown category, got %s", cls.Category)
	}
	if cls.Recommendation != RecommendWatchfulWaiting {
		t.Fatalf("expected watchful-waiting, got %s", cls.Recommendation)
	}
}

func TestClassifyCapsAtTopN(t *testing.T) {
	conds := catConds("a", "b", "c", "d", "e", "f")
	b := Beliefs{"a": 0.3, "b": 0.25, "c": 0.2, "d": 0.15, "e": 0.07, "f": 0.03}

	cls := Classify(b, conds, nil, DefaultTopConditions)
	if len(cls.Ranked) != 5 {
		t.Fatalf("expected top 5, got %d", len(cls.Ranked))
	}
	if cls.Ranked[4].ID != "e" {
		t.Fatalf("expected e in last slot, got %s", cls.Ranked[4].ID)
	}
}

func TestClassifyHighlyLikelyGetsTargetedCare(t *testing.T) {
	conds := catConds("a", "b")
	cls := Classify(Beliefs{"a": 0.85, "b": 0.15}, conds, nil, DefaultTopConditions)

	if cls.Category != pack.BandHighlyLikely || cls.Recommendation != RecommendTargetedCare {
		t.Fatalf("expected highly-likely / targeted-care, got %s / %s", cls.Category, cls.Recommendation)
	}
}

func TestClassifyBandEdges(t *testing.T) {
	conds := catConds("a", "b")

	// Exactly 0.5 sits in [0.5, 0.8); just below sits in [0.2, 0.5).
	cls := Classify(Beliefs{"a": 0.5, "b": 0.5}, conds, nil, DefaultTopConditions)
	if cls.Ranked[0].Category != pack.BandLikely {
		t.Fatalf("0.5 should be likely, got %s", cls.Ranked[0].Category)
	}

	cls = Classify(Beliefs{"a": 0.4999, "b": 0.5001}, conds, nil, DefaultTopConditions)
	if cls.Ranked[1].Category != pack.BandPossible {
		t.Fatalf("0.4999 should be possible, got %s", cls.Ranked[1].Category)
	}

	// Certainty lands in the band that closes at 1.0.
	cls = Classify(Beliefs{"a": 1.0, "b": 0.0}, conds, nil, DefaultTopConditions)
	if cls.Ranked[0].Category != pack.BandHighlyLikely {
		t.Fatalf("1.0 should be highly-likely, got %s", cls.Ranked[0].Category)
	}
}

func TestClassifyAttachesWhy(t *testing.T) {
	conds := catConds("a", "b")
	why := map[string]WhyExplanation{
		"a": {Kind: WhyLREvidence, Contributions: []Contribution{{Finding: "fever", Presence: pack.PresencePresent, LR: 2}}},
	}
	cls := Classify(Beliefs{"a": 0.7, "b": 0.3}, conds, why, DefaultTopConditions)

	if cls.Ranked[0].Why.Kind != WhyLREvidence {
		t.Fatal("expected lr evidence explanation on leader")
	}
	if cls.Ranked[1].Why.Kind != WhyNone {
		t.Fatal("condition without evidence should carry the explicit no-evidence marker")
	}
}
