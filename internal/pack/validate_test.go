package pack

import "testing"

func makeValidPack() *ContentPack {
	hint := 0.5
	return &ContentPack{
		Name:    "valid",
		Version: "1.0",
		Findings: []FindingDef{
			{ID: "fever", Name: "Fever", Kind: FindingSymptom},
			{ID: "swab_positive", Name: "Swab positive", Kind: FindingTestResult},
		},
		Conditions: []ConditionDef{
			{
				ID:     "cond_a",
				Name:   "Condition A",
				Priors: Priors{Default: 0.2},
				Bands: []ProbabilityBand{
					{Category: BandNotLikely, Min: 0, Max: 0.5},
					{Category: BandLikely, Min: 0.5, Max: 1},
				},
				LRTable: []LRRow{
					{Target: "fever", LRPresent: 2.0, LRAbsent: 0.5},
					{Target: "swab_positive", LRPresent: 20.0, LRAbsent: 0.15, PerformanceRef: "swab"},
				},
			},
		},
		Actions: []ActionDef{
			{
				ID:   "swab_test",
				Name: "Swab test",
				Kind: ActionTest,
				TestBinding: &TestBinding{
					PerformanceRef:    "swab",
					PositiveOutcomeID: "pos",
					NegativeOutcomeID: "neg",
				},
				Outcomes: []OutcomeDef{
					{ID: "pos", Label: "Positive", ProbabilityHint: &hint,
						Effects: []FindingEffect{{Finding: "swab_positive", Presence: PresencePresent}}},
					{ID: "neg", Label: "Negative", ProbabilityHint: &hint,
						Effects: []FindingEffect{{Finding: "swab_positive", Presence: PresenceAbsent}}},
				},
			},
		},
		TestPerformance: []TestPerformanceDef{
			{ID: "swab", Sensitivity: 0.9, Specificity: 0.95,
				Bands: []PerformanceBand{{FromDay: 0, ToDay: 3, Sensitivity: 0.92, Specificity: 0.95}}},
		},
	}
}

func TestValidatePassesCleanPack(t *testing.T) {
	result := Validate(makeValidPack())
	if !result.Passed {
		t.Fatalf("expected pack to validate: %s", result.Reason)
	}
	if len(result.Checks) < 8 {
		t.Fatalf("expected at least 8 checks, got %d", len(result.Checks))
	}
	for _, c := range result.Checks {
		if !c.Passed {
			t.Fatalf("check %s failed: %s", c.Name, c.Detail)
		}
	}
}

func TestValidateDuplicateIDs(t *testing.T) {
	p := makeValidPack()
	p.Findings = append(p.Findings, FindingDef{ID: "fever", Name: "Fever again"})
	result := Validate(p)
	if result.Passed {
		t.Fatal("expected duplicate finding id to fail validation")
	}
}

func TestValidateBandGap(t *testing.T) {
	p := makeValidPack()
	p.Conditions[0].Bands = []ProbabilityBand{
		{Category: BandNotLikely, Min: 0, Max: 0.4},
		{Category: BandLikely, Min: 0.5, Max: 1}, // gap at [0.4, 0.5)
	}
	result := Validate(p)
	if result.Passed {
		t.Fatal("expected band gap to fail validation")
	}
}

func TestValidateBandsMustReachOne(t *testing.T) {
	p := makeValidPack()
	p.Conditions[0].Bands = []ProbabilityBand{
		{Category: BandNotLikely, Min: 0, Max: 0.9},
	}
	result := Validate(p)
	if result.Passed {
		t.Fatal("expected truncated bands to fail validation")
	}
}

func TestValidateUnknownLRTarget(t *testing.T) {
	p := makeValidPack()
	p.Conditions[0].LRTable = append(p.Conditions[0].LRTable, LRRow{Target: "ghost", LRPresent: 2, LRAbsent: 0.5})
	result := Validate(p)
	if result.Passed {
		t.Fatal("expected unknown lr target to fail validation")
	}
}

func TestValidateDuplicateLRTarget(t *testing.T) {
	p := makeValidPack()
	p.Conditions[0].LRTable = append(p.Conditions[0].LRTable, LRRow{Target: "fever", LRPresent: 3, LRAbsent: 0.4})
	result := Validate(p)
	if result.Passed {
		t.Fatal("expected duplicate lr target to fail validation")
	}
}

func TestValidateBrokenBinding(t *testing.T) {
	p := makeValidPack()
	p.Actions[0].TestBinding.PositiveOutcomeID = "missing_outcome"
	result := Validate(p)
	if result.Passed {
		t.Fatal("expected dangling binding outcome to fail validation")
	}
}

func TestValidateEffectReferences(t *testing.T) {
	p := makeValidPack()
	p.Actions[0].Outcomes[0].Effects[0].Finding = "ghost"
	result := Validate(p)
	if result.Passed {
		t.Fatal("expected unknown effect finding to fail validation")
	}
}

func TestValidateOverlappingPerformanceBands(t *testing.T) {
	p := makeValidPack()
	p.TestPerformance[0].Bands = []PerformanceBand{
		{FromDay: 0, ToDay: 4, Sensitivity: 0.9, Specificity: 0.95},
		{FromDay: 2, ToDay: 6, Sensitivity: 0.8, Specificity: 0.95},
	}
	result := Validate(p)
	if result.Passed {
		t.Fatal("expected overlapping performance bands to fail validation")
	}
}

func TestValidatePriorOutOfRange(t *testing.T) {
	p := makeValidPack()
	p.Conditions[0].Priors.Default = 1.0
	result := Validate(p)
	if result.Passed {
		t.Fatal("expected prior of 1.0 to fail validation")
	}
}
