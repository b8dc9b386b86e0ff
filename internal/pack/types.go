package pack

// #region presence

// Presence is the knowledge state of a finding within a case.
type Presence string

const (
	PresencePresent Presence = "present"
	PresenceAbsent  Presence = "absent"
	PresenceUnknown Presence = "unknown"
)

// #endregion

// #region finding

// FindingKind classifies how a finding is observed.
type FindingKind string

const (
	FindingSymptom    FindingKind = "symptom"
	FindingTestResult FindingKind = "testFinding"
	FindingVital      FindingKind = "vital"
	FindingHistory    FindingKind = "history"
	FindingRedFlag    FindingKind = "redFlag"
)

// FindingDef describes one observable finding in a content pack. Categories
// tag the finding for condition context activation.
type FindingDef struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Kind        FindingKind `yaml:"kind,omitempty"`
	Units       string      `yaml:"units,omitempty"`
	RedFlag     bool        `yaml:"redFlag,omitempty"`
	Categories  []string    `yaml:"categories,omitempty"`
}

// #endregion

// #region condition

// BandCategory labels a probability band.
type BandCategory string

const (
	BandVeryUnlikely BandCategory = "very-unlikely"
	BandNotLikely    BandCategory = "not-likely"
	BandPossible     BandCategory = "possible"
	BandLikely       BandCategory = "likely"
	BandHighlyLikely BandCategory = "highly-likely"
	BandUnknown      BandCategory = "unknown"
)

// ProbabilityBand maps [Min, Max) onto a category. The band whose Max is 1.0
// also contains 1.0 itself.
type ProbabilityBand struct {
	Category BandCategory `yaml:"category"`
	Min      float64      `yaml:"min"`
	Max      float64      `yaml:"max"`
}

// Contains reports whether p falls inside the band.
func (b ProbabilityBand) Contains(p float64) bool {
	if p >= b.Min && p < b.Max {
		return true
	}
	return p == 1.0 && b.Max == 1.0
}

// PriorRule is one demographic override for a condition prior. All set
// constraints must match; the first matching rule in declaration order wins.
// Age bounds are min-inclusive, max-exclusive.
type PriorRule struct {
	AgeMin   *float64 `yaml:"ageMin,omitempty"`
	AgeMax   *float64 `yaml:"ageMax,omitempty"`
	Sex      string   `yaml:"sex,omitempty"`
	Season   string   `yaml:"season,omitempty"`
	Pregnant *bool    `yaml:"pregnant,omitempty"`
	Prior    float64  `yaml:"prior"`
}

// Priors holds the default prior and its demographic overrides.
type Priors struct {
	Default float64     `yaml:"default"`
	Rules   []PriorRule `yaml:"rules,omitempty"`
}

// LRRow is one likelihood-ratio entry in a condition's evidence table.
// Target references a finding id. When PerformanceRef resolves to a test
// performance entry, effective ratios are derived from its sensitivity and
// specificity instead of the inline values.
type LRRow struct {
	Target         string  `yaml:"target"`
	LRPresent      float64 `yaml:"lrPresent"`
	LRAbsent       float64 `yaml:"lrAbsent"`
	PerformanceRef string  `yaml:"performanceRef,omitempty"`
}

// ActivationRule gates whether a condition participates in scoring at all.
// Empty rule means always active.
type ActivationRule struct {
	RequireAnyPresent []string `yaml:"requireAnyPresent,omitempty"`
	RequireAllPresent []string `yaml:"requireAllPresent,omitempty"`
}

// Empty reports whether the rule places no constraint.
func (r ActivationRule) Empty() bool {
	return len(r.RequireAnyPresent) == 0 && len(r.RequireAllPresent) == 0
}

// ConditionDef describes one candidate condition: its priors, its probability
// bands, and its likelihood-ratio table. Contexts name finding categories
// that activate the condition when a present finding carries one of them.
type ConditionDef struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Priors      Priors            `yaml:"priors"`
	Bands       []ProbabilityBand `yaml:"bands"`
	LRTable     []LRRow           `yaml:"lrTable,omitempty"`
	Activation  ActivationRule    `yaml:"activation,omitempty"`
	Contexts    []string          `yaml:"contexts,omitempty"`
}

// #endregion

// #region action

// ActionKind classifies an action's clinical character.
type ActionKind string

const (
	ActionTest           ActionKind = "Test"
	ActionQuestion       ActionKind = "Question"
	ActionWaitObserve    ActionKind = "WaitObserve"
	ActionTrialTreatment ActionKind = "TrialTreatment"
)

// Preconditions limit when an action may be offered.
type Preconditions struct {
	RequireFindings []string `yaml:"requireFindings,omitempty"` // must be present
	ForbidFindings  []string `yaml:"forbidFindings,omitempty"`  // must not be present
	RequireActions  []string `yaml:"requireActions,omitempty"`  // must be completed
}

// Costs are the per-action expenditures folded into utility.
// Difficulty and Risk are 0-1 scales.
type Costs struct {
	Money      float64 `yaml:"money,omitempty"`
	TimeHours  float64 `yaml:"timeHours,omitempty"`
	Difficulty float64 `yaml:"difficulty,omitempty"`
	Risk       float64 `yaml:"risk,omitempty"`
}

// TestBinding ties an action's positive/negative outcomes to a test
// performance entry so outcome probabilities can be estimated from beliefs.
type TestBinding struct {
	PerformanceRef    string `yaml:"performanceRef"`
	PositiveOutcomeID string `yaml:"positiveOutcomeId"`
	NegativeOutcomeID string `yaml:"negativeOutcomeId"`
}

// FindingEffect records a finding value an outcome writes into the case.
type FindingEffect struct {
	Finding  string   `yaml:"finding"`
	Presence Presence `yaml:"presence"`
}

// OutcomeDef is one possible result of performing an action.
type OutcomeDef struct {
	ID              string          `yaml:"id"`
	Label           string          `yaml:"label"`
	ProbabilityHint *float64        `yaml:"probabilityHint,omitempty"`
	Effects         []FindingEffect `yaml:"effects,omitempty"`
}

// ActionDef describes one action the planner may offer.
type ActionDef struct {
	ID            string        `yaml:"id"`
	Name          string        `yaml:"name"`
	Description   string        `yaml:"description,omitempty"`
	Kind          ActionKind    `yaml:"kind"`
	Preconditions Preconditions `yaml:"preconditions,omitempty"`
	Costs         Costs         `yaml:"costs,omitempty"`
	TestBinding   *TestBinding  `yaml:"testBinding,omitempty"`
	Outcomes      []OutcomeDef  `yaml:"outcomes"`
}

// Outcome returns the outcome with the given id, or nil.
func (a ActionDef) Outcome(id string) *OutcomeDef {
	for i := range a.Outcomes {
		if a.Outcomes[i].ID == id {
			return &a.Outcomes[i]
		}
	}
	return nil
}

// #endregion

// #region test-performance

// PerformanceBand overrides sensitivity/specificity for a days-since-onset
// window [FromDay, ToDay).
type PerformanceBand struct {
	FromDay     int     `yaml:"fromDay"`
	ToDay       int     `yaml:"toDay"`
	Sensitivity float64 `yaml:"sensitivity"`
	Specificity float64 `yaml:"specificity"`
}

// TestPerformanceDef holds base test characteristics plus optional
// time-banded overrides.
type TestPerformanceDef struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name,omitempty"`
	Sensitivity float64           `yaml:"sensitivity"`
	Specificity float64           `yaml:"specificity"`
	Bands       []PerformanceBand `yaml:"bands,omitempty"`
}

// Effective returns the sensitivity/specificity to use for a case. The first
// band containing daysSinceOnset wins; nil daysSinceOnset or no matching band
// falls back to the base values.
func (t TestPerformanceDef) Effective(daysSinceOnset *int) (sens, spec float64) {
	if daysSinceOnset != nil {
		for _, b := range t.Bands {
			if *daysSinceOnset >= b.FromDay && *daysSinceOnset < b.ToDay {
				return b.Sensitivity, b.Specificity
			}
		}
	}
	return t.Sensitivity, t.Specificity
}

// #endregion

// #region content-pack

// ContentPack is the loaded clinical content: findings, conditions, actions,
// and test performance, all keyed by string ids. Packs are immutable after
// load; declaration order is meaningful for tie-breaking.
type ContentPack struct {
	Name            string               `yaml:"name"`
	Version         string               `yaml:"version"`
	Findings        []FindingDef         `yaml:"findings"`
	Conditions      []ConditionDef       `yaml:"conditions"`
	Actions         []ActionDef          `yaml:"actions"`
	TestPerformance []TestPerformanceDef `yaml:"testPerformance,omitempty"`
}

// Finding returns the finding with the given id, or nil.
func (p *ContentPack) Finding(id string) *FindingDef {
	for i := range p.Findings {
		if p.Findings[i].ID == id {
			return &p.Findings[i]
		}
	}
	return nil
}

// Condition returns the condition with the given id, or nil.
func (p *ContentPack) Condition(id string) *ConditionDef {
	for i := range p.Conditions {
		if p.Conditions[i].ID == id {
			return &p.Conditions[i]
		}
	}
	return nil
}

// Action returns the action with the given id, or nil.
func (p *ContentPack) Action(id string) *ActionDef {
	for i := range p.Actions {
		if p.Actions[i].ID == id {
			return &p.Actions[i]
		}
	}
	return nil
}

// Performance returns the test performance entry with the given id, or nil.
func (p *ContentPack) Performance(id string) *TestPerformanceDef {
	for i := range p.TestPerformance {
		if p.TestPerformance[i].ID == id {
			return &p.TestPerformance[i]
		}
	}
	return nil
}

// RedFlagIDs returns the ids of all red-flag findings in declaration order.
func (p *ContentPack) RedFlagIDs() []string {
	var ids []string
	for _, f := range p.Findings {
		if f.RedFlag {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// #endregion
