package casefile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/jaxwc/mapmyhealth/internal/pack"
)

// #region case-state

// FindingValue is one recorded observation in a case. Beyond presence it can
// carry a measured value, how many days after onset the observation was made
// (tests performed on different days keep their own onset), a severity note,
// and the source that reported it.
type FindingValue struct {
	Finding        string        `json:"finding" yaml:"finding"`
	Presence       pack.Presence `json:"presence" yaml:"presence"`
	Value          *float64      `json:"value,omitempty" yaml:"value,omitempty"`
	DaysSinceOnset *int          `json:"daysSinceOnset,omitempty" yaml:"daysSinceOnset,omitempty"`
	Severity       string        `json:"severity,omitempty" yaml:"severity,omitempty"`
	Source         string        `json:"source,omitempty" yaml:"source,omitempty"`
}

// CompletedAction records that an action was performed and which outcome
// occurred.
type CompletedAction struct {
	Action  string `json:"action" yaml:"action"`
	Outcome string `json:"outcome" yaml:"outcome"`
}

// PatientData carries the demographic fields prior rules may condition on.
// Every field is optional; Season is host-supplied so evaluation never reads
// the clock.
type PatientData struct {
	Age      *float64 `json:"age,omitempty" yaml:"age,omitempty"`
	Sex      string   `json:"sex,omitempty" yaml:"sex,omitempty"`
	Pregnant *bool    `json:"pregnant,omitempty" yaml:"pregnant,omitempty"`
	Season   string   `json:"season,omitempty" yaml:"season,omitempty"`
}

// CaseState is the full input describing one patient case. It is a value:
// helpers return modified copies and never mutate the receiver, so a host can
// keep historical states around for comparison.
type CaseState struct {
	Findings         []FindingValue    `json:"findings,omitempty" yaml:"findings,omitempty"`
	CompletedActions []CompletedAction `json:"completedActions,omitempty" yaml:"completedActions,omitempty"`
	Patient          PatientData       `json:"patient,omitempty" yaml:"patient,omitempty"`
	// DaysSinceOnset is the illness onset for the case as a whole. A
	// finding recorded with its own DaysSinceOnset overrides it; see Onset.
	DaysSinceOnset *int `json:"daysSinceOnset,omitempty" yaml:"daysSinceOnset,omitempty"`
}

// Presence returns the recorded presence for a finding, or unknown when the
// case has no entry for it.
func (c CaseState) Presence(findingID string) pack.Presence {
	for _, f := range c.Findings {
		if f.Finding == findingID {
			return f.Presence
		}
	}
	return pack.PresenceUnknown
}

// IsPresent reports whether the finding is recorded present.
func (c CaseState) IsPresent(findingID string) bool {
	return c.Presence(findingID) == pack.PresencePresent
}

// Known reports whether the finding has a recorded present or absent value.
func (c CaseState) Known(findingID string) bool {
	p := c.Presence(findingID)
	return p == pack.PresencePresent || p == pack.PresenceAbsent
}

// Onset returns the days-since-onset to use for a finding: the value recorded
// on the finding itself when present, else the case-level onset, else nil.
func (c CaseState) Onset(findingID string) *int {
	for _, f := range c.Findings {
		if f.Finding == findingID && f.DaysSinceOnset != nil {
			return f.DaysSinceOnset
		}
	}
	return c.DaysSinceOnset
}

// HasCompleted reports whether the action id appears in completed actions.
func (c CaseState) HasCompleted(actionID string) bool {
	for _, a := range c.CompletedActions {
		if a.Action == actionID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (c CaseState) Clone() CaseState {
	out := c
	out.Findings = append([]FindingValue(nil), c.Findings...)
	for i := range out.Findings {
		if v := out.Findings[i].Value; v != nil {
			copied := *v
			out.Findings[i].Value = &copied
		}
		if d := out.Findings[i].DaysSinceOnset; d != nil {
			copied := *d
			out.Findings[i].DaysSinceOnset = &copied
		}
	}
	out.CompletedActions = append([]CompletedAction(nil), c.CompletedActions...)
	if c.DaysSinceOnset != nil {
		d := *c.DaysSinceOnset
		out.DaysSinceOnset = &d
	}
	if c.Patient.Age != nil {
		a := *c.Patient.Age
		out.Patient.Age = &a
	}
	if c.Patient.Pregnant != nil {
		p := *c.Patient.Pregnant
		out.Patient.Pregnant = &p
	}
	return out
}

// SetFinding returns a copy with the finding recorded at the given presence.
// An existing entry is updated in place so finding order stays stable; its
// value/onset/severity/source fields survive the presence change.
func (c CaseState) SetFinding(findingID string, presence pack.Presence) CaseState {
	out := c.Clone()
	for i := range out.Findings {
		if out.Findings[i].Finding == findingID {
			out.Findings[i].Presence = presence
			return out
		}
	}
	out.Findings = append(out.Findings, FindingValue{Finding: findingID, Presence: presence})
	return out
}

// SetObservation returns a copy with the full finding entry written: an
// existing entry for the same finding is replaced wholesale.
func (c CaseState) SetObservation(fv FindingValue) CaseState {
	out := c.Clone()
	for i := range out.Findings {
		if out.Findings[i].Finding == fv.Finding {
			out.Findings[i] = fv
			return out
		}
	}
	out.Findings = append(out.Findings, fv)
	return out
}

// RemoveFinding returns a copy with the finding entry dropped entirely,
// returning it to unknown.
func (c CaseState) RemoveFinding(findingID string) CaseState {
	out := c.Clone()
	kept := out.Findings[:0]
	for _, f := range out.Findings {
		if f.Finding != findingID {
			kept = append(kept, f)
		}
	}
	out.Findings = kept
	return out
}

// Hash returns the sha256 hex digest of the canonical JSON encoding. Struct
// field order makes the encoding stable, so equal cases hash equal.
func (c CaseState) Hash() string {
	data, err := json.Marshal(c)
	if err != nil {
		// CaseState contains only marshalable fields; this cannot happen.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// #endregion

// #region apply-outcome

// ApplyReport describes what ApplyOutcome did. Unmet preconditions do not
// block application; they are surfaced as warnings for the host to show.
type ApplyReport struct {
	Action   string
	Outcome  string
	Applied  bool
	NotFound bool
	Effects  []pack.FindingEffect
	Warnings []string
}

// ApplyOutcome records an action's observed outcome on the case: each effect
// writes a finding value, and the action joins completed actions. Unknown
// action or outcome ids leave the case untouched and set NotFound. Effects
// referencing findings missing from the pack are skipped with a warning.
func ApplyOutcome(c CaseState, p *pack.ContentPack, actionID, outcomeID string) (CaseState, ApplyReport) {
	report := ApplyReport{Action: actionID, Outcome: outcomeID}

	action := p.Action(actionID)
	if action == nil {
		report.NotFound = true
		report.Warnings = append(report.Warnings, fmt.Sprintf("action %q not in pack %s", actionID, p.Name))
		return c, report
	}
	outcome := action.Outcome(outcomeID)
	if outcome == nil {
		report.NotFound = true
		report.Warnings = append(report.Warnings, fmt.Sprintf("outcome %q not on action %q", outcomeID, actionID))
		return c, report
	}

	for _, id := range action.Preconditions.RequireFindings {
		if !c.IsPresent(id) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("required finding %q was not present", id))
		}
	}
	for _, id := range action.Preconditions.ForbidFindings {
		if c.IsPresent(id) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("forbidden finding %q was present", id))
		}
	}
	for _, id := range action.Preconditions.RequireActions {
		if !c.HasCompleted(id) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("required action %q was not completed", id))
		}
	}

	out := c.Clone()
	for _, e := range outcome.Effects {
		if p.Finding(e.Finding) == nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("effect skipped: finding %q not in pack", e.Finding))
			continue
		}
		out = out.SetFinding(e.Finding, e.Presence)
		report.Effects = append(report.Effects, e)
	}
	out.CompletedActions = append(out.CompletedActions, CompletedAction{Action: actionID, Outcome: outcomeID})
	report.Applied = true
	return out, report
}

// #endregion
