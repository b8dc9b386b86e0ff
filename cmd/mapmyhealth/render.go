package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jaxwc/mapmyhealth/internal/casefile"
	"github.com/jaxwc/mapmyhealth/internal/pack"
	"github.com/jaxwc/mapmyhealth/internal/planner"
	"github.com/jaxwc/mapmyhealth/internal/provlog"
	"github.com/jaxwc/mapmyhealth/internal/view"
)

// #region case-io

// loadCase reads a case state from a JSON file. A missing path yields an
// empty case, so `evaluate --pack p.yaml` alone is a valid smoke check.
func loadCase(path string) (casefile.CaseState, error) {
	if path == "" {
		return casefile.CaseState{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return casefile.CaseState{}, fmt.Errorf("read case %s: %w", path, err)
	}
	var c casefile.CaseState
	if err := json.Unmarshal(data, &c); err != nil {
		return casefile.CaseState{}, fmt.Errorf("parse case %s: %w", path, err)
	}
	return c, nil
}

// #endregion case-io

// #region render

// renderView writes a human-readable dump of both panels.
func renderView(w io.Writer, v view.View) {
	if v.Triage.Urgent {
		fmt.Fprintf(w, "TRIAGE: URGENT — %s\n", v.Triage.Reason)
		fmt.Fprintf(w, "  flags: %s\n", strings.Join(v.Triage.Flags, ", "))
		fmt.Fprintf(w, "  recommendation: %s\n", v.Top.Recommendation)
		return
	}

	fmt.Fprintf(w, "Assessment: %s (recommendation: %s)\n", v.Bottom.ActionTree.Root.Label, v.Top.Recommendation)

	fmt.Fprintln(w, "\nRanked conditions:")
	for i, rc := range v.Top.RankedConditions {
		fmt.Fprintf(w, "  %d. %-40s %6.1f%%  [%s]\n", i+1, rc.Name, rc.Probability*100, rc.Category)
	}

	if len(v.Top.ImportantUnknowns) > 0 {
		fmt.Fprintln(w, "\nMost informative unknowns:")
		for _, u := range v.Top.ImportantUnknowns {
			fmt.Fprintf(w, "  %-30s gain %.3f bits — %s\n", u.Name, u.ExpectedInfoGain, u.Rationale)
		}
	}

	if len(v.Bottom.ActionRanking) > 0 {
		fmt.Fprintln(w, "\nNext actions:")
		for i, a := range v.Bottom.ActionRanking {
			fmt.Fprintf(w, "  %d. %-35s utility %+.3f (gain %.3f bits)\n", i+1, a.Name, a.Utility, a.ExpectedInfoGain)
			node := v.Bottom.ActionTree.Actions[i]
			for _, leaf := range node.Outcomes {
				fmt.Fprintf(w, "       %-20s p=%.2f → %s (Δcertainty %+.3f)\n",
					leaf.Label, leaf.Probability, leaf.State.Label, leaf.DeltaCertainty)
			}
		}
	}

	if v.Diagnostics.SkippedRefs > 0 || v.Diagnostics.ZeroSum {
		fmt.Fprintf(w, "\ndiagnostics: skippedRefs=%d zeroSum=%v\n", v.Diagnostics.SkippedRefs, v.Diagnostics.ZeroSum)
	}
}

// renderBranches writes the multi-step plan preview.
func renderBranches(w io.Writer, branches []planner.Branch) {
	if len(branches) == 0 {
		fmt.Fprintln(w, "no branches produced")
		return
	}
	for i, br := range branches {
		fmt.Fprintf(w, "branch %d (expected utility %+.3f, stop: %s)\n", i+1, br.ExpectedUtility, br.Stop)
		for j, step := range br.Steps {
			fmt.Fprintf(w, "  step %d: %s → %s (p=%.2f)\n", j+1, step.ActionName, step.Outcome, step.Probability)
		}
		fmt.Fprintf(w, "  cumulative cost: $%.0f, %.1fh\n", br.CumulativeCosts.Money, br.CumulativeCosts.TimeHours)
	}
}

// #endregion render

// #region provlog-record

// recordView builds the audit row for one evaluation.
func recordView(sessionID string, c casefile.CaseState, p *pack.ContentPack, v view.View, elapsed time.Duration) provlog.Record {
	caseJSON, _ := json.Marshal(c)
	rec := provlog.Record{
		SessionID:      sessionID,
		PackName:       p.Name,
		PackVersion:    p.Version,
		CaseHash:       c.Hash(),
		CaseJSON:       string(caseJSON),
		Urgent:         v.Triage.Urgent,
		Flags:          v.Triage.Flags,
		Category:       string(v.Top.Category),
		Recommendation: string(v.Top.Recommendation),
		ElapsedMS:      elapsed.Milliseconds(),
	}
	if len(v.Top.RankedConditions) > 0 {
		rec.TopCondition = v.Top.RankedConditions[0].ID
		rec.TopProbability = v.Top.RankedConditions[0].Probability
	}
	return rec
}

// #endregion provlog-record
