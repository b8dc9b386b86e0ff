package triage

import (
	"fmt"

	"github.com/jaxwc/mapmyhealth/internal/casefile"
	"github.com/jaxwc/mapmyhealth/internal/pack"
)

// #region triage

// Result is the outcome of the red-flag check.
type Result struct {
	Urgent bool
	Flags  []string // ids of present red-flag findings, pack order
	Reason string
}

// CheckRedFlags scans the case for present red-flag findings. Any hit makes
// the case urgent, which short-circuits belief scoring and planning entirely.
// Red flags recorded absent or left unknown do not trigger.
func CheckRedFlags(c casefile.CaseState, p *pack.ContentPack) Result {
	var flags []string
	for _, f := range p.Findings {
		if f.RedFlag && c.IsPresent(f.ID) {
			flags = append(flags, f.ID)
		}
	}

	if len(flags) == 0 {
		return Result{Urgent: false, Reason: "no red flags present"}
	}
	return Result{
		Urgent: true,
		Flags:  flags,
		Reason: fmt.Sprintf("red flag present: %s", flags[0]),
	}
}

// #endregion
