package replay

import (
	"fmt"
	"path/filepath"

	"github.com/jaxwc/mapmyhealth/internal/pack"
	"github.com/jaxwc/mapmyhealth/internal/view"
)

// #region result-types

// Result is one fixture's pass/fail verdict with the reasons it failed.
type Result struct {
	Description string
	Passed      bool
	Failures    []string
	View        view.View
}

// Summary aggregates a replay run.
type Summary struct {
	Total  int
	Passed int
	Failed int
}

// Summarize counts passes and failures.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// #endregion result-types

// #region run

// Run replays one fixture's case through BuildView and checks every
// expectation the fixture sets. Operates entirely in-memory.
func Run(f *Fixture, p *pack.ContentPack) Result {
	cfg := view.DefaultConfig()
	if f.CostWeights != nil {
		cfg.Weights = *f.CostWeights
	}

	v := view.BuildView(f.Case, p, cfg)
	res := Result{Description: f.Description, View: v}

	fail := func(format string, args ...any) {
		res.Failures = append(res.Failures, fmt.Sprintf(format, args...))
	}

	e := f.Expect
	if e.Urgent != nil && v.Triage.Urgent != *e.Urgent {
		fail("urgent: got %v, want %v", v.Triage.Urgent, *e.Urgent)
	}
	for _, flag := range e.Flags {
		if !containsString(v.Triage.Flags, flag) {
			fail("flags: missing %q (got %v)", flag, v.Triage.Flags)
		}
	}
	if e.TopCondition != "" {
		if len(v.Top.RankedConditions) == 0 {
			fail("top condition: got none, want %q", e.TopCondition)
		} else if got := v.Top.RankedConditions[0].ID; got != e.TopCondition {
			fail("top condition: got %q, want %q", got, e.TopCondition)
		}
	}
	if e.Category != "" && string(v.Top.Category) != e.Category {
		fail("category: got %q, want %q", v.Top.Category, e.Category)
	}
	if e.Recommendation != "" && string(v.Top.Recommendation) != e.Recommendation {
		fail("recommendation: got %q, want %q", v.Top.Recommendation, e.Recommendation)
	}
	if e.MinTopProbability != nil {
		if len(v.Top.RankedConditions) == 0 {
			fail("top probability: no ranked conditions")
		} else if got := v.Top.RankedConditions[0].Probability; got < *e.MinTopProbability {
			fail("top probability: got %.4f, want >= %.4f", got, *e.MinTopProbability)
		}
	}
	if e.MaxActions != nil && len(v.Bottom.ActionRanking) > *e.MaxActions {
		fail("action count: got %d, want <= %d", len(v.Bottom.ActionRanking), *e.MaxActions)
	}

	res.Passed = len(res.Failures) == 0
	return res
}

// RunFile loads one fixture and its pack and replays it. A relative pack
// path resolves against the fixture file's directory.
func RunFile(path string, reg *pack.Registry) (Result, error) {
	f, err := LoadFixture(path)
	if err != nil {
		return Result{}, err
	}
	packPath := f.PackPath
	if packPath == "" {
		return Result{}, fmt.Errorf("fixture %s names no pack", path)
	}
	if !filepath.IsAbs(packPath) {
		packPath = filepath.Join(filepath.Dir(path), packPath)
	}
	p, err := reg.Load(packPath)
	if err != nil {
		return Result{}, err
	}
	return Run(f, p), nil
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

// #endregion run
