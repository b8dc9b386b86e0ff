package belief

import (
	"github.com/jaxwc/mapmyhealth/internal/casefile"
	"github.com/jaxwc/mapmyhealth/internal/pack"
)

// #region activation

// ActiveConditions prunes conditions whose activation rules are not met by
// the present findings. A condition stays active when its finding rules
// match, when one of its contexts overlaps a category of a present finding,
// or when it declares neither. With no present findings at all the filter is
// a no-op, so a fresh case always scores the full condition list. For the
// conditions that survive, downstream probabilities keep the same relative
// ratios the unfiltered computation would give them.
func ActiveConditions(c casefile.CaseState, p *pack.ContentPack) []pack.ConditionDef {
	anyPresent := false
	for _, f := range c.Findings {
		if f.Presence == pack.PresencePresent {
			anyPresent = true
			break
		}
	}
	if !anyPresent {
		return p.Conditions
	}

	categories := presentCategories(c, p)
	var active []pack.ConditionDef
	for _, cond := range p.Conditions {
		if conditionActive(cond, c, categories) {
			active = append(active, cond)
		}
	}
	return active
}

// presentCategories collects the category tags of every present finding.
func presentCategories(c casefile.CaseState, p *pack.ContentPack) map[string]bool {
	categories := map[string]bool{}
	for _, f := range c.Findings {
		if f.Presence != pack.PresencePresent {
			continue
		}
		def := p.Finding(f.Finding)
		if def == nil {
			continue
		}
		for _, cat := range def.Categories {
			categories[cat] = true
		}
	}
	return categories
}

func conditionActive(cond pack.ConditionDef, c casefile.CaseState, categories map[string]bool) bool {
	if cond.Activation.Empty() && len(cond.Contexts) == 0 {
		return true
	}
	if !cond.Activation.Empty() && ruleMet(cond.Activation, c) {
		return true
	}
	for _, ctx := range cond.Contexts {
		if categories[ctx] {
			return true
		}
	}
	return false
}

func ruleMet(rule pack.ActivationRule, c casefile.CaseState) bool {
	if len(rule.RequireAnyPresent) > 0 {
		hit := false
		for _, id := range rule.RequireAnyPresent {
			if c.IsPresent(id) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for _, id := range rule.RequireAllPresent {
		if !c.IsPresent(id) {
			return false
		}
	}
	return true
}

// #endregion
