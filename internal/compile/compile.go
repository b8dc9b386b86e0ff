package compile

import (
	"fmt"

	"github.com/jaxwc/mapmyhealth/internal/belief"
	"github.com/jaxwc/mapmyhealth/internal/influence"
	"github.com/jaxwc/mapmyhealth/internal/pack"
)

// #region clinical-state

// ConditionSummary is one condition entry on a compiled state.
type ConditionSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

// ClinicalState is the display-ready summary of one belief vector: a label,
// the care recommendation, and the leading conditions.
type ClinicalState struct {
	ID             string                `json:"id"`
	Label          string                `json:"label"`
	Category       pack.BandCategory     `json:"category"`
	Recommendation belief.Recommendation `json:"recommendation"`
	Top            []ConditionSummary    `json:"top"`
}

// topStateConditions caps how many conditions a compiled state names.
const topStateConditions = 3

// State compiles a belief vector into a ClinicalState. The same function
// serves the root view and every simulated outcome leaf, so the two can never
// drift apart. Empty beliefs compile to "No clear diagnosis".
func State(id string, b belief.Beliefs, conds []pack.ConditionDef) ClinicalState {
	cls := belief.Classify(b, conds, nil, topStateConditions)

	if len(cls.Ranked) == 0 {
		return ClinicalState{
			ID:             id,
			Label:          "No clear diagnosis",
			Category:       cls.Category,
			Recommendation: cls.Recommendation,
		}
	}

	top := make([]ConditionSummary, 0, len(cls.Ranked))
	for _, rc := range cls.Ranked {
		top = append(top, ConditionSummary{ID: rc.ID, Name: rc.Name, Probability: rc.Probability})
	}

	leader := cls.Ranked[0]
	return ClinicalState{
		ID:             id,
		Label:          fmt.Sprintf("%s (%s)", leader.Name, leader.Category),
		Category:       cls.Category,
		Recommendation: cls.Recommendation,
		Top:            top,
	}
}

// UrgentState compiles the degenerate root shown when triage short-circuits
// the pipeline.
func UrgentState(flags []string) ClinicalState {
	label := "Urgent care required"
	if len(flags) > 0 {
		label = fmt.Sprintf("Urgent care required (%s)", flags[0])
	}
	return ClinicalState{
		ID:             "root",
		Label:          label,
		Category:       pack.BandUnknown,
		Recommendation: belief.RecommendUrgentCare,
	}
}

// #endregion

// #region state-tree

// OutcomeLeaf is one simulated outcome under an action node.
type OutcomeLeaf struct {
	Outcome        string        `json:"outcome"`
	Label          string        `json:"label"`
	Probability    float64       `json:"probability"`
	DeltaCertainty float64       `json:"deltaCertainty"`
	State          ClinicalState `json:"state"`
}

// ActionNode groups the outcome leaves of one ranked action.
type ActionNode struct {
	Action   string        `json:"action"`
	Name     string        `json:"name"`
	Outcomes []OutcomeLeaf `json:"outcomes"`
}

// StateTree is the one-step lookahead shown under the root state: one node
// per ranked action, one leaf per outcome.
type StateTree struct {
	Root    ClinicalState `json:"root"`
	Actions []ActionNode  `json:"actions"`
}

// deltaCertainty blends entropy drop with top-1 probability lift into one
// display emphasis score. It plays no part in ranking.
func deltaCertainty(before, after belief.Beliefs) float64 {
	entropyDrop := belief.Entropy(before) - belief.Entropy(after)
	return 0.7*entropyDrop + 0.3*(topProbability(after)-topProbability(before))
}

func topProbability(b belief.Beliefs) float64 {
	var top float64
	for _, p := range b {
		if p > top {
			top = p
		}
	}
	return top
}

// ActionTree assembles the lookahead tree from the ranked actions' stored
// outcome projections. Outcomes whose projection is missing fall back to the
// current beliefs, which compiles to a leaf identical to the root.
func ActionTree(root ClinicalState, current belief.Beliefs, ranked []influence.ActionVOI, conds []pack.ConditionDef) StateTree {
	tree := StateTree{Root: root}
	for _, voi := range ranked {
		node := ActionNode{Action: voi.Action, Name: voi.Name}
		for _, out := range voi.Outcomes {
			posterior := out.Posterior
			if posterior == nil {
				posterior = current
			}
			leafID := fmt.Sprintf("s-%s-%s", voi.Action, out.Outcome)
			node.Outcomes = append(node.Outcomes, OutcomeLeaf{
				Outcome:        out.Outcome,
				Label:          out.Label,
				Probability:    out.Probability,
				DeltaCertainty: deltaCertainty(current, posterior),
				State:          State(leafID, posterior, conds),
			})
		}
		tree.Actions = append(tree.Actions, node)
	}
	return tree
}

// #endregion

// #region action-map

// CatalogEntry summarizes one action for the decision-graph catalog.
type CatalogEntry struct {
	Name     string   `json:"name"`
	Outcomes []string `json:"outcomes"`
}

// Transition is one flattened action→outcome edge between compiled states.
type Transition struct {
	From        string  `json:"from"`
	Action      string  `json:"action"`
	Outcome     string  `json:"outcome"`
	To          string  `json:"to"`
	Probability float64 `json:"probability"`
}

// ActionMap is the flattened form of a StateTree, suitable for rendering as
// a decision graph: a catalog of actions plus the edge list.
type ActionMap struct {
	Catalog     map[string]CatalogEntry `json:"catalog"`
	Transitions []Transition            `json:"transitions"`
}

// Flatten walks a StateTree into its ActionMap.
func Flatten(tree StateTree) ActionMap {
	m := ActionMap{Catalog: make(map[string]CatalogEntry, len(tree.Actions))}
	for _, node := range tree.Actions {
		entry := CatalogEntry{Name: node.Name}
		for _, leaf := range node.Outcomes {
			entry.Outcomes = append(entry.Outcomes, leaf.Outcome)
			m.Transitions = append(m.Transitions, Transition{
				From:        tree.Root.ID,
				Action:      node.Action,
				Outcome:     leaf.Outcome,
				To:          leaf.State.ID,
				Probability: leaf.Probability,
			})
		}
		m.Catalog[node.Action] = entry
	}
	return m
}

// #endregion
