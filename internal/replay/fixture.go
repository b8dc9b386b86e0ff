package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jaxwc/mapmyhealth/internal/casefile"
	"github.com/jaxwc/mapmyhealth/internal/influence"
	"github.com/jaxwc/mapmyhealth/internal/provlog"
)

// #region fixture-types

// Fixture is one recorded case plus the view expectations it must satisfy.
type Fixture struct {
	Description string                 `json:"description"`
	PackPath    string                 `json:"pack_path"`
	Case        casefile.CaseState     `json:"case"`
	CostWeights *influence.CostWeights `json:"cost_weights,omitempty"`
	Expect      Expectations           `json:"expect"`
}

// Expectations are the asserted slices of a built view. Nil/empty fields are
// not checked.
type Expectations struct {
	Urgent            *bool    `json:"urgent,omitempty"`
	Flags             []string `json:"flags,omitempty"`
	TopCondition      string   `json:"top_condition,omitempty"`
	Category          string   `json:"category,omitempty"`
	Recommendation    string   `json:"recommendation,omitempty"`
	MinTopProbability *float64 `json:"min_top_probability,omitempty"`
	MaxActions        *int     `json:"max_actions,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes a fixture as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-loader

// #region from-record

// FromRecord converts a logged evaluation into a fixture skeleton whose
// expectations assert the verdict that was recorded at the time. The pack
// path must be supplied by the caller; the log stores only the pack name.
func FromRecord(rec provlog.Record, packPath string) (*Fixture, error) {
	var c casefile.CaseState
	if err := json.Unmarshal([]byte(rec.CaseJSON), &c); err != nil {
		return nil, fmt.Errorf("parse logged case %s: %w", rec.EvalID, err)
	}

	urgent := rec.Urgent
	return &Fixture{
		Description: fmt.Sprintf("replayed evaluation %s (pack %s)", rec.EvalID, rec.PackName),
		PackPath:    packPath,
		Case:        c,
		Expect: Expectations{
			Urgent:         &urgent,
			Flags:          rec.Flags,
			TopCondition:   rec.TopCondition,
			Category:       rec.Category,
			Recommendation: rec.Recommendation,
		},
	}, nil
}

// #endregion from-record
