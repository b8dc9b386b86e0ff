package pack

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// #region loader

// Load reads and parses a content pack from a YAML file. Structural problems
// (unreadable file, malformed YAML, missing name) fail here; semantic checks
// live in Validate and are the caller's choice to run.
func Load(path string) (*ContentPack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading content pack: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading content pack %s: %w", path, err)
	}
	return p, nil
}

// Parse unmarshals content pack YAML from memory.
func Parse(data []byte) (*ContentPack, error) {
	var p ContentPack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing pack: %w", err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("pack name is required")
	}
	if len(p.Conditions) == 0 {
		return nil, fmt.Errorf("pack %s has no conditions", p.Name)
	}
	return &p, nil
}

// #endregion
