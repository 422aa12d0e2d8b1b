package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Pattern names a connectivity rule plus its parameters.
// In YAML it is either a bare tag ("syn") or a mapping ({type: randbool, p: 0.3}).
type Pattern struct {
	Type string  `json:"type" yaml:"type"`
	P    float64 `json:"p,omitempty" yaml:"p,omitempty"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (p *Pattern) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*p = Pattern{Type: value.Value}
		return nil
	case yaml.MappingNode:
		type plain Pattern
		var out plain
		if err := value.Decode(&out); err != nil {
			return err
		}
		*p = Pattern(out)
		return nil
	default:
		return fmt.Errorf("line %d: pattern must be a tag or a mapping", value.Line)
	}
}

// String renders the pattern for logs and error messages.
func (p Pattern) String() string {
	if p.P != 0 {
		return fmt.Sprintf("%s(%g)", p.Type, p.P)
	}
	return p.Type
}
