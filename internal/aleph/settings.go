// Package aleph compiles samples into the three files an Aleph run reads:
// background knowledge (.b), positive examples (.f) and negative examples (.n).
//
// Reference: https://www.cs.ox.ac.uk/activities/programinduction/Aleph/aleph.html
package aleph

import (
	"errors"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Settings are the solver directives written to the head of the background file.
type Settings struct {
	// Module is the interpreter directive written before the declarations.
	Module string `yaml:"module"`
	// Directives are written after the declarations, in order.
	Directives []Directive `yaml:"directives"`
}

// Directive is one `:- set(name, value).` line. Disabled directives are kept
// in the file as comments.
type Directive struct {
	Name     string `yaml:"name"`
	Value    string `yaml:"value"`
	Disabled bool   `yaml:"disabled"`
}

var directiveName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ParseSettings decodes a settings document.
func ParseSettings(data []byte) (Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal aleph settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks that every directive renders to a well-formed clause.
func (s Settings) Validate() error {
	if s.Module == "" {
		return errors.New("aleph settings: module directive is empty")
	}
	for i, d := range s.Directives {
		if !directiveName.MatchString(d.Name) {
			return fmt.Errorf("aleph settings: directive %d has invalid name %q", i, d.Name)
		}
		if d.Value == "" {
			return fmt.Errorf("aleph settings: directive %q has no value", d.Name)
		}
	}
	return nil
}

// Line renders the directive as a clause.
func (d Directive) Line() string {
	line := fmt.Sprintf(":- set(%s, %s).", d.Name, d.Value)
	if d.Disabled {
		return "%" + line
	}
	return line
}
