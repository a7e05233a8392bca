/*
Package factory provides JSON and YAML to Go component set conversion.

PURPOSE:
  Converts salary structure definitions into payroll.SalaryComponent sets.
  HR can describe a structure in a file or an admin UI payload and the
  factory creates the validated Go values the engine consumes.

JSON SCHEMA:
  {
    "id": "standard-india",
    "name": "Standard India",
    "components": [
      {"name": "Basic", "type": "earning", "calculation_type": "percentage_of_gross",
       "value": 40, "order": 1, "is_basic_anchor": true},
      {"name": "HRA", "type": "earning", "calculation_type": "percentage_of_basic",
       "value": 50, "order": 2},
      {"name": "Special Allowance", "type": "earning",
       "calculation_type": "balance_component", "order": 3}
    ]
  }

  YAML files use the same keys.

DEFAULTS:
  - Missing component IDs are generated (UUIDv4)
  - A zero order takes the component's position in the list (1-based)
  - Editable defaults to true

USAGE:
  f := factory.NewComponentFactory()
  set, err := f.ParseJSON(factory.StandardIndiaJSON())
  err = store.ReplaceDefaultComponents(ctx, set)

SEE ALSO:
  - presets.go: Ready-made structures
  - payroll/validate.go: Rules every parsed set must pass
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ComponentSetJSON is a named salary structure.
type ComponentSetJSON struct {
	ID         string          `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string          `json:"name,omitempty" yaml:"name,omitempty"`
	Components []ComponentJSON `json:"components" yaml:"components"`
}

// ComponentJSON is the wire form of payroll.SalaryComponent.
type ComponentJSON struct {
	ID              string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name            string  `json:"name" yaml:"name"`
	Type            string  `json:"type" yaml:"type"`                         // earning, deduction
	CalculationType string  `json:"calculation_type" yaml:"calculation_type"` // percentage_of_gross, percentage_of_basic, fixed_amount, balance_component
	Value           float64 `json:"value" yaml:"value"`
	Order           int     `json:"order,omitempty" yaml:"order,omitempty"`
	Editable        *bool   `json:"editable,omitempty" yaml:"editable,omitempty"`
	IsBasicAnchor   bool    `json:"is_basic_anchor,omitempty" yaml:"is_basic_anchor,omitempty"`
	Role            string  `json:"role,omitempty" yaml:"role,omitempty"`
}

// =============================================================================
// COMPONENT FACTORY
// =============================================================================

// ComponentFactory converts component set definitions to Go structs.
type ComponentFactory struct {
	newID func() string
}

func NewComponentFactory() *ComponentFactory {
	return &ComponentFactory{newID: uuid.NewString}
}

// ParseJSON parses and validates a JSON component set.
func (f *ComponentFactory) ParseJSON(jsonStr string) ([]payroll.SalaryComponent, error) {
	var sj ComponentSetJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return nil, fmt.Errorf("failed to parse component set JSON: %w", err)
	}
	return f.FromJSON(sj)
}

// ParseYAML parses and validates a YAML component set.
func (f *ComponentFactory) ParseYAML(data []byte) ([]payroll.SalaryComponent, error) {
	var sj ComponentSetJSON
	if err := yaml.Unmarshal(data, &sj); err != nil {
		return nil, fmt.Errorf("failed to parse component set YAML: %w", err)
	}
	return f.FromJSON(sj)
}

// LoadFile reads a .json, .yaml or .yml component set.
func (f *ComponentFactory) LoadFile(path string) ([]payroll.SalaryComponent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read component set: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return f.ParseJSON(string(data))
	case ".yaml", ".yml":
		return f.ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported component set file %q: want .json, .yaml or .yml", path)
	}
}

// FromJSON converts ComponentSetJSON to a validated component set.
func (f *ComponentFactory) FromJSON(sj ComponentSetJSON) ([]payroll.SalaryComponent, error) {
	components := f.Components(sj.Components)
	if err := payroll.ValidateComponentSet(components); err != nil {
		return nil, err
	}
	return components, nil
}

// Components converts without validating. Use for payloads that are
// resolved ad hoc rather than persisted.
func (f *ComponentFactory) Components(cjs []ComponentJSON) []payroll.SalaryComponent {
	components := make([]payroll.SalaryComponent, len(cjs))
	for i, cj := range cjs {
		id := cj.ID
		if id == "" {
			id = f.newID()
		}
		order := cj.Order
		if order == 0 {
			order = i + 1
		}
		editable := true
		if cj.Editable != nil {
			editable = *cj.Editable
		}
		components[i] = payroll.SalaryComponent{
			ID:              payroll.ComponentID(id),
			Name:            strings.TrimSpace(cj.Name),
			Type:            payroll.ComponentType(strings.ToLower(cj.Type)),
			CalculationType: payroll.CalculationType(strings.ToLower(cj.CalculationType)),
			Value:           decimal.NewFromFloat(cj.Value),
			Order:           order,
			Editable:        editable,
			IsBasicAnchor:   cj.IsBasicAnchor,
			Role:            payroll.ComponentRole(cj.Role),
		}
	}
	return components
}

// ToJSON converts a component set to its wire form.
func (f *ComponentFactory) ToJSON(id, name string, components []payroll.SalaryComponent) ComponentSetJSON {
	sj := ComponentSetJSON{ID: id, Name: name, Components: make([]ComponentJSON, len(components))}
	for i, c := range components {
		editable := c.Editable
		sj.Components[i] = ComponentJSON{
			ID:              string(c.ID),
			Name:            c.Name,
			Type:            string(c.Type),
			CalculationType: string(c.CalculationType),
			Value:           c.Value.InexactFloat64(),
			Order:           c.Order,
			Editable:        &editable,
			IsBasicAnchor:   c.IsBasicAnchor,
			Role:            string(c.Role),
		}
	}
	return sj
}
