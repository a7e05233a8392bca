package factory

import "encoding/json"

// =============================================================================
// PRESET STRUCTURES
// =============================================================================

// StandardIndiaJSON returns the default organisation structure: Basic 40% of
// gross, HRA 50% of Basic, Special Allowance as balance, PF 12% of Basic,
// Professional Tax 200 and an Income Tax line the engine recomputes.
func StandardIndiaJSON() string {
	return setJSON("standard-india", "Standard India", []map[string]any{
		{"id": "basic", "name": "Basic", "type": "earning", "calculation_type": "percentage_of_gross", "value": 40, "order": 1, "is_basic_anchor": true, "role": "basic"},
		{"id": "hra", "name": "HRA", "type": "earning", "calculation_type": "percentage_of_basic", "value": 50, "order": 2, "role": "hra"},
		{"id": "special-allowance", "name": "Special Allowance", "type": "earning", "calculation_type": "balance_component", "value": 0, "order": 3, "editable": false, "role": "special_allowance"},
		{"id": "pf", "name": "PF", "type": "deduction", "calculation_type": "percentage_of_basic", "value": 12, "order": 4, "role": "pf"},
		{"id": "professional-tax", "name": "Professional Tax", "type": "deduction", "calculation_type": "fixed_amount", "value": 200, "order": 5, "role": "professional_tax"},
		{"id": "income-tax", "name": "Income Tax", "type": "deduction", "calculation_type": "fixed_amount", "value": 0, "order": 6, "editable": false, "role": "income_tax"},
	})
}

// SimpleJSON returns Basic, HRA, PF and a Special Allowance balance.
func SimpleJSON() string {
	return setJSON("simple", "Simple", []map[string]any{
		{"id": "basic", "name": "Basic", "type": "earning", "calculation_type": "percentage_of_gross", "value": 40, "order": 1, "is_basic_anchor": true},
		{"id": "hra", "name": "HRA", "type": "earning", "calculation_type": "percentage_of_basic", "value": 50, "order": 2},
		{"id": "pf", "name": "PF", "type": "deduction", "calculation_type": "percentage_of_basic", "value": 12, "order": 3},
		{"id": "special-allowance", "name": "Special Allowance", "type": "earning", "calculation_type": "balance_component", "value": 0, "order": 4},
	})
}

func setJSON(id, name string, components []map[string]any) string {
	b, _ := json.MarshalIndent(map[string]any{
		"id":         id,
		"name":       name,
		"components": components,
	}, "", "  ")
	return string(b)
}
