package payroll

// ValidateComponentSet checks the invariants a component set must satisfy
// before it is persisted: exactly one balance component and it is an earning,
// at most one Basic anchor computed from gross or a fixed amount, unique names and IDs, known types, non-negative
// values. It returns nil or a *ConfigError listing every violation.
//
// Resolve tolerates sets that fail these checks; configuration editors must
// not.
func ValidateComponentSet(components []SalaryComponent) error {
	cfgErr := &ConfigError{}
	if len(components) == 0 {
		cfgErr.add("", "components", ErrEmptyComponentSet)
		return cfgErr
	}

	names := make(map[string]bool, len(components))
	ids := make(map[ComponentID]bool, len(components))
	balances := 0
	flagged := 0

	for _, c := range components {
		if c.ID != "" {
			if ids[c.ID] {
				cfgErr.add(c.ID, "id", ErrDuplicateComponentID)
			}
			ids[c.ID] = true
		}

		key := normalizeName(c.Name)
		if names[key] {
			cfgErr.add(c.ID, "name", ErrDuplicateComponentName)
		}
		names[key] = true

		if !c.Type.Valid() {
			cfgErr.add(c.ID, "type", ErrInvalidComponentType)
		}
		if !c.CalculationType.Valid() {
			cfgErr.add(c.ID, "calculation_type", ErrInvalidCalculationType)
		}
		if c.Value.IsNegative() {
			cfgErr.add(c.ID, "value", ErrNegativeValue)
		}

		if c.IsBalance() {
			balances++
			if c.Type != Earning {
				cfgErr.add(c.ID, "type", ErrBalanceNotEarning)
			}
		}
		if c.IsBasicAnchor {
			flagged++
		}
	}

	switch {
	case balances == 0:
		cfgErr.add("", "components", ErrNoBalanceComponent)
	case balances > 1:
		cfgErr.add("", "components", ErrMultipleBalanceComponents)
	}

	if flagged > 1 {
		cfgErr.add("", "components", ErrMultipleBasicAnchors)
	}
	for _, c := range components {
		if c.IsBasicAnchor && c.Type != Earning {
			cfgErr.add(c.ID, "type", ErrBasicNotEarning)
		}
	}
	// The Basic pass only computes percentage_of_gross and fixed_amount.
	if i := anchorIndex(components); i >= 0 {
		switch ct := components[i].CalculationType; {
		case ct == PercentageOfBasic:
			cfgErr.add(components[i].ID, "calculation_type", ErrBasicPercentageOfBasic)
		case ct.Valid() && ct != PercentageOfGross && ct != FixedAmount:
			cfgErr.add(components[i].ID, "calculation_type", ErrBasicCalculationType)
		}
	}

	if len(cfgErr.Issues) > 0 {
		return cfgErr
	}
	return nil
}
