package payroll_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

func TestValidateComponentSet_ValidSet(t *testing.T) {
	assert.NoError(t, payroll.ValidateComponentSet(simpleSet()))
}

func TestValidateComponentSet_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]payroll.SalaryComponent) []payroll.SalaryComponent
		want   error
	}{
		{
			name:   "empty",
			mutate: func([]payroll.SalaryComponent) []payroll.SalaryComponent { return nil },
			want:   payroll.ErrEmptyComponentSet,
		},
		{
			name:   "no balance",
			mutate: func(s []payroll.SalaryComponent) []payroll.SalaryComponent { return s[:3] },
			want:   payroll.ErrNoBalanceComponent,
		},
		{
			name: "two balances",
			mutate: func(s []payroll.SalaryComponent) []payroll.SalaryComponent {
				return append(s, earning("other", "Other", payroll.BalanceComponent, "0", 5))
			},
			want: payroll.ErrMultipleBalanceComponents,
		},
		{
			name: "balance is a deduction",
			mutate: func(s []payroll.SalaryComponent) []payroll.SalaryComponent {
				s[3].Type = payroll.Deduction
				return s
			},
			want: payroll.ErrBalanceNotEarning,
		},
		{
			name: "two anchors",
			mutate: func(s []payroll.SalaryComponent) []payroll.SalaryComponent {
				s[1].IsBasicAnchor = true
				return s
			},
			want: payroll.ErrMultipleBasicAnchors,
		},
		{
			name: "anchor is a deduction",
			mutate: func(s []payroll.SalaryComponent) []payroll.SalaryComponent {
				s[0].IsBasicAnchor = false
				s[2].IsBasicAnchor = true
				return s
			},
			want: payroll.ErrBasicNotEarning,
		},
		{
			name: "anchor is percentage of basic",
			mutate: func(s []payroll.SalaryComponent) []payroll.SalaryComponent {
				s[0].CalculationType = payroll.PercentageOfBasic
				return s
			},
			want: payroll.ErrBasicPercentageOfBasic,
		},
		{
			name: "anchor is the balance component",
			mutate: func(s []payroll.SalaryComponent) []payroll.SalaryComponent {
				s[0].CalculationType = payroll.BalanceComponent
				return s[:3]
			},
			want: payroll.ErrBasicCalculationType,
		},
		{
			name: "duplicate name ignores case",
			mutate: func(s []payroll.SalaryComponent) []payroll.SalaryComponent {
				s[1].Name = " basic"
				return s
			},
			want: payroll.ErrDuplicateComponentName,
		},
		{
			name: "duplicate id",
			mutate: func(s []payroll.SalaryComponent) []payroll.SalaryComponent {
				s[1].ID = s[0].ID
				return s
			},
			want: payroll.ErrDuplicateComponentID,
		},
		{
			name: "unknown type",
			mutate: func(s []payroll.SalaryComponent) []payroll.SalaryComponent {
				s[1].Type = "bonus"
				return s
			},
			want: payroll.ErrInvalidComponentType,
		},
		{
			name: "unknown calculation",
			mutate: func(s []payroll.SalaryComponent) []payroll.SalaryComponent {
				s[1].CalculationType = "percentage_of_ctc"
				return s
			},
			want: payroll.ErrInvalidCalculationType,
		},
		{
			name: "negative value",
			mutate: func(s []payroll.SalaryComponent) []payroll.SalaryComponent {
				s[1].Value = dec("-1")
				return s
			},
			want: payroll.ErrNegativeValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := payroll.ValidateComponentSet(tt.mutate(simpleSet()))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, payroll.IsConfigError(err))
			assert.True(t, payroll.IsClientError(err))
		})
	}
}

func TestValidateComponentSet_ReportsEveryIssue(t *testing.T) {
	// GIVEN: A set with no balance and a negative value
	set := simpleSet()[:3]
	set[1].Value = dec("-10")

	// WHEN: Validating
	err := payroll.ValidateComponentSet(set)

	// THEN: Both problems are reported
	var cfgErr *payroll.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Len(t, cfgErr.Issues, 2)
	assert.ErrorIs(t, err, payroll.ErrNoBalanceComponent)
	assert.ErrorIs(t, err, payroll.ErrNegativeValue)
	assert.Contains(t, err.Error(), "component hra: value")
}

func TestValidateComponentSet_NameFallbackAnchor(t *testing.T) {
	// GIVEN: Nothing flagged, the component named Basic is percentage_of_basic
	set := simpleSet()
	set[0].IsBasicAnchor = false
	set[0].CalculationType = payroll.PercentageOfBasic

	err := payroll.ValidateComponentSet(set)

	assert.ErrorIs(t, err, payroll.ErrBasicPercentageOfBasic)
}

func TestValidateComponentSet_BalanceAnchorRejected(t *testing.T) {
	// GIVEN: Basic is the only balance component and the anchor
	set := []payroll.SalaryComponent{
		earning("basic", "Basic", payroll.BalanceComponent, "0", 1),
		earning("hra", "HRA", payroll.PercentageOfBasic, "50", 2),
		deduction("pf", "PF", payroll.PercentageOfBasic, "12", 3),
	}
	set[0].IsBasicAnchor = true

	// WHEN: Validating
	err := payroll.ValidateComponentSet(set)

	// THEN: Only the anchor rule fails
	var cfgErr *payroll.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Len(t, cfgErr.Issues, 1)
	assert.ErrorIs(t, err, payroll.ErrBasicCalculationType)
	assert.Equal(t, payroll.ComponentID("basic"), cfgErr.Issues[0].ComponentID)
}
