package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// RESOLVER - Worked examples
// =============================================================================

func TestResolve_StandardSet(t *testing.T) {
	// GIVEN: Basic 40% of gross, HRA 50% of Basic, PF 12% of Basic, balance
	// WHEN: Resolving a monthly gross of 100,000
	// THEN: Special Allowance absorbs the 40,000 residual

	bd := payroll.Resolve(dec("100000"), simpleSet())

	assertDecimal(t, "40000", bd.Basic)
	byName := bd.ByName()
	assertDecimal(t, "40000", byName["Basic"])
	assertDecimal(t, "20000", byName["HRA"])
	assertDecimal(t, "4800", byName["PF"])
	assertDecimal(t, "40000", byName["Special Allowance"])
	assertDecimal(t, "100000", bd.Gross)
	assertDecimal(t, "4800", bd.Deductions)
	assertDecimal(t, "95200", bd.Net)
	assert.Equal(t, payroll.ComponentID("basic"), bd.AnchorID)
}

func TestResolve_ZeroGross(t *testing.T) {
	bd := payroll.Resolve(decimal.Zero, simpleSet())

	for _, l := range bd.Lines {
		assertDecimal(t, "0", l.Amount, l.Name)
	}
	assertDecimal(t, "0", bd.Gross)
	assertDecimal(t, "0", bd.Deductions)
	assertDecimal(t, "0", bd.Net)
}

func TestResolve_NegativeGrossTreatedAsZero(t *testing.T) {
	bd := payroll.Resolve(dec("-5000"), simpleSet())
	assertDecimal(t, "0", bd.Gross)
}

func TestResolve_LinesFollowOrderNotInputPosition(t *testing.T) {
	// GIVEN: The standard set supplied in reverse
	set := simpleSet()
	reversed := []payroll.SalaryComponent{set[3], set[2], set[1], set[0]}

	// WHEN: Resolving
	bd := payroll.Resolve(dec("100000"), reversed)

	// THEN: Lines come back in Order, and the input is untouched
	require.Len(t, bd.Lines, 4)
	assert.Equal(t, "Basic", bd.Lines[0].Name)
	assert.Equal(t, "Special Allowance", bd.Lines[3].Name)
	assert.Equal(t, "Special Allowance", reversed[0].Name)
	special, ok := lineAmount(bd, "special")
	require.True(t, ok)
	assertDecimal(t, "40000", special)
}

// =============================================================================
// RESOLVER - Properties
// =============================================================================

func TestResolve_BalanceInvariant(t *testing.T) {
	// GIVEN: A valid set whose non-balance earnings stay below gross
	// WHEN: Resolving a range of gross figures
	// THEN: Realized gross equals the target

	for _, g := range []string{"0", "1", "999.99", "33333.33", "100000", "275000.5"} {
		bd := payroll.Resolve(dec(g), simpleSet())
		assertDecimal(t, g, bd.Gross, "gross "+g)
		assert.True(t, bd.Net.Equal(bd.Gross.Sub(bd.Deductions)), "net consistency for %s", g)
	}
}

func TestResolve_BalanceFloorsAtZero(t *testing.T) {
	// GIVEN: Fixed earnings larger than the target gross
	basic := earning("basic", "Basic", payroll.FixedAmount, "30000", 1)
	basic.IsBasicAnchor = true
	set := []payroll.SalaryComponent{
		basic,
		earning("bonus", "Retention", payroll.FixedAmount, "30000", 2),
		earning("special", "Special Allowance", payroll.BalanceComponent, "0", 3),
	}

	// WHEN: Resolving 50,000
	bd := payroll.Resolve(dec("50000"), set)

	// THEN: Balance is 0 and the realized gross exceeds the target
	amount, ok := lineAmount(bd, "special")
	require.True(t, ok)
	assertDecimal(t, "0", amount)
	assertDecimal(t, "60000", bd.Gross)
}

func TestResolve_Deterministic(t *testing.T) {
	a := payroll.Resolve(dec("123456.78"), simpleSet())
	b := payroll.Resolve(dec("123456.78"), simpleSet())
	assert.Equal(t, a, b)
}

// =============================================================================
// RESOLVER - Anchor selection and degenerate sets
// =============================================================================

func TestResolve_FlagWinsOverName(t *testing.T) {
	// GIVEN: A component named "Basic" that is not flagged, and a flagged
	// component named "Base Pay"
	anchor := earning("base", "Base Pay", payroll.PercentageOfGross, "50", 1)
	anchor.IsBasicAnchor = true
	set := []payroll.SalaryComponent{
		anchor,
		earning("basic", "Basic", payroll.FixedAmount, "1000", 2),
		earning("hra", "HRA", payroll.PercentageOfBasic, "10", 3),
		earning("special", "Special Allowance", payroll.BalanceComponent, "0", 4),
	}

	bd := payroll.Resolve(dec("10000"), set)

	// THEN: Basic comes from the flagged component
	assertDecimal(t, "5000", bd.Basic)
	assertDecimal(t, "500", bd.ByName()["HRA"])
	assert.Equal(t, payroll.RoleBasic, bd.Lines[0].Role)
	assert.Equal(t, payroll.RoleNone, bd.Lines[1].Role)
}

func TestResolve_NameFallbackWhenNothingFlagged(t *testing.T) {
	set := simpleSet()
	set[0].IsBasicAnchor = false
	set[0].Name = "  BASIC "

	bd := payroll.Resolve(dec("100000"), set)

	assertDecimal(t, "40000", bd.Basic)
	assertDecimal(t, "20000", bd.ByName()["HRA"])
}

func TestResolve_NoAnchorMeansZeroBasic(t *testing.T) {
	set := []payroll.SalaryComponent{
		earning("fixed", "Fixed Pay", payroll.PercentageOfGross, "60", 1),
		earning("hra", "HRA", payroll.PercentageOfBasic, "50", 2),
		earning("special", "Special Allowance", payroll.BalanceComponent, "0", 3),
	}

	bd := payroll.Resolve(dec("10000"), set)

	assertDecimal(t, "0", bd.Basic)
	assertDecimal(t, "0", bd.ByName()["HRA"])
	assertDecimal(t, "4000", bd.ByName()["Special Allowance"])
	assert.Empty(t, bd.AnchorID)
}

func TestResolve_MultipleBalancesFirstAbsorbs(t *testing.T) {
	set := simpleSet()
	set = append(set, earning("special2", "Other Allowance", payroll.BalanceComponent, "0", 5))

	bd := payroll.Resolve(dec("100000"), set)

	first, _ := lineAmount(bd, "special")
	second, _ := lineAmount(bd, "special2")
	assertDecimal(t, "40000", first)
	assertDecimal(t, "0", second)
	assertDecimal(t, "100000", bd.Gross)
}

func TestResolve_DeductionBalanceResolvesToZero(t *testing.T) {
	set := simpleSet()
	set[3].Type = payroll.Deduction

	bd := payroll.Resolve(dec("100000"), set)

	amount, _ := lineAmount(bd, "special")
	assertDecimal(t, "0", amount)
	assertDecimal(t, "60000", bd.Gross)
}

func TestResolve_EmptySet(t *testing.T) {
	bd := payroll.Resolve(dec("100000"), nil)
	assert.Empty(t, bd.Lines)
	assertDecimal(t, "0", bd.Gross)
	assertDecimal(t, "0", bd.Net)
}

func TestBreakdown_RoleLookup(t *testing.T) {
	bd := payroll.Resolve(dec("100000"), simpleSet())

	assertDecimal(t, "20000", bd.RoleAmount(payroll.RoleHRA))
	assertDecimal(t, "4800", bd.RoleAmount(payroll.RolePF))
	assertDecimal(t, "0", bd.RoleAmount(payroll.RoleIncomeTax))
	assert.Equal(t, -1, bd.LineForRole(payroll.RoleIncomeTax))
}

func lineAmount(bd payroll.Breakdown, id payroll.ComponentID) (decimal.Decimal, bool) {
	for _, l := range bd.Lines {
		if l.ComponentID == id {
			return l.Amount, true
		}
	}
	return decimal.Zero, false
}
