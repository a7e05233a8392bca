package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/payroll-engine/payroll"
)

func TestCalculateAnnualTax_SlabValues(t *testing.T) {
	tests := []struct {
		income string
		want   string
	}{
		{"-1", "0"},
		{"0", "0"},
		{"300000", "0"},
		{"300001", "0.05"},
		{"600000", "15000"},
		{"900000", "45000"},
		{"1000000", "60000"},
		{"1200000", "90000"},
		{"1500000", "150000"},
		{"2000000", "300000"},
	}
	for _, tt := range tests {
		t.Run(tt.income, func(t *testing.T) {
			assertDecimal(t, tt.want, payroll.CalculateAnnualTax(dec(tt.income)))
		})
	}
}

func TestCalculateAnnualTax_ContinuousAtBoundaries(t *testing.T) {
	// GIVEN: Each slab's upper bound
	// WHEN: Evaluating the next slab's formula at that bound
	// THEN: Both give the same tax

	slabs := payroll.DefaultTaxSlabs
	for i := 0; i < len(slabs)-1; i++ {
		upTo := *slabs[i].UpTo
		next := slabs[i+1]
		fromNext := next.Base.Add(upTo.Sub(next.Floor).Mul(next.Rate))
		assertDecimal(t, fromNext.String(), payroll.CalculateAnnualTax(upTo), "boundary "+upTo.String())
	}
}

func TestCalculateAnnualTax_Monotonic(t *testing.T) {
	prev := decimal.Zero
	for income := int64(0); income <= 2_500_000; income += 12_500 {
		tax := payroll.CalculateAnnualTax(decimal.NewFromInt(income))
		assert.False(t, tax.LessThan(prev), "tax decreased at %d", income)
		prev = tax
	}
}

func TestAnnualTaxableIncome(t *testing.T) {
	// 12,00,000 - 50,000 - 12*200 - 1,50,000
	got := payroll.AnnualTaxableIncome(dec("1200000"), payroll.StandardDeduction, dec("200"), dec("150000"))
	assertDecimal(t, "997600", got)

	// floors at zero
	got = payroll.AnnualTaxableIncome(dec("40000"), payroll.StandardDeduction, decimal.Zero, decimal.Zero)
	assertDecimal(t, "0", got)
}

func TestApprovedDeclarations_FiltersByEmployeeYearAndStatus(t *testing.T) {
	decls := []payroll.InvestmentDeclaration{
		{ID: "d1", EmployeeID: "emp-1", FinancialYear: "2023-2024", Section: "80C", Amount: dec("100000"), Status: payroll.DeclarationApproved},
		{ID: "d2", EmployeeID: "emp-1", FinancialYear: "2023-2024", Section: "80D", Amount: dec("25000"), Status: payroll.DeclarationApproved},
		{ID: "d3", EmployeeID: "emp-1", FinancialYear: "2023-2024", Section: "80G", Amount: dec("5000"), Status: payroll.DeclarationPending},
		{ID: "d4", EmployeeID: "emp-1", FinancialYear: "2024-2025", Section: "80C", Amount: dec("150000"), Status: payroll.DeclarationApproved},
		{ID: "d5", EmployeeID: "emp-2", FinancialYear: "2023-2024", Section: "80C", Amount: dec("150000"), Status: payroll.DeclarationApproved},
	}

	got := payroll.ApprovedDeclarations("emp-1", payroll.FinancialYearFor(2024, time.March), decls)
	assertDecimal(t, "125000", got)
}

// =============================================================================
// CALENDAR
// =============================================================================

func TestFinancialYearFor(t *testing.T) {
	assert.Equal(t, "2023-2024", payroll.FinancialYearFor(2024, time.March))
	assert.Equal(t, "2024-2025", payroll.FinancialYearFor(2024, time.April))
	assert.Equal(t, "2024-2025", payroll.FinancialYearFor(2025, time.January))
	assert.Equal(t, "2024-2025", payroll.FinancialYearFor(2024, time.December))
}

func TestParseFinancialYear(t *testing.T) {
	start, ok := payroll.ParseFinancialYear(payroll.FinancialYearFor(2025, time.January))
	assert.True(t, ok)
	assert.Equal(t, 2024, start)

	for _, label := range []string{"2024-25", "2024-2026", "2024/2025", "24-2025", "+202-2025", ""} {
		_, ok := payroll.ParseFinancialYear(label)
		assert.False(t, ok, label)
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, payroll.DaysInMonth(2024, time.February))
	assert.Equal(t, 28, payroll.DaysInMonth(2023, time.February))
	assert.Equal(t, 31, payroll.DaysInMonth(2024, time.December))
	assert.Equal(t, 30, payroll.DaysInMonth(2024, time.April))
	assert.Equal(t, 0, payroll.DaysInMonth(2024, 13))
	assert.Equal(t, 0, payroll.DaysInMonth(2024, 0))
}

func TestPeriod_ContainsIsInclusive(t *testing.T) {
	p := payroll.MonthPeriod(2024, time.March)

	assert.True(t, p.Contains(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2024, time.March, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)))
}
