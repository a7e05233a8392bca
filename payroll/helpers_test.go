package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func earning(id, name string, calc payroll.CalculationType, value string, order int) payroll.SalaryComponent {
	return payroll.SalaryComponent{
		ID:              payroll.ComponentID(id),
		Name:            name,
		Type:            payroll.Earning,
		CalculationType: calc,
		Value:           dec(value),
		Order:           order,
		Editable:        true,
	}
}

func deduction(id, name string, calc payroll.CalculationType, value string, order int) payroll.SalaryComponent {
	c := earning(id, name, calc, value, order)
	c.Type = payroll.Deduction
	return c
}

// simpleSet is Basic 40% of gross, HRA 50% of Basic, PF 12% of Basic and a
// Special Allowance balance.
func simpleSet() []payroll.SalaryComponent {
	basic := earning("basic", "Basic", payroll.PercentageOfGross, "40", 1)
	basic.IsBasicAnchor = true
	return []payroll.SalaryComponent{
		basic,
		earning("hra", "HRA", payroll.PercentageOfBasic, "50", 2),
		deduction("pf", "PF", payroll.PercentageOfBasic, "12", 3),
		earning("special", "Special Allowance", payroll.BalanceComponent, "0", 4),
	}
}

// fullMonth returns one record per calendar day with the given status.
func fullMonth(emp payroll.EmployeeID, year int, month time.Month, status payroll.AttendanceStatus) []payroll.AttendanceRecord {
	var out []payroll.AttendanceRecord
	for d := 1; d <= payroll.DaysInMonth(year, month); d++ {
		out = append(out, payroll.AttendanceRecord{
			EmployeeID: emp,
			Date:       payroll.NewDate(year, month, d),
			Status:     status,
		})
	}
	return out
}

func days(emp payroll.EmployeeID, year int, month time.Month, from, to int, status payroll.AttendanceStatus) []payroll.AttendanceRecord {
	var out []payroll.AttendanceRecord
	for d := from; d <= to; d++ {
		out = append(out, payroll.AttendanceRecord{
			EmployeeID: emp,
			Date:       payroll.NewDate(year, month, d),
			Status:     status,
		})
	}
	return out
}
