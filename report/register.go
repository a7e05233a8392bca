package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// RegisterRow is one employee's line in the payroll register.
type RegisterRow struct {
	EmployeeName string
	Record       payroll.PayrollRecord
}

var registerHeader = []string{
	"employee_id", "employee_name", "year", "month",
	"paid_days", "total_days",
	"basic", "hra", "special_allowance",
	"pf", "professional_tax", "income_tax", "loan_deduction",
	"gross", "deductions", "net",
}

// WriteRegisterCSV writes a header and one line per row, ordered by
// employee ID.
func WriteRegisterCSV(w io.Writer, rows []RegisterRow) error {
	sorted := make([]RegisterRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Record.EmployeeID < sorted[j].Record.EmployeeID
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(registerHeader); err != nil {
		return err
	}
	for _, row := range sorted {
		r := row.Record
		if err := cw.Write([]string{
			string(r.EmployeeID),
			row.EmployeeName,
			strconv.Itoa(r.Year),
			strconv.Itoa(int(r.Month)),
			r.PaidDays.String(),
			strconv.Itoa(r.TotalDaysInMonth),
			amount(r.Basic),
			amount(r.HRA),
			amount(r.SpecialAllowance),
			amount(r.PF),
			amount(r.ProfessionalTax),
			amount(r.IncomeTax),
			amount(r.LoanDeduction),
			amount(r.GrossEarnings),
			amount(r.TotalDeductions),
			amount(r.NetSalary),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func amount(d decimal.Decimal) string { return d.StringFixed(2) }
