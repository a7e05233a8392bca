/*
Package report renders payroll records for people: PDF payslips and the
CSV payroll register.

Both are read-only projections of payroll.PayrollRecord. Nothing here
recomputes money; figures are printed as stored.

SEE ALSO:
  - api/handlers.go: Serves the payslip and register downloads
*/
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// PayslipInfo is the display context a record does not carry.
type PayslipInfo struct {
	Company      string
	EmployeeName string
	Email        string
	Currency     string

	// Components classifies breakdown entries into earnings and deductions.
	// When empty, the record's fixed fields are printed instead.
	Components []payroll.SalaryComponent
}

// Line is one row of the earnings or deductions table.
type Line struct {
	Label  string
	Amount decimal.Decimal
}

// Lines splits a record into payslip rows, in component order followed by
// variable payments, then the loan EMI.
func Lines(info PayslipInfo, rec payroll.PayrollRecord) (earnings, deductions []Line) {
	if len(info.Components) == 0 {
		earnings = []Line{
			{"Basic", rec.Basic},
			{"HRA", rec.HRA},
			{"Special Allowance", rec.SpecialAllowance},
		}
		deductions = []Line{
			{"PF", rec.PF},
			{"Professional Tax", rec.ProfessionalTax},
			{"Income Tax", rec.IncomeTax},
		}
	} else {
		components := payroll.CloneComponents(info.Components)
		sort.SliceStable(components, func(i, j int) bool { return components[i].Order < components[j].Order })

		hasTaxLine := false
		for _, c := range components {
			amount, ok := rec.ComponentBreakdown[c.Name]
			if !ok {
				continue
			}
			switch c.Type {
			case payroll.Earning:
				earnings = append(earnings, Line{c.Name, amount})
			case payroll.Deduction:
				deductions = append(deductions, Line{c.Name, amount})
				if c.EffectiveRole() == payroll.RoleIncomeTax {
					hasTaxLine = true
				}
			}
		}
		if !hasTaxLine && !rec.IncomeTax.IsZero() {
			deductions = append(deductions, Line{"Income Tax (TDS)", rec.IncomeTax})
		}
	}

	keys := make([]string, 0, len(rec.VariablePayments))
	for k := range rec.VariablePayments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line := Line{k, rec.VariablePayments[k]}
		if strings.HasSuffix(k, "("+string(payroll.Deduction)+")") {
			deductions = append(deductions, line)
		} else {
			earnings = append(earnings, line)
		}
	}

	if !rec.LoanDeduction.IsZero() {
		deductions = append(deductions, Line{"Loan EMI", rec.LoanDeduction})
	}
	return earnings, deductions
}

// WritePayslipPDF renders an A4 payslip.
func WritePayslipPDF(w io.Writer, info PayslipInfo, rec payroll.PayrollRecord) error {
	currency := info.Currency
	if currency == "" {
		currency = "INR"
	}
	period := payroll.MonthPeriod(rec.Year, rec.Month)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s %d-%02d", rec.EmployeeID, rec.Year, int(rec.Month)), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	if info.Company != "" {
		pdf.Cell(0, 10, info.Company)
		pdf.Ln(10)
	}
	pdf.Cell(0, 10, fmt.Sprintf("Payslip for %s %d", rec.Month, rec.Year))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", info.EmployeeName, rec.EmployeeID))
	pdf.Ln(6)
	if info.Email != "" {
		pdf.Cell(0, 7, fmt.Sprintf("Email: %s", info.Email))
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", period.Start.Format("2006-01-02"), period.End.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Paid days: %s of %d", rec.PaidDays.String(), rec.TotalDaysInMonth))
	pdf.Ln(6)
	a := rec.Attendance
	pdf.Cell(0, 7, fmt.Sprintf("Present %d, Absent %d, Leave %d, Holiday %d, Week off %d, Half days %d",
		a.Present, a.Absent, a.OnLeave, a.Holiday, a.WeekOff, a.HalfDayLeave+a.HalfDayPresentAbsent))
	pdf.Ln(10)

	earnings, deductions := Lines(info, rec)
	table(pdf, "Earnings", currency, earnings, rec.GrossEarnings)
	pdf.Ln(4)
	table(pdf, "Deductions", currency, deductions, rec.TotalDeductions)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(120, 9, "Net Salary", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 9, money(rec.NetSalary, currency), "1", 1, "R", false, 0, "")

	return pdf.Output(w)
}

func table(pdf *gofpdf.Fpdf, title, currency string, lines []Line, total decimal.Decimal) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 8, title, "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, l := range lines {
		pdf.CellFormat(120, 7, l.Label, "LR", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, money(l.Amount, currency), "LR", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 8, "Total "+strings.ToLower(title), "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, money(total, currency), "1", 1, "R", false, 0, "")
}

func money(d decimal.Decimal, currency string) string {
	return d.StringFixed(2) + " " + currency
}
