/*
engine.go - Pro-rata monthly payroll

PURPOSE:
  Computes one employee's PayrollRecord for one calendar month. The steps
  run strictly in order, each feeding the next:

    1. Tally attendance for the month
    2. Tally approved leave per leave type
    3. Paid days (half-day statuses count 0.5), clamped to the month length
    4. Pro-rata gross = annual CTC * paid days / (12 * days in month)
    5. Resolve the salary structure (custom set, else the fallback set)
    6. Add variable payments for the period
    7. Deduct the active loan's EMI once it has started
    8. Recompute TDS from the full annual CTC and swap it into deductions
    9. Net = gross - deductions
   10. Round the projected money figures to whole units

TOTALITY:
  ComputeMonthlyPayroll never fails. Zero CTC, missing attendance or missing
  declarations contribute zeros. Inputs are never modified.

SEE ALSO:
  - resolver.go: Step 5
  - tax.go: Step 8
  - batch.go: Runs many employees in parallel
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

var twelve = decimal.NewFromInt(12)

// MonthlyInput is the immutable snapshot the engine computes over. Slices may
// contain records of other employees or periods; the engine filters them.
type MonthlyInput struct {
	Employee           Employee
	Year               int
	Month              time.Month
	Attendance         []AttendanceRecord
	LeaveRequests      []LeaveRequest
	Declarations       []InvestmentDeclaration
	Loans              []EmployeeLoan
	VariablePayments   []VariablePayment
	FallbackComponents []SalaryComponent
}

// Engine carries the tax configuration. The zero value is not usable; use
// NewEngine.
type Engine struct {
	Slabs             TaxSlabs
	StandardDeduction decimal.Decimal
}

func NewEngine() *Engine {
	return &Engine{Slabs: DefaultTaxSlabs, StandardDeduction: StandardDeduction}
}

var defaultEngine = NewEngine()

// ComputeMonthlyPayroll runs the default engine.
func ComputeMonthlyPayroll(in MonthlyInput) PayrollRecord {
	return defaultEngine.ComputeMonthlyPayroll(in)
}

// ComputeMonthlyPayroll produces the payroll record for in.Employee and
// (in.Year, in.Month).
func (e *Engine) ComputeMonthlyPayroll(in MonthlyInput) PayrollRecord {
	emp := in.Employee

	// Steps 1-3
	totalDays := DaysInMonth(in.Year, in.Month)
	attendance := TallyAttendance(emp.ID, in.Year, in.Month, in.Attendance)
	leave := TallyLeave(emp.ID, in.LeaveRequests)
	paidDays := decimal.Min(attendance.PaidDays(), decimal.NewFromInt(int64(totalDays)))

	// Step 4
	proRata := ProRataGross(emp.AnnualCTC, paidDays, totalDays)

	// Step 5
	components := emp.Components
	if len(components) == 0 {
		components = in.FallbackComponents
	}
	bd := Resolve(proRata, components)
	breakdown := bd.ByName()
	gross := bd.Gross
	deductions := bd.Deductions

	// Step 6
	variable := make(map[string]decimal.Decimal)
	for _, p := range in.VariablePayments {
		if p.EmployeeID != emp.ID || p.Year != in.Year || p.Month != in.Month {
			continue
		}
		switch p.Type {
		case Earning:
			gross = gross.Add(p.Amount)
		case Deduction:
			deductions = deductions.Add(p.Amount)
		default:
			continue
		}
		variable[p.Key()] = variable[p.Key()].Add(p.Amount)
	}

	// Step 7
	loanDeduction := decimal.Zero
	if loan, ok := activeLoan(emp.ID, in.Loans); ok && !Date(loan.StartDate).After(StartOfMonth(in.Year, in.Month)) {
		loanDeduction = loan.EMI
		deductions = deductions.Add(loan.EMI)
	}

	// Step 8
	professionalTax := bd.RoleAmount(RoleProfessionalTax)
	declared := ApprovedDeclarations(emp.ID, FinancialYearFor(in.Year, in.Month), in.Declarations)
	taxable := AnnualTaxableIncome(emp.AnnualCTC, e.StandardDeduction, professionalTax, declared)
	tds := e.Slabs.AnnualTax(taxable).Div(twelve)

	resolverTDS := decimal.Zero
	if i := bd.LineForRole(RoleIncomeTax); i >= 0 && bd.Lines[i].Type == Deduction {
		resolverTDS = bd.Lines[i].Amount
		breakdown[bd.Lines[i].Name] = tds
	}
	deductions = deductions.Sub(resolverTDS).Add(tds)

	// Steps 9-10
	grossRounded := roundMoney(gross)
	deductionsRounded := roundMoney(deductions)

	return PayrollRecord{
		EmployeeID: emp.ID,
		Year:       in.Year,
		Month:      in.Month,

		Basic:            roundMoney(bd.Basic),
		HRA:              roundMoney(bd.RoleAmount(RoleHRA)),
		SpecialAllowance: roundMoney(bd.RoleAmount(RoleSpecialAllowance)),
		PF:               roundMoney(bd.RoleAmount(RolePF)),
		ProfessionalTax:  roundMoney(professionalTax),
		IncomeTax:        roundMoney(tds),

		GrossEarnings:   grossRounded,
		TotalDeductions: deductionsRounded,
		NetSalary:       grossRounded.Sub(deductionsRounded),

		PaidDays:         paidDays,
		TotalDaysInMonth: totalDays,

		ProRataGross:        proRata,
		AnnualTaxableIncome: taxable,

		Attendance: attendance,
		Leave:      leave,

		ComponentBreakdown: breakdown,
		LoanDeduction:      loanDeduction,
		VariablePayments:   variable,
	}
}

// ProRataGross scales annual CTC to the paid fraction of one month. Zero
// when the month has no days.
func ProRataGross(annualCTC, paidDays decimal.Decimal, totalDays int) decimal.Decimal {
	if totalDays <= 0 {
		return decimal.Zero
	}
	return annualCTC.Mul(paidDays).Div(decimal.NewFromInt(int64(12 * totalDays)))
}

// activeLoan returns the employee's first active loan in input order.
func activeLoan(employeeID EmployeeID, loans []EmployeeLoan) (EmployeeLoan, bool) {
	for _, l := range loans {
		if l.EmployeeID == employeeID && l.Status == LoanActive {
			return l, true
		}
	}
	return EmployeeLoan{}, false
}

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}
