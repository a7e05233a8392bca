/*
Package payroll provides the monthly payroll engine.

PURPOSE:
  Derives a monthly salary breakdown from an annual CTC figure, an ordered
  set of salary component rules, attendance-based pro-ration, one-off
  variable payments, loan EMIs and a progressive income-tax estimate.
  Everything in this package except Service is a pure function over
  immutable input snapshots.

KEY CONCEPTS IN THIS FILE (types.go):
  - SalaryComponent: one rule of a salary structure (earning or deduction)
  - Employee: the CTC figure plus an optional custom component set
  - AttendanceRecord, LeaveRequest, EmployeeLoan, VariablePayment,
    InvestmentDeclaration: inputs supplied by the external stores
  - PayrollRecord: the output for one employee and one (year, month)

DESIGN PRINCIPLES:
  1. Precision: money is decimal.Decimal, floats only at the JSON edge
  2. Totality: the engine never fails, malformed input degrades to zeros
  3. Explicit anchors: Basic is flagged on the component, not guessed

SEE ALSO:
  - resolver.go: Salary structure resolution
  - engine.go: Pro-rata monthly payroll
  - validate.go: Component set validation for configuration editors
*/
package payroll

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type ComponentID string

// =============================================================================
// SALARY COMPONENT - One rule of a salary structure
// =============================================================================

type ComponentType string

const (
	Earning   ComponentType = "earning"
	Deduction ComponentType = "deduction"
)

func (t ComponentType) Valid() bool { return t == Earning || t == Deduction }

type CalculationType string

const (
	PercentageOfGross CalculationType = "percentage_of_gross"
	PercentageOfBasic CalculationType = "percentage_of_basic"
	FixedAmount       CalculationType = "fixed_amount"
	BalanceComponent  CalculationType = "balance_component"
)

func (c CalculationType) Valid() bool {
	switch c {
	case PercentageOfGross, PercentageOfBasic, FixedAmount, BalanceComponent:
		return true
	}
	return false
}

// ComponentRole tags a component with the statutory line it represents so
// the payroll record can project its fixed fields without guessing from names.
type ComponentRole string

const (
	RoleNone             ComponentRole = ""
	RoleBasic            ComponentRole = "basic"
	RoleHRA              ComponentRole = "hra"
	RoleSpecialAllowance ComponentRole = "special_allowance"
	RolePF               ComponentRole = "pf"
	RoleProfessionalTax  ComponentRole = "professional_tax"
	RoleIncomeTax        ComponentRole = "income_tax"
)

// legacyRoleNames maps well-known component names to roles for sets that
// predate explicit roles. Keys are lower-case.
var legacyRoleNames = map[string]ComponentRole{
	"basic":                RoleBasic,
	"hra":                  RoleHRA,
	"house rent allowance": RoleHRA,
	"special allowance":    RoleSpecialAllowance,
	"pf":                   RolePF,
	"provident fund":       RolePF,
	"professional tax":     RoleProfessionalTax,
	"income tax":           RoleIncomeTax,
	"tds":                  RoleIncomeTax,
}

type SalaryComponent struct {
	ID              ComponentID
	Name            string
	Type            ComponentType
	CalculationType CalculationType
	Value           decimal.Decimal // percentage or fixed amount; ignored for balance
	Order           int
	Editable        bool
	IsBasicAnchor   bool
	Role            ComponentRole
}

// EffectiveRole returns the explicit role, or the role implied by the
// component's name when none is set.
func (c SalaryComponent) EffectiveRole() ComponentRole {
	if c.Role != RoleNone {
		return c.Role
	}
	if c.IsBasicAnchor {
		return RoleBasic
	}
	return legacyRoleNames[normalizeName(c.Name)]
}

func (c SalaryComponent) IsBalance() bool { return c.CalculationType == BalanceComponent }

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// =============================================================================
// EMPLOYEE
// =============================================================================

type Employee struct {
	ID        EmployeeID
	Name      string
	Email     string
	AnnualCTC decimal.Decimal

	// Components overrides the organisation default set when non-empty.
	Components []SalaryComponent
}

// Clone returns a copy that shares no slices with e.
func (e Employee) Clone() Employee {
	e.Components = CloneComponents(e.Components)
	return e
}

func CloneComponents(components []SalaryComponent) []SalaryComponent {
	if components == nil {
		return nil
	}
	out := make([]SalaryComponent, len(components))
	copy(out, components)
	return out
}

// =============================================================================
// ATTENDANCE & LEAVE
// =============================================================================

type AttendanceStatus string

const (
	Present              AttendanceStatus = "Present"
	Absent               AttendanceStatus = "Absent"
	OnLeave              AttendanceStatus = "OnLeave"
	Holiday              AttendanceStatus = "Holiday"
	WeekOff              AttendanceStatus = "WeekOff"
	HalfDayLeave         AttendanceStatus = "HalfDayLeave"
	HalfDayPresentAbsent AttendanceStatus = "HalfDayPresentAbsent"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case Present, Absent, OnLeave, Holiday, WeekOff, HalfDayLeave, HalfDayPresentAbsent:
		return true
	}
	return false
}

type AttendanceRecord struct {
	EmployeeID EmployeeID
	Date       time.Time
	Status     AttendanceStatus
}

type LeaveStatus string

const (
	LeavePending   LeaveStatus = "Pending"
	LeaveApproved  LeaveStatus = "Approved"
	LeaveRejected  LeaveStatus = "Rejected"
	LeaveCancelled LeaveStatus = "Cancelled"
)

type LeaveRequest struct {
	ID         string
	EmployeeID EmployeeID
	LeaveType  string
	StartDate  time.Time
	EndDate    time.Time
	Status     LeaveStatus
	Reason     string
}

// =============================================================================
// LOANS, VARIABLE PAYMENTS, DECLARATIONS
// =============================================================================

type LoanStatus string

const (
	LoanActive  LoanStatus = "Active"
	LoanPaidOff LoanStatus = "PaidOff"
)

type EmployeeLoan struct {
	ID         string
	EmployeeID EmployeeID
	LoanAmount decimal.Decimal
	EMI        decimal.Decimal
	StartDate  time.Time
	Status     LoanStatus
}

// VariablePayment is a one-off earning or deduction for a single period.
type VariablePayment struct {
	ID          string
	EmployeeID  EmployeeID
	Year        int
	Month       time.Month
	Description string
	Type        ComponentType
	Amount      decimal.Decimal
}

// Key is the breakdown label, e.g. "Festival Bonus (earning)".
func (p VariablePayment) Key() string {
	return p.Description + " (" + string(p.Type) + ")"
}

type DeclarationStatus string

const (
	DeclarationPending  DeclarationStatus = "Pending"
	DeclarationApproved DeclarationStatus = "Approved"
	DeclarationRejected DeclarationStatus = "Rejected"
)

type InvestmentDeclaration struct {
	ID            string
	EmployeeID    EmployeeID
	FinancialYear string // "2024-2025"
	Section       string
	Amount        decimal.Decimal
	Status        DeclarationStatus
}

// =============================================================================
// OUTPUT
// =============================================================================

type AttendanceSummary struct {
	Present              int
	Absent               int
	OnLeave              int
	Holiday              int
	WeekOff              int
	HalfDayLeave         int
	HalfDayPresentAbsent int
}

// LeaveSummary counts approved leave requests per leave type.
type LeaveSummary map[string]int

// PayrollRecord is the result of one payroll computation. Fixed money fields
// are rounded to whole units; ComponentBreakdown keeps full precision.
type PayrollRecord struct {
	EmployeeID EmployeeID
	Year       int
	Month      time.Month

	Basic            decimal.Decimal
	HRA              decimal.Decimal
	SpecialAllowance decimal.Decimal
	PF               decimal.Decimal
	ProfessionalTax  decimal.Decimal
	IncomeTax        decimal.Decimal

	GrossEarnings   decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal

	PaidDays         decimal.Decimal
	TotalDaysInMonth int

	ProRataGross        decimal.Decimal
	AnnualTaxableIncome decimal.Decimal

	Attendance AttendanceSummary
	Leave      LeaveSummary

	ComponentBreakdown map[string]decimal.Decimal
	LoanDeduction      decimal.Decimal
	VariablePayments   map[string]decimal.Decimal
}

// Clone returns a copy that shares no maps with r.
func (r PayrollRecord) Clone() PayrollRecord {
	r.Leave = cloneMap(r.Leave)
	r.ComponentBreakdown = cloneMap(r.ComponentBreakdown)
	r.VariablePayments = cloneMap(r.VariablePayments)
	return r
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
