/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Money crosses the wire
  as float64 and is converted to decimal.Decimal at this boundary only.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator tags. Handlers call
  decodeAndValidate, which reports failures per JSON field name. Rules that
  span a whole component set (one balance, one anchor) stay in
  payroll.ValidateComponentSet and surface as 422.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/components.go: ComponentJSON, the wire form of a component
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	Email      string                  `json:"email,omitempty"`
	AnnualCTC  float64                 `json:"annual_ctc"`
	Components []factory.ComponentJSON `json:"components,omitempty"`
}

// CreateEmployeeRequest creates or replaces an employee. A non-empty
// components list is the employee's custom salary structure.
type CreateEmployeeRequest struct {
	ID         string                  `json:"id" validate:"required,max=64"`
	Name       string                  `json:"name" validate:"required"`
	Email      string                  `json:"email" validate:"omitempty,email"`
	AnnualCTC  float64                 `json:"annual_ctc" validate:"gte=0"`
	Components []factory.ComponentJSON `json:"components" validate:"omitempty,dive"`
}

// =============================================================================
// ENGINE INPUTS
// =============================================================================

type AttendanceRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Status string `json:"status" validate:"required,oneof=Present Absent OnLeave Holiday WeekOff HalfDayLeave HalfDayPresentAbsent"`
}

type LeaveRequestRequest struct {
	ID        string `json:"id"`
	LeaveType string `json:"leave_type" validate:"required"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required,oneof=Pending Approved Rejected Cancelled"`
	Reason    string `json:"reason"`
}

type LoanRequest struct {
	ID         string  `json:"id"`
	LoanAmount float64 `json:"loan_amount" validate:"gte=0"`
	EMI        float64 `json:"emi" validate:"gte=0"`
	StartDate  string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	Status     string  `json:"status" validate:"required,oneof=Active PaidOff"`
}

type VariablePaymentRequest struct {
	ID          string  `json:"id"`
	Year        int     `json:"year" validate:"required,gte=1"`
	Month       int     `json:"month" validate:"required,min=1,max=12"`
	Description string  `json:"description" validate:"required"`
	Type        string  `json:"type" validate:"required,oneof=earning deduction"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

type DeclarationRequest struct {
	ID            string  `json:"id"`
	FinancialYear string  `json:"financial_year" validate:"required,financial_year"`
	Section       string  `json:"section"`
	Amount        float64 `json:"amount" validate:"gte=0"`
	Status        string  `json:"status" validate:"required,oneof=Pending Approved Rejected"`
}

// =============================================================================
// COMPONENTS & TAX
// =============================================================================

// ResolveRequest resolves a monthly gross against the given components, or
// against the organisation default set when none are given.
type ResolveRequest struct {
	MonthlyGross float64                 `json:"monthly_gross" validate:"gte=0"`
	Components   []factory.ComponentJSON `json:"components" validate:"omitempty,dive"`
}

type BreakdownLineDTO struct {
	ComponentID string  `json:"component_id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Role        string  `json:"role,omitempty"`
	Amount      float64 `json:"amount"`
}

type BreakdownDTO struct {
	MonthlyGross float64            `json:"monthly_gross"`
	Basic        float64            `json:"basic"`
	Gross        float64            `json:"gross"`
	Deductions   float64            `json:"deductions"`
	Net          float64            `json:"net"`
	Lines        []BreakdownLineDTO `json:"lines"`
}

// ValidationDTO is the result of POST /api/components/validate.
type ValidationDTO struct {
	Valid  bool       `json:"valid"`
	Issues []IssueDTO `json:"issues,omitempty"`
}

type IssueDTO struct {
	ComponentID string `json:"component_id,omitempty"`
	Field       string `json:"field,omitempty"`
	Message     string `json:"message"`
}

type TaxDTO struct {
	Income     float64 `json:"income"`
	AnnualTax  float64 `json:"annual_tax"`
	MonthlyTax float64 `json:"monthly_tax"`
}

// =============================================================================
// PAYROLL
// =============================================================================

type RunPayrollRequest struct {
	Year  int `json:"year" validate:"required,gte=1"`
	Month int `json:"month" validate:"required,min=1,max=12"`
}

type AttendanceSummaryDTO struct {
	Present              int `json:"present"`
	Absent               int `json:"absent"`
	OnLeave              int `json:"on_leave"`
	Holiday              int `json:"holiday"`
	WeekOff              int `json:"week_off"`
	HalfDayLeave         int `json:"half_day_leave"`
	HalfDayPresentAbsent int `json:"half_day_present_absent"`
}

// PayrollRecordDTO represents a computed month for one employee.
type PayrollRecordDTO struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`

	Basic            float64 `json:"basic"`
	HRA              float64 `json:"hra"`
	SpecialAllowance float64 `json:"special_allowance"`
	PF               float64 `json:"pf"`
	ProfessionalTax  float64 `json:"professional_tax"`
	IncomeTax        float64 `json:"income_tax"`

	GrossEarnings   float64 `json:"gross_earnings"`
	TotalDeductions float64 `json:"total_deductions"`
	NetSalary       float64 `json:"net_salary"`

	PaidDays            float64 `json:"paid_days"`
	TotalDaysInMonth    int     `json:"total_days_in_month"`
	ProRataGross        float64 `json:"pro_rata_gross"`
	AnnualTaxableIncome float64 `json:"annual_taxable_income"`

	Attendance         AttendanceSummaryDTO `json:"attendance"`
	Leave              map[string]int       `json:"leave"`
	ComponentBreakdown map[string]float64   `json:"component_breakdown"`
	LoanDeduction      float64              `json:"loan_deduction"`
	VariablePayments   map[string]float64   `json:"variable_payments"`
}

type RunFailureDTO struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

// RunSummaryDTO is the result of POST /api/payroll/runs.
type RunSummaryDTO struct {
	Year            int                `json:"year"`
	Month           int                `json:"month"`
	StartedAt       string             `json:"started_at"`
	FinishedAt      string             `json:"finished_at"`
	Processed       int                `json:"processed"`
	Failed          int                `json:"failed"`
	TotalGross      float64            `json:"total_gross"`
	TotalDeductions float64            `json:"total_deductions"`
	TotalNet        float64            `json:"total_net"`
	Records         []PayrollRecordDTO `json:"records"`
	Failures        []RunFailureDTO    `json:"failures"`
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Period      string `json:"period"` // month the scenario's data covers, "2024-04"
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func money(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func moneyMap(m map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = money(v)
	}
	return out
}

func toEmployeeDTO(f *factory.ComponentFactory, e payroll.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:        string(e.ID),
		Name:      e.Name,
		Email:     e.Email,
		AnnualCTC: money(e.AnnualCTC),
	}
	if len(e.Components) > 0 {
		dto.Components = f.ToJSON("", "", e.Components).Components
	}
	return dto
}

func toBreakdownDTO(monthlyGross decimal.Decimal, b payroll.Breakdown) BreakdownDTO {
	dto := BreakdownDTO{
		MonthlyGross: money(monthlyGross),
		Basic:        money(b.Basic),
		Gross:        money(b.Gross),
		Deductions:   money(b.Deductions),
		Net:          money(b.Net),
		Lines:        make([]BreakdownLineDTO, len(b.Lines)),
	}
	for i, l := range b.Lines {
		dto.Lines[i] = BreakdownLineDTO{
			ComponentID: string(l.ComponentID),
			Name:        l.Name,
			Type:        string(l.Type),
			Role:        string(l.Role),
			Amount:      money(l.Amount),
		}
	}
	return dto
}

func toPayrollRecordDTO(r payroll.PayrollRecord) PayrollRecordDTO {
	leave := make(map[string]int, len(r.Leave))
	for k, v := range r.Leave {
		leave[k] = v
	}
	a := r.Attendance
	return PayrollRecordDTO{
		EmployeeID: string(r.EmployeeID),
		Year:       r.Year,
		Month:      int(r.Month),

		Basic:            money(r.Basic),
		HRA:              money(r.HRA),
		SpecialAllowance: money(r.SpecialAllowance),
		PF:               money(r.PF),
		ProfessionalTax:  money(r.ProfessionalTax),
		IncomeTax:        money(r.IncomeTax),

		GrossEarnings:   money(r.GrossEarnings),
		TotalDeductions: money(r.TotalDeductions),
		NetSalary:       money(r.NetSalary),

		PaidDays:            money(r.PaidDays),
		TotalDaysInMonth:    r.TotalDaysInMonth,
		ProRataGross:        money(r.ProRataGross),
		AnnualTaxableIncome: money(r.AnnualTaxableIncome),

		Attendance: AttendanceSummaryDTO{
			Present:              a.Present,
			Absent:               a.Absent,
			OnLeave:              a.OnLeave,
			Holiday:              a.Holiday,
			WeekOff:              a.WeekOff,
			HalfDayLeave:         a.HalfDayLeave,
			HalfDayPresentAbsent: a.HalfDayPresentAbsent,
		},
		Leave:              leave,
		ComponentBreakdown: moneyMap(r.ComponentBreakdown),
		LoanDeduction:      money(r.LoanDeduction),
		VariablePayments:   moneyMap(r.VariablePayments),
	}
}

func toPayrollRecordDTOs(records []payroll.PayrollRecord) []PayrollRecordDTO {
	dtos := make([]PayrollRecordDTO, len(records))
	for i, r := range records {
		dtos[i] = toPayrollRecordDTO(r)
	}
	return dtos
}

func toIssueDTOs(cfgErr *payroll.ConfigError) []IssueDTO {
	issues := make([]IssueDTO, len(cfgErr.Issues))
	for i, is := range cfgErr.Issues {
		issues[i] = IssueDTO{
			ComponentID: string(is.ComponentID),
			Field:       is.Field,
			Message:     is.Err.Error(),
		}
	}
	return issues
}
