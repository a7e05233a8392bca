/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for demos. Each scenario creates employees, a default salary
	structure and one month of engine inputs, ready for a payroll run.

AVAILABLE SCENARIOS:

	standard-month:   Four employees on the standard structure: full month
	                  with declarations, half month, active loan, festival bonus
	custom-structure: One employee with a custom structure next to one on
	                  the organisation default

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Seed the default component set
 3. Create employees
 4. Add attendance, leave, loans, variable payments, declarations

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "standard-month"}

	POST /api/payroll/runs
	{"year": 2024, "month": 4}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description, period
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to loadScenario

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Endpoints that read the loaded data
  - factory/presets.go: Component set definitions
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
)

// Scenario data covers April 2024, the first month of FY 2024-2025.
const (
	scenarioYear  = 2024
	scenarioMonth = time.April
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "standard-month",
		Name:        "Standard Month",
		Description: "Standard structure: full month with declarations, half month, loan EMI, festival bonus",
		Period:      "2024-04",
	},
	{
		ID:          "custom-structure",
		Name:        "Custom Structure",
		Description: "Employee-specific component set alongside the organisation default",
		Period:      "2024-04",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.loadScenario(r.Context(), req.ScenarioID); err != nil {
		if errors.Is(err, errUnknownScenario) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data and re-seeds the default component set.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := h.seedDefaults(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed components", err)
		return
	}
	h.setCurrentScenario("")

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

var errUnknownScenario = errors.New("unknown scenario")

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	var load func(context.Context) error
	switch id {
	case "standard-month":
		load = h.loadStandardMonthScenario
	case "custom-structure":
		load = h.loadCustomStructureScenario
	default:
		return errUnknownScenario
	}

	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	h.setCurrentScenario("")
	if err := h.seedDefaults(ctx); err != nil {
		return fmt.Errorf("seed components: %w", err)
	}
	if err := load(ctx); err != nil {
		return err
	}
	h.setCurrentScenario(id)
	h.logger.Info("scenario loaded", "scenario", id)
	return nil
}

func (h *Handler) setCurrentScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

// seedDefaults installs Defaults, or the standard preset when unset.
func (h *Handler) seedDefaults(ctx context.Context) error {
	components := h.Defaults
	if len(components) == 0 {
		var err error
		if components, err = h.Components.ParseJSON(factory.StandardIndiaJSON()); err != nil {
			return err
		}
	}
	return h.Store.ReplaceDefaultComponents(ctx, payroll.CloneComponents(components))
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadStandardMonthScenario(ctx context.Context) error {
	employees := []payroll.Employee{
		{ID: "emp-001", Name: "Asha Rao", Email: "asha.rao@example.com", AnnualCTC: decimal.NewFromInt(1200000)},
		{ID: "emp-002", Name: "Ravi Kumar", Email: "ravi.kumar@example.com", AnnualCTC: decimal.NewFromInt(1200000)},
		{ID: "emp-003", Name: "Meera Nair", Email: "meera.nair@example.com", AnnualCTC: decimal.NewFromInt(900000)},
		{ID: "emp-004", Name: "Karan Shah", Email: "karan.shah@example.com", AnnualCTC: decimal.NewFromInt(600000)},
	}
	for _, e := range employees {
		if err := h.Store.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}

	// emp-001: full month with two days of approved annual leave and an
	// approved 80C declaration.
	leaveStart := payroll.NewDate(scenarioYear, scenarioMonth, 15)
	leaveEnd := payroll.NewDate(scenarioYear, scenarioMonth, 16)
	if err := h.fillMonth(ctx, "emp-001", func(day time.Time) payroll.AttendanceStatus {
		if !day.Before(leaveStart) && !day.After(leaveEnd) {
			return payroll.OnLeave
		}
		return payroll.Present
	}); err != nil {
		return err
	}
	if err := h.Store.SaveLeaveRequest(ctx, payroll.LeaveRequest{
		ID:         "leave-001",
		EmployeeID: "emp-001",
		LeaveType:  "Annual",
		StartDate:  leaveStart,
		EndDate:    leaveEnd,
		Status:     payroll.LeaveApproved,
		Reason:     "Family visit",
	}); err != nil {
		return err
	}
	if err := h.Store.SaveDeclaration(ctx, payroll.InvestmentDeclaration{
		ID:            "decl-001",
		EmployeeID:    "emp-001",
		FinancialYear: payroll.FinancialYearFor(scenarioYear, scenarioMonth),
		Section:       "80C",
		Amount:        decimal.NewFromInt(150000),
		Status:        payroll.DeclarationApproved,
	}); err != nil {
		return err
	}

	// emp-002: worked the first half of the month only.
	if err := h.fillMonth(ctx, "emp-002", func(day time.Time) payroll.AttendanceStatus {
		if day.Day() > 15 {
			return payroll.Absent
		}
		return payroll.Present
	}); err != nil {
		return err
	}

	// emp-003: active loan since January.
	if err := h.fillMonth(ctx, "emp-003", presentAll); err != nil {
		return err
	}
	if err := h.Store.SaveLoan(ctx, payroll.EmployeeLoan{
		ID:         "loan-001",
		EmployeeID: "emp-003",
		LoanAmount: decimal.NewFromInt(100000),
		EMI:        decimal.NewFromInt(5000),
		StartDate:  payroll.NewDate(2024, time.January, 1),
		Status:     payroll.LoanActive,
	}); err != nil {
		return err
	}

	// emp-004: festival bonus this month.
	if err := h.fillMonth(ctx, "emp-004", presentAll); err != nil {
		return err
	}
	return h.Store.SaveVariablePayment(ctx, payroll.VariablePayment{
		ID:          "var-001",
		EmployeeID:  "emp-004",
		Year:        scenarioYear,
		Month:       scenarioMonth,
		Description: "Festival Bonus",
		Type:        payroll.Earning,
		Amount:      decimal.NewFromInt(10000),
	})
}

// customStructureJSON is a structure with a higher Basic, a fixed LTA and a
// fixed PF contribution.
const customStructureJSON = `{
  "id": "senior-engineer",
  "name": "Senior Engineer",
  "components": [
    {"id": "c-basic", "name": "Basic", "type": "earning", "calculation_type": "percentage_of_gross", "value": 50, "order": 1, "is_basic_anchor": true, "role": "basic"},
    {"id": "c-hra", "name": "HRA", "type": "earning", "calculation_type": "percentage_of_basic", "value": 40, "order": 2, "role": "hra"},
    {"id": "c-lta", "name": "Leave Travel Allowance", "type": "earning", "calculation_type": "fixed_amount", "value": 2500, "order": 3},
    {"id": "c-special", "name": "Special Allowance", "type": "earning", "calculation_type": "balance_component", "value": 0, "order": 4, "role": "special_allowance"},
    {"id": "c-pf", "name": "PF", "type": "deduction", "calculation_type": "fixed_amount", "value": 1800, "order": 5, "role": "pf"},
    {"id": "c-pt", "name": "Professional Tax", "type": "deduction", "calculation_type": "fixed_amount", "value": 200, "order": 6, "role": "professional_tax"},
    {"id": "c-tds", "name": "Income Tax", "type": "deduction", "calculation_type": "fixed_amount", "value": 0, "order": 7, "editable": false, "role": "income_tax"}
  ]
}`

func (h *Handler) loadCustomStructureScenario(ctx context.Context) error {
	custom, err := h.Components.ParseJSON(customStructureJSON)
	if err != nil {
		return fmt.Errorf("custom structure: %w", err)
	}

	employees := []payroll.Employee{
		{ID: "emp-101", Name: "Priya Menon", Email: "priya.menon@example.com", AnnualCTC: decimal.NewFromInt(1800000), Components: custom},
		{ID: "emp-102", Name: "Arjun Das", Email: "arjun.das@example.com", AnnualCTC: decimal.NewFromInt(1200000)},
	}
	for _, e := range employees {
		if err := h.Store.SaveEmployee(ctx, e); err != nil {
			return err
		}
		if err := h.fillMonth(ctx, e.ID, presentAll); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func presentAll(time.Time) payroll.AttendanceStatus { return payroll.Present }

// fillMonth records one attendance entry per day of the scenario month.
// Weekends are week-offs unless the status function marks them absent.
func (h *Handler) fillMonth(ctx context.Context, id payroll.EmployeeID, status func(day time.Time) payroll.AttendanceStatus) error {
	days := payroll.DaysInMonth(scenarioYear, scenarioMonth)
	for d := 1; d <= days; d++ {
		day := payroll.NewDate(scenarioYear, scenarioMonth, d)
		s := status(day)
		if s == payroll.Present && (day.Weekday() == time.Saturday || day.Weekday() == time.Sunday) {
			s = payroll.WeekOff
		}
		rec := payroll.AttendanceRecord{EmployeeID: id, Date: day, Status: s}
		if err := h.Store.SaveAttendance(ctx, rec); err != nil {
			return fmt.Errorf("attendance for %s on %s: %w", id, day.Format(dateLayout), err)
		}
	}
	return nil
}
