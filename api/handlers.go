/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the payroll service and stores.

ENDPOINTS:
  Employees:
    GET    /api/employees                        List all employees
    POST   /api/employees                        Create or replace employee
    GET    /api/employees/{id}                   Get employee details
    GET    /api/employees/{id}/payroll           Preview a month (not saved)

  Engine inputs:
    POST   /api/employees/{id}/attendance        Record one day
    POST   /api/employees/{id}/leave             Record a leave request
    POST   /api/employees/{id}/loans             Record a loan
    POST   /api/employees/{id}/variable-payments Record a one-off payment
    POST   /api/employees/{id}/declarations      Record an investment declaration

  Components:
    GET    /api/components                       Organisation default set
    PUT    /api/components                       Validated whole-set replace
    POST   /api/components/validate              Dry-run validation
    POST   /api/components/resolve               Resolve a monthly gross
    GET    /api/tax?income=                      Annual tax for an income

  Payroll:
    POST   /api/payroll/runs                     Run and save a month
    GET    /api/payroll/records?year=&month=     Saved records of a month
    GET    /api/payroll/records/{employeeID}/{year}/{month}
    GET    /api/payroll/records/{employeeID}/{year}/{month}/payslip.pdf
    GET    /api/payroll/export.csv?year=&month=  Payroll register

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (validator tags, then domain rules)
  3. Call the payroll service or store
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body, failed field validation, bad period
  - 404: Employee or payroll record not found
  - 422: Component set violates a structure rule (issue list in details)
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/report"
)

const dateLayout = time.DateOnly

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      payroll.AdminStore
	Service    *payroll.Service
	Components *factory.ComponentFactory

	// Defaults is the component set restored by resets and scenarios.
	// Empty means the standard preset.
	Defaults []payroll.SalaryComponent

	// Printed on payslips.
	Company  string
	Currency string

	logger   *slog.Logger
	validate *validator.Validate

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler over the store and the service that
// computes from it.
func NewHandler(store payroll.AdminStore, svc *payroll.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:      store,
		Service:    svc,
		Components: factory.NewComponentFactory(),
		Company:    "Warp",
		Currency:   "INR",
		logger:     logger,
		validate:   newValidator(),
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Declarations are matched against FinancialYearFor labels.
	_ = v.RegisterValidation("financial_year", func(fl validator.FieldLevel) bool {
		_, ok := payroll.ParseFinancialYear(fl.Field().String())
		return ok
	})
	return v
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(h.Components, e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), employeeID(r))
	if err != nil {
		writeServiceError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(h.Components, emp))
}

// CreateEmployee creates or replaces an employee. A custom component set
// must pass the same structure rules as the organisation default.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	emp := payroll.Employee{
		ID:        payroll.EmployeeID(req.ID),
		Name:      req.Name,
		Email:     req.Email,
		AnnualCTC: decimal.NewFromFloat(req.AnnualCTC),
	}
	if len(req.Components) > 0 {
		emp.Components = h.Components.Components(req.Components)
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeServiceError(w, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(h.Components, emp))
}

// PreviewPayroll computes one employee's month without saving it.
// GET /api/employees/{id}/payroll?year=&month=
func (h *Handler) PreviewPayroll(w http.ResponseWriter, r *http.Request) {
	year, month, err := queryPeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	rec, err := h.Service.Preview(r.Context(), employeeID(r), year, month)
	if err != nil {
		writeServiceError(w, "Failed to compute payroll", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayrollRecordDTO(rec))
}

// =============================================================================
// ENGINE INPUT HANDLERS
// =============================================================================

// AddAttendance records one day. A second record for the same day replaces
// the first.
// POST /api/employees/{id}/attendance
func (h *Handler) AddAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.existingEmployee(w, r)
	if !ok {
		return
	}
	var req AttendanceRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	date, _ := time.Parse(dateLayout, req.Date)

	rec := payroll.AttendanceRecord{EmployeeID: id, Date: date, Status: payroll.AttendanceStatus(req.Status)}
	if err := h.Store.SaveAttendance(r.Context(), rec); err != nil {
		writeServiceError(w, "Failed to save attendance", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"employee_id": id,
		"date":        req.Date,
		"status":      req.Status,
	})
}

// AddLeaveRequest records a leave request.
// POST /api/employees/{id}/leave
func (h *Handler) AddLeaveRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.existingEmployee(w, r)
	if !ok {
		return
	}
	var req LeaveRequestRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	start, _ := time.Parse(dateLayout, req.StartDate)
	end, _ := time.Parse(dateLayout, req.EndDate)
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date must not be before start_date", nil)
		return
	}

	leave := payroll.LeaveRequest{
		ID:         orNewID(req.ID),
		EmployeeID: id,
		LeaveType:  req.LeaveType,
		StartDate:  start,
		EndDate:    end,
		Status:     payroll.LeaveStatus(req.Status),
		Reason:     req.Reason,
	}
	if err := h.Store.SaveLeaveRequest(r.Context(), leave); err != nil {
		writeServiceError(w, "Failed to save leave request", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "created", "id": leave.ID})
}

// AddLoan records a loan. Only the first active loan is deducted.
// POST /api/employees/{id}/loans
func (h *Handler) AddLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := h.existingEmployee(w, r)
	if !ok {
		return
	}
	var req LoanRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	start, _ := time.Parse(dateLayout, req.StartDate)

	loan := payroll.EmployeeLoan{
		ID:         orNewID(req.ID),
		EmployeeID: id,
		LoanAmount: decimal.NewFromFloat(req.LoanAmount),
		EMI:        decimal.NewFromFloat(req.EMI),
		StartDate:  start,
		Status:     payroll.LoanStatus(req.Status),
	}
	if err := h.Store.SaveLoan(r.Context(), loan); err != nil {
		writeServiceError(w, "Failed to save loan", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "created", "id": loan.ID})
}

// AddVariablePayment records a one-off earning or deduction.
// POST /api/employees/{id}/variable-payments
func (h *Handler) AddVariablePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.existingEmployee(w, r)
	if !ok {
		return
	}
	var req VariablePaymentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	p := payroll.VariablePayment{
		ID:          orNewID(req.ID),
		EmployeeID:  id,
		Year:        req.Year,
		Month:       time.Month(req.Month),
		Description: req.Description,
		Type:        payroll.ComponentType(req.Type),
		Amount:      decimal.NewFromFloat(req.Amount),
	}
	if err := h.Store.SaveVariablePayment(r.Context(), p); err != nil {
		writeServiceError(w, "Failed to save variable payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "created", "id": p.ID, "key": p.Key()})
}

// AddDeclaration records an investment declaration.
// POST /api/employees/{id}/declarations
func (h *Handler) AddDeclaration(w http.ResponseWriter, r *http.Request) {
	id, ok := h.existingEmployee(w, r)
	if !ok {
		return
	}
	var req DeclarationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	d := payroll.InvestmentDeclaration{
		ID:            orNewID(req.ID),
		EmployeeID:    id,
		FinancialYear: req.FinancialYear,
		Section:       req.Section,
		Amount:        decimal.NewFromFloat(req.Amount),
		Status:        payroll.DeclarationStatus(req.Status),
	}
	if err := h.Store.SaveDeclaration(r.Context(), d); err != nil {
		writeServiceError(w, "Failed to save declaration", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "created", "id": d.ID})
}

// =============================================================================
// COMPONENT HANDLERS
// =============================================================================

// GetComponents returns the organisation default set.
func (h *Handler) GetComponents(w http.ResponseWriter, r *http.Request) {
	components, err := h.Store.DefaultComponents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load components", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Components.ToJSON("default", "Organisation default", components))
}

// ReplaceComponents swaps the whole default set. Runs already in progress
// keep the set they started with.
// PUT /api/components
func (h *Handler) ReplaceComponents(w http.ResponseWriter, r *http.Request) {
	var req factory.ComponentSetJSON
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	components := h.Components.Components(req.Components)
	if err := h.Store.ReplaceDefaultComponents(r.Context(), components); err != nil {
		writeServiceError(w, "Failed to replace components", err)
		return
	}
	h.logger.Info("default components replaced", "count", len(components))
	writeJSON(w, http.StatusOK, h.Components.ToJSON("default", "Organisation default", components))
}

// ValidateComponents checks a set without saving it. Always 200; the body
// says whether the set is valid.
// POST /api/components/validate
func (h *Handler) ValidateComponents(w http.ResponseWriter, r *http.Request) {
	var req factory.ComponentSetJSON
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	err := payroll.ValidateComponentSet(h.Components.Components(req.Components))
	var cfgErr *payroll.ConfigError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, ValidationDTO{Valid: true})
	case errors.As(err, &cfgErr):
		writeJSON(w, http.StatusOK, ValidationDTO{Valid: false, Issues: toIssueDTOs(cfgErr)})
	default:
		writeError(w, http.StatusInternalServerError, "Failed to validate components", err)
	}
}

// ResolveComponents resolves a monthly gross. Ad hoc component sets are not
// validated, so degenerate sets show their degenerate breakdown.
// POST /api/components/resolve
func (h *Handler) ResolveComponents(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	var components []payroll.SalaryComponent
	if len(req.Components) > 0 {
		components = h.Components.Components(req.Components)
	} else {
		var err error
		if components, err = h.Store.DefaultComponents(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load components", err)
			return
		}
	}

	gross := decimal.NewFromFloat(req.MonthlyGross)
	writeJSON(w, http.StatusOK, toBreakdownDTO(gross, payroll.Resolve(gross, components)))
}

// GetTax applies the engine's slab table to an annual taxable income.
// GET /api/tax?income=
func (h *Handler) GetTax(w http.ResponseWriter, r *http.Request) {
	income, err := decimal.NewFromString(r.URL.Query().Get("income"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "income must be a number", err)
		return
	}

	tax := h.Service.Engine().Slabs.AnnualTax(income)
	writeJSON(w, http.StatusOK, TaxDTO{
		Income:     money(income),
		AnnualTax:  money(tax),
		MonthlyTax: money(tax.Div(decimal.NewFromInt(12)).Round(2)),
	})
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// RunPayroll computes and saves a month for every employee. Per-employee
// failures are reported in the summary; the run itself still succeeds.
// POST /api/payroll/runs
func (h *Handler) RunPayroll(w http.ResponseWriter, r *http.Request) {
	var req RunPayrollRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	summary, err := h.Service.Run(r.Context(), req.Year, time.Month(req.Month))
	if err != nil {
		writeServiceError(w, "Failed to run payroll", err)
		return
	}

	dto := RunSummaryDTO{
		Year:            summary.Year,
		Month:           int(summary.Month),
		StartedAt:       summary.StartedAt.Format(time.RFC3339),
		FinishedAt:      summary.FinishedAt.Format(time.RFC3339),
		Processed:       summary.Processed(),
		Failed:          summary.Failed(),
		TotalGross:      money(summary.TotalGross),
		TotalDeductions: money(summary.TotalDeductions),
		TotalNet:        money(summary.TotalNet),
		Records:         toPayrollRecordDTOs(summary.Records),
		Failures:        make([]RunFailureDTO, len(summary.Failures)),
	}
	for i, f := range summary.Failures {
		dto.Failures[i] = RunFailureDTO{EmployeeID: string(f.EmployeeID), Error: f.Err.Error()}
	}
	writeJSON(w, http.StatusOK, dto)
}

// ListPayrollRecords returns the saved records of one month.
// GET /api/payroll/records?year=&month=
func (h *Handler) ListPayrollRecords(w http.ResponseWriter, r *http.Request) {
	year, month, err := queryPeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	records, err := h.Service.History(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, "Failed to list payroll records", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": toPayrollRecordDTOs(records)})
}

// GetPayrollRecord returns one saved record.
func (h *Handler) GetPayrollRecord(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.savedRecord(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPayrollRecordDTO(rec))
}

// GetPayslip renders a saved record as a PDF payslip.
func (h *Handler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.savedRecord(w, r)
	if !ok {
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), rec.EmployeeID)
	if err != nil {
		writeServiceError(w, "Failed to get employee", err)
		return
	}
	components := emp.Components
	if len(components) == 0 {
		if components, err = h.Store.DefaultComponents(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load components", err)
			return
		}
	}

	info := report.PayslipInfo{
		Company:      h.Company,
		EmployeeName: emp.Name,
		Email:        emp.Email,
		Currency:     h.Currency,
		Components:   components,
	}
	var buf bytes.Buffer
	if err := report.WritePayslipPDF(&buf, info, rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render payslip", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payslip-%s-%d-%02d.pdf"`, rec.EmployeeID, rec.Year, int(rec.Month)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ExportRegister writes the month's saved records as CSV.
// GET /api/payroll/export.csv?year=&month=
func (h *Handler) ExportRegister(w http.ResponseWriter, r *http.Request) {
	year, month, err := queryPeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	records, err := h.Service.History(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, "Failed to list payroll records", err)
		return
	}
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	names := make(map[payroll.EmployeeID]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}

	rows := make([]report.RegisterRow, len(records))
	for i, rec := range records {
		rows[i] = report.RegisterRow{EmployeeName: names[rec.EmployeeID], Record: rec}
	}
	var buf bytes.Buffer
	if err := report.WriteRegisterCSV(&buf, rows); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export register", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payroll-%d-%02d.csv"`, year, int(month)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps payroll errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, message string, err error) {
	var cfgErr *payroll.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: message, Details: toIssueDTOs(cfgErr)})
	case payroll.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case payroll.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

// decodeAndValidate decodes the JSON body into dst and runs its validator
// tags. On failure it writes a 400 and returns false.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fieldPath(fe)] = fieldMessage(fe)
			}
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: fields})
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// fieldPath drops the struct name from the namespace: "components[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "financial_year":
		return "must be a financial year like 2024-2025"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "email":
		return "must be a valid email address"
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

func employeeID(r *http.Request) payroll.EmployeeID {
	return payroll.EmployeeID(chi.URLParam(r, "id"))
}

// existingEmployee resolves {id} and writes a 404 when it is unknown, so
// inputs are never recorded against a missing employee.
func (h *Handler) existingEmployee(w http.ResponseWriter, r *http.Request) (payroll.EmployeeID, bool) {
	id := employeeID(r)
	if _, err := h.Store.GetEmployee(r.Context(), id); err != nil {
		writeServiceError(w, "Failed to get employee", err)
		return "", false
	}
	return id, true
}

func (h *Handler) savedRecord(w http.ResponseWriter, r *http.Request) (payroll.PayrollRecord, bool) {
	year, err1 := strconv.Atoi(chi.URLParam(r, "year"))
	month, err2 := strconv.Atoi(chi.URLParam(r, "month"))
	if err := errors.Join(err1, err2); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return payroll.PayrollRecord{}, false
	}

	id := payroll.EmployeeID(chi.URLParam(r, "employeeID"))
	rec, err := h.Service.Record(r.Context(), id, year, time.Month(month))
	if err != nil {
		writeServiceError(w, "Failed to get payroll record", err)
		return payroll.PayrollRecord{}, false
	}
	return rec, true
}

// queryPeriod reads ?year=&month=. Range checks are left to the service.
func queryPeriod(r *http.Request) (int, time.Month, error) {
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		return 0, 0, fmt.Errorf("year must be an integer")
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		return 0, 0, fmt.Errorf("month must be an integer")
	}
	return year, time.Month(month), nil
}

func orNewID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
