/*
service.go - Payroll orchestration over the stores

PURPOSE:
  Loads the inputs the engine needs, runs it for one employee (Preview) or
  the whole organisation (Run), and persists the results.

RUN SEMANTICS:
  - The default component set is read once when a run starts. A concurrent
    ReplaceDefaultComponents affects the next run, never this one.
  - Employees are independent. A load error or a panic for one employee is
    reported in RunSummary.Failures and the others still complete.
  - Records are upserted, so re-running a month overwrites it.

SEE ALSO:
  - engine.go: The per-employee computation
  - batch.go: Parallel execution
  - store.go: Interfaces this service consumes
*/
package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultWorkers = 4

type Service struct {
	store   Store
	engine  *Engine
	workers int
	logger  *slog.Logger
	now     func() time.Time
}

type ServiceOption func(*Service)

func WithEngine(e *Engine) ServiceOption {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

func WithWorkers(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	s := &Service{
		store:   store,
		engine:  NewEngine(),
		workers: DefaultWorkers,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) Engine() *Engine { return s.engine }

// RunSummary reports the outcome of a monthly run.
type RunSummary struct {
	Year       int
	Month      time.Month
	StartedAt  time.Time
	FinishedAt time.Time

	Records  []PayrollRecord
	Failures []BatchFailure

	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
}

func (r RunSummary) Processed() int { return len(r.Records) }
func (r RunSummary) Failed() int    { return len(r.Failures) }

// =============================================================================
// OPERATIONS
// =============================================================================

// Preview computes one employee's month without persisting it.
func (s *Service) Preview(ctx context.Context, id EmployeeID, year int, month time.Month) (PayrollRecord, error) {
	if !ValidPeriod(year, month) {
		return PayrollRecord{}, fmt.Errorf("%w: %d-%02d", ErrInvalidPeriod, year, int(month))
	}
	emp, err := s.store.GetEmployee(ctx, id)
	if err != nil {
		return PayrollRecord{}, err
	}
	defaults, err := s.store.DefaultComponents(ctx)
	if err != nil {
		return PayrollRecord{}, fmt.Errorf("load default components: %w", err)
	}
	in, err := s.loadInput(ctx, emp, year, month, defaults)
	if err != nil {
		return PayrollRecord{}, err
	}
	return s.engine.ComputeMonthlyPayroll(in), nil
}

// Run computes and persists the month for every employee.
func (s *Service) Run(ctx context.Context, year int, month time.Month) (RunSummary, error) {
	if !ValidPeriod(year, month) {
		return RunSummary{}, fmt.Errorf("%w: %d-%02d", ErrInvalidPeriod, year, int(month))
	}
	summary := RunSummary{
		Year:            year,
		Month:           month,
		StartedAt:       s.now(),
		TotalGross:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
	}

	defaults, err := s.store.DefaultComponents(ctx)
	if err != nil {
		return summary, fmt.Errorf("load default components: %w", err)
	}
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return summary, fmt.Errorf("list employees: %w", err)
	}

	s.logger.Info("payroll run started", "year", year, "month", int(month), "employees", len(employees))

	inputs := make([]MonthlyInput, 0, len(employees))
	for _, emp := range employees {
		in, err := s.loadInput(ctx, emp, year, month, defaults)
		if err != nil {
			s.logger.Warn("payroll input load failed", "employeeId", emp.ID, "err", err)
			summary.Failures = append(summary.Failures, BatchFailure{EmployeeID: emp.ID, Err: err})
			continue
		}
		inputs = append(inputs, in)
	}

	result := RunBatch(ctx, s.engine, inputs, s.workers)
	for _, f := range result.Failures {
		s.logger.Warn("payroll computation failed", "employeeId", f.EmployeeID, "err", f.Err)
	}
	summary.Failures = append(summary.Failures, result.Failures...)

	for _, rec := range result.Records {
		if err := s.store.SavePayrollRecord(ctx, rec); err != nil {
			s.logger.Warn("payroll record save failed", "employeeId", rec.EmployeeID, "err", err)
			summary.Failures = append(summary.Failures, BatchFailure{EmployeeID: rec.EmployeeID, Err: err})
			continue
		}
		summary.Records = append(summary.Records, rec)
		summary.TotalGross = summary.TotalGross.Add(rec.GrossEarnings)
		summary.TotalDeductions = summary.TotalDeductions.Add(rec.TotalDeductions)
		summary.TotalNet = summary.TotalNet.Add(rec.NetSalary)
	}
	summary.FinishedAt = s.now()

	s.logger.Info("payroll run finished",
		"year", year,
		"month", int(month),
		"processed", summary.Processed(),
		"failed", summary.Failed(),
		"totalNet", summary.TotalNet.String(),
		"duration", summary.FinishedAt.Sub(summary.StartedAt),
	)
	return summary, nil
}

func (s *Service) History(ctx context.Context, year int, month time.Month) ([]PayrollRecord, error) {
	if !ValidPeriod(year, month) {
		return nil, fmt.Errorf("%w: %d-%02d", ErrInvalidPeriod, year, int(month))
	}
	return s.store.ListPayrollRecords(ctx, year, month)
}

func (s *Service) Record(ctx context.Context, id EmployeeID, year int, month time.Month) (PayrollRecord, error) {
	if !ValidPeriod(year, month) {
		return PayrollRecord{}, fmt.Errorf("%w: %d-%02d", ErrInvalidPeriod, year, int(month))
	}
	return s.store.GetPayrollRecord(ctx, id, year, month)
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Service) loadInput(ctx context.Context, emp Employee, year int, month time.Month, defaults []SalaryComponent) (MonthlyInput, error) {
	in := MonthlyInput{
		Employee:           emp,
		Year:               year,
		Month:              month,
		FallbackComponents: defaults,
	}
	var err error
	if in.Attendance, err = s.store.AttendanceFor(ctx, emp.ID, year, month); err != nil {
		return in, fmt.Errorf("load attendance for %s: %w", emp.ID, err)
	}
	if in.LeaveRequests, err = s.store.LeaveRequestsFor(ctx, emp.ID); err != nil {
		return in, fmt.Errorf("load leave requests for %s: %w", emp.ID, err)
	}
	if in.Loans, err = s.store.LoansFor(ctx, emp.ID); err != nil {
		return in, fmt.Errorf("load loans for %s: %w", emp.ID, err)
	}
	if in.VariablePayments, err = s.store.VariablePaymentsFor(ctx, emp.ID, year, month); err != nil {
		return in, fmt.Errorf("load variable payments for %s: %w", emp.ID, err)
	}
	if in.Declarations, err = s.store.DeclarationsFor(ctx, emp.ID, FinancialYearFor(year, month)); err != nil {
		return in, fmt.Errorf("load declarations for %s: %w", emp.ID, err)
	}
	return in, nil
}
