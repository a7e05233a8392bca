/*
store.go - Persistence interfaces consumed by the payroll Service

PURPOSE:
  The engine is pure; the Service gathers its inputs through these
  interfaces and persists the results. Implementations own their data and
  must return copies, so a computation never observes a concurrent edit.

KEY INTERFACES:
  EmployeeDirectory: Employees with CTC and optional custom component set
  ComponentStore:    Organisation default component set (whole-set replace)
  InputSource:       Attendance, leave, loans, variable pay, declarations
  HistoryStore:      Computed payroll records, one per employee and month
  InputWriter:       Writes used by the API and demo scenarios

IMPLEMENTATIONS:
  - payroll/store/memory.go: In-memory for tests and demos
  - store/sqlite/sqlite.go: SQLite

SEE ALSO:
  - service.go: The consumer of these interfaces
*/
package payroll

import (
	"context"
	"time"
)

// Store is everything the Service needs.
type Store interface {
	EmployeeDirectory
	ComponentStore
	InputSource
	HistoryStore
}

type EmployeeDirectory interface {
	ListEmployees(ctx context.Context) ([]Employee, error)

	// GetEmployee returns ErrEmployeeNotFound for unknown IDs.
	GetEmployee(ctx context.Context, id EmployeeID) (Employee, error)
}

type ComponentStore interface {
	DefaultComponents(ctx context.Context) ([]SalaryComponent, error)

	// ReplaceDefaultComponents validates and swaps the whole set atomically.
	// A set that fails ValidateComponentSet leaves the stored set unchanged.
	ReplaceDefaultComponents(ctx context.Context, components []SalaryComponent) error
}

type InputSource interface {
	AttendanceFor(ctx context.Context, id EmployeeID, year int, month time.Month) ([]AttendanceRecord, error)
	LeaveRequestsFor(ctx context.Context, id EmployeeID) ([]LeaveRequest, error)
	LoansFor(ctx context.Context, id EmployeeID) ([]EmployeeLoan, error)
	VariablePaymentsFor(ctx context.Context, id EmployeeID, year int, month time.Month) ([]VariablePayment, error)
	DeclarationsFor(ctx context.Context, id EmployeeID, financialYear string) ([]InvestmentDeclaration, error)
}

type HistoryStore interface {
	// SavePayrollRecord upserts by (employee, year, month). Re-running a
	// month overwrites the earlier record.
	SavePayrollRecord(ctx context.Context, rec PayrollRecord) error

	// GetPayrollRecord returns ErrRecordNotFound when the month was never run.
	GetPayrollRecord(ctx context.Context, id EmployeeID, year int, month time.Month) (PayrollRecord, error)

	// ListPayrollRecords returns the month's records ordered by employee ID.
	ListPayrollRecords(ctx context.Context, year int, month time.Month) ([]PayrollRecord, error)
}

// InputWriter records engine inputs. Saves are upserts keyed by ID (by
// employee and day for attendance). Empty IDs on leave, loans, variable
// payments and declarations are rejected.
type InputWriter interface {
	// SaveEmployee validates a non-empty custom component set first.
	SaveEmployee(ctx context.Context, emp Employee) error
	SaveAttendance(ctx context.Context, rec AttendanceRecord) error
	SaveLeaveRequest(ctx context.Context, req LeaveRequest) error
	SaveLoan(ctx context.Context, loan EmployeeLoan) error
	SaveVariablePayment(ctx context.Context, p VariablePayment) error
	SaveDeclaration(ctx context.Context, d InvestmentDeclaration) error

	// Reset drops all data, including the default component set.
	Reset(ctx context.Context) error
}

// AdminStore is a Store that also accepts writes.
type AdminStore interface {
	Store
	InputWriter
}
