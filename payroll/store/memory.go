// Package store provides in-memory payroll store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements payroll.AdminStore. Every read returns copies so a
// running computation never observes a later write.
type Memory struct {
	mu           sync.RWMutex
	employees    map[payroll.EmployeeID]payroll.Employee
	defaults     []payroll.SalaryComponent
	attendance   map[attendanceKey]payroll.AttendanceRecord
	leave        map[payroll.EmployeeID][]payroll.LeaveRequest
	loans        map[payroll.EmployeeID][]payroll.EmployeeLoan
	variable     map[payroll.EmployeeID][]payroll.VariablePayment
	declarations map[payroll.EmployeeID][]payroll.InvestmentDeclaration
	records      map[recordKey]payroll.PayrollRecord
}

type attendanceKey struct {
	EmployeeID payroll.EmployeeID
	Day        string
}

type recordKey struct {
	EmployeeID payroll.EmployeeID
	Year       int
	Month      time.Month
}

var _ payroll.AdminStore = (*Memory)(nil)

func NewMemory() *Memory {
	m := &Memory{}
	m.resetLocked()
	return m
}

func (m *Memory) resetLocked() {
	m.employees = make(map[payroll.EmployeeID]payroll.Employee)
	m.defaults = nil
	m.attendance = make(map[attendanceKey]payroll.AttendanceRecord)
	m.leave = make(map[payroll.EmployeeID][]payroll.LeaveRequest)
	m.loans = make(map[payroll.EmployeeID][]payroll.EmployeeLoan)
	m.variable = make(map[payroll.EmployeeID][]payroll.VariablePayment)
	m.declarations = make(map[payroll.EmployeeID][]payroll.InvestmentDeclaration)
	m.records = make(map[recordKey]payroll.PayrollRecord)
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return nil
}

// =============================================================================
// EMPLOYEES & COMPONENTS
// =============================================================================

func (m *Memory) ListEmployees(_ context.Context) ([]payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]payroll.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) GetEmployee(_ context.Context, id payroll.EmployeeID) (payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[id]
	if !ok {
		return payroll.Employee{}, payroll.ErrEmployeeNotFound
	}
	return e.Clone(), nil
}

func (m *Memory) SaveEmployee(_ context.Context, emp payroll.Employee) error {
	if emp.ID == "" {
		return payroll.ErrMissingID
	}
	if len(emp.Components) > 0 {
		if err := payroll.ValidateComponentSet(emp.Components); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp.Clone()
	return nil
}

func (m *Memory) DefaultComponents(_ context.Context) ([]payroll.SalaryComponent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return payroll.CloneComponents(m.defaults), nil
}

// ReplaceDefaultComponents swaps the whole set. Invalid sets are rejected
// and the current set is kept.
func (m *Memory) ReplaceDefaultComponents(_ context.Context, components []payroll.SalaryComponent) error {
	if err := payroll.ValidateComponentSet(components); err != nil {
		return err
	}
	next := payroll.CloneComponents(components)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaults = next
	return nil
}

// =============================================================================
// INPUTS
// =============================================================================

func (m *Memory) SaveAttendance(_ context.Context, rec payroll.AttendanceRecord) error {
	if rec.EmployeeID == "" {
		return payroll.ErrMissingID
	}
	rec.Date = payroll.Date(rec.Date)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.attendance[attendanceKey{EmployeeID: rec.EmployeeID, Day: rec.Date.Format(time.DateOnly)}] = rec
	return nil
}

func (m *Memory) AttendanceFor(_ context.Context, id payroll.EmployeeID, year int, month time.Month) ([]payroll.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	period := payroll.MonthPeriod(year, month)
	var result []payroll.AttendanceRecord
	for k, rec := range m.attendance {
		if k.EmployeeID == id && period.Contains(rec.Date) {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *Memory) SaveLeaveRequest(_ context.Context, req payroll.LeaveRequest) error {
	if req.ID == "" || req.EmployeeID == "" {
		return payroll.ErrMissingID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leave[req.EmployeeID] = upsert(m.leave[req.EmployeeID], req, func(r payroll.LeaveRequest) string { return r.ID })
	return nil
}

func (m *Memory) LeaveRequestsFor(_ context.Context, id payroll.EmployeeID) ([]payroll.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.leave[id]), nil
}

func (m *Memory) SaveLoan(_ context.Context, loan payroll.EmployeeLoan) error {
	if loan.ID == "" || loan.EmployeeID == "" {
		return payroll.ErrMissingID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[loan.EmployeeID] = upsert(m.loans[loan.EmployeeID], loan, func(l payroll.EmployeeLoan) string { return l.ID })
	return nil
}

func (m *Memory) LoansFor(_ context.Context, id payroll.EmployeeID) ([]payroll.EmployeeLoan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.loans[id]), nil
}

func (m *Memory) SaveVariablePayment(_ context.Context, p payroll.VariablePayment) error {
	if p.ID == "" || p.EmployeeID == "" {
		return payroll.ErrMissingID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.variable[p.EmployeeID] = upsert(m.variable[p.EmployeeID], p, func(v payroll.VariablePayment) string { return v.ID })
	return nil
}

func (m *Memory) VariablePaymentsFor(_ context.Context, id payroll.EmployeeID, year int, month time.Month) ([]payroll.VariablePayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []payroll.VariablePayment
	for _, p := range m.variable[id] {
		if p.Year == year && p.Month == month {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *Memory) SaveDeclaration(_ context.Context, d payroll.InvestmentDeclaration) error {
	if d.ID == "" || d.EmployeeID == "" {
		return payroll.ErrMissingID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.declarations[d.EmployeeID] = upsert(m.declarations[d.EmployeeID], d, func(x payroll.InvestmentDeclaration) string { return x.ID })
	return nil
}

func (m *Memory) DeclarationsFor(_ context.Context, id payroll.EmployeeID, financialYear string) ([]payroll.InvestmentDeclaration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []payroll.InvestmentDeclaration
	for _, d := range m.declarations[id] {
		if d.FinancialYear == financialYear {
			result = append(result, d)
		}
	}
	return result, nil
}

// =============================================================================
// HISTORY
// =============================================================================

func (m *Memory) SavePayrollRecord(_ context.Context, rec payroll.PayrollRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[recordKey{EmployeeID: rec.EmployeeID, Year: rec.Year, Month: rec.Month}] = rec.Clone()
	return nil
}

func (m *Memory) GetPayrollRecord(_ context.Context, id payroll.EmployeeID, year int, month time.Month) (payroll.PayrollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[recordKey{EmployeeID: id, Year: year, Month: month}]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (m *Memory) ListPayrollRecords(_ context.Context, year int, month time.Month) ([]payroll.PayrollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []payroll.PayrollRecord
	for k, rec := range m.records {
		if k.Year == year && k.Month == month {
			result = append(result, rec.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeID < result[j].EmployeeID })
	return result, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func upsert[T any](items []T, item T, id func(T) string) []T {
	for i := range items {
		if id(items[i]) == id(item) {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func clone[T any](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
