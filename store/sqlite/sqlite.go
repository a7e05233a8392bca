/*
Package sqlite provides a SQLite-backed implementation of the payroll stores.

PURPOSE:
  Implements payroll.AdminStore (employees, default components, engine
  inputs, payroll history) on SQLite. The same SQL runs on PostgreSQL with
  minor dialect changes.

KEY TABLES:
  employees:          CTC and optional custom component set (JSON)
  salary_components:  Organisation default set, one row per component
  attendance:         One row per employee and day
  leave_requests:     Leave requests by ID
  loans:              Employee loans by ID
  variable_payments:  One-off earnings and deductions per period
  declarations:       Investment declarations per financial year
  payroll_records:    One row per employee, year and month

MONEY:
  Decimals are stored as TEXT to keep full precision. Breakdown maps are
  stored as JSON objects whose values are decimal strings.

ATOMIC REPLACE:
  ReplaceDefaultComponents deletes and re-inserts the whole set inside one
  database transaction. Readers see the old set or the new set, never a mix.

RE-RUNS:
  payroll_records has a UNIQUE (employee_id, year, month) key and saves use
  ON CONFLICT DO UPDATE, so re-running a month overwrites it.

WAL MODE:
  File databases are opened with WAL. ":memory:" databases are limited to
  one connection, since every new connection would get its own empty
  database.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc, err := payroll.NewService(store)

SEE ALSO:
  - payroll/store.go: Interface definitions
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

const dateLayout = time.DateOnly

// Store implements payroll.AdminStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ payroll.AdminStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.Contains(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		annual_ctc TEXT NOT NULL,
		components_json TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS salary_components (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		component_type TEXT NOT NULL,
		calculation_type TEXT NOT NULL,
		value TEXT NOT NULL,
		sort_order INTEGER NOT NULL,
		editable INTEGER NOT NULL DEFAULT 1,
		is_basic_anchor INTEGER NOT NULL DEFAULT 0,
		role TEXT
	);

	CREATE TABLE IF NOT EXISTS attendance (
		employee_id TEXT NOT NULL,
		day TEXT NOT NULL,
		status TEXT NOT NULL,
		PRIMARY KEY (employee_id, day)
	);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee
		ON leave_requests(employee_id);

	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		loan_amount TEXT NOT NULL,
		emi TEXT NOT NULL,
		start_date TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_loans_employee
		ON loans(employee_id);

	CREATE TABLE IF NOT EXISTS variable_payments (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		description TEXT NOT NULL,
		payment_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_variable_payments_period
		ON variable_payments(employee_id, year, month);

	CREATE TABLE IF NOT EXISTS declarations (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		financial_year TEXT NOT NULL,
		section TEXT,
		amount TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_declarations_employee_year
		ON declarations(employee_id, financial_year);

	CREATE TABLE IF NOT EXISTS payroll_records (
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		basic TEXT NOT NULL,
		hra TEXT NOT NULL,
		special_allowance TEXT NOT NULL,
		pf TEXT NOT NULL,
		professional_tax TEXT NOT NULL,
		income_tax TEXT NOT NULL,
		gross_earnings TEXT NOT NULL,
		total_deductions TEXT NOT NULL,
		net_salary TEXT NOT NULL,
		paid_days TEXT NOT NULL,
		total_days INTEGER NOT NULL,
		pro_rata_gross TEXT NOT NULL,
		annual_taxable_income TEXT NOT NULL,
		loan_deduction TEXT NOT NULL,
		attendance_json TEXT NOT NULL,
		leave_json TEXT NOT NULL,
		breakdown_json TEXT NOT NULL,
		variable_json TEXT NOT NULL,
		computed_at TEXT NOT NULL,
		UNIQUE (employee_id, year, month)
	);

	CREATE INDEX IF NOT EXISTS idx_payroll_records_period
		ON payroll_records(year, month);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

// SaveEmployee upserts an employee. A non-empty custom component set must
// pass payroll.ValidateComponentSet.
func (s *Store) SaveEmployee(ctx context.Context, emp payroll.Employee) error {
	if emp.ID == "" {
		return payroll.ErrMissingID
	}
	var componentsJSON sql.NullString
	if len(emp.Components) > 0 {
		if err := payroll.ValidateComponentSet(emp.Components); err != nil {
			return err
		}
		b, err := json.Marshal(toComponentRows(emp.Components))
		if err != nil {
			return fmt.Errorf("encode components: %w", err)
		}
		componentsJSON = sql.NullString{String: string(b), Valid: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO employees (id, name, email, annual_ctc, components_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			annual_ctc = excluded.annual_ctc,
			components_json = excluded.components_json,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		string(emp.ID), emp.Name, nullString(emp.Email),
		emp.AnnualCTC.String(), componentsJSON, now, now,
	)
	return err
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id payroll.EmployeeID) (payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, annual_ctc, components_json FROM employees WHERE id = ?",
		string(id),
	)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Employee{}, payroll.ErrEmployeeNotFound
	}
	return emp, err
}

// ListEmployees returns all employees ordered by ID.
func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, annual_ctc, components_json FROM employees ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []payroll.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (payroll.Employee, error) {
	var id, name, ctc string
	var email, componentsJSON sql.NullString
	if err := row.Scan(&id, &name, &email, &ctc, &componentsJSON); err != nil {
		return payroll.Employee{}, err
	}
	emp := payroll.Employee{
		ID:        payroll.EmployeeID(id),
		Name:      name,
		Email:     email.String,
		AnnualCTC: parseDecimal(ctc),
	}
	if componentsJSON.Valid && componentsJSON.String != "" {
		var rows []componentRow
		if err := json.Unmarshal([]byte(componentsJSON.String), &rows); err != nil {
			return payroll.Employee{}, fmt.Errorf("decode components for %s: %w", id, err)
		}
		emp.Components = fromComponentRows(rows)
	}
	return emp, nil
}

// =============================================================================
// COMPONENT STORE
// =============================================================================

// DefaultComponents returns the organisation set ordered by sort order.
func (s *Store) DefaultComponents(ctx context.Context) ([]payroll.SalaryComponent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, component_type, calculation_type, value, sort_order, editable, is_basic_anchor, role
		FROM salary_components
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var components []payroll.SalaryComponent
	for rows.Next() {
		var r componentRow
		var role sql.NullString
		if err := rows.Scan(&r.ID, &r.Name, &r.Type, &r.CalculationType, &r.Value, &r.Order, &r.Editable, &r.IsBasicAnchor, &role); err != nil {
			return nil, err
		}
		r.Role = role.String
		components = append(components, r.toComponent())
	}
	return components, rows.Err()
}

// ReplaceDefaultComponents validates the set and swaps it in one
// transaction.
func (s *Store) ReplaceDefaultComponents(ctx context.Context, components []payroll.SalaryComponent) error {
	if err := payroll.ValidateComponentSet(components); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM salary_components"); err != nil {
			return err
		}
		for _, c := range components {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO salary_components (id, name, component_type, calculation_type, value, sort_order, editable, is_basic_anchor, role)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				string(c.ID), c.Name, string(c.Type), string(c.CalculationType),
				c.Value.String(), c.Order, c.Editable, c.IsBasicAnchor, nullString(string(c.Role)),
			)
			if err != nil {
				return fmt.Errorf("insert component %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// withTx executes fn within a transaction. If fn returns an error the
// transaction is rolled back.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// =============================================================================
// INPUT SOURCE & WRITER
// =============================================================================

// SaveAttendance upserts the status for one employee and day.
func (s *Store) SaveAttendance(ctx context.Context, rec payroll.AttendanceRecord) error {
	if rec.EmployeeID == "" {
		return payroll.ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (employee_id, day, status)
		VALUES (?, ?, ?)
		ON CONFLICT(employee_id, day) DO UPDATE SET
			status = excluded.status
	`, string(rec.EmployeeID), payroll.Date(rec.Date).Format(dateLayout), string(rec.Status))
	return err
}

func (s *Store) AttendanceFor(ctx context.Context, id payroll.EmployeeID, year int, month time.Month) ([]payroll.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	period := payroll.MonthPeriod(year, month)
	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, day, status FROM attendance
		WHERE employee_id = ? AND day >= ? AND day <= ?
		ORDER BY day
	`, string(id), period.Start.Format(dateLayout), period.End.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []payroll.AttendanceRecord
	for rows.Next() {
		var empID, day, status string
		if err := rows.Scan(&empID, &day, &status); err != nil {
			return nil, err
		}
		result = append(result, payroll.AttendanceRecord{
			EmployeeID: payroll.EmployeeID(empID),
			Date:       parseDate(day),
			Status:     payroll.AttendanceStatus(status),
		})
	}
	return result, rows.Err()
}

func (s *Store) SaveLeaveRequest(ctx context.Context, req payroll.LeaveRequest) error {
	if req.ID == "" || req.EmployeeID == "" {
		return payroll.ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, status, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			leave_type = excluded.leave_type,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			status = excluded.status,
			reason = excluded.reason
	`,
		req.ID, string(req.EmployeeID), req.LeaveType,
		req.StartDate.Format(dateLayout), req.EndDate.Format(dateLayout),
		string(req.Status), nullString(req.Reason),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) LeaveRequestsFor(ctx context.Context, id payroll.EmployeeID) ([]payroll.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, leave_type, start_date, end_date, status, reason
		FROM leave_requests WHERE employee_id = ?
		ORDER BY start_date, id
	`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []payroll.LeaveRequest
	for rows.Next() {
		var r payroll.LeaveRequest
		var empID, start, end, status string
		var reason sql.NullString
		if err := rows.Scan(&r.ID, &empID, &r.LeaveType, &start, &end, &status, &reason); err != nil {
			return nil, err
		}
		r.EmployeeID = payroll.EmployeeID(empID)
		r.StartDate = parseDate(start)
		r.EndDate = parseDate(end)
		r.Status = payroll.LeaveStatus(status)
		r.Reason = reason.String
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *Store) SaveLoan(ctx context.Context, loan payroll.EmployeeLoan) error {
	if loan.ID == "" || loan.EmployeeID == "" {
		return payroll.ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO loans (id, employee_id, loan_amount, emi, start_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			loan_amount = excluded.loan_amount,
			emi = excluded.emi,
			start_date = excluded.start_date,
			status = excluded.status
	`,
		loan.ID, string(loan.EmployeeID), loan.LoanAmount.String(), loan.EMI.String(),
		loan.StartDate.Format(dateLayout), string(loan.Status),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// LoansFor returns loans in insertion order, which decides the active loan
// when an employee has more than one.
func (s *Store) LoansFor(ctx context.Context, id payroll.EmployeeID) ([]payroll.EmployeeLoan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, loan_amount, emi, start_date, status
		FROM loans WHERE employee_id = ?
		ORDER BY rowid
	`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []payroll.EmployeeLoan
	for rows.Next() {
		var l payroll.EmployeeLoan
		var empID, amount, emi, start, status string
		if err := rows.Scan(&l.ID, &empID, &amount, &emi, &start, &status); err != nil {
			return nil, err
		}
		l.EmployeeID = payroll.EmployeeID(empID)
		l.LoanAmount = parseDecimal(amount)
		l.EMI = parseDecimal(emi)
		l.StartDate = parseDate(start)
		l.Status = payroll.LoanStatus(status)
		result = append(result, l)
	}
	return result, rows.Err()
}

func (s *Store) SaveVariablePayment(ctx context.Context, p payroll.VariablePayment) error {
	if p.ID == "" || p.EmployeeID == "" {
		return payroll.ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO variable_payments (id, employee_id, year, month, description, payment_type, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			year = excluded.year,
			month = excluded.month,
			description = excluded.description,
			payment_type = excluded.payment_type,
			amount = excluded.amount
	`,
		p.ID, string(p.EmployeeID), p.Year, int(p.Month), p.Description,
		string(p.Type), p.Amount.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) VariablePaymentsFor(ctx context.Context, id payroll.EmployeeID, year int, month time.Month) ([]payroll.VariablePayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, year, month, description, payment_type, amount
		FROM variable_payments WHERE employee_id = ? AND year = ? AND month = ?
		ORDER BY rowid
	`, string(id), year, int(month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []payroll.VariablePayment
	for rows.Next() {
		var p payroll.VariablePayment
		var empID, paymentType, amount string
		var m int
		if err := rows.Scan(&p.ID, &empID, &p.Year, &m, &p.Description, &paymentType, &amount); err != nil {
			return nil, err
		}
		p.EmployeeID = payroll.EmployeeID(empID)
		p.Month = time.Month(m)
		p.Type = payroll.ComponentType(paymentType)
		p.Amount = parseDecimal(amount)
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) SaveDeclaration(ctx context.Context, d payroll.InvestmentDeclaration) error {
	if d.ID == "" || d.EmployeeID == "" {
		return payroll.ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO declarations (id, employee_id, financial_year, section, amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			financial_year = excluded.financial_year,
			section = excluded.section,
			amount = excluded.amount,
			status = excluded.status
	`,
		d.ID, string(d.EmployeeID), d.FinancialYear, nullString(d.Section),
		d.Amount.String(), string(d.Status),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) DeclarationsFor(ctx context.Context, id payroll.EmployeeID, financialYear string) ([]payroll.InvestmentDeclaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, financial_year, section, amount, status
		FROM declarations WHERE employee_id = ? AND financial_year = ?
		ORDER BY rowid
	`, string(id), financialYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []payroll.InvestmentDeclaration
	for rows.Next() {
		var d payroll.InvestmentDeclaration
		var empID, amount, status string
		var section sql.NullString
		if err := rows.Scan(&d.ID, &empID, &d.FinancialYear, &section, &amount, &status); err != nil {
			return nil, err
		}
		d.EmployeeID = payroll.EmployeeID(empID)
		d.Section = section.String
		d.Amount = parseDecimal(amount)
		d.Status = payroll.DeclarationStatus(status)
		result = append(result, d)
	}
	return result, rows.Err()
}

// =============================================================================
// HISTORY STORE
// =============================================================================

// SavePayrollRecord upserts by (employee, year, month).
func (s *Store) SavePayrollRecord(ctx context.Context, rec payroll.PayrollRecord) error {
	attendanceJSON, err := json.Marshal(rec.Attendance)
	if err != nil {
		return err
	}
	leaveJSON, err := json.Marshal(nonNilMap(rec.Leave))
	if err != nil {
		return err
	}
	breakdownJSON, err := json.Marshal(nonNilMap(rec.ComponentBreakdown))
	if err != nil {
		return err
	}
	variableJSON, err := json.Marshal(nonNilMap(rec.VariablePayments))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO payroll_records (
			employee_id, year, month,
			basic, hra, special_allowance, pf, professional_tax, income_tax,
			gross_earnings, total_deductions, net_salary,
			paid_days, total_days, pro_rata_gross, annual_taxable_income, loan_deduction,
			attendance_json, leave_json, breakdown_json, variable_json, computed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, year, month) DO UPDATE SET
			basic = excluded.basic,
			hra = excluded.hra,
			special_allowance = excluded.special_allowance,
			pf = excluded.pf,
			professional_tax = excluded.professional_tax,
			income_tax = excluded.income_tax,
			gross_earnings = excluded.gross_earnings,
			total_deductions = excluded.total_deductions,
			net_salary = excluded.net_salary,
			paid_days = excluded.paid_days,
			total_days = excluded.total_days,
			pro_rata_gross = excluded.pro_rata_gross,
			annual_taxable_income = excluded.annual_taxable_income,
			loan_deduction = excluded.loan_deduction,
			attendance_json = excluded.attendance_json,
			leave_json = excluded.leave_json,
			breakdown_json = excluded.breakdown_json,
			variable_json = excluded.variable_json,
			computed_at = excluded.computed_at
	`,
		string(rec.EmployeeID), rec.Year, int(rec.Month),
		rec.Basic.String(), rec.HRA.String(), rec.SpecialAllowance.String(),
		rec.PF.String(), rec.ProfessionalTax.String(), rec.IncomeTax.String(),
		rec.GrossEarnings.String(), rec.TotalDeductions.String(), rec.NetSalary.String(),
		rec.PaidDays.String(), rec.TotalDaysInMonth, rec.ProRataGross.String(),
		rec.AnnualTaxableIncome.String(), rec.LoanDeduction.String(),
		string(attendanceJSON), string(leaveJSON), string(breakdownJSON), string(variableJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

const recordColumns = `
	employee_id, year, month,
	basic, hra, special_allowance, pf, professional_tax, income_tax,
	gross_earnings, total_deductions, net_salary,
	paid_days, total_days, pro_rata_gross, annual_taxable_income, loan_deduction,
	attendance_json, leave_json, breakdown_json, variable_json`

func (s *Store) GetPayrollRecord(ctx context.Context, id payroll.EmployeeID, year int, month time.Month) (payroll.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT"+recordColumns+" FROM payroll_records WHERE employee_id = ? AND year = ? AND month = ?",
		string(id), year, int(month),
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.PayrollRecord{}, payroll.ErrRecordNotFound
	}
	return rec, err
}

func (s *Store) ListPayrollRecords(ctx context.Context, year int, month time.Month) ([]payroll.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT"+recordColumns+" FROM payroll_records WHERE year = ? AND month = ? ORDER BY employee_id",
		year, int(month),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func scanRecord(row scanner) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	var empID string
	var month int
	var basic, hra, special, pf, pt, tax, gross, deductions, net string
	var paidDays, proRata, taxable, loan string
	var attendanceJSON, leaveJSON, breakdownJSON, variableJSON string

	err := row.Scan(
		&empID, &rec.Year, &month,
		&basic, &hra, &special, &pf, &pt, &tax,
		&gross, &deductions, &net,
		&paidDays, &rec.TotalDaysInMonth, &proRata, &taxable, &loan,
		&attendanceJSON, &leaveJSON, &breakdownJSON, &variableJSON,
	)
	if err != nil {
		return rec, err
	}

	rec.EmployeeID = payroll.EmployeeID(empID)
	rec.Month = time.Month(month)
	rec.Basic = parseDecimal(basic)
	rec.HRA = parseDecimal(hra)
	rec.SpecialAllowance = parseDecimal(special)
	rec.PF = parseDecimal(pf)
	rec.ProfessionalTax = parseDecimal(pt)
	rec.IncomeTax = parseDecimal(tax)
	rec.GrossEarnings = parseDecimal(gross)
	rec.TotalDeductions = parseDecimal(deductions)
	rec.NetSalary = parseDecimal(net)
	rec.PaidDays = parseDecimal(paidDays)
	rec.ProRataGross = parseDecimal(proRata)
	rec.AnnualTaxableIncome = parseDecimal(taxable)
	rec.LoanDeduction = parseDecimal(loan)

	if err := json.Unmarshal([]byte(attendanceJSON), &rec.Attendance); err != nil {
		return rec, fmt.Errorf("decode attendance: %w", err)
	}
	if err := json.Unmarshal([]byte(leaveJSON), &rec.Leave); err != nil {
		return rec, fmt.Errorf("decode leave: %w", err)
	}
	if err := json.Unmarshal([]byte(breakdownJSON), &rec.ComponentBreakdown); err != nil {
		return rec, fmt.Errorf("decode breakdown: %w", err)
	}
	if err := json.Unmarshal([]byte(variableJSON), &rec.VariablePayments); err != nil {
		return rec, fmt.Errorf("decode variable payments: %w", err)
	}
	return rec, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"payroll_records", "declarations", "variable_payments", "loans",
		"leave_requests", "attendance", "salary_components", "employees",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// componentRow is the stored form of a salary component.
type componentRow struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	CalculationType string          `json:"calculation_type"`
	Value           decimal.Decimal `json:"value"`
	Order           int             `json:"order"`
	Editable        bool            `json:"editable"`
	IsBasicAnchor   bool            `json:"is_basic_anchor"`
	Role            string          `json:"role,omitempty"`
}

func (r componentRow) toComponent() payroll.SalaryComponent {
	return payroll.SalaryComponent{
		ID:              payroll.ComponentID(r.ID),
		Name:            r.Name,
		Type:            payroll.ComponentType(r.Type),
		CalculationType: payroll.CalculationType(r.CalculationType),
		Value:           r.Value,
		Order:           r.Order,
		Editable:        r.Editable,
		IsBasicAnchor:   r.IsBasicAnchor,
		Role:            payroll.ComponentRole(r.Role),
	}
}

func toComponentRows(components []payroll.SalaryComponent) []componentRow {
	rows := make([]componentRow, len(components))
	for i, c := range components {
		rows[i] = componentRow{
			ID:              string(c.ID),
			Name:            c.Name,
			Type:            string(c.Type),
			CalculationType: string(c.CalculationType),
			Value:           c.Value,
			Order:           c.Order,
			Editable:        c.Editable,
			IsBasicAnchor:   c.IsBasicAnchor,
			Role:            string(c.Role),
		}
	}
	return rows
}

func fromComponentRows(rows []componentRow) []payroll.SalaryComponent {
	components := make([]payroll.SalaryComponent, len(rows))
	for i, r := range rows {
		components[i] = r.toComponent()
	}
	return components
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nonNilMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
