package payroll_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T, st payroll.Store) *payroll.Service {
	t.Helper()
	svc, err := payroll.NewService(st,
		payroll.WithWorkers(3),
		payroll.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return svc
}

func seededMemory(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.ReplaceDefaultComponents(ctx, simpleSet()))

	for _, emp := range []payroll.Employee{employee("emp-1", "1200000"), employee("emp-2", "600000")} {
		require.NoError(t, m.SaveEmployee(ctx, emp))
		for _, rec := range fullMonth(emp.ID, 2024, time.April, payroll.Present) {
			require.NoError(t, m.SaveAttendance(ctx, rec))
		}
	}
	return m
}

// failingLoans fails to load loans for one employee.
type failingLoans struct {
	*store.Memory
	bad payroll.EmployeeID
}

func (f failingLoans) LoansFor(ctx context.Context, id payroll.EmployeeID) ([]payroll.EmployeeLoan, error) {
	if id == f.bad {
		return nil, errors.New("loan ledger unavailable")
	}
	return f.Memory.LoansFor(ctx, id)
}

// swapDuringRun replaces the default set after the run has read it.
type swapDuringRun struct {
	*store.Memory
	next []payroll.SalaryComponent
}

func (s swapDuringRun) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	if err := s.Memory.ReplaceDefaultComponents(ctx, s.next); err != nil {
		return nil, err
	}
	return s.Memory.ListEmployees(ctx)
}

// =============================================================================
// SERVICE TESTS
// =============================================================================

func TestNewService_RequiresStore(t *testing.T) {
	_, err := payroll.NewService(nil)
	assert.ErrorIs(t, err, payroll.ErrStoreRequired)
}

func TestService_Preview(t *testing.T) {
	svc := newTestService(t, seededMemory(t))
	ctx := context.Background()

	rec, err := svc.Preview(ctx, "emp-1", 2024, time.April)
	require.NoError(t, err)
	assertDecimal(t, "100000", rec.GrossEarnings)

	// Preview does not persist
	_, err = svc.Record(ctx, "emp-1", 2024, time.April)
	assert.ErrorIs(t, err, payroll.ErrRecordNotFound)
}

func TestService_PreviewErrors(t *testing.T) {
	svc := newTestService(t, seededMemory(t))
	ctx := context.Background()

	_, err := svc.Preview(ctx, "nobody", 2024, time.April)
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)
	assert.True(t, payroll.IsNotFound(err))

	_, err = svc.Preview(ctx, "emp-1", 2024, 13)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
	assert.True(t, payroll.IsClientError(err))
}

func TestService_RunPersistsAndSummarizes(t *testing.T) {
	// GIVEN: Two employees with a full April
	m := seededMemory(t)
	svc := newTestService(t, m)
	ctx := context.Background()

	// WHEN: Running April
	summary, err := svc.Run(ctx, 2024, time.April)

	// THEN: Both records are saved and totals add up
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed())
	assert.Equal(t, 0, summary.Failed())
	assertDecimal(t, "150000", summary.TotalGross)
	assert.True(t, summary.TotalNet.Equal(summary.TotalGross.Sub(summary.TotalDeductions)))

	history, err := svc.History(ctx, 2024, time.April)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, payroll.EmployeeID("emp-1"), history[0].EmployeeID)
	assert.Equal(t, payroll.EmployeeID("emp-2"), history[1].EmployeeID)
}

func TestService_RerunOverwrites(t *testing.T) {
	m := seededMemory(t)
	svc := newTestService(t, m)
	ctx := context.Background()

	_, err := svc.Run(ctx, 2024, time.April)
	require.NoError(t, err)

	// GIVEN: A bonus added after the first run
	require.NoError(t, m.SaveVariablePayment(ctx, payroll.VariablePayment{
		ID: "v1", EmployeeID: "emp-1", Year: 2024, Month: time.April,
		Description: "Spot Award", Type: payroll.Earning, Amount: dec("5000"),
	}))

	// WHEN: Re-running the same month
	_, err = svc.Run(ctx, 2024, time.April)
	require.NoError(t, err)

	// THEN: One record per employee, reflecting the bonus
	history, err := svc.History(ctx, 2024, time.April)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	rec, err := svc.Record(ctx, "emp-1", 2024, time.April)
	require.NoError(t, err)
	assertDecimal(t, "105000", rec.GrossEarnings)
}

func TestService_RunIsolatesLoadFailures(t *testing.T) {
	// GIVEN: Loans cannot be loaded for emp-1
	svc := newTestService(t, failingLoans{Memory: seededMemory(t), bad: "emp-1"})

	// WHEN: Running April
	summary, err := svc.Run(context.Background(), 2024, time.April)

	// THEN: emp-2 still gets paid
	require.NoError(t, err)
	require.Len(t, summary.Records, 1)
	assert.Equal(t, payroll.EmployeeID("emp-2"), summary.Records[0].EmployeeID)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, payroll.EmployeeID("emp-1"), summary.Failures[0].EmployeeID)
	assert.Contains(t, summary.Failures[0].Err.Error(), "loan ledger unavailable")
}

func TestService_RunUsesComponentSnapshot(t *testing.T) {
	// GIVEN: The default set is replaced after the run has started
	basic := earning("basic", "Basic", payroll.PercentageOfGross, "80", 1)
	basic.IsBasicAnchor = true
	next := []payroll.SalaryComponent{
		basic,
		earning("special", "Special Allowance", payroll.BalanceComponent, "0", 2),
	}
	m := seededMemory(t)
	svc := newTestService(t, swapDuringRun{Memory: m, next: next})
	ctx := context.Background()

	// WHEN: Running April
	summary, err := svc.Run(ctx, 2024, time.April)
	require.NoError(t, err)

	// THEN: This run used the old set (Basic 40%), the store holds the new one
	for _, rec := range summary.Records {
		assert.True(t, rec.Basic.Equal(rec.GrossEarnings.Mul(dec("0.4"))), "employee %s", rec.EmployeeID)
	}
	current, err := m.DefaultComponents(ctx)
	require.NoError(t, err)
	assert.Len(t, current, 2)
}

func TestService_RunRejectsInvalidPeriod(t *testing.T) {
	svc := newTestService(t, seededMemory(t))
	_, err := svc.Run(context.Background(), 0, time.April)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}
