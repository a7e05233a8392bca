package payroll_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
)

func batchInputs(n int) []payroll.MonthlyInput {
	inputs := make([]payroll.MonthlyInput, n)
	for i := range inputs {
		emp := employee(fmt.Sprintf("emp-%03d", i), fmt.Sprintf("%d", 600000+i*12000))
		inputs[i] = monthInput(emp, 2024, time.April)
	}
	return inputs
}

func TestRunBatch_ResultsInInputOrder(t *testing.T) {
	// GIVEN: 50 employees and 8 workers
	inputs := batchInputs(50)

	// WHEN: Running the batch
	result := payroll.RunBatch(context.Background(), payroll.NewEngine(), inputs, 8)

	// THEN: Every record matches a sequential computation, in order
	require.Empty(t, result.Failures)
	require.Len(t, result.Records, 50)
	for i, rec := range result.Records {
		assert.Equal(t, inputs[i].Employee.ID, rec.EmployeeID)
		assert.Equal(t, payroll.ComputeMonthlyPayroll(inputs[i]), rec)
	}
}

func TestRunBatch_NilEngineAndZeroWorkers(t *testing.T) {
	result := payroll.RunBatch(context.Background(), nil, batchInputs(3), 0)
	assert.Len(t, result.Records, 3)
	assert.Empty(t, result.Failures)
}

func TestRunBatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := payroll.RunBatch(ctx, payroll.NewEngine(), batchInputs(5), 2)

	assert.Empty(t, result.Records)
	require.Len(t, result.Failures, 5)
	for _, f := range result.Failures {
		assert.ErrorIs(t, f.Err, context.Canceled)
	}
}
