package payroll

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// =============================================================================
// BATCH - Monthly run across many employees
// =============================================================================

// BatchFailure records why one employee has no record in a batch.
type BatchFailure struct {
	EmployeeID EmployeeID
	Err        error
}

// BatchResult holds the successful records in input order and one failure
// per employee that could not be computed.
type BatchResult struct {
	Records  []PayrollRecord
	Failures []BatchFailure
}

// RunBatch computes every input with at most workers goroutines. Each
// employee is independent: a panic in one is recovered and reported as a
// failure while the rest continue. Once ctx is done no new employees are
// scheduled and the unscheduled ones fail with ctx.Err().
func RunBatch(ctx context.Context, engine *Engine, inputs []MonthlyInput, workers int) BatchResult {
	if engine == nil {
		engine = defaultEngine
	}
	if workers < 1 {
		workers = 1
	}

	records := make([]PayrollRecord, len(inputs))
	errs := make([]error, len(inputs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range inputs {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(inputs); j++ {
				errs[j] = err
			}
			break
		}
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			records[i], errs[i] = computeRecovered(engine, inputs[i])
			return nil
		})
	}
	_ = g.Wait()

	var result BatchResult
	for i, in := range inputs {
		if errs[i] != nil {
			result.Failures = append(result.Failures, BatchFailure{EmployeeID: in.Employee.ID, Err: errs[i]})
			continue
		}
		result.Records = append(result.Records, records[i])
	}
	return result
}

func computeRecovered(engine *Engine, in MonthlyInput) (rec PayrollRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: employee %s: %v", ErrComputationPanic, in.Employee.ID, r)
		}
	}()
	return engine.ComputeMonthlyPayroll(in), nil
}
