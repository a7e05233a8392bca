/*
scheduler.go - Automated monthly payroll scheduler

PURPOSE:
  Periodically checks whether last month's payroll is due and, if so, runs
  it through the payroll service so records exist without a manual trigger.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - A month is due once today's day of month reaches RunDay
  - Skips a month that already has saved records (manual runs count)
  - Remembers the last month it ran, so an organisation with no employees
    is not re-run on every tick

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - RunDay: Day of month from which last month is due (default: 1)
  - Enabled: Whether scheduler is active (default: false)

USAGE:
  scheduler := NewPayrollScheduler(svc, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunPayroll endpoint (manual run)
  - payroll/service.go: Run
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// PayrollScheduler runs the previous month's payroll once per month.
type PayrollScheduler struct {
	Service       *payroll.Service
	CheckInterval time.Duration
	RunDay        int
	Enabled       bool

	logger *slog.Logger
	now    func() time.Time

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun string
}

// NewPayrollScheduler creates a disabled scheduler with default settings.
func NewPayrollScheduler(svc *payroll.Service, logger *slog.Logger) *PayrollScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollScheduler{
		Service:       svc,
		CheckInterval: 1 * time.Hour,
		RunDay:        1,
		logger:        logger.With("component", "scheduler"),
		now:           time.Now,
	}
}

// Start begins the scheduler.
func (ps *PayrollScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.Enabled {
		ps.logger.Info("scheduler disabled, not starting")
		return
	}
	if ps.ticker != nil {
		return
	}

	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.stop = make(chan struct{})
	ps.wg.Add(1)
	go ps.run(ps.ticker.C, ps.stop)

	ps.logger.Info("scheduler started", "interval", ps.CheckInterval, "runDay", ps.RunDay, "nextCheck", ps.NextRunTime())
}

// Stop stops the scheduler and waits for an in-flight check to finish.
func (ps *PayrollScheduler) Stop() {
	ps.mu.Lock()
	if ps.ticker == nil {
		ps.mu.Unlock()
		return
	}
	ps.ticker.Stop()
	close(ps.stop)
	ps.ticker = nil
	ps.mu.Unlock()

	ps.wg.Wait()
	ps.logger.Info("scheduler stopped")
}

func (ps *PayrollScheduler) run(tick <-chan time.Time, stop <-chan struct{}) {
	defer ps.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stop
		cancel()
	}()

	// Run immediately on start
	ps.RunNow(ctx)

	for {
		select {
		case <-tick:
			ps.RunNow(ctx)
		case <-stop:
			return
		}
	}
}

// RunNow checks immediately and runs last month if it is due. It reports
// whether a run happened.
func (ps *PayrollScheduler) RunNow(ctx context.Context) (bool, error) {
	year, month, due := ps.dueMonth()
	if !due {
		return false, nil
	}
	key := payroll.MonthPeriod(year, month).Start.Format("2006-01")

	ps.mu.Lock()
	done := ps.lastRun == key
	ps.mu.Unlock()
	if done {
		return false, nil
	}

	existing, err := ps.Service.History(ctx, year, month)
	if err != nil {
		ps.logger.Error("checking payroll history failed", "period", key, "err", err)
		return false, err
	}
	if len(existing) > 0 {
		ps.markRun(key)
		return false, nil
	}

	summary, err := ps.Service.Run(ctx, year, month)
	if err != nil {
		ps.logger.Error("scheduled payroll run failed", "period", key, "err", err)
		return false, err
	}
	ps.markRun(key)
	ps.logger.Info("scheduled payroll run completed", "period", key, "processed", summary.Processed(), "failed", summary.Failed())
	return true, nil
}

// NextRunTime returns when the next scheduled check will occur.
func (ps *PayrollScheduler) NextRunTime() time.Time {
	return ps.now().Add(ps.CheckInterval)
}

// dueMonth returns the month before today and whether RunDay has passed.
func (ps *PayrollScheduler) dueMonth() (int, time.Month, bool) {
	today := ps.now().UTC()
	prev := payroll.StartOfMonth(today.Year(), today.Month()).AddDate(0, -1, 0)
	return prev.Year(), prev.Month(), today.Day() >= ps.RunDay
}

func (ps *PayrollScheduler) markRun(key string) {
	ps.mu.Lock()
	ps.lastRun = key
	ps.mu.Unlock()
}
