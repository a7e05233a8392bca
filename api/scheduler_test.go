package api

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, now time.Time) (*PayrollScheduler, *Handler) {
	t.Helper()
	h := newTestHandler(t)
	require.NoError(t, h.loadScenario(context.Background(), "custom-structure"))

	ps := NewPayrollScheduler(h.Service, discardLogger())
	ps.now = func() time.Time { return now }
	return ps, h
}

func TestScheduler_RunsPreviousMonthOnce(t *testing.T) {
	// GIVEN: It is 3 May 2024 and April was never run
	ps, h := newTestScheduler(t, time.Date(2024, time.May, 3, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// WHEN: The scheduler checks
	ran, err := ps.RunNow(ctx)

	// THEN: April is run and saved
	require.NoError(t, err)
	assert.True(t, ran)
	records, err := h.Service.History(ctx, 2024, time.April)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// AND: A second check does nothing
	ran, err = ps.RunNow(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestScheduler_WaitsForRunDay(t *testing.T) {
	ps, h := newTestScheduler(t, time.Date(2024, time.May, 3, 9, 0, 0, 0, time.UTC))
	ps.RunDay = 5

	ran, err := ps.RunNow(context.Background())

	require.NoError(t, err)
	assert.False(t, ran)
	records, err := h.Service.History(context.Background(), 2024, time.April)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestScheduler_SkipsMonthAlreadyRun(t *testing.T) {
	ps, h := newTestScheduler(t, time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// GIVEN: April was run manually
	_, err := h.Service.Run(ctx, 2024, time.April)
	require.NoError(t, err)

	ran, err := ps.RunNow(ctx)

	require.NoError(t, err)
	assert.False(t, ran)
}

func TestScheduler_JanuaryRunsDecember(t *testing.T) {
	ps, h := newTestScheduler(t, time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC))

	ran, err := ps.RunNow(context.Background())

	require.NoError(t, err)
	assert.True(t, ran)
	records, err := h.Service.History(context.Background(), 2024, time.December)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestScheduler_StartStop(t *testing.T) {
	ps, h := newTestScheduler(t, time.Date(2024, time.May, 3, 9, 0, 0, 0, time.UTC))

	// Disabled: Start is a no-op and Stop is safe
	ps.Start()
	ps.Stop()

	ps.Enabled = true
	ps.Start()
	assert.Eventually(t, func() bool {
		records, err := h.Service.History(context.Background(), 2024, time.April)
		return err == nil && len(records) == 2
	}, 2*time.Second, 10*time.Millisecond)
	ps.Stop()
}

func TestScheduler_StartLogsNextCheck(t *testing.T) {
	h := newTestHandler(t)
	var buf bytes.Buffer
	ps := NewPayrollScheduler(h.Service, slog.New(slog.NewTextHandler(&buf, nil)))
	ps.now = func() time.Time { return time.Date(2024, time.May, 3, 9, 0, 0, 0, time.UTC) }
	ps.Enabled = true
	ps.CheckInterval = time.Hour

	assert.Equal(t, time.Date(2024, time.May, 3, 10, 0, 0, 0, time.UTC), ps.NextRunTime())

	ps.Start()
	ps.Stop()

	assert.Contains(t, buf.String(), "scheduler started")
	assert.Contains(t, buf.String(), "nextCheck=2024-05-03T10:00:00")
}
