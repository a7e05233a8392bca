package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListScenarios(t *testing.T) {
	router := newTestRouter(t, newTestHandler(t), RouterOptions{})

	rec := do(t, router, http.MethodGet, "/api/scenarios", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]ScenarioDTO](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "standard-month", list[0].ID)
	assert.Equal(t, "2024-04", list[0].Period)
}

func TestLoadScenario_TracksCurrent(t *testing.T) {
	router := newTestRouter(t, newTestHandler(t), RouterOptions{})

	// GIVEN: Nothing loaded
	assert.Equal(t, "null", strings.TrimSpace(do(t, router, http.MethodGet, "/api/scenarios/current", nil).Body.String()))

	// WHEN: A scenario is loaded
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "standard-month"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: It is current and its employees exist
	current := decode[ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios/current", nil))
	assert.Equal(t, "standard-month", current.ID)
	employees := decode[[]EmployeeDTO](t, do(t, router, http.MethodGet, "/api/employees", nil))
	assert.Len(t, employees, 4)

	// AND: Reset clears data but keeps a usable default structure
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/scenarios/reset", nil).Code)
	assert.Empty(t, decode[[]EmployeeDTO](t, do(t, router, http.MethodGet, "/api/employees", nil)))
	assert.Equal(t, "null", strings.TrimSpace(do(t, router, http.MethodGet, "/api/scenarios/current", nil).Body.String()))
	rec = do(t, router, http.MethodGet, "/api/components", nil)
	assert.Contains(t, rec.Body.String(), "Special Allowance")
}

func TestLoadScenario_Unknown(t *testing.T) {
	router := newTestRouter(t, newTestHandler(t), RouterOptions{})

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "year-end"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadScenario_ReplacesPreviousData(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadScenario(ctx, "standard-month"))
	require.NoError(t, h.loadScenario(ctx, "custom-structure"))

	employees, err := h.Store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "emp-101", string(employees[0].ID))
}

func TestCustomStructureScenario(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()
	require.NoError(t, h.loadScenario(ctx, "custom-structure"))

	// WHEN: April is previewed for the employee on the custom set
	rec, err := h.Service.Preview(ctx, "emp-101", 2024, 4)
	require.NoError(t, err)

	// THEN: The custom components drive the breakdown
	assert.Equal(t, "150000", rec.GrossEarnings.String())
	assert.Equal(t, "75000", rec.Basic.String())
	assert.Equal(t, "30000", rec.HRA.String())
	assert.Equal(t, "42500", rec.SpecialAllowance.String())
	assert.Equal(t, "2500", rec.ComponentBreakdown["Leave Travel Allowance"].String())
	assert.Equal(t, "1800", rec.PF.String())
	assert.Equal(t, "18690", rec.IncomeTax.String())
	assert.Equal(t, "20690", rec.TotalDeductions.String())
	assert.Equal(t, "129310", rec.NetSalary.String())

	// AND: The other employee still uses the organisation default
	other, err := h.Service.Preview(ctx, "emp-102", 2024, 4)
	require.NoError(t, err)
	assert.Contains(t, other.ComponentBreakdown, "Professional Tax")
	assert.NotContains(t, other.ComponentBreakdown, "Leave Travel Allowance")
}
