/*
errors.go - Centralized error types for the payroll package

PURPOSE:
  The resolver and the engine are total and never return errors. Errors
  exist only at the boundaries: component set validation (configuration
  editors) and the Service, which loads inputs from stores.

ERROR CATEGORIES:
  1. Configuration errors - ConfigError, wraps the sentinel per rule
  2. Lookup errors - employee or payroll record not found
  3. Input errors - invalid payroll period

USAGE:
  if err := payroll.ValidateComponentSet(set); err != nil {
      if errors.Is(err, payroll.ErrNoBalanceComponent) { ... }
  }

SEE ALSO:
  - validate.go: Produces ConfigError
  - service.go: Produces lookup and input errors
*/
package payroll

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrEmptyComponentSet         = errors.New("component set is empty")
	ErrNoBalanceComponent        = errors.New("component set has no balance component")
	ErrMultipleBalanceComponents = errors.New("component set has more than one balance component")
	ErrBalanceNotEarning         = errors.New("balance component must be an earning")
	ErrMultipleBasicAnchors      = errors.New("component set has more than one basic anchor")
	ErrBasicPercentageOfBasic    = errors.New("basic anchor cannot be a percentage of basic")
	ErrBasicCalculationType      = errors.New("basic anchor must be a percentage of gross or a fixed amount")
	ErrBasicNotEarning           = errors.New("basic anchor must be an earning")
	ErrDuplicateComponentName    = errors.New("duplicate component name")
	ErrDuplicateComponentID      = errors.New("duplicate component id")
	ErrInvalidComponentType      = errors.New("invalid component type")
	ErrInvalidCalculationType    = errors.New("invalid calculation type")
	ErrNegativeValue             = errors.New("component value must not be negative")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRecordNotFound is returned when no payroll record exists for the period.
	ErrRecordNotFound = errors.New("payroll record not found")

	// ErrMissingID is returned when a saved record has no identifier.
	ErrMissingID = errors.New("record requires an id")

	// ErrInvalidPeriod is returned for a month outside 1..12 or a year below 1.
	ErrInvalidPeriod = errors.New("invalid payroll period")

	// ErrStoreRequired is returned when the Service is missing a store.
	ErrStoreRequired = errors.New("payroll service requires a store")

	// ErrComputationPanic wraps a panic recovered while computing one employee.
	ErrComputationPanic = errors.New("payroll computation panicked")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ConfigIssue is one violated rule in a component set.
type ConfigIssue struct {
	ComponentID ComponentID
	Field       string
	Err         error
}

func (i ConfigIssue) Error() string {
	if i.ComponentID == "" {
		return i.Err.Error()
	}
	return fmt.Sprintf("component %s: %s: %v", i.ComponentID, i.Field, i.Err)
}

// ConfigError lists every rule a component set violates.
type ConfigError struct {
	Issues []ConfigIssue
}

func (e *ConfigError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Error()
	}
	return "invalid component set: " + strings.Join(msgs, "; ")
}

// Unwrap exposes every issue's sentinel to errors.Is.
func (e *ConfigError) Unwrap() []error {
	errs := make([]error, len(e.Issues))
	for i, issue := range e.Issues {
		errs[i] = issue.Err
	}
	return errs
}

func (e *ConfigError) add(id ComponentID, field string, err error) {
	e.Issues = append(e.Issues, ConfigIssue{ComponentID: id, Field: field, Err: err})
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return IsConfigError(err) || errors.Is(err, ErrInvalidPeriod) || errors.Is(err, ErrMissingID)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) || errors.Is(err, ErrRecordNotFound)
}
