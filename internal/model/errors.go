package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for model validation.
var (
	// ErrMissingField indicates a required key is absent.
	ErrMissingField = errors.New("required field missing")
	// ErrMissingPreconditions indicates a scenario has no preconditions key.
	ErrMissingPreconditions = errors.New("preconditions are not defined")
	// ErrMissingResults indicates an action has no results or an empty result list.
	ErrMissingResults = errors.New("results are not defined")
	// ErrEmptyValue indicates a required text value is blank.
	ErrEmptyValue = errors.New("value must not be empty")
	// ErrInvalidType indicates a value has the wrong shape, e.g. a mapping where text was expected.
	ErrInvalidType = errors.New("unexpected value type")
	// ErrNoScenarioSets indicates a catalog references no scenario sets.
	ErrNoScenarioSets = errors.New("catalog has no scenario sets")
	// ErrNoScenarios indicates a scenario set defines no scenarios.
	ErrNoScenarios = errors.New("scenario set has no scenarios")
	// ErrNoActions indicates a scenario defines no actions.
	ErrNoActions = errors.New("scenario has no actions")
)

// Category classifies a validation error for programmatic handling.
type Category string

const (
	// CatMissingField indicates a required key is absent or a collection is empty.
	CatMissingField Category = "missing_field"
	// CatMissingPreconditions indicates a scenario lacks its preconditions key.
	CatMissingPreconditions Category = "missing_preconditions"
	// CatMissingResults indicates an action lacks results.
	CatMissingResults Category = "missing_results"
	// CatEmptyValue indicates a required text value is blank.
	CatEmptyValue Category = "empty_value"
	// CatType indicates a value of the wrong shape.
	CatType Category = "type"
)

// ValidationError records a structural problem with its location. Scenario
// is the title of the enclosing scenario when there is one.
type ValidationError struct {
	Category Category // Machine-readable category
	File     string
	Scenario string
	Field    string
	Err      error
}

// Error returns a message naming the file, scenario and field at fault.
func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	if e.Scenario != "" {
		fmt.Fprintf(&b, "scenario %q: ", e.Scenario)
	}
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
