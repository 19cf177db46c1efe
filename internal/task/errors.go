package task

import (
	"errors"
	"strings"
)

// Sentinel errors for task file validation.
var (
	// ErrNoVariables indicates the task declares no state variables.
	ErrNoVariables = errors.New("task: no variables declared")
	// ErrNoGoals indicates the task declares no goal facts.
	ErrNoGoals = errors.New("task: no goals declared")
	// ErrMissingField indicates a required field is empty.
	ErrMissingField = errors.New("task: required field missing")
	// ErrDuplicateVariable indicates two variables share a name.
	ErrDuplicateVariable = errors.New("task: duplicate variable name")
	// ErrUnknownVariable indicates a reference to an undeclared variable.
	ErrUnknownVariable = errors.New("task: unknown variable")
	// ErrInvalidDomain indicates a variable domain smaller than one.
	ErrInvalidDomain = errors.New("task: domain must be at least 1")
	// ErrSelfDependency indicates a variable lists itself in depends_on.
	ErrSelfDependency = errors.New("task: variable depends on itself")
	// ErrValueOutOfRange indicates a goal value outside the variable domain.
	ErrValueOutOfRange = errors.New("task: goal value out of range")
	// ErrDuplicateGoal indicates two goal facts on the same variable.
	ErrDuplicateGoal = errors.New("task: duplicate goal variable")
)

// ValidationError records a single problem in a task file.
type ValidationError struct {
	Field string // dotted path of the offending field, e.g. "variables[2].domain"
	Err   error
}

// Error returns the field path followed by the underlying error.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// InvalidError aggregates every validation problem found in a task file.
type InvalidError struct {
	Source string
	Errors []ValidationError
}

// Error lists all validation problems, one per line.
func (e *InvalidError) Error() string {
	var b strings.Builder
	b.WriteString("invalid task")
	if e.Source != "" {
		b.WriteString(" " + e.Source)
	}
	b.WriteString(":")
	for i := range e.Errors {
		b.WriteString("\n  ")
		b.WriteString(e.Errors[i].Error())
	}
	return b.String()
}

// Unwrap exposes the individual validation errors to errors.Is/As.
func (e *InvalidError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i := range e.Errors {
		errs[i] = &e.Errors[i]
	}
	return errs
}
