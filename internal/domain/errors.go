package domain

import "errors"

var (
	// ErrEmptyInput is returned when there are no commits or no results to work on.
	ErrEmptyInput = errors.New("empty input")
	// ErrSchemaMismatch is returned when two tables do not share the same columns.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrContractViolation is returned when the repair tool's output breaks its contract,
	// e.g. more than one repair summary for a single-rule invocation.
	ErrContractViolation = errors.New("repair tool contract violation")
)
