package main

import (
	"errors"
	"fmt"
)

// InvalidInputError marks a malformed field on a single record. It is scoped
// to that record and never aborts a batch.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidInput(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// errScoringTimeout is raised when sentiment scoring exceeds its per-record
// time budget. Treated like invalid input: the record fails, the batch lives.
var errScoringTimeout = errors.New("sentiment scoring timed out")

// StoreError wraps a record-store failure. Fatal for the current run:
// no scoring without source data, no silent partial persistence.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("record store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
