package model

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput marks input that does not match its table schema:
	// missing columns, unparseable dates, non-numeric periods or measurements.
	ErrMalformedInput = errors.New("malformed input")

	// ErrDuplicateKey is returned when a settlement key occurs more than once
	// in a table that must be unique on its key.
	ErrDuplicateKey = errors.New("duplicate settlement key")

	ErrInvalidConfig = errors.New("invalid config")
)

// InputError locates a malformed value in a source file.
// It matches ErrMalformedInput with errors.Is.
type InputError struct {
	Path   string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *InputError) Error() string {
	msg := e.Path
	if e.Line > 0 {
		msg = fmt.Sprintf("%s:%d", msg, e.Line)
	}
	if e.Column != "" {
		msg = fmt.Sprintf("%s: column %s", msg, e.Column)
	}
	if e.Value != "" {
		msg = fmt.Sprintf("%s: value %q", msg, e.Value)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedInput, msg)
}

func (e *InputError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedInput}
	}
	return []error{ErrMalformedInput, e.Err}
}

// DuplicateKeyError names the table and key that violated uniqueness.
type DuplicateKeyError struct {
	Table string
	Key   SettlementKey
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: table %s has key %s more than once", ErrDuplicateKey, e.Table, e.Key)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }
