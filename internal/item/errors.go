package item

import (
	"errors"
	"strings"
)

var ErrNameRequired = errors.New("name is required")

// FieldError describes one rejected input location, e.g. ["body", "name"].
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError is returned when a write-shape fails type or required
// field checks. Nothing has been persisted when it is returned.
type ValidationError struct {
	Errors []FieldError
	Err    error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, strings.Join(fe.Loc, ".")+": "+fe.Msg)
	}
	if len(parts) == 0 && e.Err != nil {
		return e.Err.Error()
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(err error, loc []string, msg, typ string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Loc: loc, Msg: msg, Type: typ}},
		Err:    err,
	}
}

// PersistenceError wraps any failure raised while a Store session was open.
// Its message is the message of the underlying cause.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
