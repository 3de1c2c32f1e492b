package main

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrBadRequest      = errors.New("bad request")
)

// store level, translated by the services
var (
	errNoRecord  = errors.New("record not found")
	errDuplicate = errors.New("duplicate key")
)

// appError carries the message shown to the caller and the kind used to pick the status.
type appError struct {
	kind error
	msg  string
}

func (e *appError) Error() string { return e.msg }
func (e *appError) Unwrap() error { return e.kind }

func notFound(resource string) error {
	return &appError{kind: ErrNotFound, msg: resource + " not found"}
}

func forbidden(action, resource string) error {
	return &appError{kind: ErrForbidden, msg: "Not authorized to " + action + " this " + strings.ToLower(resource)}
}

func unauthenticated(msg string) error {
	return &appError{kind: ErrUnauthenticated, msg: msg}
}

func badRequest(msg string) error {
	return &appError{kind: ErrBadRequest, msg: msg}
}

type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

// FieldErrors is the validation failure list returned before anything is persisted.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	var b strings.Builder
	for i, fe := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(fe.Field + ": " + fe.Msg)
	}
	return b.String()
}

func (e *FieldErrors) add(field, msg string) {
	*e = append(*e, FieldError{Field: field, Msg: msg})
}

func (e FieldErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
