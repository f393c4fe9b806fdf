package domain

import (
	"errors"
	"fmt"
)

// FieldError reports a single failing field of a request payload.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// ValidationError carries every failing field of one request so the
// caller sees them all in a single response.
type ValidationError struct {
	Fields []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error"
	}
	return fmt.Sprintf("%s: %s", e.Fields[0].Field, e.Fields[0].Msg)
}

// Invalid builds a single-field ValidationError.
func Invalid(field, msg string) ValidationError {
	return ValidationError{Fields: []FieldError{{Field: field, Msg: msg}}}
}

type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

type ConflictError struct {
	Msg string
}

func (e ConflictError) Error() string {
	if e.Msg == "" {
		return "conflict"
	}
	return e.Msg
}

// RequestError is a plain bad-request rejection that is neither a field
// validation failure nor a uniqueness conflict (wrong password
// confirmation, already-active account, self-targeting an admin action).
type RequestError struct {
	Msg string
}

func (e RequestError) Error() string {
	if e.Msg == "" {
		return "bad request"
	}
	return e.Msg
}

type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg == "" {
		return "could not validate credentials"
	}
	return e.Msg
}

type ForbiddenError struct {
	Msg string
}

func (e ForbiddenError) Error() string {
	if e.Msg == "" {
		return "forbidden"
	}
	return e.Msg
}

// InvalidTransitionError rejects a departure status change that is not in
// the transition table for the current status.
type InvalidTransitionError struct {
	From DepartureStatus
	To   DepartureStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition departure from %s to %s", e.From, e.To)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsRequest(err error) bool {
	var target RequestError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsInvalidTransition(err error) bool {
	var target InvalidTransitionError
	return errors.As(err, &target)
}
