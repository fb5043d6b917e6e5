// Package apperrors holds the client-facing failures raised by the bookstore
// workflows. Callers match them with errors.As.
package apperrors

import "fmt"

// EmptyFieldError reports a required field that is missing or blank.
type EmptyFieldError struct {
	Field string
}

func (e *EmptyFieldError) Error() string {
	return fmt.Sprintf("Field: %s is empty", e.Field)
}

// UnexpectedFieldError reports a field the client must not send, such as an
// id on a creation request.
type UnexpectedFieldError struct {
	Field string
}

func (e *UnexpectedFieldError) Error() string {
	return fmt.Sprintf("Field: %s must not be set", e.Field)
}

// InvalidDoubleRangeError reports a numeric field outside its inclusive bounds.
// Bound is "minimum" or "maximum" and Limit is the value of that bound.
type InvalidDoubleRangeError struct {
	Field string
	Bound string
	Limit float64
	Value float64
}

func (e *InvalidDoubleRangeError) Error() string {
	return fmt.Sprintf("Field: %s value %g violates %s %g", e.Field, e.Value, e.Bound, e.Limit)
}

type EntityNotFoundError struct {
	Entity string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("Entity: %s was not found", e.Entity)
}

type DuplicateObjectError struct {
	Entity string
}

func (e *DuplicateObjectError) Error() string {
	return fmt.Sprintf("Object: %s already exists", e.Entity)
}

func EmptyField(field string) error { return &EmptyFieldError{Field: field} }

func UnexpectedField(field string) error { return &UnexpectedFieldError{Field: field} }

func EntityNotFound(entity string) error { return &EntityNotFoundError{Entity: entity} }

func DuplicateObject(entity string) error { return &DuplicateObjectError{Entity: entity} }
