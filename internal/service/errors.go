package service

import "fmt"

// ServiceError wraps a failure from a service operation with the operation
// name. Unwrap preserves the underlying sentinel so callers can keep using
// errors.Is against store and domain errors.
type ServiceError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// opErr wraps err with the operation name, passing nil through.
func opErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Op: op, Err: err}
}
