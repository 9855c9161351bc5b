package store

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a record with the given id does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ReferenceError reports a foreign-key field pointing at a nonexistent
// parent record.
type ReferenceError struct {
	Field  string
	Entity string
	ID     int64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s references nonexistent %s %d", e.Field, e.Entity, e.ID)
}

// PersistenceError wraps an underlying store I/O failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsReference reports whether err is (or wraps) a ReferenceError.
func IsReference(err error) bool {
	var re *ReferenceError
	return errors.As(err, &re)
}

// IsPersistence reports whether err is (or wraps) a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
