// Package errs classifies failures into the kinds the shell reacts to.
package errs

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind is the broad class of a failure. A Kind is itself an error so it can be
// used as an errors.Is target.
type Kind uint8

const (
	Unknown Kind = iota
	Validation
	Conflict
	Precondition
	NotFound
	StoreFailure
)

func (k Kind) Error() string {
	return k.String()
}

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case Precondition:
		return "precondition"
	case NotFound:
		return "not found"
	case StoreFailure:
		return "store failure"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Sentinels are created once with New or Refine
// and compared with errors.Is.
type Error struct {
	kind   Kind
	msg    string
	parent *Error
	err    error
}

// New defines a sentinel error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Refine defines a sentinel of the given kind that also matches parent under
// errors.Is.
func Refine(parent *Error, kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg, parent: parent}
}

// Store wraps a driver or transaction error as a StoreFailure.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	return &Error{kind: StoreFailure, msg: op, err: err}
}

// StoreOrConflict is Store, except that a uniqueness violation reported by the
// store becomes conflict.
func StoreOrConflict(op string, err error, conflict error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict
	}
	return Store(op, err)
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// Kind reports the class of e.
func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Kind:
		return t == e.kind
	case *Error:
		for p := e.parent; p != nil; p = p.parent {
			if p == t {
				return true
			}
		}
	}
	return false
}

// KindOf returns the kind of the first classified error in err's chain.
// Unclassified non-nil errors count as store failures.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.kind
	}
	var kind Kind
	if errors.As(err, &kind) {
		return kind
	}
	return StoreFailure
}
