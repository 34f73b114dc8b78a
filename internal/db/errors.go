package db

import (
	"errors"
	"fmt"
)

// ErrStorage matches every failure reported by a repository
var ErrStorage = errors.New("storage operation failed")

// Op names the repository operation that failed
type Op string

const (
	OpLoad   Op = "load"
	OpSearch Op = "search"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// OpError is the single error category a repository reports.
// Callers branch on Op, never on the driver error inside.
type OpError struct {
	Op  Op
	Msg string
	Err error
}

func Wrap(op Op, msg string, err error) *OpError {
	return &OpError{Op: op, Msg: msg, Err: err}
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func (e *OpError) Is(target error) bool {
	return target == ErrStorage
}
