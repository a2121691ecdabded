package services

import (
	"errors"

	"github.com/baharkarakas/atm-backend/internal/session"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrLimitExceeded       = errors.New("limit exceeded")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDenomination = errors.New("invalid denomination")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrStorage             = errors.New("storage error")

	ErrAuthFailure = session.ErrAuthFailure
	ErrNotLoggedIn = session.ErrNotLoggedIn
)

// RuleError is a rejected request. Msg is what the customer sees; Kind is one
// of the sentinels above and is what callers match with errors.Is.
type RuleError struct {
	Kind error
	Msg  string
}

func (e *RuleError) Error() string { return e.Msg }
func (e *RuleError) Unwrap() error { return e.Kind }

func rule(kind error, msg string) error { return &RuleError{Kind: kind, Msg: msg} }

// StorageError wraps a persistence failure with the service operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
