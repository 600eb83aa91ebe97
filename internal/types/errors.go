// internal/types/errors.go
package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure of the transfer pipeline.
type ErrorKind string

const (
	KindConfig  ErrorKind = "config"
	KindState   ErrorKind = "state"
	KindNetwork ErrorKind = "network"
)

var (
	// ErrZeroComputeUnits is returned when compute_units is 0.
	ErrZeroComputeUnits = errors.New("compute_units must be greater than zero")

	// ErrNoSenderBalance is returned when the sender has no token account balance record.
	ErrNoSenderBalance = errors.New("no sender token balance")

	// ErrInvalidTransferAmount is returned when the integer amount is not positive.
	ErrInvalidTransferAmount = errors.New("transfer amount invalid")

	// ErrInsufficientBalance is returned when the sender holds less than the requested amount.
	ErrInsufficientBalance = errors.New("insufficient token balance")
)

// Error carries the kind and the pipeline step that failed.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error [%s]: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with kind and op. A nil err stays nil.
func NewError(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func ConfigError(op string, err error) error  { return NewError(KindConfig, op, err) }
func StateError(op string, err error) error   { return NewError(KindState, op, err) }
func NetworkError(op string, err error) error { return NewError(KindNetwork, op, err) }

// Configf builds a config error from a format string.
func Configf(op, format string, args ...interface{}) error {
	return ConfigError(op, fmt.Errorf(format, args...))
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
