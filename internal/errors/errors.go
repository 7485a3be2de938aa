package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated means no credential set has been stored yet. It is a normal
	// outcome for calendar routes, not a failure.
	ErrNotAuthenticated = errors.New("not authenticated")

	ErrNotFound            = errors.New("not found")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrAuthorizationDenied = errors.New("authorization denied")
)

// UpstreamFailure is the single failure variant for anything that goes wrong in the
// token exchange, the calendar provider or the database. Cause is opaque and only logged.
type UpstreamFailure struct {
	Op    string
	Cause string
	err   error
}

func (e *UpstreamFailure) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Cause)
}

func (e *UpstreamFailure) Unwrap() error {
	return e.err
}

// Upstream wraps err as an UpstreamFailure for op. A nil err returns nil and an error
// that already is an UpstreamFailure is returned unchanged.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	var uf *UpstreamFailure
	if errors.As(err, &uf) {
		return err
	}
	return &UpstreamFailure{Op: op, Cause: err.Error(), err: err}
}

// IsUpstream reports whether err carries an UpstreamFailure.
func IsUpstream(err error) bool {
	var uf *UpstreamFailure
	return errors.As(err, &uf)
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
