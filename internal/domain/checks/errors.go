package checks

import (
	"errors"
	"fmt"
)

// ErrNotFound unknown check id.
var ErrNotFound = errors.New("check not found")

// ErrAlreadyRunning another check or batch holds the session.
var ErrAlreadyRunning = errors.New("a security check is already running")

// ErrOracleUnavailable the oracle failed to produce a verdict.
var ErrOracleUnavailable = errors.New("oracle unavailable")

// OracleUnavailableError carries the failing check and the underlying cause.
type OracleUnavailableError struct {
	CheckID CheckID
	Err     error
}

func (e *OracleUnavailableError) Error() string {
	return fmt.Sprintf("oracle unavailable for check %s: %v", e.CheckID, e.Err)
}

func (e *OracleUnavailableError) Unwrap() error { return e.Err }

func (e *OracleUnavailableError) Is(target error) bool { return target == ErrOracleUnavailable }
