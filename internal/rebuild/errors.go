package rebuild

import (
	"errors"
	"fmt"
)

// Reference error codes.
const (
	ErrCodeMissingReference   = "MISSING_REFERENCE"
	ErrCodeAmbiguousReference = "AMBIGUOUS_REFERENCE"
)

// Build error codes.
const (
	// ErrCodeUnsupported marks data the walk cannot express: unknown modes,
	// malformed markers, loop flags where none are allowed.
	ErrCodeUnsupported = "UNSUPPORTED_CONSTRUCT"
	// ErrCodeInvariant marks data or logic errors upstream, such as an
	// object that ends up containing itself.
	ErrCodeInvariant = "INVARIANT_VIOLATION"
)

// RefError describes a reference that could not be resolved cleanly. They
// are recorded in Diagnostics, not returned.
type RefError struct {
	Code   string
	Bank   uint32
	ID     uint32
	Caller uint32
	// BankName is the bank that should hold the object, when known.
	BankName string
}

func (e *RefError) Error() string {
	msg := fmt.Sprintf("%s: id %d in bank %d", e.Code, e.ID, e.Bank)
	if e.BankName != "" {
		msg += fmt.Sprintf(" (%s)", e.BankName)
	}
	if e.Caller != 0 {
		msg += fmt.Sprintf(", called by %d", e.Caller)
	}
	return msg
}

// IsRefError reports whether err is a RefError with the given code.
func IsRefError(err error, code string) bool {
	var re *RefError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// BuildError aborts the walk of an object.
type BuildError struct {
	Code    string
	Kind    Kind
	SID     uint32
	Bank    string
	Message string
	Err     error
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("%s: %s - %s %d", e.Code, e.Message, e.Kind, e.SID)
	if e.Bank != "" {
		msg += " in " + e.Bank
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// IsBuildError reports whether err is a BuildError with the given code.
// An empty code matches any BuildError.
func IsBuildError(err error, code string) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return code == "" || be.Code == code
	}
	return false
}

// IsUnsupported reports an object the walk cannot express.
func IsUnsupported(err error) bool {
	return IsBuildError(err, ErrCodeUnsupported)
}

// IsInvariant reports a data or logic error upstream.
func IsInvariant(err error) bool {
	return IsBuildError(err, ErrCodeInvariant)
}

// ProcessError wraps a failure at the entry point boundary.
type ProcessError struct {
	SID  uint32
	Kind Kind
	Bank string
	Err  error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("processing node %d (%s) in %s: %v", e.SID, e.Kind, e.Bank, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}
