package curve

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	ErrCodeUnknownScaling       = "UNKNOWN_SCALING"
	ErrCodeUnknownInterpolation = "UNKNOWN_INTERPOLATION"
	ErrCodeUnknownAccum         = "UNKNOWN_ACCUM"
	ErrCodeNoSource             = "AUTOMATION_WITHOUT_SOURCE"
)

// Error reports curve data the engine cannot evaluate.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("curve: %s: %s", e.Code, e.Message)
}

func newError(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsError reports whether err is a curve error with the given code. An
// empty code matches any curve error.
func IsError(err error, code string) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	return code == "" || ce.Code == code
}
