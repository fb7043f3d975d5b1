package generator

import (
	"errors"
	"fmt"
)

// OptionError reports an option value that cannot be used.
type OptionError struct {
	Option string
	Value  string
	Err    error
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Option, e.Value, e.Err)
}

func (e *OptionError) Unwrap() error {
	return e.Err
}

// IsOptionError reports whether err is an OptionError.
func IsOptionError(err error) bool {
	var oe *OptionError
	return errors.As(err, &oe)
}

// CombosExceededError reports an entry point with more variable
// combinations than the session allows. The first Limit combinations are
// still generated.
type CombosExceededError struct {
	SID   uint32
	Bank  string
	Found int
	Limit int
}

func (e *CombosExceededError) Error() string {
	return fmt.Sprintf("entry %d in %s: %d combinations exceed limit of %d", e.SID, e.Bank, e.Found, e.Limit)
}

// IsCombosExceeded reports whether err is a CombosExceededError.
func IsCombosExceeded(err error) bool {
	var ce *CombosExceededError
	return errors.As(err, &ce)
}
