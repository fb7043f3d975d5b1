package simplify

import (
	"errors"
	"fmt"
)

// Timing error codes.
const (
	ErrCodeClipDelay    = "CLIP_DELAY"
	ErrCodeNegativeTime = "NEGATIVE_TIME"
	ErrCodeUntrimmed    = "UNTRIMMED_TRANSITION"
)

// TimingError reports clip or transition times that cannot be expressed.
// It always points at a logic or data error upstream.
type TimingError struct {
	Code    string
	NodeID  uint32
	Message string
}

func (e *TimingError) Error() string {
	if e.NodeID != 0 {
		return fmt.Sprintf("%s: node %d: %s", e.Code, e.NodeID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newTimingError(code string, nodeID uint32, format string, args ...any) *TimingError {
	return &TimingError{Code: code, NodeID: nodeID, Message: fmt.Sprintf(format, args...)}
}

// IsTimingError reports whether err is a TimingError.
func IsTimingError(err error) bool {
	var te *TimingError
	return errors.As(err, &te)
}
