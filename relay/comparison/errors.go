package comparison

import (
	"github.com/Laisky/errors/v2"
)

var (
	// ErrNoActiveSlot means no slot has both a provider and a model.
	ErrNoActiveSlot = errors.New("no active model slot, assign a model to at least one slot")
	// ErrEmptyPrompt means the user prompt is blank.
	ErrEmptyPrompt = errors.New("user prompt is empty")
	// ErrBatchRunning is returned by Start while another batch is in flight.
	ErrBatchRunning = errors.New("a comparison batch is already running")
)

// ValidationError is a pre-flight failure. Nothing was sent and no response
// state changed.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
