package batch

import "errors"

var (
	errNonPositiveActions     = errors.New("batch actions must be greater than zero")
	errNegativeFlushInterval  = errors.New("batch flush interval cannot be negative")
	errNegativeJitterInterval = errors.New("batch jitter interval cannot be negative")
	errNegativeBufferLimit    = errors.New("batch buffer limit cannot be negative")

	errAlreadyEnabled = errors.New("batching already enabled")
	errNotEnabled     = errors.New("batching not enabled")
)

// TerminalError marks a delivery failure that will not succeed on a retry,
// such as a write against a database that does not exist. The engine drops
// the batch and reports it to the exception handler.
type TerminalError struct {
	Err error
}

func (e *TerminalError) Error() string {
	return "terminal delivery error: " + e.Err.Error()
}

// Cause returns the underlying error. Implements the causer interface of
// github.com/pkg/errors.
func (e *TerminalError) Cause() error { return e.Err }

// RetryableError marks a transient delivery failure. The retry-capable
// strategy holds on to the batch and attempts it again on the next trigger.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable delivery error: " + e.Err.Error()
}

// Cause returns the underlying error. Implements the causer interface of
// github.com/pkg/errors.
func (e *RetryableError) Cause() error { return e.Err }

// Retryable returns true if a later delivery attempt of the same batch may
// succeed. Retryability is a property of the failure, not of the engine
// configuration; errors not explicitly classified are considered transient.
func Retryable(err error) bool {
	switch err.(type) {
	case *TerminalError:
		return false
	case *RetryableError:
		return true
	}
	return true
}
