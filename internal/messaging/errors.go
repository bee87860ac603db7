package messaging

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when a publisher or consumer is used before Connect
	// succeeded or after Disconnect.
	ErrNotConnected = errors.New("messaging: not connected")
	// ErrUnknownEventType is returned when a publisher has no destination for an event type.
	ErrUnknownEventType = errors.New("messaging: unknown event type")
	// ErrSchemaValidation marks an envelope or payload that can never be processed as-is.
	ErrSchemaValidation = errors.New("messaging: schema validation failed")
	// ErrMissingConfig marks an exchange name or queue URL that was required but not set.
	ErrMissingConfig = errors.New("messaging: missing configuration")
)

// ConnectionError reports a transport link that could not be established.
type ConnectionError struct {
	Transport string
	Attempts  int
	Err       error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("messaging: %s connect failed after %d attempt(s): %v", e.Transport, e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// HandlerError wraps a failure raised by the business handler of a known event type.
type HandlerError struct {
	EventType string
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("messaging: handler for %q failed: %v", e.EventType, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

func schemaError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchemaValidation, fmt.Sprintf(format, args...))
}
