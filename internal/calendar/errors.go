package calendar

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// RemoteCallError is returned when the Calendar API rejects a call or
// cannot be reached.
type RemoteCallError struct {
	// Operation is the API operation that failed (e.g. "create").
	Operation string
	// StatusCode is the HTTP status returned by the API, 0 when no response
	// was received.
	StatusCode int
	// Message is the provider's error message.
	Message string
	Err     error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("calendar %s failed: %s", e.Operation, e.Message)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// newRemoteCallError extracts the provider message from err.
func newRemoteCallError(operation string, err error) *RemoteCallError {
	remote := &RemoteCallError{
		Operation: operation,
		Message:   err.Error(),
		Err:       err,
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		remote.StatusCode = apiErr.Code
		if apiErr.Message != "" {
			remote.Message = apiErr.Message
		}
	}
	return remote
}
