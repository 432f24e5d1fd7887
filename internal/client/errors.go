package client

import (
	"fmt"
	"net/http"
)

// RemoteError is a non-2xx answer from the service.
type RemoteError struct {
	Op         string
	StatusCode int
	// Body is the response text, kept as the user-facing detail.
	Body string
}

// Error returns the response body, or the HTTP status when the body is empty.
func (e *RemoteError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// TransportError is a failure before any response was received.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
