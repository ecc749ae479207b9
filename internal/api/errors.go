package api

import (
	"errors"
	"fmt"
)

// GenericErrorMessage is shown when the server did not supply a usable
// message for a failed operation.
const GenericErrorMessage = "server error, please try again"

// ValidationError reports locally detectable bad input. It is raised before
// any network call is made and never reaches the transport.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NetworkError means no response reached the client: connection refused,
// DNS failure, timeout.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a 4xx/5xx response from the server, carrying the
// server-supplied message when one was present in the body.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// DecodeError means the response body was not valid JSON for the expected
// shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EnvelopeError is a business-level rejection: the transport succeeded but
// the response envelope reported success=false. Distinct from HTTPError so
// callers can tell a reachable-but-unhappy server from a broken transport.
type EnvelopeError struct {
	Message string
}

func (e *EnvelopeError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "request rejected"
}

// ErrorMessage maps any client error to the human-readable string surfaced
// by the UI layer, falling back to a generic message when the server gave
// none.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var herr *HTTPError
	if errors.As(err, &herr) && herr.Message != "" {
		return herr.Message
	}
	var eerr *EnvelopeError
	if errors.As(err, &eerr) && eerr.Message != "" {
		return eerr.Message
	}
	var nerr *NetworkError
	if errors.As(err, &nerr) {
		return "could not reach the server, check your connection"
	}
	return GenericErrorMessage
}
