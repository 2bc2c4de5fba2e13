package aivae

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrUnexpectedResponse indicates a success payload without the expected
	// status or response text.
	ErrUnexpectedResponse = errors.New("Unexpected response structure")

	// ErrUnauthorized indicates the server rejected the session token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoToken indicates no session token is available.
	ErrNoToken = errors.New("no session token: run `aivae login` first")

	// ErrTokenExpired indicates the stored session token is past its expiry.
	ErrTokenExpired = errors.New("session token expired: run `aivae login` again")

	// ErrNoResponse indicates a request that never got a response.
	ErrNoResponse = errors.New("No response from server")

	// ErrInvalidLogin indicates a login payload without a session token.
	ErrInvalidLogin = errors.New("Invalid login response from server")

	// ErrValidation indicates invalid configuration or input.
	ErrValidation = errors.New("validation error")
)

// QueryError is a failure reported by the remote API. ServerMessage carries
// the human-readable reason from the response payload, when there was one.
// Err holds the transport failure, if the request never got a response.
type QueryError struct {
	StatusCode    int
	ServerMessage string
	Err           error
}

func (e *QueryError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.ServerMessage != "":
		return e.ServerMessage
	case e.Err != nil:
		return e.Err.Error()
	case e.StatusCode != 0:
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	default:
		return ""
	}
}

func (e *QueryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
