package api

import (
	"errors"
	"fmt"
)

// ErrTransport indicates the request never got a response (network
// failure, timeout, cancelled context).
type ErrTransport struct {
	Method string
	Path   string
	Err    error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *ErrTransport) Unwrap() error { return e.Err }

// ErrAPI indicates the server answered with success:false or a non-2xx
// status.
type ErrAPI struct {
	Status  int
	Message string
}

func (e *ErrAPI) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.Status)
}

// ErrUnauthorized indicates a 401 that the refresh flow could not recover.
// LoggedOut is set when the failed refresh cleared the session.
type ErrUnauthorized struct {
	LoggedOut bool
	Err       error
}

func (e *ErrUnauthorized) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unauthorized: %v", e.Err)
	}
	return "unauthorized"
}

func (e *ErrUnauthorized) Unwrap() error { return e.Err }

// ErrInvalidEnvelope indicates a response body that is not a valid
// {success, data, message?, pagination?} envelope.
type ErrInvalidEnvelope struct {
	Body []byte
	Err  error
}

func (e *ErrInvalidEnvelope) Error() string {
	return fmt.Sprintf("invalid response envelope: %v", e.Err)
}

func (e *ErrInvalidEnvelope) Unwrap() error { return e.Err }

// Message returns the user-facing text for err: the server's message when
// there is one, otherwise the underlying error text. It returns "" for nil.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *ErrAPI
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var transportErr *ErrTransport
	if errors.As(err, &transportErr) && transportErr.Err != nil {
		return transportErr.Err.Error()
	}
	return err.Error()
}

// IsUnauthorized reports whether err carries an unrecovered 401.
func IsUnauthorized(err error) bool {
	var u *ErrUnauthorized
	return errors.As(err, &u)
}
