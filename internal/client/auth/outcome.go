package auth

import (
	"fmt"

	"github.com/markadai/taxidispatch/internal/models"
)

// ErrorKind classifies why a login attempt failed.
type ErrorKind int

const (
	// MalformedEndpoint means the configured URL could not be used.
	MalformedEndpoint ErrorKind = iota + 1
	// TransportFailure means the request did not complete.
	TransportFailure
	// EmptyResponse means the server answered with no body.
	EmptyResponse
	// DecodeFailure means the body did not match the response schema.
	DecodeFailure
	// RejectedCredentials means the server answered success=false.
	RejectedCredentials
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedEndpoint:
		return "malformed_endpoint"
	case TransportFailure:
		return "transport_failure"
	case EmptyResponse:
		return "empty_response"
	case DecodeFailure:
		return "decode_failure"
	case RejectedCredentials:
		return "rejected_credentials"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Messages shown to the user for the fixed failure kinds.
const (
	msgInvalidURL     = "Invalid URL"
	msgEmptyResponse  = "Empty server response"
	msgDecodeFailure  = "Failed to process server response"
	msgUnknownError   = "Unknown error"
	msgConnectionPref = "Connection error: "
)

// Error is the failure side of an Outcome. Error() returns exactly the text
// meant for display; Cause keeps the underlying error for errors.Is/As.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

// Outcome is the result of one login attempt: either a user or an error.
type Outcome struct {
	user *models.User
	err  *Error
}

// Success builds a successful outcome carrying u.
func Success(u models.User) Outcome {
	return Outcome{user: &u}
}

// Failure builds a failed outcome.
func Failure(kind ErrorKind, message string, cause error) Outcome {
	return Outcome{err: &Error{Kind: kind, Message: message, Cause: cause}}
}

// OK reports whether the attempt succeeded.
func (o Outcome) OK() bool { return o.err == nil && o.user != nil }

// User returns the authenticated user and true on success.
func (o Outcome) User() (models.User, bool) {
	if !o.OK() {
		return models.User{}, false
	}
	return *o.user, true
}

// Message returns the display text of a failure, or "" on success.
func (o Outcome) Message() string {
	if o.err == nil {
		return ""
	}
	return o.err.Message
}

// Kind returns the failure kind, or 0 on success.
func (o Outcome) Kind() ErrorKind {
	if o.err == nil {
		return 0
	}
	return o.err.Kind
}

// Err returns the failure as an error, or nil on success.
func (o Outcome) Err() error {
	if o.err == nil {
		return nil
	}
	return o.err
}
