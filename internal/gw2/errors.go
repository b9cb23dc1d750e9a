package gw2

import "fmt"

// Kind classifies a failed API interaction.
type Kind int

const (
	// KindInvalidAPIKey means the key is absent, malformed or rejected.
	KindInvalidAPIKey Kind = iota + 1
	// KindMissingPermissions means the key lacks a required scope.
	KindMissingPermissions
	// KindRequestRejected is a 400/401 that is not the invalid-key signature.
	KindRequestRejected
	// KindUnexpectedStatus is any other non-2xx response.
	KindUnexpectedStatus
	// KindMalformedResponse is a 2xx response with a body of the wrong shape.
	KindMalformedResponse
	// KindTimeout means the call did not finish before its deadline.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindInvalidAPIKey:
		return "InvalidApiKey"
	case KindMissingPermissions:
		return "MissingPermissions"
	case KindRequestRejected:
		return "RequestRejected"
	case KindUnexpectedStatus:
		return "UnexpectedStatus"
	case KindMalformedResponse:
		return "MalformedResponse"
	case KindTimeout:
		return "Timeout"
	}
	return "Unknown"
}

// Error is returned by the client for every classified failure.
type Error struct {
	Kind       Kind
	Path       string
	StatusCode int
	StatusText string
	Body       string
	Message    string
	Missing    []string
	Err        error
}

// Sentinels for errors.Is; they match any *Error of the same Kind.
var (
	ErrInvalidAPIKey      = &Error{Kind: KindInvalidAPIKey}
	ErrMissingPermissions = &Error{Kind: KindMissingPermissions}
	ErrRequestRejected    = &Error{Kind: KindRequestRejected}
	ErrUnexpectedStatus   = &Error{Kind: KindUnexpectedStatus}
	ErrMalformedResponse  = &Error{Kind: KindMalformedResponse}
	ErrTimeout            = &Error{Kind: KindTimeout}
)

// Error implements the error interface. The text is what a user gets to see.
func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidAPIKey:
		return "Invalid API key"
	case KindMissingPermissions:
		if e.Message != "" {
			return e.Message
		}
		return "API key is missing permissions"
	case KindRequestRejected:
		return e.Message
	case KindUnexpectedStatus:
		return fmt.Sprintf("%d: %s, %s", e.StatusCode, e.StatusText, e.Body)
	case KindMalformedResponse:
		if e.Message != "" {
			return e.Message
		}
		return "Invalid response format"
	case KindTimeout:
		return fmt.Sprintf("request timed out: %s", e.Path)
	}
	return e.Message
}

// Is matches sentinels by Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Unwrap returns the transport error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}
