package detection

import (
	"errors"
	"fmt"
)

// Kind classifies why an analysis attempt failed.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindTimeout     Kind = "timeout"
	KindTransport   Kind = "transport"
	KindServer      Kind = "server"
	KindMalformed   Kind = "malformed_response"
	KindSoftFailure Kind = "soft_failure"
	KindCanceled    Kind = "canceled"
)

// Banner texts shown when the server gives us nothing better.
const (
	MsgTimeout     = "Backend waking up... wait 1 minute and retry"
	MsgTransport   = "Server unreachable or audio too large"
	MsgServer      = "API Failed"
	MsgMalformed   = "Invalid server response"
	MsgCanceled    = "Analysis cancelled"
	MsgEmpty       = "Paste Base64 audio first"
	MsgTooShort    = "Paste valid Base64 audio (too short)"
	MsgTooLarge    = "Audio too large. Use <10 sec MP3"
	MsgNoEndpoint  = "Endpoint URL is required"
	MsgBadEndpoint = "Endpoint must be an http(s) URL"
	MsgNoAPIKey    = "API key is required"
)

// Error is the single error type returned by this package. Message is
// always safe to show to the user.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of err, or an empty Kind if err did not come
// from this package.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// UserMessage returns the banner text for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
