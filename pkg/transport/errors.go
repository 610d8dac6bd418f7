package transport

import (
	"errors"
	"fmt"
)

// Kind is the closed set of transport failure categories. Callers switch
// on Kind; every branch below is the whole taxonomy.
type Kind string

const (
	// KindTimeout marks a request cancelled by the client-side timeout.
	KindTimeout Kind = "timeout"
	// KindDecodeFailure marks a response body that could not be decoded;
	// the HTTP status/text is preserved as a fallback.
	KindDecodeFailure Kind = "decode_failure"
	// KindNetwork marks lower-level transport failures (DNS, connection reset).
	KindNetwork Kind = "network"
	// KindRemote marks an error envelope declared by the remote system.
	KindRemote Kind = "remote"
)

// Detail is one field-scoped sub-error inside an error envelope.
type Detail struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error is the single error shape that crosses the transport boundary.
// Status 408 is reserved for the client-side timeout and 500 for wrapped
// local failures; remote errors carry the status the server declared.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Details []Detail
	TraceID string
}

func (e *Error) Error() string {
	if e.TraceID != "" {
		return fmt.Sprintf("transport: %s (%d) [trace %s]", e.Message, e.Status, e.TraceID)
	}
	return fmt.Sprintf("transport: %s (%d)", e.Message, e.Status)
}

// AsError unwraps err into a *Error when the chain contains one.
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// IsTimeout reports whether err is the transport's own timeout abort.
func IsTimeout(err error) bool {
	te, ok := AsError(err)
	return ok && te.Kind == KindTimeout
}

func timeoutError() *Error {
	return &Error{
		Kind:    KindTimeout,
		Message: "Request timeout",
		Status:  408,
		Details: []Detail{{Field: "_request", Code: "TIMEOUT", Message: "Request timed out"}},
	}
}

func networkError(err error) *Error {
	msg := "Unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: KindNetwork, Message: msg, Status: 500}
}
