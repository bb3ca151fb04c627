package telegram

import (
	"errors"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRANSPORT ERROR TAXONOMY
// Every Call failure is exactly one of: NetworkError, ErrServerUnavailable,
// ParseError, RequestError.
// ══════════════════════════════════════════════════════════════════════════════

// ErrServerUnavailable is returned when the API server answers with an HTML
// body instead of the JSON envelope, which indicates a server-side outage.
var ErrServerUnavailable = errors.New("telegram: server unavailable")

// NetworkError wraps a failure to perform the HTTP exchange itself.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("telegram: network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError wraps a response body that could not be decoded. Raw carries the
// body verbatim for diagnostics.
type ParseError struct {
	Raw []byte
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("telegram: parse failure: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RequestError is a request the API server rejected. Description and Code are
// always present; the optional parameters are carried when the server sends
// them.
type RequestError struct {
	Code        int
	Description string
	// MigrateToChatID is set when the group migrated to a supergroup.
	MigrateToChatID *int64
	// RetryAfter is the number of seconds to wait before repeating the
	// request, set on flood control errors.
	RetryAfter *int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("telegram: api error %d: %s", e.Code, e.Description)
}

// AsRequestError unwraps err into a *RequestError if it carries one.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	ok := errors.As(err, &re)
	return re, ok
}

// RetryAfter extracts the retry_after hint from err, if present.
func RetryAfter(err error) (int, bool) {
	if re, ok := AsRequestError(err); ok && re.RetryAfter != nil {
		return *re.RetryAfter, true
	}
	return 0, false
}
