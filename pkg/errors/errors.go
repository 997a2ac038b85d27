// Package errors defines the error taxonomy shared by the fetch pipeline.
package errors

import "fmt"

// Kind classifies a fetch failure for recovery-policy decisions.
type Kind string

const (
	// KindTimeout means the request exceeded the client-side timeout.
	KindTimeout Kind = "timeout"
	// KindConnection means the connection could not be established or was lost.
	KindConnection Kind = "connection"
	// KindMalformed means the response body could not be parsed.
	KindMalformed Kind = "malformed"
	// KindAPIFailure means the API answered at the transport level but its
	// own success flag reported failure (e.g. an unknown appid).
	KindAPIFailure Kind = "api_failure"
	// KindCheckpointCorrupt means an on-disk checkpoint could not be read.
	// Load paths treat it as "no checkpoint" rather than a hard failure.
	KindCheckpointCorrupt Kind = "checkpoint_corrupt"
	// KindUnknown covers everything else.
	KindUnknown Kind = "unknown"
)

// Error is a classified fetch error. Code carries the HTTP status for
// transport-level failures and the API success code for API failures.
type Error struct {
	Kind    Kind
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a classified error wrapping cause (cause may be nil).
func New(kind Kind, code int, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
		Err:     cause,
	}
}

// IsRecoverable reports whether a run interrupted by this kind of error left
// a checkpoint worth resuming. Every transport kind checkpoints and stops; an
// API failure also checkpoints, but resuming rarely helps if the appid itself
// is bad, so callers surface the code and let the operator decide.
func IsRecoverable(kind Kind) bool {
	switch kind {
	case KindTimeout, KindConnection, KindMalformed, KindAPIFailure:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode reports whether an HTTP status is worth retrying.
// Only the non-core app-details fetch retries; the review pipeline never does.
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // network error
		return true
	case 429:
		return true
	case 500, 502, 503, 504:
		return true
	case 401, 403, 404:
		return false
	default:
		return statusCode >= 500
	}
}
