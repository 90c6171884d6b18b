// internal/narrate/errors.go
//
// Failure classification for generation calls. Two classes only:
//   - TransportError:         the exchange itself failed (dial, timeout,
//                             non-success status).
//   - MalformedResponseError: the exchange succeeded but the body is unusable
//                             (bad JSON, blank narration).
// Both are recovered by the orchestrator with fallback text; they exist so
// diagnostics can tell the cases apart.

package narrate

import "fmt"

// TransportError covers dial failures, timeouts, and non-2xx statuses.
// Status is zero when the request never produced a response.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("generation transport error: status %d", e.Status)
	}
	return fmt.Sprintf("generation transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError covers success statuses whose body cannot be used.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed generation response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
