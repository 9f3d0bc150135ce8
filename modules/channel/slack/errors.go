package slack

import "fmt"

// AuthenticationError reports a failed signature or timestamp check on an
// inbound webhook. Always fatal to the request: the caller responds 401
// and must not process the body.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "slack: authentication failed: " + e.Reason
}

// ClassificationError reports a body that matches none of the known wire
// shapes. Not fatal: the payload is acknowledged and dropped so the
// platform does not retry.
type ClassificationError struct {
	Reason string
}

func (e *ClassificationError) Error() string {
	return "slack: classification failed: " + e.Reason
}

// ExtractionError reports a structurally absent field that the resolved
// event kind requires. The event is logged and dropped, never forwarded
// with a null identity.
type ExtractionError struct {
	Kind  string
	Field string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("slack: extract %s: missing %s", e.Kind, e.Field)
}

// AttachmentFetchError reports a failed file download during prefetch.
// The first failing fetch aborts the whole prefetch; no partial
// attachment lists are produced.
type AttachmentFetchError struct {
	URL string
	Err error
}

func (e *AttachmentFetchError) Error() string {
	return fmt.Sprintf("slack: fetch attachment %s: %v", e.URL, e.Err)
}

func (e *AttachmentFetchError) Unwrap() error {
	return e.Err
}
