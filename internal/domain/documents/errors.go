package documents

import "errors"

var (
	// ErrNotStored means the URL points outside the configured file store.
	ErrNotStored = errors.New("document not held by file store")
	// ErrInvalidRequest wraps every client-side validation failure.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrTooLarge is returned when a document exceeds the size limit.
	ErrTooLarge = errors.New("document too large")
)
