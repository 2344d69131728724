package vectordb

import "errors"

var (
	// ErrCollectionNotFound is returned when a collection does not exist.
	// Read paths treat this as "no data yet" rather than a failure.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrStoreUnavailable wraps backend transport or protocol failures.
	ErrStoreUnavailable = errors.New("vector store unavailable")
)
