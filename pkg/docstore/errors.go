package docstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned by every Store operation when no client connection exists.
	ErrNotInitialized = errors.New("document store is not initialized: connect before accessing it")
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidArgument is returned when a collection name, document ID or payload is missing.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidBatchSize is returned when a batch size is outside 1..MaxBatchSize.
	ErrInvalidBatchSize = errors.New("invalid batch size")
)

// StoreError wraps a failure reported by the underlying document store client.
type StoreError struct {
	Op         string
	Collection string
	DocumentID string
	Err        error
}

func (e *StoreError) Error() string {
	if e.DocumentID != "" {
		return fmt.Sprintf("%s %s/%s failed: %v", e.Op, e.Collection, e.DocumentID, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
