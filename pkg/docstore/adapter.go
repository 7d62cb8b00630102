package docstore

import (
	"context"
)

// Document is the structured payload stored under a document ID.
type Document = map[string]interface{}

// DocumentRef identifies a single document within a collection.
type DocumentRef struct {
	Collection string
	ID         string
}

// DocumentHandle defines an interface for reading and writing one document.
type DocumentHandle interface {
	// Get returns the document data, or ErrNotFound if the document does not exist.
	Get(ctx context.Context) (Document, error)
	// Set creates the document or overwrites it entirely.
	Set(ctx context.Context, data Document) error
	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context) error
}

// PageQuery is a bounded query that can be run repeatedly.
type PageQuery interface {
	// Page returns at most limit document refs in ascending document ID order.
	Page(ctx context.Context) ([]DocumentRef, error)
}

// CollectionHandle defines an interface for a named collection.
type CollectionHandle interface {
	Doc(id string) DocumentHandle
	// OrderedByID returns a query over the collection sorted by document ID and
	// limited to limit results.
	OrderedByID(limit int) PageQuery
}

// WriteBatch accumulates deletes and applies them atomically on Commit.
type WriteBatch interface {
	Delete(ref DocumentRef)
	Commit(ctx context.Context) error
}

// DocumentStoreClient defines a generic interface for a client that can read and write
// documents in a NoSQL document store (like Google Cloud Firestore).
type DocumentStoreClient interface {
	Collection(name string) CollectionHandle
	Batch() WriteBatch
	// Close terminates the client's connection to the service.
	Close() error
}

// DatabaseHandle defines an interface for managing a specific document database.
type DatabaseHandle interface {
	// Exists checks if the database exists in the project.
	Exists(ctx context.Context) (bool, error)
	// Create provisions a new database with the specified location and type.
	Create(ctx context.Context, locationID string, dbType string) error
}

// DatabaseAdminClient gives access to database management handles.
type DatabaseAdminClient interface {
	// Database returns a handle for a specific database within the project.
	// For Google Cloud, the default database ID is "(default)".
	Database(dbID string) DatabaseHandle
	Close() error
}
