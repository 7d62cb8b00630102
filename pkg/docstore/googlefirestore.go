package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultDatabaseID is the ID of the database every Firestore project starts with.
const DefaultDatabaseID = "(default)"

// gcpFirestoreClientAdapter implements the DocumentStoreClient for Google Cloud Firestore.
type gcpFirestoreClientAdapter struct {
	client *firestore.Client
}

// NewGoogleFirestoreAdapter wraps an existing Firestore data client.
func NewGoogleFirestoreAdapter(client *firestore.Client) DocumentStoreClient {
	return &gcpFirestoreClientAdapter{client: client}
}

// CreateGoogleFirestoreClient creates a Firestore data client (Get/Set/Delete documents)
// for the given project and database. It is distinct from the admin client used by
// DatabaseManager, which manages the database itself.
func CreateGoogleFirestoreClient(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (DocumentStoreClient, error) {
	if databaseID == "" {
		databaseID = DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &gcpFirestoreClientAdapter{client: client}, nil
}

func (a *gcpFirestoreClientAdapter) Collection(name string) CollectionHandle {
	return &gcpCollectionAdapter{client: a.client, name: name}
}

// Batch returns a batch that commits its deletes in a single transaction.
func (a *gcpFirestoreClientAdapter) Batch() WriteBatch {
	return &gcpTransactionBatch{client: a.client}
}

func (a *gcpFirestoreClientAdapter) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

type gcpCollectionAdapter struct {
	client *firestore.Client
	name   string
}

func (c *gcpCollectionAdapter) Doc(id string) DocumentHandle {
	return &gcpDocumentAdapter{ref: c.client.Collection(c.name).Doc(id)}
}

func (c *gcpCollectionAdapter) OrderedByID(limit int) PageQuery {
	coll := c.client.Collection(c.name)
	if coll == nil {
		// Firestore returns nil for paths with an even number of segments.
		return &gcpPageQuery{collection: c.name, invalid: true}
	}
	query := coll.OrderBy(firestore.DocumentID, firestore.Asc).Limit(limit)
	return &gcpPageQuery{query: query, collection: c.name, limit: limit}
}

type gcpPageQuery struct {
	query      firestore.Query
	collection string
	limit      int
	invalid    bool
}

// Page runs the query and collects the refs of the returned documents.
func (q *gcpPageQuery) Page(ctx context.Context) ([]DocumentRef, error) {
	if q.invalid {
		return nil, fmt.Errorf("'%s' is not a valid collection path", q.collection)
	}
	iter := q.query.Documents(ctx)
	defer iter.Stop()

	refs := make([]DocumentRef, 0, q.limit)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read page of collection '%s': %w", q.collection, err)
		}
		refs = append(refs, DocumentRef{Collection: q.collection, ID: snap.Ref.ID})
	}
	return refs, nil
}

type gcpDocumentAdapter struct {
	ref *firestore.DocumentRef
}

func (d *gcpDocumentAdapter) Get(ctx context.Context) (Document, error) {
	snap, err := d.ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !snap.Exists() {
		return nil, ErrNotFound
	}
	return snap.Data(), nil
}

func (d *gcpDocumentAdapter) Set(ctx context.Context, data Document) error {
	_, err := d.ref.Set(ctx, data)
	return err
}

func (d *gcpDocumentAdapter) Delete(ctx context.Context) error {
	_, err := d.ref.Delete(ctx)
	return err
}

// gcpTransactionBatch queues deletes and applies them in one transaction, so a page is
// removed entirely or not at all.
type gcpTransactionBatch struct {
	client *firestore.Client
	refs   []DocumentRef
}

func (b *gcpTransactionBatch) Delete(ref DocumentRef) {
	b.refs = append(b.refs, ref)
}

func (b *gcpTransactionBatch) Commit(ctx context.Context) error {
	if len(b.refs) == 0 {
		return nil
	}
	err := b.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		for _, ref := range b.refs {
			if err := tx.Delete(b.client.Collection(ref.Collection).Doc(ref.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to commit delete of %d documents: %w", len(b.refs), err)
	}
	b.refs = nil
	return nil
}
