package docstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryClient is a DocumentStoreClient that keeps everything in memory.
// Data is lost when the process exits. Safe for concurrent use.
type MemoryClient struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

// NewMemoryClient creates an empty in-memory document store.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		collections: make(map[string]map[string]Document),
	}
}

func (m *MemoryClient) Collection(name string) CollectionHandle {
	return &memoryCollection{client: m, name: name}
}

func (m *MemoryClient) Batch() WriteBatch {
	return &memoryBatch{client: m}
}

func (m *MemoryClient) Close() error { return nil }

// Count returns the number of documents in the collection.
func (m *MemoryClient) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

type memoryCollection struct {
	client *MemoryClient
	name   string
}

func (c *memoryCollection) Doc(id string) DocumentHandle {
	return &memoryDocument{client: c.client, ref: DocumentRef{Collection: c.name, ID: id}}
}

func (c *memoryCollection) OrderedByID(limit int) PageQuery {
	return &memoryQuery{client: c.client, collection: c.name, limit: limit}
}

type memoryQuery struct {
	client     *MemoryClient
	collection string
	limit      int
}

func (q *memoryQuery) Page(ctx context.Context) ([]DocumentRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.client.mu.RLock()
	defer q.client.mu.RUnlock()

	docs := q.client.collections[q.collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if q.limit >= 0 && len(ids) > q.limit {
		ids = ids[:q.limit]
	}

	refs := make([]DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, DocumentRef{Collection: q.collection, ID: id})
	}
	return refs, nil
}

type memoryDocument struct {
	client *MemoryClient
	ref    DocumentRef
}

func (d *memoryDocument) Get(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.client.mu.RLock()
	defer d.client.mu.RUnlock()
	doc, ok := d.client.collections[d.ref.Collection][d.ref.ID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(doc), nil
}

func (d *memoryDocument) Set(ctx context.Context, data Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.client.mu.Lock()
	defer d.client.mu.Unlock()
	coll, ok := d.client.collections[d.ref.Collection]
	if !ok {
		coll = make(map[string]Document)
		d.client.collections[d.ref.Collection] = coll
	}
	coll[d.ref.ID] = copyDocument(data)
	return nil
}

func (d *memoryDocument) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.client.mu.Lock()
	defer d.client.mu.Unlock()
	d.client.deleteLocked(d.ref)
	return nil
}

// deleteLocked removes a document and drops the collection once it is empty.
func (m *MemoryClient) deleteLocked(ref DocumentRef) {
	coll, ok := m.collections[ref.Collection]
	if !ok {
		return
	}
	delete(coll, ref.ID)
	if len(coll) == 0 {
		delete(m.collections, ref.Collection)
	}
}

type memoryBatch struct {
	client *MemoryClient
	refs   []DocumentRef
}

func (b *memoryBatch) Delete(ref DocumentRef) {
	b.refs = append(b.refs, ref)
}

// Commit applies all queued deletes under one lock, so readers see all or none of them.
func (b *memoryBatch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.client.mu.Lock()
	defer b.client.mu.Unlock()
	for _, ref := range b.refs {
		b.client.deleteLocked(ref)
	}
	b.refs = nil
	return nil
}

func copyDocument(src Document) Document {
	if src == nil {
		return nil
	}
	dst := make(Document, len(src))
	for k, v := range src {
		dst[k] = copyValue(v)
	}
	return dst
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return copyDocument(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return val
	}
}
