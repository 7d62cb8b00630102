package docstore_test

import (
	"context"
	"sync"

	"github.com/illmade-knight/go-docstore/pkg/docstore"
	"github.com/stretchr/testify/mock"
)

// --- Mocks for the document store adapters ---

type MockDocumentStoreClient struct{ mock.Mock }

func (m *MockDocumentStoreClient) Collection(name string) docstore.CollectionHandle {
	return m.Called(name).Get(0).(docstore.CollectionHandle)
}
func (m *MockDocumentStoreClient) Batch() docstore.WriteBatch {
	return m.Called().Get(0).(docstore.WriteBatch)
}
func (m *MockDocumentStoreClient) Close() error {
	return m.Called().Error(0)
}

type MockCollectionHandle struct{ mock.Mock }

func (m *MockCollectionHandle) Doc(id string) docstore.DocumentHandle {
	return m.Called(id).Get(0).(docstore.DocumentHandle)
}
func (m *MockCollectionHandle) OrderedByID(limit int) docstore.PageQuery {
	return m.Called(limit).Get(0).(docstore.PageQuery)
}

type MockDocumentHandle struct{ mock.Mock }

func (m *MockDocumentHandle) Get(ctx context.Context) (docstore.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(docstore.Document), args.Error(1)
}
func (m *MockDocumentHandle) Set(ctx context.Context, data docstore.Document) error {
	return m.Called(ctx, data).Error(0)
}
func (m *MockDocumentHandle) Delete(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockPageQuery struct{ mock.Mock }

func (m *MockPageQuery) Page(ctx context.Context) ([]docstore.DocumentRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]docstore.DocumentRef), args.Error(1)
}

// --- Recording wrapper around the in-memory client ---

// recordingClient counts queries and commits made against a MemoryClient and can be told
// to fail a specific commit.
type recordingClient struct {
	*docstore.MemoryClient

	mu           sync.Mutex
	queries      int
	commitSizes  []int
	failCommitAt int // 1-based; 0 never fails
	commitErr    error
}

func newRecordingClient() *recordingClient {
	return &recordingClient{MemoryClient: docstore.NewMemoryClient()}
}

func (r *recordingClient) Collection(name string) docstore.CollectionHandle {
	return &recordingCollection{CollectionHandle: r.MemoryClient.Collection(name), rec: r}
}

func (r *recordingClient) Batch() docstore.WriteBatch {
	return &recordingBatch{WriteBatch: r.MemoryClient.Batch(), rec: r}
}

func (r *recordingClient) snapshot() (int, []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries, append([]int(nil), r.commitSizes...)
}

type recordingCollection struct {
	docstore.CollectionHandle
	rec *recordingClient
}

func (c *recordingCollection) OrderedByID(limit int) docstore.PageQuery {
	return &recordingQuery{PageQuery: c.CollectionHandle.OrderedByID(limit), rec: c.rec}
}

type recordingQuery struct {
	docstore.PageQuery
	rec *recordingClient
}

func (q *recordingQuery) Page(ctx context.Context) ([]docstore.DocumentRef, error) {
	q.rec.mu.Lock()
	q.rec.queries++
	q.rec.mu.Unlock()
	return q.PageQuery.Page(ctx)
}

type recordingBatch struct {
	docstore.WriteBatch
	rec  *recordingClient
	size int
}

func (b *recordingBatch) Delete(ref docstore.DocumentRef) {
	b.size++
	b.WriteBatch.Delete(ref)
}

func (b *recordingBatch) Commit(ctx context.Context) error {
	b.rec.mu.Lock()
	attempt := len(b.rec.commitSizes) + 1
	fail := b.rec.failCommitAt != 0 && attempt == b.rec.failCommitAt
	if !fail {
		b.rec.commitSizes = append(b.rec.commitSizes, b.size)
	}
	b.rec.mu.Unlock()
	if fail {
		return b.rec.commitErr
	}
	return b.WriteBatch.Commit(ctx)
}
