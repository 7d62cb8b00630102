package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is a connection to a document store. It is created once, shared by reference,
// and safe for concurrent use. A nil or zero Store rejects every operation with
// ErrNotInitialized.
type Store struct {
	client    DocumentStoreClient
	eraser    *CollectionEraser
	logger    zerolog.Logger
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewStore creates a Store over an already connected client.
func NewStore(client DocumentStoreClient, logger zerolog.Logger) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("document store client cannot be nil: %w", ErrNotInitialized)
	}
	eraser, err := NewCollectionEraser(client, logger)
	if err != nil {
		return nil, err
	}
	return &Store{
		client: client,
		eraser: eraser,
		logger: logger.With().Str("component", "Store").Logger(),
	}, nil
}

func (s *Store) ready() error {
	if s == nil || s.client == nil || s.closed.Load() {
		return ErrNotInitialized
	}
	return nil
}

// Set creates the document or overwrites its whole content.
func (s *Store) Set(ctx context.Context, collection, id string, data Document) error {
	if err := s.ready(); err != nil {
		return err
	}
	if collection == "" || id == "" || data == nil {
		return fmt.Errorf("%w: collection, document ID and data are required", ErrInvalidArgument)
	}

	if err := s.client.Collection(collection).Doc(id).Set(ctx, data); err != nil {
		return s.fail("set", collection, id, err)
	}
	return nil
}

// Add stores data under a newly generated document ID and returns that ID.
func (s *Store) Add(ctx context.Context, collection string, data Document) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the document's data, or ErrNotFound if it does not exist.
func (s *Store) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if collection == "" || id == "" {
		return nil, fmt.Errorf("%w: collection and document ID are required", ErrInvalidArgument)
	}

	data, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, s.fail("get", collection, id, err)
	}
	return data, nil
}

// Delete removes the document. It does not delete the document's sub-collections.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if collection == "" || id == "" {
		return fmt.Errorf("%w: collection and document ID are required", ErrInvalidArgument)
	}

	if err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return s.fail("delete", collection, id, err)
	}
	return nil
}

// DeleteCollection removes every document of the collection in atomic batches of batchSize.
func (s *Store) DeleteCollection(ctx context.Context, collection string, batchSize int) (EraseResult, error) {
	if err := s.ready(); err != nil {
		return EraseResult{}, err
	}

	result, err := s.eraser.Erase(ctx, collection, batchSize)
	if err != nil {
		var storeErr *StoreError
		if errors.As(err, &storeErr) {
			s.logger.Error().Err(storeErr.Err).Str("op", storeErr.Op).Str("collection", collection).
				Int("deleted", result.Deleted).Msg("Collection delete aborted; already deleted documents stay deleted.")
		}
		return result, err
	}
	s.logger.Info().Str("collection", collection).Int("deleted", result.Deleted).Int("batches", result.Batches).Msg("Collection deleted.")
	return result, nil
}

// Close releases the underlying client. Subsequent operations return ErrNotInitialized.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.client.Close()
	})
	return s.closeErr
}

// fail logs a client failure and wraps it for the caller.
func (s *Store) fail(op, collection, id string, err error) error {
	s.logger.Error().Err(err).Str("op", op).Str("collection", collection).Str("document", id).Msg("Document store operation failed.")
	return &StoreError{Op: op, Collection: collection, DocumentID: id, Err: err}
}
