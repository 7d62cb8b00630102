package docstore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

const (
	// DefaultBatchSize is the number of documents deleted per commit when none is configured.
	DefaultBatchSize = 5
	// MaxBatchSize is the largest number of writes Firestore accepts in a single commit.
	MaxBatchSize = 500
)

// EraseResult summarizes a completed (or aborted) collection erase.
type EraseResult struct {
	Batches int
	Deleted int
}

// CollectionEraser empties a collection page by page without loading it into memory.
type CollectionEraser struct {
	client DocumentStoreClient
	logger zerolog.Logger
}

// NewCollectionEraser creates an eraser over the given client.
func NewCollectionEraser(client DocumentStoreClient, logger zerolog.Logger) (*CollectionEraser, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}
	return &CollectionEraser{
		client: client,
		logger: logger.With().Str("component", "CollectionEraser").Logger(),
	}, nil
}

// ValidateBatchSize reports whether batchSize is usable for a single commit.
func ValidateBatchSize(batchSize int) error {
	if batchSize <= 0 || batchSize > MaxBatchSize {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidBatchSize, batchSize, MaxBatchSize)
	}
	return nil
}

// Erase deletes every document in the collection, batchSize documents per atomic commit.
// The same ID-ordered query is re-run after each commit; because deleted documents drop
// out of the result, each page starts where the previous one ended.
// On failure the documents of earlier commits stay deleted; running Erase again resumes.
// Documents in sub-collections are not touched.
func (e *CollectionEraser) Erase(ctx context.Context, collection string, batchSize int) (EraseResult, error) {
	var result EraseResult
	if collection == "" {
		return result, fmt.Errorf("%w: collection name is required", ErrInvalidArgument)
	}
	if err := ValidateBatchSize(batchSize); err != nil {
		return result, err
	}

	log := e.logger.With().Str("collection", collection).Int("batch_size", batchSize).Logger()
	query := e.client.Collection(collection).OrderedByID(batchSize)

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		refs, err := query.Page(ctx)
		if err != nil {
			return result, &StoreError{Op: "query", Collection: collection, Err: err}
		}
		if len(refs) == 0 {
			log.Debug().Int("batches", result.Batches).Int("deleted", result.Deleted).Msg("Collection is empty.")
			return result, nil
		}

		batch := e.client.Batch()
		for _, ref := range refs {
			batch.Delete(ref)
		}
		if err := batch.Commit(ctx); err != nil {
			return result, &StoreError{Op: "commit", Collection: collection, Err: err}
		}

		result.Batches++
		result.Deleted += len(refs)
		log.Debug().Int("batch", result.Batches).Int("size", len(refs)).Msg("Deleted batch.")
	}
}
