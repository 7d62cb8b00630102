package docstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/illmade-knight/go-docstore/pkg/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_PageIsOrderedAndBounded(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	client := docstore.NewMemoryClient()
	for _, id := range []string{"delta", "alpha", "charlie", "bravo"} {
		require.NoError(t, client.Collection("c").Doc(id).Set(ctx, docstore.Document{"id": id}))
	}

	refs, err := client.Collection("c").OrderedByID(3).Page(ctx)

	require.NoError(t, err)
	assert.Equal(t, []docstore.DocumentRef{
		{Collection: "c", ID: "alpha"},
		{Collection: "c", ID: "bravo"},
		{Collection: "c", ID: "charlie"},
	}, refs)
}

func TestMemoryClient_DocumentsAreCopied(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	client := docstore.NewMemoryClient()
	doc := client.Collection("c").Doc("d")
	input := docstore.Document{
		"nested": map[string]interface{}{"k": "v"},
		"list":   []interface{}{"x"},
	}
	require.NoError(t, doc.Set(ctx, input))

	input["nested"].(map[string]interface{})["k"] = "changed"
	input["list"].([]interface{})[0] = "changed"

	stored, err := doc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v", stored["nested"].(map[string]interface{})["k"])
	assert.Equal(t, "x", stored["list"].([]interface{})[0])

	stored["nested"].(map[string]interface{})["k"] = "changed again"
	again, err := doc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v", again["nested"].(map[string]interface{})["k"])
}

func TestMemoryClient_BatchCommitIsAllOrNothingToReaders(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	client := docstore.NewMemoryClient()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, client.Collection("c").Doc(id).Set(ctx, docstore.Document{"id": id}))
	}

	batch := client.Batch()
	batch.Delete(docstore.DocumentRef{Collection: "c", ID: "a"})
	batch.Delete(docstore.DocumentRef{Collection: "c", ID: "b"})
	batch.Delete(docstore.DocumentRef{Collection: "c", ID: "missing"})
	assert.Equal(t, 3, client.Count("c"), "queued deletes are not visible before commit")

	require.NoError(t, batch.Commit(ctx))
	assert.Equal(t, 1, client.Count("c"))
}

func TestMemoryClient_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := docstore.NewMemoryClient()

	assert.ErrorIs(t, client.Collection("c").Doc("d").Set(ctx, docstore.Document{}), context.Canceled)
	_, err := client.Collection("c").OrderedByID(1).Page(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
