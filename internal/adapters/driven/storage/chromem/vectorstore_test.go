package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
)

func TestVectorStore_StoreAndSearch(t *testing.T) {
	ctx := context.Background()
	store, err := New()
	require.NoError(t, err)

	require.NoError(t, store.StoreEmbeddings(ctx, "knowledge-1",
		[][]float32{{1, 0, 0}, {0, 1, 0}},
		[]string{"about go", "about cooking"}))

	results, err := store.SearchSimilar(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "about go", results[0].Text)
	assert.Equal(t, "knowledge-1", results[0].KnowledgeID)
	assert.Equal(t, 0, results[0].ChunkIndex)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
}

func TestVectorStore_MismatchedLengths(t *testing.T) {
	store, err := New()
	require.NoError(t, err)

	err = store.StoreEmbeddings(context.Background(), "knowledge-1",
		[][]float32{{1, 0}}, []string{"a", "b"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVectorStore_EmptySearch(t *testing.T) {
	store, err := New()
	require.NoError(t, err)

	results, err := store.SearchSimilar(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorStore_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	store, err := New()
	require.NoError(t, err)

	require.NoError(t, store.StoreEmbeddings(ctx, "knowledge-1", [][]float32{{1, 0}}, []string{"a"}))
	require.NoError(t, store.StoreEmbeddings(ctx, "knowledge-2", [][]float32{{0, 1}}, []string{"b"}))

	require.NoError(t, store.DeleteByKnowledgeID(ctx, "knowledge-1"))

	results, err := store.SearchSimilar(ctx, []float32{1, 1}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "knowledge-2", results[0].KnowledgeID)

	require.NoError(t, store.ClearAll(ctx))
	has, err := store.HasAny(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}
