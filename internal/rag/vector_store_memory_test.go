package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryVectorStore_UpsertAndQuery(t *testing.T) {
	store := NewMemoryVectorStore(3)
	ctx := context.Background()

	err := store.Upsert(ctx, []Record{
		{ID: "a_0", Vector: []float32{1, 0, 0}, Metadata: map[string]string{"source": "a.txt", "text": "alpha"}},
		{ID: "b_0", Vector: []float32{0, 1, 0}, Metadata: map[string]string{"source": "b.txt", "text": "beta"}},
		{ID: "c_0", Vector: []float32{0.9, 0.1, 0}, Metadata: map[string]string{"source": "c.txt", "text": "gamma"}},
	})
	require.NoError(t, err)

	matches, err := store.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// 余弦相似度降序
	assert.Equal(t, "a_0", matches[0].ID)
	assert.Equal(t, "c_0", matches[1].ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
	assert.Equal(t, "alpha", matches[0].Metadata["text"])
}

func TestMemoryVectorStore_UpsertOverwritesByID(t *testing.T) {
	store := NewMemoryVectorStore(2)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []Record{
		{ID: "x_0", Vector: []float32{1, 0}, Metadata: map[string]string{"text": "old"}},
	}))
	require.NoError(t, store.Upsert(ctx, []Record{
		{ID: "x_0", Vector: []float32{0, 1}, Metadata: map[string]string{"text": "new"}},
	}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalVectorCount)

	matches, err := store.Query(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "new", matches[0].Metadata["text"])
}

func TestMemoryVectorStore_UpsertDimensionMismatch(t *testing.T) {
	store := NewMemoryVectorStore(3)

	err := store.Upsert(context.Background(), []Record{
		{ID: "bad", Vector: []float32{1, 0}},
	})
	assert.Error(t, err)
}

func TestCosineSimilarity_MismatchedLengthsScoreZero(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0}

	assert.Equal(t, float64(0), cosineSimilarity(a, b, vectorNorm(a)))
	assert.Equal(t, float64(0), cosineSimilarity(nil, b, 0))

	// 长度一致时照常计算
	assert.InDelta(t, 1.0, cosineSimilarity(a, []float32{2, 0, 0}, vectorNorm(a)), 1e-9)
}

func TestMemoryVectorStore_QueryEmptyStore(t *testing.T) {
	store := NewMemoryVectorStore(3)

	matches, err := store.Query(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
