package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// hashEmbedder 测试用的确定性嵌入实现
type hashEmbedder struct {
	dims int
}

func (e *hashEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, e.dims)
		for j, b := range []byte(text) {
			vec[j%e.dims] += float32(b%13) + 1
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (e *hashEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *hashEmbedder) Dimensions() int {
	return e.dims
}

func (e *hashEmbedder) Ready() bool {
	return true
}

func newTestIngestion(t *testing.T, store VectorStore) *Ingestion {
	t.Helper()
	return NewIngestion(
		NewFileParserManager(),
		NewChunker(1000, 200),
		&hashEmbedder{dims: 8},
		store,
		zap.NewNop(),
	)
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestion_IngestFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "notes.txt", strings.Repeat("a", 3000))

	store := NewMemoryVectorStore(8)
	ingestion := newTestIngestion(t, store)

	chunks, err := ingestion.IngestFile(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, 4, chunks)

	// 记录ID按 来源_块序号 生成
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("notes.txt_%d", i)
		record, ok := store.records[id]
		require.True(t, ok, "missing record %s", id)
		assert.Equal(t, "notes.txt", record.Metadata["source"])
	}

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalVectorCount)
}

func TestIngestion_IngestFileIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "notes.txt", strings.Repeat("b", 3000))

	store := NewMemoryVectorStore(8)
	ingestion := newTestIngestion(t, store)

	_, err := ingestion.IngestFile(context.Background(), path, "")
	require.NoError(t, err)
	_, err = ingestion.IngestFile(context.Background(), path, "")
	require.NoError(t, err)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalVectorCount)
}

func TestIngestion_IngestFileUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "binary.exe", "not a document")

	ingestion := newTestIngestion(t, NewMemoryVectorStore(8))

	_, err := ingestion.IngestFile(context.Background(), path, "")
	require.Error(t, err)
	assert.True(t, IsRejection(err))

	var unsupported *ErrUnsupportedFormat
	assert.ErrorAs(t, err, &unsupported)
}

func TestIngestion_IngestFileEmptyContent(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "empty.txt", "   \n\t  ")

	ingestion := newTestIngestion(t, NewMemoryVectorStore(8))

	_, err := ingestion.IngestFile(context.Background(), path, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoContent)
	assert.True(t, IsRejection(err))
}

// deadlineEmbedder 记录嵌入调用收到的context是否带截止时间
type deadlineEmbedder struct {
	hashEmbedder
	sawDeadline bool
}

func (e *deadlineEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	_, e.sawDeadline = ctx.Deadline()
	return e.hashEmbedder.EmbedDocuments(ctx, texts)
}

func TestIngestion_IngestFileBoundsDuration(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "notes.txt", "some content")

	embedder := &deadlineEmbedder{hashEmbedder: hashEmbedder{dims: 8}}
	ingestion := NewIngestion(
		NewFileParserManager(),
		NewChunker(1000, 200),
		embedder,
		NewMemoryVectorStore(8),
		zap.NewNop(),
	)

	_, err := ingestion.IngestFile(context.Background(), path, "")
	require.NoError(t, err)
	assert.True(t, embedder.sawDeadline)
}

func TestIngestion_CheckDimensionsMismatch(t *testing.T) {
	ingestion := NewIngestion(
		NewFileParserManager(),
		NewChunker(1000, 200),
		&hashEmbedder{dims: 8},
		NewMemoryVectorStore(4),
		zap.NewNop(),
	)

	err := ingestion.CheckDimensions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")
}

func TestIngestion_IngestDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "alpha content")
	writeTestFile(t, dir, "b.txt", "beta content")
	writeTestFile(t, dir, "c.exe", "binary junk")

	store := NewMemoryVectorStore(8)
	ingestion := newTestIngestion(t, store)

	result, err := ingestion.IngestDirectory(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Rejected)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Files, 3)

	// 批处理按文件名排序,单个失败不中断其余文件
	assert.Equal(t, "a.txt", result.Files[0].FileName)
	assert.Equal(t, "ok", result.Files[0].Status)
	assert.Equal(t, "b.txt", result.Files[1].FileName)
	assert.Equal(t, "ok", result.Files[1].Status)
	assert.Equal(t, "c.exe", result.Files[2].FileName)
	assert.Equal(t, "rejected", result.Files[2].Status)
}
