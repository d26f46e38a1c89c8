package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jarvisai/assistant-go/internal/rag"
)

func newTestDocumentService(t *testing.T, uploadDir, dataDir string) *DocumentService {
	t.Helper()
	ingestion := rag.NewIngestion(
		rag.NewFileParserManager(),
		rag.NewChunker(1000, 200),
		&constEmbedder{vec: []float32{1, 0, 0}},
		rag.NewMemoryVectorStore(3),
		zap.NewNop(),
	)
	return NewDocumentService(ingestion, nil, uploadDir, dataDir, zap.NewNop())
}

func TestDocumentService_SaveAndIngest(t *testing.T) {
	uploadDir := filepath.Join(t.TempDir(), "uploads")
	svc := newTestDocumentService(t, uploadDir, t.TempDir())

	chunks, err := svc.SaveAndIngest(context.Background(), "notes.txt", strings.NewReader("some personal notes"))
	require.NoError(t, err)
	assert.Equal(t, 1, chunks)

	// 文件落盘到上传目录
	_, err = os.Stat(filepath.Join(uploadDir, "notes.txt"))
	assert.NoError(t, err)

	files, err := svc.ListUploads()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "notes.txt", files[0].Name)
}

func TestDocumentService_SaveAndIngestUnsupported(t *testing.T) {
	svc := newTestDocumentService(t, t.TempDir(), t.TempDir())

	_, err := svc.SaveAndIngest(context.Background(), "binary.exe", strings.NewReader("junk"))
	require.Error(t, err)
	assert.True(t, rag.IsRejection(err))
}

func TestDocumentService_IngestDirectory(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "b.bin"), []byte("junk"), 0o644))

	svc := newTestDocumentService(t, t.TempDir(), t.TempDir())

	result, err := svc.IngestDirectory(context.Background(), dataDir)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Rejected)
	assert.Equal(t, 0, result.Failed)
}

func TestDocumentService_IngestDataDir(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "notes.txt"), []byte("personal notes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "junk.bin"), []byte("junk"), 0o644))

	svc := newTestDocumentService(t, t.TempDir(), dataDir)

	// 不接受调用方指定路径,只摄取配置的数据目录
	result, err := svc.IngestDataDir(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Rejected)
}

func TestDocumentService_ListUploadsMissingDir(t *testing.T) {
	svc := newTestDocumentService(t, filepath.Join(t.TempDir(), "does-not-exist"), t.TempDir())

	files, err := svc.ListUploads()
	require.NoError(t, err)
	assert.Empty(t, files)
}
