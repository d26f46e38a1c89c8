package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNoContent 文件没有可提取的文本内容
var ErrNoContent = errors.New("no content extracted")

// upsertBatchSize 入库批次大小，避免超过存储端单次请求限制
const upsertBatchSize = 100

// ingestTimeout 单个文件从解析到入库的总时限
const ingestTimeout = 5 * time.Minute

// Ingestion 文档入库流水线: 读取 → 分块 → 向量化 → 入库
type Ingestion struct {
	parser   *FileParserManager
	chunker  *Chunker
	embedder Embedder
	store    VectorStore
	logger   *zap.Logger
}

// NewIngestion 创建入库流水线
func NewIngestion(parser *FileParserManager, chunker *Chunker, embedder Embedder, store VectorStore, logger *zap.Logger) *Ingestion {
	return &Ingestion{
		parser:   parser,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// SupportedFormats 支持的文件扩展名
func (p *Ingestion) SupportedFormats() []string {
	return p.parser.GetSupportedFormats()
}

// CheckDimensions 校验嵌入维度与索引维度一致，不一致时拒绝任何入库
func (p *Ingestion) CheckDimensions() error {
	if !p.embedder.Ready() || !p.store.Ready() {
		return nil
	}
	if p.embedder.Dimensions() != p.store.Dimension() {
		return fmt.Errorf("embedding dimension %d does not match index dimension %d",
			p.embedder.Dimensions(), p.store.Dimension())
	}
	return nil
}

// IngestFile 完整入库单个文件，返回入库的chunk数量。
// 重新入库同名文件时记录ID不变，旧记录被覆盖；若新版本chunk数变少，
// 多出的旧尾部chunk会残留在索引中，这里不做清理。
func (p *Ingestion) IngestFile(ctx context.Context, filePath, fileName string) (int, error) {
	if fileName == "" {
		fileName = filepath.Base(filePath)
	}

	ctx, cancel := context.WithTimeout(ctx, ingestTimeout)
	defer cancel()

	p.logger.Info("Processing file", zap.String("file", fileName))

	text, err := p.readFile(filePath, fileName)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w from %s", ErrNoContent, fileName)
	}

	chunks := p.chunker.Split(text, fileName)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w from %s", ErrNoContent, fileName)
	}
	p.logger.Info("Created chunks", zap.String("file", fileName), zap.Int("chunks", len(chunks)))

	if err := p.CheckDimensions(); err != nil {
		return 0, err
	}

	// 一个文件的所有chunk合并为一次向量化调用
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to create embeddings for %s: %w", fileName, err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedding count %d does not match chunk count %d", len(vectors), len(chunks))
	}

	records := make([]Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = Record{
			ID:     fmt.Sprintf("%s_%d", chunk.Source, chunk.Index),
			Vector: vectors[i],
			Metadata: map[string]string{
				"text":        chunk.Text,
				"source":      chunk.Source,
				"chunk_index": strconv.Itoa(chunk.Index),
			},
		}
	}

	// 分批入库
	for start := 0; start < len(records); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := p.store.Upsert(ctx, records[start:end]); err != nil {
			return 0, fmt.Errorf("failed to store chunks from %s: %w", fileName, err)
		}
	}

	p.logger.Info("Stored chunks",
		zap.String("file", fileName),
		zap.Int("chunks", len(records)))

	return len(records), nil
}

func (p *Ingestion) readFile(filePath, fileName string) (string, error) {
	if !p.parser.Supports(fileName) {
		return "", &ErrUnsupportedFormat{Filename: fileName}
	}

	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("读取文件失败: %w", err)
	}
	defer f.Close()

	return p.parser.ParseFile(f, fileName)
}

// FileResult 单个文件的入库结果
type FileResult struct {
	FileName string `json:"file_name"`
	Chunks   int    `json:"chunks"`
	Status   string `json:"status"` // ok | rejected | failed
	Error    string `json:"error,omitempty"`
}

// BatchResult 批量入库结果
type BatchResult struct {
	Succeeded int          `json:"succeeded"`
	Rejected  int          `json:"rejected"`
	Failed    int          `json:"failed"`
	Files     []FileResult `json:"files"`
}

// IngestBatch 按顺序入库一批文件，单个文件的失败不会中断整批处理
func (p *Ingestion) IngestBatch(ctx context.Context, paths map[string]string) BatchResult {
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	var result BatchResult
	for _, name := range names {
		count, err := p.IngestFile(ctx, paths[name], name)
		fileResult := FileResult{FileName: name, Chunks: count}
		switch {
		case err == nil:
			fileResult.Status = "ok"
			result.Succeeded++
		case IsRejection(err):
			fileResult.Status = "rejected"
			fileResult.Error = err.Error()
			result.Rejected++
			p.logger.Warn("File rejected", zap.String("file", name), zap.Error(err))
		default:
			fileResult.Status = "failed"
			fileResult.Error = err.Error()
			result.Failed++
			p.logger.Error("File ingestion failed", zap.String("file", name), zap.Error(err))
		}
		result.Files = append(result.Files, fileResult)
	}
	return result
}

// IngestDirectory 入库目录下的所有常规文件
func (p *Ingestion) IngestDirectory(ctx context.Context, dir string) (BatchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return BatchResult{}, fmt.Errorf("读取目录失败: %w", err)
	}

	paths := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths[entry.Name()] = filepath.Join(dir, entry.Name())
	}

	return p.IngestBatch(ctx, paths), nil
}

// IsRejection 区分格式拒绝与真正的处理失败
func IsRejection(err error) bool {
	var unsupported *ErrUnsupportedFormat
	return errors.As(err, &unsupported) || errors.Is(err, ErrNoContent)
}
