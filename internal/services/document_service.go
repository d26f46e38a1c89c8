package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jarvisai/assistant-go/internal/rag"
)

// UploadedFile 已上传文件的描述
type UploadedFile struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// DocumentService 文档服务,负责保存上传文件并触发摄取
type DocumentService struct {
	ingestion *rag.Ingestion
	metrics   *MetricsService
	uploadDir string
	dataDir   string
	logger    *zap.Logger
}

// NewDocumentService 创建文档服务
func NewDocumentService(ingestion *rag.Ingestion, metrics *MetricsService, uploadDir, dataDir string, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.L()
	}
	return &DocumentService{
		ingestion: ingestion,
		metrics:   metrics,
		uploadDir: uploadDir,
		dataDir:   dataDir,
		logger:    logger,
	}
}

// SupportedFormats 支持的文件扩展名
func (s *DocumentService) SupportedFormats() []string {
	return s.ingestion.SupportedFormats()
}

// SaveAndIngest 保存上传内容到上传目录并摄取,返回分块数
func (s *DocumentService) SaveAndIngest(ctx context.Context, fileName string, reader io.Reader) (int, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return 0, fmt.Errorf("创建上传目录失败: %w", err)
	}

	destPath := filepath.Join(s.uploadDir, filepath.Base(fileName))
	dest, err := os.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("保存上传文件失败: %w", err)
	}
	if _, err := io.Copy(dest, reader); err != nil {
		dest.Close()
		return 0, fmt.Errorf("写入上传文件失败: %w", err)
	}
	if err := dest.Close(); err != nil {
		return 0, fmt.Errorf("写入上传文件失败: %w", err)
	}

	chunks, err := s.ingestion.IngestFile(ctx, destPath, filepath.Base(fileName))
	if s.metrics != nil {
		s.metrics.RecordIngestion(ingestStatus(err), chunks)
	}
	if err != nil {
		return 0, err
	}

	s.logger.Info("Document ingested",
		zap.String("file", filepath.Base(fileName)),
		zap.Int("chunks", chunks))
	return chunks, nil
}

// IngestDataDir 摄取配置的数据目录下的全部支持文件
func (s *DocumentService) IngestDataDir(ctx context.Context) (rag.BatchResult, error) {
	return s.IngestDirectory(ctx, s.dataDir)
}

// IngestDirectory 摄取目录下的全部支持文件
func (s *DocumentService) IngestDirectory(ctx context.Context, dir string) (rag.BatchResult, error) {
	result, err := s.ingestion.IngestDirectory(ctx, dir)
	if err != nil {
		return result, err
	}
	if s.metrics != nil {
		for _, f := range result.Files {
			s.metrics.RecordIngestion(f.Status, f.Chunks)
		}
	}
	return result, nil
}

// IngestPath 摄取磁盘上的单个文件
func (s *DocumentService) IngestPath(ctx context.Context, path string) (int, error) {
	chunks, err := s.ingestion.IngestFile(ctx, path, "")
	if s.metrics != nil {
		s.metrics.RecordIngestion(ingestStatus(err), chunks)
	}
	return chunks, err
}

// ListUploads 列出上传目录中的文件,按文件名排序
func (s *DocumentService) ListUploads() ([]UploadedFile, error) {
	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []UploadedFile{}, nil
		}
		return nil, fmt.Errorf("读取上传目录失败: %w", err)
	}

	files := make([]UploadedFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, UploadedFile{
			Name:       entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// ingestStatus 将摄取错误归类为指标标签
func ingestStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case rag.IsRejection(err):
		return "rejected"
	default:
		return "failed"
	}
}
