package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// 新写入的文件稍作等待,避免读到写了一半的内容
const watcherSettleDelay = 2 * time.Second

// WatcherService 监听数据目录,自动摄取新增文件
type WatcherService struct {
	documents *DocumentService
	dataDir   string
	logger    *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcherService 创建目录监听服务
func NewWatcherService(documents *DocumentService, dataDir string, logger *zap.Logger) *WatcherService {
	if logger == nil {
		logger = zap.L()
	}
	return &WatcherService{
		documents: documents,
		dataDir:   dataDir,
		logger:    logger,
	}
}

// Start 开始监听数据目录
func (s *WatcherService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听器失败: %w", err)
	}
	if err := watcher.Add(s.dataDir); err != nil {
		watcher.Close()
		return fmt.Errorf("监听数据目录失败: %w", err)
	}

	s.watcher = watcher
	s.done = make(chan struct{})
	go s.loop(ctx, watcher, s.done)

	s.logger.Info("Watching data directory", zap.String("dir", s.dataDir))
	return nil
}

// Stop 停止监听
func (s *WatcherService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return
	}
	s.watcher.Close()
	<-s.done
	s.watcher = nil
}

func (s *WatcherService) loop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			s.handleFile(ctx, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

func (s *WatcherService) handleFile(ctx context.Context, path string) {
	time.Sleep(watcherSettleDelay)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	chunks, err := s.documents.IngestPath(ctx, path)
	if err != nil {
		s.logger.Warn("Auto ingestion failed",
			zap.String("file", filepath.Base(path)),
			zap.Error(err))
		return
	}
	s.logger.Info("Auto ingested file",
		zap.String("file", filepath.Base(path)),
		zap.Int("chunks", chunks))
}
