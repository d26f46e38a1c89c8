package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/jarvisai/assistant-go/internal/config"
	"github.com/jarvisai/assistant-go/internal/logger"
	"github.com/jarvisai/assistant-go/internal/ollama"
	"github.com/jarvisai/assistant-go/internal/rag"
	"github.com/jarvisai/assistant-go/internal/services"
)

// RegisterProviders 注册所有依赖提供者
func RegisterProviders(container *dig.Container) error {
	// 注册配置
	if err := container.Provide(func() (*config.Config, error) {
		if config.AppConfig == nil {
			return nil, fmt.Errorf("config not loaded")
		}
		return config.AppConfig, nil
	}); err != nil {
		return err
	}

	// 注册日志
	if err := container.Provide(func() *zap.Logger {
		return logger.GetLogger()
	}); err != nil {
		return err
	}

	// 注册嵌入服务
	if err := container.Provide(func(cfg *config.Config, log *zap.Logger) rag.Embedder {
		if cfg.Embedding.APIKey == "" {
			log.Warn("OPENAI_API_KEY not set, embeddings disabled")
			return &rag.NoopEmbedder{}
		}
		return rag.NewOpenAIEmbedder(cfg.Embedding.APIKey, cfg.Embedding.Model)
	}); err != nil {
		return err
	}

	// 注册向量存储
	if err := container.Provide(func(cfg *config.Config, embedder rag.Embedder, log *zap.Logger) rag.VectorStore {
		return newVectorStore(cfg, embedder, log)
	}); err != nil {
		return err
	}

	// 注册分块器与文件解析
	if err := container.Provide(func(cfg *config.Config) *rag.Chunker {
		return rag.NewChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	}); err != nil {
		return err
	}
	if err := container.Provide(rag.NewFileParserManager); err != nil {
		return err
	}

	// 注册摄取与检索
	if err := container.Provide(rag.NewIngestion); err != nil {
		return err
	}
	if err := container.Provide(func(embedder rag.Embedder, store rag.VectorStore, cfg *config.Config, log *zap.Logger) *rag.Retriever {
		return rag.NewRetriever(embedder, store, cfg.RAG.TopK, log)
	}); err != nil {
		return err
	}

	// 注册LLM:一次性探测并选择提供方
	if err := container.Provide(func(cfg *config.Config, log *zap.Logger) rag.LLMSelection {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		primary := rag.NewOllamaProvider(ollama.NewService(cfg.LLM.OllamaHost, cfg.LLM.OllamaModel))
		var secondary rag.LLMProvider
		if p := rag.NewOpenAIProvider(cfg.LLM.OpenAIAPIKey); p != nil {
			secondary = p
		}
		return rag.SelectLLMProvider(ctx, primary, secondary, log)
	}); err != nil {
		return err
	}
	if err := container.Provide(rag.NewSynthesizer); err != nil {
		return err
	}

	// 注册服务
	if err := container.Provide(services.NewSessionService); err != nil {
		return err
	}
	if err := container.Provide(services.NewMetricsService); err != nil {
		return err
	}
	if err := container.Provide(services.NewAssistantService); err != nil {
		return err
	}
	if err := container.Provide(func(ingestion *rag.Ingestion, metrics *services.MetricsService, cfg *config.Config, log *zap.Logger) *services.DocumentService {
		return services.NewDocumentService(ingestion, metrics, cfg.Paths.UploadDir, cfg.Paths.DataDir, log)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(documents *services.DocumentService, cfg *config.Config, log *zap.Logger) *services.WatcherService {
		return services.NewWatcherService(documents, cfg.Paths.DataDir, log)
	}); err != nil {
		return err
	}

	return nil
}

// newVectorStore 按配置创建向量存储,连接失败时降级为内存实现
func newVectorStore(cfg *config.Config, embedder rag.Embedder, log *zap.Logger) rag.VectorStore {
	dims := embedder.Dimensions()
	if dims == 0 {
		dims = 1536
	}

	switch cfg.VectorStore.Provider {
	case "memory":
		return rag.NewMemoryVectorStore(dims)
	case "milvus", "":
		store, err := rag.NewMilvusVectorStore(rag.MilvusOptions{
			Address:        cfg.VectorStore.Milvus.Address,
			Username:       cfg.VectorStore.Milvus.Username,
			Password:       cfg.VectorStore.Milvus.Password,
			Database:       cfg.VectorStore.Milvus.Database,
			UseTLS:         cfg.VectorStore.Milvus.TLS,
			CollectionName: cfg.VectorStore.IndexName,
			VectorSize:     dims,
		})
		if err != nil {
			log.Warn("Milvus not available, falling back to in-memory vector store", zap.Error(err))
			return rag.NewMemoryVectorStore(dims)
		}
		return store
	default:
		log.Warn("Unknown vector store provider, using noop store",
			zap.String("provider", cfg.VectorStore.Provider))
		return &rag.NoopVectorStore{}
	}
}
