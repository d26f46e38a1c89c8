package rag

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ContextItem 检索得到的上下文片段，随查询产生、立即被答案合成消费
type ContextItem struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// retrieveTimeout 单次检索的总时限
const retrieveTimeout = 30 * time.Second

// Retriever 查询检索器: 查询向量化 → 近邻检索 → 上下文提取
type Retriever struct {
	embedder Embedder
	store    VectorStore
	topK     int
	logger   *zap.Logger
}

// NewRetriever 创建检索器，embedder必须与入库使用同一模型
func NewRetriever(embedder Embedder, store VectorStore, topK int, logger *zap.Logger) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		topK:     topK,
		logger:   logger,
	}
}

// Retrieve 检索与查询最相关的上下文，按相似度降序排列。
// 向量存储不可用或检索失败时返回空结果，不向调用方抛错。
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) []ContextItem {
	if topK <= 0 {
		topK = r.topK
	}

	if r.store == nil || !r.store.Ready() {
		r.logger.Warn("Vector store not available, returning empty context")
		return []ContextItem{}
	}
	if r.embedder == nil || !r.embedder.Ready() {
		r.logger.Warn("Embedder not available, returning empty context")
		return []ContextItem{}
	}

	ctx, cancel := context.WithTimeout(ctx, retrieveTimeout)
	defer cancel()

	embedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		r.logger.Error("Failed to embed query", zap.Error(err))
		return []ContextItem{}
	}

	matches, err := r.store.Query(ctx, embedding, topK)
	if err != nil {
		r.logger.Error("Failed to query vector store", zap.Error(err))
		return []ContextItem{}
	}

	contexts := make([]ContextItem, 0, len(matches))
	for _, match := range matches {
		// 元数据缺失时降级为空文本和Unknown来源
		text := match.Metadata["text"]
		source := match.Metadata["source"]
		if source == "" {
			source = "Unknown"
		}
		contexts = append(contexts, ContextItem{
			Text:   text,
			Source: source,
			Score:  match.Score,
		})
	}

	return contexts
}
