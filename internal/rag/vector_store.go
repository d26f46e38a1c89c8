package rag

import (
	"context"
	"errors"
)

// Record 向量入库记录，ID由 来源文件名_序号 派生，重新入库时覆盖旧记录
type Record struct {
	ID       string
	Vector   []float32
	Metadata map[string]string
}

// QueryMatch 近邻检索结果
type QueryMatch struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// IndexStats 索引统计信息
type IndexStats struct {
	TotalVectorCount int64   `json:"total_vector_count"`
	Dimension        int     `json:"dimension"`
	IndexFullness    float64 `json:"index_fullness"`
}

// VectorStore 向量存储抽象
type VectorStore interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, topK int) ([]QueryMatch, error)
	Stats(ctx context.Context) (IndexStats, error)
	Dimension() int
	Ready() bool
}

// NoopVectorStore 未配置向量存储时的占位实现
type NoopVectorStore struct{}

func (n *NoopVectorStore) Upsert(ctx context.Context, records []Record) error {
	return errors.New("vector store not configured")
}

func (n *NoopVectorStore) Query(ctx context.Context, vector []float32, topK int) ([]QueryMatch, error) {
	return nil, errors.New("vector store not configured")
}

func (n *NoopVectorStore) Stats(ctx context.Context) (IndexStats, error) {
	return IndexStats{}, errors.New("vector store not configured")
}

func (n *NoopVectorStore) Dimension() int {
	return 0
}

func (n *NoopVectorStore) Ready() bool {
	return false
}
