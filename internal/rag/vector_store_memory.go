package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryVectorStore 进程内向量存储，暴力余弦相似度检索。
// 适用于没有Milvus的本地运行和测试。
type MemoryVectorStore struct {
	mu         sync.RWMutex
	vectorSize int
	records    map[string]Record
}

// NewMemoryVectorStore 创建内存向量存储
func NewMemoryVectorStore(vectorSize int) *MemoryVectorStore {
	if vectorSize <= 0 {
		vectorSize = 1536
	}
	return &MemoryVectorStore{
		vectorSize: vectorSize,
		records:    make(map[string]Record),
	}
}

func (s *MemoryVectorStore) Upsert(ctx context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		if len(record.Vector) != s.vectorSize {
			return fmt.Errorf("embedding dimension %d does not match index dimension %d", len(record.Vector), s.vectorSize)
		}
	}
	// 同ID覆盖，不产生重复记录
	for _, record := range records {
		s.records[record.ID] = record
	}
	return nil
}

func (s *MemoryVectorStore) Query(ctx context.Context, vector []float32, topK int) ([]QueryMatch, error) {
	if len(vector) == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = 3
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	queryNorm := vectorNorm(vector)
	if queryNorm == 0 {
		return nil, fmt.Errorf("query embedding norm is zero")
	}

	matches := make([]QueryMatch, 0, len(s.records))
	for _, record := range s.records {
		matches = append(matches, QueryMatch{
			ID:       record.ID,
			Score:    cosineSimilarity(vector, record.Vector, queryNorm),
			Metadata: record.Metadata,
		})
	}

	sortMatchesByScore(matches)
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *MemoryVectorStore) Stats(ctx context.Context) (IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return IndexStats{
		TotalVectorCount: int64(len(s.records)),
		Dimension:        s.vectorSize,
	}, nil
}

func (s *MemoryVectorStore) Dimension() int {
	return s.vectorSize
}

func (s *MemoryVectorStore) Ready() bool {
	return s != nil
}

func sortMatchesByScore(matches []QueryMatch) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})
}

func vectorNorm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v * v)
	}
	return math.Sqrt(sum)
}

func cosineSimilarity(a, b []float32, normA float64) float64 {
	// 维度不一致的向量不可比
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot float64
	var normB float64
	for i := range a {
		dot += float64(a[i] * b[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (normA * math.Sqrt(normB))
}
