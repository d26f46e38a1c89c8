package rag

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// MilvusOptions Milvus客户端配置
type MilvusOptions struct {
	Address        string
	Username       string
	Password       string
	CollectionName string
	VectorSize     int
	Database       string
	UseTLS         bool
	Timeout        time.Duration
}

type milvusVectorStore struct {
	milvusClient   client.Client
	collectionName string
	vectorSize     int
	database       string
}

// NewMilvusVectorStore 创建Milvus向量存储，集合按余弦相似度与固定维度建立
func NewMilvusVectorStore(opts MilvusOptions) (VectorStore, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.CollectionName == "" {
		opts.CollectionName = "jarvis_assistant"
	}
	if opts.VectorSize == 0 {
		opts.VectorSize = 1536
	}
	if opts.Database == "" {
		opts.Database = "default"
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	milvusClient, err := client.NewClient(
		ctx,
		client.Config{
			Address:       opts.Address,
			DBName:        opts.Database,
			Username:      opts.Username,
			Password:      opts.Password,
			EnableTLSAuth: opts.UseTLS,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	store := &milvusVectorStore{
		milvusClient:   milvusClient,
		collectionName: opts.CollectionName,
		vectorSize:     opts.VectorSize,
		database:       opts.Database,
	}

	if err := store.ensureCollection(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *milvusVectorStore) ensureCollection(ctx context.Context) error {
	hasCollection, err := s.milvusClient.HasCollection(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if !hasCollection {
		schema := &entity.Schema{
			CollectionName: s.collectionName,
			Description:    "Personal assistant note chunks",
			Fields: []*entity.Field{
				{
					Name:       "id",
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					AutoID:     false,
					TypeParams: map[string]string{
						"max_length": "512",
					},
				},
				{
					Name:     "source",
					DataType: entity.FieldTypeVarChar,
					TypeParams: map[string]string{
						"max_length": "512",
					},
				},
				{
					Name:     "chunk_index",
					DataType: entity.FieldTypeInt64,
				},
				{
					Name:     "text",
					DataType: entity.FieldTypeVarChar,
					TypeParams: map[string]string{
						"max_length": "65535",
					},
				},
				{
					Name:     "vector",
					DataType: entity.FieldTypeFloatVector,
					TypeParams: map[string]string{
						"dim": fmt.Sprintf("%d", s.vectorSize),
					},
				},
			},
		}

		if err := s.milvusClient.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		var index entity.Index
		var indexErr error
		index, indexErr = entity.NewIndexHNSW(entity.COSINE, 8, 64)
		if indexErr != nil {
			// 如果HNSW失败，尝试使用IVF_FLAT
			index, indexErr = entity.NewIndexIvfFlat(entity.COSINE, 128)
			if indexErr != nil {
				return fmt.Errorf("failed to create index: %w", indexErr)
			}
		}

		if err := s.milvusClient.CreateIndex(ctx, s.collectionName, "vector", index, false); err != nil {
			// 索引创建失败不影响使用，只记录警告
			fmt.Printf("warning: failed to create index for collection %s: %v\n", s.collectionName, err)
		}
	}

	// 检索前集合必须加载
	if err := s.milvusClient.LoadCollection(ctx, s.collectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	return nil
}

func (s *milvusVectorStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, 0, len(records))
	sources := make([]string, 0, len(records))
	chunkIndexes := make([]int64, 0, len(records))
	texts := make([]string, 0, len(records))
	vectors := make([][]float32, 0, len(records))

	for _, record := range records {
		if len(record.Vector) != s.vectorSize {
			return fmt.Errorf("embedding dimension %d does not match index dimension %d", len(record.Vector), s.vectorSize)
		}
		ids = append(ids, record.ID)
		sources = append(sources, record.Metadata["source"])
		texts = append(texts, record.Metadata["text"])
		vectors = append(vectors, record.Vector)

		idx, _ := strconv.ParseInt(record.Metadata["chunk_index"], 10, 64)
		chunkIndexes = append(chunkIndexes, idx)
	}

	idColumn := entity.NewColumnVarChar("id", ids)
	sourceColumn := entity.NewColumnVarChar("source", sources)
	chunkIndexColumn := entity.NewColumnInt64("chunk_index", chunkIndexes)
	textColumn := entity.NewColumnVarChar("text", texts)
	vectorColumn := entity.NewColumnFloatVector("vector", s.vectorSize, vectors)

	// Upsert保证同ID记录被覆盖而不是重复插入
	_, err := s.milvusClient.Upsert(ctx, s.collectionName, "", idColumn, sourceColumn, chunkIndexColumn, textColumn, vectorColumn)
	if err != nil {
		return fmt.Errorf("milvus upsert failed: %w", err)
	}

	if err := s.milvusClient.Flush(ctx, s.collectionName, false); err != nil {
		// 刷新失败不影响插入，只记录警告
		fmt.Printf("warning: failed to flush collection %s: %v\n", s.collectionName, err)
	}

	return nil
}

func (s *milvusVectorStore) Query(ctx context.Context, vector []float32, topK int) ([]QueryMatch, error) {
	if len(vector) == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = 3
	}

	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("构建搜索参数失败: %w", err)
	}
	queryVector := entity.FloatVector(vector)
	searchResults, err := s.milvusClient.Search(
		ctx,
		s.collectionName,
		[]string{},
		"",
		[]string{"source", "text"},
		[]entity.Vector{queryVector},
		"vector",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	if len(searchResults) == 0 {
		return []QueryMatch{}, nil
	}
	result := searchResults[0]
	if result.Err != nil {
		return nil, fmt.Errorf("milvus search error: %w", result.Err)
	}
	if result.ResultCount == 0 {
		return []QueryMatch{}, nil
	}

	var ids []string
	if idCol, ok := result.IDs.(*entity.ColumnVarChar); ok {
		ids = idCol.Data()
	}

	var sources []string
	var texts []string
	for _, field := range result.Fields {
		switch field.Name() {
		case "source":
			if val, ok := field.(*entity.ColumnVarChar); ok {
				sources = val.Data()
			}
		case "text":
			if val, ok := field.(*entity.ColumnVarChar); ok {
				texts = val.Data()
			}
		}
	}

	matches := make([]QueryMatch, 0, result.ResultCount)
	for i := 0; i < result.ResultCount; i++ {
		metadata := make(map[string]string)
		if i < len(sources) {
			metadata["source"] = sources[i]
		}
		if i < len(texts) {
			metadata["text"] = texts[i]
		}

		id := ""
		if i < len(ids) {
			id = ids[i]
		}

		score := float64(0)
		if i < len(result.Scores) {
			score = float64(result.Scores[i])
		}

		matches = append(matches, QueryMatch{
			ID:       id,
			Score:    score,
			Metadata: metadata,
		})
	}

	return matches, nil
}

func (s *milvusVectorStore) Stats(ctx context.Context) (IndexStats, error) {
	stats, err := s.milvusClient.GetCollectionStatistics(ctx, s.collectionName)
	if err != nil {
		return IndexStats{}, fmt.Errorf("failed to get collection statistics: %w", err)
	}

	var rowCount int64
	if raw, ok := stats["row_count"]; ok {
		rowCount, _ = strconv.ParseInt(raw, 10, 64)
	}

	return IndexStats{
		TotalVectorCount: rowCount,
		Dimension:        s.vectorSize,
	}, nil
}

func (s *milvusVectorStore) Dimension() int {
	return s.vectorSize
}

func (s *milvusVectorStore) Ready() bool {
	if s.milvusClient == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.milvusClient.ListCollections(ctx)
	return err == nil
}
