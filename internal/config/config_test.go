package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// 固定环境,避免外部变量影响默认值断言
	for _, key := range []string{
		"SERVER_PORT", "VECTOR_STORE_PROVIDER", "VECTOR_INDEX_NAME", "MILVUS_ADDRESS",
		"EMBEDDING_MODEL", "OLLAMA_HOST", "OLLAMA_MODEL",
		"RAG_CHUNK_SIZE", "RAG_CHUNK_OVERLAP", "RAG_TOP_K", "UPLOAD_DIR", "DATA_DIR",
	} {
		t.Setenv(key, "")
	}

	require.NoError(t, LoadConfig())

	assert.Equal(t, "8080", AppConfig.Server.Port)
	assert.Equal(t, 1000, AppConfig.RAG.ChunkSize)
	assert.Equal(t, 200, AppConfig.RAG.ChunkOverlap)
	assert.Equal(t, 3, AppConfig.RAG.TopK)
	assert.Equal(t, "milvus", AppConfig.VectorStore.Provider)
	assert.Equal(t, "jarvis_assistant", AppConfig.VectorStore.IndexName)
	assert.Equal(t, "localhost:19530", AppConfig.VectorStore.Milvus.Address)
	assert.Equal(t, "text-embedding-3-small", AppConfig.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", AppConfig.LLM.OllamaHost)
	assert.Equal(t, "llama2", AppConfig.LLM.OllamaModel)
	assert.Equal(t, "uploaded_files", AppConfig.Paths.UploadDir)
	assert.Equal(t, "data", AppConfig.Paths.DataDir)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("RAG_CHUNK_SIZE", "500")
	t.Setenv("RAG_TOP_K", "5")
	t.Setenv("VECTOR_STORE_PROVIDER", "memory")
	t.Setenv("OLLAMA_MODEL", "mistral")
	t.Setenv("MILVUS_ADDRESS", "milvus.internal:19530")

	require.NoError(t, LoadConfig())

	assert.Equal(t, 500, AppConfig.RAG.ChunkSize)
	assert.Equal(t, 5, AppConfig.RAG.TopK)
	assert.Equal(t, "memory", AppConfig.VectorStore.Provider)
	assert.Equal(t, "mistral", AppConfig.LLM.OllamaModel)
	assert.Equal(t, "milvus.internal:19530", AppConfig.VectorStore.Milvus.Address)
}

func TestLoadConfig_APIKeyFansOut(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	require.NoError(t, LoadConfig())

	assert.Equal(t, "sk-test", AppConfig.Embedding.APIKey)
	assert.Equal(t, "sk-test", AppConfig.LLM.OpenAIAPIKey)
}
