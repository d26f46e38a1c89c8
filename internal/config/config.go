package config

import (
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	RAG         RAGConfig
	VectorStore VectorStoreConfig
	Embedding   EmbeddingConfig
	LLM         LLMConfig
	Paths       PathsConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type RAGConfig struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

type VectorStoreConfig struct {
	Provider  string
	IndexName string
	Milvus    MilvusConfig
}

type MilvusConfig struct {
	Address  string
	Username string
	Password string
	Database string
	TLS      bool
}

type EmbeddingConfig struct {
	APIKey string
	Model  string
}

type LLMConfig struct {
	OllamaHost   string
	OllamaModel  string
	OpenAIAPIKey string
}

type PathsConfig struct {
	UploadDir string
	DataDir   string
}

var AppConfig *Config

func LoadConfig() error {
	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.env", "development")

	// RAG配置默认值
	viper.SetDefault("rag.chunk_size", 1000)
	viper.SetDefault("rag.chunk_overlap", 200)
	viper.SetDefault("rag.top_k", 3)

	// 向量存储配置默认值
	viper.SetDefault("vector_store.provider", "milvus")
	viper.SetDefault("vector_store.index_name", "jarvis_assistant")
	viper.SetDefault("vector_store.milvus.address", "localhost:19530")
	viper.SetDefault("vector_store.milvus.database", "default")
	viper.SetDefault("vector_store.milvus.tls", false)

	// Embedding配置默认值
	viper.SetDefault("embedding.model", "text-embedding-3-small")

	// LLM配置默认值
	viper.SetDefault("llm.ollama_host", "http://localhost:11434")
	viper.SetDefault("llm.ollama_model", "llama2")

	// 目录默认值
	viper.SetDefault("paths.upload_dir", "uploaded_files")
	viper.SetDefault("paths.data_dir", "data")

	// 读取环境变量
	viper.SetEnvPrefix("JARVIS")
	viper.AutomaticEnv()

	if port := os.Getenv("SERVER_PORT"); port != "" {
		viper.Set("server.port", port)
	}
	if env := os.Getenv("ENV"); env != "" {
		viper.Set("server.env", env)
	}

	// 向量存储配置从环境变量读取
	if provider := os.Getenv("VECTOR_STORE_PROVIDER"); provider != "" {
		viper.Set("vector_store.provider", provider)
	}
	if indexName := os.Getenv("VECTOR_INDEX_NAME"); indexName != "" {
		viper.Set("vector_store.index_name", indexName)
	}
	if milvusAddr := os.Getenv("MILVUS_ADDRESS"); milvusAddr != "" {
		viper.Set("vector_store.milvus.address", milvusAddr)
	}
	if milvusUser := os.Getenv("MILVUS_USERNAME"); milvusUser != "" {
		viper.Set("vector_store.milvus.username", milvusUser)
	}
	if milvusPass := os.Getenv("MILVUS_PASSWORD"); milvusPass != "" {
		viper.Set("vector_store.milvus.password", milvusPass)
	}
	if milvusDB := os.Getenv("MILVUS_DATABASE"); milvusDB != "" {
		viper.Set("vector_store.milvus.database", milvusDB)
	}
	if milvusTLS := os.Getenv("MILVUS_TLS"); milvusTLS == "true" {
		viper.Set("vector_store.milvus.tls", true)
	}

	// Embedding配置环境变量
	if openaiKey := os.Getenv("OPENAI_API_KEY"); openaiKey != "" {
		viper.Set("embedding.api_key", openaiKey)
		viper.Set("llm.openai_api_key", openaiKey)
	}
	if embeddingModel := os.Getenv("EMBEDDING_MODEL"); embeddingModel != "" {
		viper.Set("embedding.model", embeddingModel)
	}

	// LLM配置环境变量
	if ollamaHost := os.Getenv("OLLAMA_HOST"); ollamaHost != "" {
		viper.Set("llm.ollama_host", ollamaHost)
	}
	if ollamaModel := os.Getenv("OLLAMA_MODEL"); ollamaModel != "" {
		viper.Set("llm.ollama_model", ollamaModel)
	}

	// RAG配置环境变量
	if chunkSize := os.Getenv("RAG_CHUNK_SIZE"); chunkSize != "" {
		viper.Set("rag.chunk_size", chunkSize)
	}
	if chunkOverlap := os.Getenv("RAG_CHUNK_OVERLAP"); chunkOverlap != "" {
		viper.Set("rag.chunk_overlap", chunkOverlap)
	}
	if topK := os.Getenv("RAG_TOP_K"); topK != "" {
		viper.Set("rag.top_k", topK)
	}

	// 目录配置环境变量
	if uploadDir := os.Getenv("UPLOAD_DIR"); uploadDir != "" {
		viper.Set("paths.upload_dir", uploadDir)
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		viper.Set("paths.data_dir", dataDir)
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Env:  viper.GetString("server.env"),
		},
		RAG: RAGConfig{
			ChunkSize:    viper.GetInt("rag.chunk_size"),
			ChunkOverlap: viper.GetInt("rag.chunk_overlap"),
			TopK:         viper.GetInt("rag.top_k"),
		},
		VectorStore: VectorStoreConfig{
			Provider:  viper.GetString("vector_store.provider"),
			IndexName: viper.GetString("vector_store.index_name"),
			Milvus: MilvusConfig{
				Address:  viper.GetString("vector_store.milvus.address"),
				Username: viper.GetString("vector_store.milvus.username"),
				Password: viper.GetString("vector_store.milvus.password"),
				Database: viper.GetString("vector_store.milvus.database"),
				TLS:      viper.GetBool("vector_store.milvus.tls"),
			},
		},
		Embedding: EmbeddingConfig{
			APIKey: viper.GetString("embedding.api_key"),
			Model:  viper.GetString("embedding.model"),
		},
		LLM: LLMConfig{
			OllamaHost:   viper.GetString("llm.ollama_host"),
			OllamaModel:  viper.GetString("llm.ollama_model"),
			OpenAIAPIKey: viper.GetString("llm.openai_api_key"),
		},
		Paths: PathsConfig{
			UploadDir: viper.GetString("paths.upload_dir"),
			DataDir:   viper.GetString("paths.data_dir"),
		},
	}

	return nil
}
