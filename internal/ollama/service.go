package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jarvisai/assistant-go/internal/logger"
	"go.uber.org/zap"
)

// Service 本地Ollama服务客户端，支持文本生成与模型查询
type Service struct {
	baseURL string
	model   string
	client  *http.Client
	limiter sync.Mutex
}

// GenerateRequest 文本生成请求
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// GenerateResponse 文本生成响应
type GenerateResponse struct {
	Model     string `json:"model"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	EvalCount int    `json:"eval_count"`
}

// TagsResponse 本地模型列表响应
type TagsResponse struct {
	Models []ModelInfo `json:"models"`
}

// ModelInfo 本地模型信息
type ModelInfo struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modified_at"`
}

// Error Ollama API错误
type Error struct {
	Message string `json:"error"`
}

// NewService 创建Ollama服务客户端
func NewService(baseURL, model string) *Service {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama2"
	}

	return &Service{
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: 120 * time.Second, // 本地模型生成可能较慢
		},
	}
}

// Model 返回配置的模型名
func (s *Service) Model() string {
	return s.model
}

// Generate 调用文本生成接口
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("ollama service not initialized")
	}

	s.limiter.Lock()
	defer s.limiter.Unlock()

	jsonData, err := json.Marshal(GenerateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("序列化请求失败: %w", err)
	}

	url := fmt.Sprintf("%s/api/generate", s.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("API调用失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp Error
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Message != "" {
			return "", fmt.Errorf("Ollama API错误: %s", errorResp.Message)
		}
		return "", fmt.Errorf("Ollama API错误: HTTP %d - %s", resp.StatusCode, string(body))
	}

	var genResp GenerateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}

	logger.GetLogger().Info("Ollama generate success",
		zap.String("model", s.model),
		zap.Int("eval_count", genResp.EvalCount))

	return genResp.Response, nil
}

// ListModels 查询本地已安装的模型
func (s *Service) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("ollama service not initialized")
	}

	url := fmt.Sprintf("%s/api/tags", s.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("API调用失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Ollama API错误: HTTP %d - %s", resp.StatusCode, string(body))
	}

	var tagsResp TagsResponse
	if err := json.Unmarshal(body, &tagsResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	return tagsResp.Models, nil
}

// Probe 轻量探测本地服务是否可达且模型可用
func (s *Service) Probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	models, err := s.ListModels(probeCtx)
	if err != nil {
		return err
	}

	for _, m := range models {
		// 模型名可能带tag后缀，如 llama2:latest
		if m.Name == s.model || strings.HasPrefix(m.Name, s.model+":") {
			return nil
		}
	}
	return fmt.Errorf("model %s not found, run: ollama pull %s", s.model, s.model)
}

// Ready 检查服务是否就绪
func (s *Service) Ready() bool {
	return s != nil && s.client != nil
}
