package rag

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/jarvisai/assistant-go/internal/ollama"
)

// LLMProvider LLM提供方抽象
type LLMProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
	Probe(ctx context.Context) error
}

// ProviderState LLM提供方选择状态机
type ProviderState int

const (
	StateUninitialized ProviderState = iota
	StateProbingPrimary
	StateProbingSecondary
	StateReady
	StateUnavailable
)

func (s ProviderState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateProbingPrimary:
		return "probing_primary"
	case StateProbingSecondary:
		return "probing_secondary"
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// LLMSelection 初始化时确定的提供方选择结果
type LLMSelection struct {
	Provider LLMProvider
	State    ProviderState
}

// Ready LLM是否可用
func (s LLMSelection) Ready() bool {
	return s.State == StateReady && s.Provider != nil
}

// ProviderName 返回选中的提供方名称
func (s LLMSelection) ProviderName() string {
	if !s.Ready() {
		return "unavailable"
	}
	return s.Provider.Name()
}

// SelectLLMProvider 两级降级选择LLM提供方:
// 先探测本地提供方，失败后尝试备用提供方，两者都失败则标记不可用。
// 选择只在初始化时进行一次，之后不再重新探测。
func SelectLLMProvider(ctx context.Context, primary, secondary LLMProvider, logger *zap.Logger) LLMSelection {
	state := StateUninitialized

	if primary != nil {
		state = StateProbingPrimary
		logger.Info("LLM provider selection",
			zap.String("state", state.String()),
			zap.String("provider", primary.Name()))
		err := primary.Probe(ctx)
		if err == nil {
			logger.Info("Connected to primary LLM provider", zap.String("provider", primary.Name()))
			return LLMSelection{Provider: primary, State: StateReady}
		}
		logger.Warn("Primary LLM provider not available", zap.String("provider", primary.Name()), zap.Error(err))
	}

	if secondary != nil {
		state = StateProbingSecondary
		logger.Info("LLM provider selection",
			zap.String("state", state.String()),
			zap.String("provider", secondary.Name()))
		err := secondary.Probe(ctx)
		if err == nil {
			logger.Info("Using secondary LLM provider", zap.String("provider", secondary.Name()))
			return LLMSelection{Provider: secondary, State: StateReady}
		}
		logger.Warn("Secondary LLM provider not available", zap.String("provider", secondary.Name()), zap.Error(err))
	}

	logger.Warn("No LLM provider available, answers will degrade to raw context",
		zap.String("last_state", state.String()))
	return LLMSelection{State: StateUnavailable}
}

// OllamaProvider 本地Ollama提供方
type OllamaProvider struct {
	service *ollama.Service
}

// NewOllamaProvider 创建Ollama提供方
func NewOllamaProvider(service *ollama.Service) *OllamaProvider {
	if service == nil {
		return nil
	}
	return &OllamaProvider{service: service}
}

func (p *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.service.Generate(ctx, prompt)
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

func (p *OllamaProvider) Probe(ctx context.Context) error {
	return p.service.Probe(ctx)
}

// OpenAIProvider 托管的备用提供方
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIProvider 创建OpenAI提供方，未配置密钥时返回nil
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	return &OpenAIProvider{
		client:      openai.NewClient(apiKey),
		model:       openai.GPT3Dot5Turbo,
		temperature: 0.7,
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Probe 备用提供方按凭证存在性判定，不发请求
func (p *OpenAIProvider) Probe(ctx context.Context) error {
	if p.client == nil {
		return errors.New("openai client not initialized")
	}
	return nil
}
