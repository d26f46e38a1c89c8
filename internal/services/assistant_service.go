package services

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jarvisai/assistant-go/internal/rag"
)

// ChatResponse 问答接口的返回体
type ChatResponse struct {
	SessionID  string   `json:"session_id"`
	Query      string   `json:"query"`
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	NumSources int      `json:"num_sources"`
}

// AssistantService 问答服务,串联检索与回答生成
type AssistantService struct {
	retriever   *rag.Retriever
	synthesizer *rag.Synthesizer
	sessions    *SessionService
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewAssistantService 创建问答服务
func NewAssistantService(retriever *rag.Retriever, synthesizer *rag.Synthesizer, sessions *SessionService, metrics *MetricsService, logger *zap.Logger) *AssistantService {
	if logger == nil {
		logger = zap.L()
	}
	return &AssistantService{
		retriever:   retriever,
		synthesizer: synthesizer,
		sessions:    sessions,
		metrics:     metrics,
		logger:      logger,
	}
}

// Chat 处理一次提问:检索上下文,生成回答,记录会话历史
func (s *AssistantService) Chat(ctx context.Context, sessionID, query string) (*ChatResponse, error) {
	start := time.Now()
	sessionID = s.sessions.EnsureSession(sessionID)

	contexts := s.retriever.Retrieve(ctx, query, 0)
	answer := s.synthesizer.Synthesize(ctx, query, contexts)
	sources := collectSources(contexts)

	s.sessions.Append(sessionID, Turn{Role: "user", Content: query})
	s.sessions.Append(sessionID, Turn{Role: "assistant", Content: answer, Sources: sources})

	if s.metrics != nil {
		s.metrics.RecordQuery(s.synthesizer.ProviderName(), len(contexts), time.Since(start))
	}

	s.logger.Info("Chat answered",
		zap.String("session_id", sessionID),
		zap.Int("num_contexts", len(contexts)),
		zap.String("provider", s.synthesizer.ProviderName()),
		zap.Duration("elapsed", time.Since(start)))

	return &ChatResponse{
		SessionID:  sessionID,
		Query:      query,
		Answer:     answer,
		Sources:    sources,
		NumSources: len(sources),
	}, nil
}

// History 返回会话历史
func (s *AssistantService) History(sessionID string) []Turn {
	return s.sessions.History(sessionID)
}

// ClearHistory 清空会话历史
func (s *AssistantService) ClearHistory(sessionID string) {
	s.sessions.Clear(sessionID)
}

// collectSources 去重并排序上下文来源
func collectSources(contexts []rag.ContextItem) []string {
	seen := make(map[string]struct{}, len(contexts))
	sources := make([]string, 0, len(contexts))
	for _, c := range contexts {
		if _, ok := seen[c.Source]; ok {
			continue
		}
		seen[c.Source] = struct{}{}
		sources = append(sources, c.Source)
	}
	sort.Strings(sources)
	return sources
}
