package rag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// answerPromptTemplate 回答生成的提示词模板
const answerPromptTemplate = `You are JARVIS, a helpful personal assistant. Answer the user's question based on the provided context from their personal notes and documents.

Context from personal notes:
%s

User Question: %s

Instructions:
- Answer based primarily on the provided context
- If the context doesn't contain relevant information, say so
- Be concise and helpful
- Reference the source documents when relevant

Answer:`

// noContextAnswer 未检索到任何上下文时的固定回答
const noContextAnswer = "No relevant information found in your notes."

// Synthesizer 基于检索上下文生成回答
type Synthesizer struct {
	selection LLMSelection
	logger    *zap.Logger
}

// NewSynthesizer 创建回答生成器
func NewSynthesizer(selection LLMSelection, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{selection: selection, logger: logger}
}

// Ready LLM是否可用
func (s *Synthesizer) Ready() bool {
	return s.selection.Ready()
}

// ProviderName 当前使用的LLM提供方名称
func (s *Synthesizer) ProviderName() string {
	return s.selection.ProviderName()
}

// Synthesize 生成回答。LLM可用时总是调用模型,上下文为空也交给模型说明;
// LLM不可用或调用失败时降级: 有上下文罗列原文,无上下文返回固定提示。
func (s *Synthesizer) Synthesize(ctx context.Context, query string, contexts []ContextItem) string {
	if !s.selection.Ready() {
		return degradedAnswer(contexts)
	}

	prompt := buildAnswerPrompt(query, contexts)
	answer, err := s.selection.Provider.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("LLM generation failed, falling back to raw context",
			zap.String("provider", s.selection.Provider.Name()),
			zap.Error(err))
		return degradedAnswer(contexts)
	}
	return answer
}

// degradedAnswer LLM缺席时的降级回答
func degradedAnswer(contexts []ContextItem) string {
	if len(contexts) == 0 {
		return noContextAnswer
	}
	return formatRawContexts(contexts)
}

// buildAnswerPrompt 将上下文与问题填入提示词模板
func buildAnswerPrompt(query string, contexts []ContextItem) string {
	parts := make([]string, 0, len(contexts))
	for _, c := range contexts {
		parts = append(parts, c.Text)
	}
	return fmt.Sprintf(answerPromptTemplate, strings.Join(parts, "\n\n"), query)
}

// formatRawContexts LLM缺席时的降级输出,逐条罗列来源与原文
func formatRawContexts(contexts []ContextItem) string {
	var b strings.Builder
	b.WriteString("Here's what I found in your notes:\n\n")
	for _, c := range contexts {
		b.WriteString(fmt.Sprintf("[Source: %s]\n%s\n\n", c.Source, c.Text))
	}
	return b.String()
}
