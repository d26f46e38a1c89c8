package rag

import (
	"strings"
)

// Chunk 表示分块后的文本结构
type Chunk struct {
	Index  int
	Text   string
	Source string
}

// Chunker 文本分块器，按 段落 > 行 > 空格 > 字符 的优先级寻找切分边界
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker 创建分块器
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: overlap,
	}
}

// ChunkSize 返回配置的分块大小
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// ChunkOverlap 返回配置的分块重叠
func (c *Chunker) ChunkOverlap() int {
	return c.chunkOverlap
}

// Split 将文本切分为多个chunk，相邻chunk之间保留最多chunkOverlap个字符的重叠
func (c *Chunker) Split(text, source string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	var chunks []Chunk

	for start := 0; start < len(runes); {
		end := start + c.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else if b := splitBoundary(runes[start:end]); b > 0 {
			// 窗口末尾优先落在自然边界上
			end = start + b
		}

		chunkText := strings.TrimSpace(string(runes[start:end]))
		if chunkText != "" {
			chunks = append(chunks, Chunk{
				Index:  len(chunks),
				Text:   chunkText,
				Source: source,
			})
		}

		if end == len(runes) {
			break
		}

		// 下一个窗口起点回退chunkOverlap，保留跨块上下文
		next := end - c.chunkOverlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// splitBoundary 在窗口内寻找最靠后的切分边界，按段落、行、空格的顺序降级。
// 返回0表示窗口内没有可用边界，调用方在任意字符处切分。
func splitBoundary(window []rune) int {
	text := string(window)

	if idx := strings.LastIndex(text, "\n\n"); idx > 0 {
		return len([]rune(text[:idx+2]))
	}
	if idx := strings.LastIndex(text, "\n"); idx > 0 {
		return len([]rune(text[:idx+1]))
	}
	if idx := strings.LastIndex(text, " "); idx > 0 {
		return len([]rune(text[:idx+1]))
	}
	return 0
}
