package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Turn 一轮对话记录
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Sources   []string  `json:"sources,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// conversation 单个会话的历史
type conversation struct {
	ID        string
	Turns     []Turn
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionService 会话历史服务,进程内存储
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*conversation
}

// NewSessionService 创建会话服务
func NewSessionService() *SessionService {
	return &SessionService{
		sessions: make(map[string]*conversation),
	}
}

// EnsureSession 返回会话ID,为空时新建
func (s *SessionService) EnsureSession(sessionID string) string {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		now := time.Now()
		s.sessions[sessionID] = &conversation{
			ID:        sessionID,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return sessionID
}

// Append 追加一轮对话
func (s *SessionService) Append(sessionID string, turn Turn) {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.sessions[sessionID]
	if !ok {
		conv = &conversation{ID: sessionID, CreatedAt: time.Now()}
		s.sessions[sessionID] = conv
	}
	conv.Turns = append(conv.Turns, turn)
	conv.UpdatedAt = time.Now()
}

// History 返回会话历史的副本,按时间顺序
func (s *SessionService) History(sessionID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.sessions[sessionID]
	if !ok {
		return []Turn{}
	}
	out := make([]Turn, len(conv.Turns))
	copy(out, conv.Turns)
	return out
}

// Clear 清空会话历史
func (s *SessionService) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Count 当前会话数
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
