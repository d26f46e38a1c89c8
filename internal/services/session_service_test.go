package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_EnsureSession(t *testing.T) {
	svc := NewSessionService()

	id := svc.EnsureSession("")
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, svc.Count())

	// 已有ID直接复用
	same := svc.EnsureSession(id)
	assert.Equal(t, id, same)
	assert.Equal(t, 1, svc.Count())
}

func TestSessionService_AppendAndHistory(t *testing.T) {
	svc := NewSessionService()
	id := svc.EnsureSession("")

	svc.Append(id, Turn{Role: "user", Content: "hello"})
	svc.Append(id, Turn{Role: "assistant", Content: "hi", Sources: []string{"a.txt"}})

	history := svc.History(id)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.False(t, history[0].Timestamp.IsZero())
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, []string{"a.txt"}, history[1].Sources)
}

func TestSessionService_HistoryReturnsCopy(t *testing.T) {
	svc := NewSessionService()
	id := svc.EnsureSession("")
	svc.Append(id, Turn{Role: "user", Content: "hello"})

	history := svc.History(id)
	history[0].Content = "mutated"

	assert.Equal(t, "hello", svc.History(id)[0].Content)
}

func TestSessionService_Clear(t *testing.T) {
	svc := NewSessionService()
	id := svc.EnsureSession("")
	svc.Append(id, Turn{Role: "user", Content: "hello"})

	svc.Clear(id)
	assert.Empty(t, svc.History(id))
	assert.Equal(t, 0, svc.Count())
}

func TestSessionService_UnknownSession(t *testing.T) {
	svc := NewSessionService()
	assert.Empty(t, svc.History("missing"))
}
