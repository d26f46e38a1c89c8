package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// stubProvider 测试用LLM提供方
type stubProvider struct {
	name       string
	probeErr   error
	reply      string
	genErr     error
	lastPrompt string
}

func (p *stubProvider) Generate(ctx context.Context, prompt string) (string, error) {
	p.lastPrompt = prompt
	return p.reply, p.genErr
}

func (p *stubProvider) Name() string {
	return p.name
}

func (p *stubProvider) Probe(ctx context.Context) error {
	return p.probeErr
}

func TestSelectLLMProvider_PrimaryAvailable(t *testing.T) {
	primary := &stubProvider{name: "local"}
	secondary := &stubProvider{name: "hosted"}

	selection := SelectLLMProvider(context.Background(), primary, secondary, zap.NewNop())

	assert.True(t, selection.Ready())
	assert.Equal(t, StateReady, selection.State)
	assert.Equal(t, "local", selection.ProviderName())
}

func TestSelectLLMProvider_FallsBackToSecondary(t *testing.T) {
	primary := &stubProvider{name: "local", probeErr: errors.New("connection refused")}
	secondary := &stubProvider{name: "hosted"}

	selection := SelectLLMProvider(context.Background(), primary, secondary, zap.NewNop())

	assert.True(t, selection.Ready())
	assert.Equal(t, "hosted", selection.ProviderName())
}

func TestSelectLLMProvider_NoneAvailable(t *testing.T) {
	primary := &stubProvider{name: "local", probeErr: errors.New("connection refused")}

	selection := SelectLLMProvider(context.Background(), primary, nil, zap.NewNop())

	assert.False(t, selection.Ready())
	assert.Equal(t, StateUnavailable, selection.State)
	assert.Equal(t, "unavailable", selection.ProviderName())
}

func TestSelectLLMProvider_NoProviders(t *testing.T) {
	selection := SelectLLMProvider(context.Background(), nil, nil, zap.NewNop())

	assert.False(t, selection.Ready())
	assert.Equal(t, StateUnavailable, selection.State)
}

func TestSelectLLMProvider_LogsProbingStates(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	primary := &stubProvider{name: "local", probeErr: errors.New("connection refused")}
	secondary := &stubProvider{name: "hosted"}

	selection := SelectLLMProvider(context.Background(), primary, secondary, zap.New(core))
	require.True(t, selection.Ready())

	var states []string
	for _, entry := range logs.FilterMessage("LLM provider selection").All() {
		states = append(states, entry.ContextMap()["state"].(string))
	}
	assert.Equal(t, []string{"probing_primary", "probing_secondary"}, states)
}

func TestNewOpenAIProvider_RequiresAPIKey(t *testing.T) {
	assert.Nil(t, NewOpenAIProvider(""))
	assert.Nil(t, NewOpenAIProvider("   "))

	provider := NewOpenAIProvider("sk-test")
	require.NotNil(t, provider)
	assert.Equal(t, "openai", provider.Name())
	assert.NoError(t, provider.Probe(context.Background()))
}

func TestProviderState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "probing_primary", StateProbingPrimary.String())
	assert.Equal(t, "probing_secondary", StateProbingSecondary.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "unavailable", StateUnavailable.String())
}
