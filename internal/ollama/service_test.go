package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, models []string, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/generate":
			var req GenerateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.False(t, req.Stream)
			json.NewEncoder(w).Encode(GenerateResponse{
				Model:    req.Model,
				Response: reply,
				Done:     true,
			})
		case "/api/tags":
			infos := make([]ModelInfo, len(models))
			for i, name := range models {
				infos[i] = ModelInfo{Name: name}
			}
			json.NewEncoder(w).Encode(TagsResponse{Models: infos})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestService_Generate(t *testing.T) {
	server := newTestServer(t, []string{"llama2:latest"}, "Hello there")
	defer server.Close()

	svc := NewService(server.URL, "llama2")
	reply, err := svc.Generate(context.Background(), "say hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello there", reply)
}

func TestService_Probe(t *testing.T) {
	server := newTestServer(t, []string{"llama2:latest", "mistral:7b"}, "")
	defer server.Close()

	svc := NewService(server.URL, "llama2")
	assert.NoError(t, svc.Probe(context.Background()))
}

func TestService_ProbeModelMissing(t *testing.T) {
	server := newTestServer(t, []string{"mistral:7b"}, "")
	defer server.Close()

	svc := NewService(server.URL, "llama2")
	err := svc.Probe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama pull llama2")
}

func TestService_ProbeServerDown(t *testing.T) {
	server := newTestServer(t, nil, "")
	server.Close()

	svc := NewService(server.URL, "llama2")
	assert.Error(t, svc.Probe(context.Background()))
}
