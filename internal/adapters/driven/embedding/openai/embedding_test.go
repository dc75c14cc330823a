package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingsRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions"`
}

// newTestServer answers /embeddings with one-hot vectors, returned in
// reverse order to check that results are placed by index.
func newTestServer(t *testing.T, dims int, calls *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/v1/models":
			_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
		case "/v1/embeddings":
			*calls++
			var req embeddingsRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			data := make([]map[string]any, 0, len(req.Input))
			for i := len(req.Input) - 1; i >= 0; i-- {
				emb := make([]float32, dims)
				emb[len(req.Input[i])%dims] = 1
				data = append(data, map[string]any{"object": "embedding", "index": i, "embedding": emb})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"object": "list",
				"data":   data,
				"model":  req.Model,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	s, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, 1536, s.Dimensions())
}

func TestEmbeddingService_EmbedBatch_OrderAndBatching(t *testing.T) {
	calls := 0
	srv := newTestServer(t, 3, &calls)
	s, err := NewEmbeddingService(Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/v1",
		Dimensions: 3,
		BatchSize:  2,
	})
	require.NoError(t, err)

	got, err := s.EmbedBatch(context.Background(), []string{"a", "bb", "ccc", "dddd"})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	require.Len(t, got, 4)
	assert.Equal(t, []float32{0, 1, 0}, got[0])
	assert.Equal(t, []float32{0, 0, 1}, got[1])
	assert.Equal(t, []float32{1, 0, 0}, got[2])
	assert.Equal(t, []float32{0, 1, 0}, got[3])
}

func TestEmbeddingService_Embed_DimensionMismatch(t *testing.T) {
	calls := 0
	srv := newTestServer(t, 3, &calls)
	s, err := NewEmbeddingService(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1", Model: "text-embedding-3-large"})
	require.NoError(t, err)

	_, err = s.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestEmbeddingService_Ping(t *testing.T) {
	calls := 0
	srv := newTestServer(t, 3, &calls)
	s, err := NewEmbeddingService(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	assert.NoError(t, s.Ping(context.Background()))
}
