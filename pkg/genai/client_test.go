package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateBody(texts ...string) map[string]any {
	parts := make([]map[string]any, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, map[string]any{"text": t})
	}
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": parts}},
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		BaseURL:   server.URL,
		APIKey:    "test-key",
		Timeout:   5 * time.Second,
		RateLimit: 100,
	})
}

func TestGenerateText(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(candidateBody("generated text"))
	})

	text, err := client.GenerateText(context.Background(), "model-pro", "hello")

	require.NoError(t, err)
	assert.Equal(t, "generated text", text)
	assert.Equal(t, "/v1beta/models/model-pro:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotBody.Contents, 1)
	assert.Equal(t, "hello", gotBody.Contents[0].Parts[0].Text)
	assert.Nil(t, gotBody.GenerationConfig)
}

func TestGenerateText_JoinsParts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateBody("first ", "second"))
	})

	text, err := client.GenerateText(context.Background(), "m", "p")

	require.NoError(t, err)
	assert.Equal(t, "first second", text)
}

func TestGenerateText_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"},
		})
	})

	_, err := client.GenerateText(context.Background(), "m", "p")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerateText_EmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	_, err := client.GenerateText(context.Background(), "m", "p")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestGenerateJSON_SetsResponseSchema(t *testing.T) {
	var gotBody generateRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(candidateBody(`[{"marker":"TSH"}]`))
	})

	schema := map[string]any{"type": "ARRAY"}
	raw, err := client.GenerateJSON(context.Background(), "model-flash", "extract", schema)

	require.NoError(t, err)
	assert.Equal(t, `[{"marker":"TSH"}]`, raw)
	require.NotNil(t, gotBody.GenerationConfig)
	assert.Equal(t, "application/json", gotBody.GenerationConfig.ResponseMIMEType)
	assert.Equal(t, "ARRAY", gotBody.GenerationConfig.ResponseSchema["type"])
}

func TestGenerate_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.GenerateText(ctx, "m", "p")
	assert.Error(t, err)
}
