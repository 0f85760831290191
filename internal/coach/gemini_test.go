package coach

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGeminiClient(baseURL string) *GeminiClient {
	cfg := DefaultGeminiConfig("test-key")
	cfg.BaseURL = baseURL
	return NewGeminiClient(cfg, nil)
}

func TestGenerate_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req GeminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "the prompt", req.Contents[0].Parts[0].Text)
		assert.InDelta(t, 0.7, req.GenerationConfig.Temperature, 0.001)
		assert.Equal(t, 40, req.GenerationConfig.TopK)
		assert.InDelta(t, 0.9, req.GenerationConfig.TopP, 0.001)
		assert.Equal(t, 1500, req.GenerationConfig.MaxOutputTokens)
		require.Len(t, req.SafetySettings, 4)
		assert.Equal(t, "BLOCK_MEDIUM_AND_ABOVE", req.SafetySettings[0].Threshold)

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  hello there "}],"role":"model"},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c := testGeminiClient(srv.URL)
	reply, err := c.Generate(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)
}

func TestGenerate_StatusClassification(t *testing.T) {
	t.Parallel()
	cases := []struct {
		status int
		want   string
	}{
		{http.StatusForbidden, "misconfigured"},
		{http.StatusTooManyRequests, "query limit"},
		{http.StatusBadRequest, "rephrasing"},
		{http.StatusInternalServerError, "status 500"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			_, err := testGeminiClient(srv.URL).Generate(context.Background(), "p")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestGenerate_BlockedResponse(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := testGeminiClient(srv.URL).Generate(context.Background(), "p")
	assert.Error(t, err)
}

func TestGenerate_APIErrorBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"code":3,"message":"invalid argument","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	_, err := testGeminiClient(srv.URL).Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument")
}

func TestGenerate_KeyIsQueryEscaped(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key+with/odd&chars", r.URL.Query().Get("key"))
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}],"role":"model"},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	cfg := DefaultGeminiConfig("key+with/odd&chars")
	cfg.BaseURL = srv.URL
	_, err := NewGeminiClient(cfg, nil).Generate(context.Background(), "p")
	require.NoError(t, err)
}

func TestNewGeminiClient_BackfillsOnlyUnsetFields(t *testing.T) {
	t.Parallel()
	c := NewGeminiClient(GeminiConfig{
		APIKey:      "k",
		Temperature: 0.2,
		TopK:        10,
	}, nil)

	assert.Equal(t, "gemini-2.5-flash", c.config.Model)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta", c.config.BaseURL)
	assert.Equal(t, 1500, c.config.MaxOutputTokens)
	assert.InDelta(t, 0.2, c.config.Temperature, 0.001, "caller-set sampling knobs survive")
	assert.Equal(t, 10, c.config.TopK)
	assert.InDelta(t, 0.9, c.config.TopP, 0.001)
}

func TestGenerate_NoKey(t *testing.T) {
	t.Parallel()
	c := NewGeminiClient(GeminiConfig{}, nil)
	assert.False(t, c.Configured())
	_, err := c.Generate(context.Background(), "p")
	assert.Error(t, err)
}
