package generativeAI

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itineraryJSON = `{"morning":["Coffee"],"midday":[],"afternoon":[],"evening":[],"transportNotes":"walk","costEstimate":"$1-$2 USD","picks":["e1"]}`

// recorder counts requests to a fake endpoint and keeps the last body.
type recorder struct {
	mu   sync.Mutex
	hits int
	body []byte
}

func (r *recorder) Hits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits
}

func (r *recorder) Body() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body
}

// fakeEndpoint serves a fixed status and body.
func fakeEndpoint(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.hits++
		rec.body = b
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func openAIBody(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]interface{}{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]interface{}{"role": "assistant", "content": content},
		}},
	})
	return string(b)
}

func geminiBody(text string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{{
			"content": map[string]interface{}{
				"role":  "model",
				"parts": []map[string]interface{}{{"text": text}},
			},
		}},
	})
	return string(b)
}

func anthropicBody(text string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"id":            "msg_1",
		"type":          "message",
		"role":          "assistant",
		"model":         "claude-3-5-sonnet-20241022",
		"stop_reason":   "end_turn",
		"content":       []map[string]interface{}{{"type": "text", "text": text}},
		"usage":         map[string]interface{}{"input_tokens": 1, "output_tokens": 1},
		"stop_sequence": nil,
	})
	return string(b)
}

func TestOpenAIProvider(t *testing.T) {
	logger := slog.Default()

	t.Run("fenced content is parsed", func(t *testing.T) {
		srv, rec := fakeEndpoint(t, http.StatusOK, openAIBody("```json\n"+itineraryJSON+"\n```"))
		p := NewOpenAIProvider(ProviderConfig{APIKey: "sk-test", BaseURL: srv.URL}, DefaultBreakerConfig, logger)

		raw, err := p.Generate(context.Background(), "plan my day")
		require.NoError(t, err)
		assert.JSONEq(t, itineraryJSON, string(raw))
		assert.Equal(t, 1, rec.Hits())

		var req map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body(), &req))
		assert.Equal(t, "gpt-4o-mini", req["model"])
		assert.InDelta(t, 0.3, req["temperature"], 1e-9)
		assert.Contains(t, string(rec.Body()), SystemInstruction)
	})

	t.Run("429 is quota and not retried", func(t *testing.T) {
		srv, rec := fakeEndpoint(t, http.StatusTooManyRequests, `{"error":{"message":"quota","type":"insufficient_quota"}}`)
		p := NewOpenAIProvider(ProviderConfig{APIKey: "sk-test", BaseURL: srv.URL}, DefaultBreakerConfig, logger)

		_, err := p.Generate(context.Background(), "plan my day")
		assert.True(t, IsQuotaExceeded(err))
		assert.Equal(t, 1, rec.Hits())
	})

	t.Run("missing key never dials", func(t *testing.T) {
		p := NewOpenAIProvider(ProviderConfig{APIKey: "  "}, DefaultBreakerConfig, logger)
		assert.False(t, p.Configured())
		_, err := p.Generate(context.Background(), "plan my day")
		assert.ErrorIs(t, err, ErrMissingCredential)
	})

	t.Run("empty choices", func(t *testing.T) {
		srv, _ := fakeEndpoint(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
		p := NewOpenAIProvider(ProviderConfig{APIKey: "sk-test", BaseURL: srv.URL}, DefaultBreakerConfig, logger)
		_, err := p.Generate(context.Background(), "plan my day")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("slow endpoint reports timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(srv.Close)
		p := NewOpenAIProvider(ProviderConfig{APIKey: "sk-test", BaseURL: srv.URL}, DefaultBreakerConfig, logger)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := p.Generate(ctx, "plan my day")
		assert.ErrorIs(t, err, ErrTimeout)
	})
}

func TestGeminiProvider(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()

	t.Run("first candidate text is parsed", func(t *testing.T) {
		srv, rec := fakeEndpoint(t, http.StatusOK, geminiBody(itineraryJSON))
		p, err := NewGeminiProvider(ctx, ProviderConfig{APIKey: "g-test", BaseURL: srv.URL}, DefaultBreakerConfig, logger)
		require.NoError(t, err)

		raw, err := p.Generate(ctx, "plan my day")
		require.NoError(t, err)
		assert.JSONEq(t, itineraryJSON, string(raw))
		assert.Equal(t, 1, rec.Hits())
	})

	t.Run("no candidates is empty response", func(t *testing.T) {
		srv, _ := fakeEndpoint(t, http.StatusOK, `{"candidates":[]}`)
		p, err := NewGeminiProvider(ctx, ProviderConfig{APIKey: "g-test", BaseURL: srv.URL}, DefaultBreakerConfig, logger)
		require.NoError(t, err)

		_, err = p.Generate(ctx, "plan my day")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("429 is quota", func(t *testing.T) {
		srv, _ := fakeEndpoint(t, http.StatusTooManyRequests,
			`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`)
		p, err := NewGeminiProvider(ctx, ProviderConfig{APIKey: "g-test", BaseURL: srv.URL}, DefaultBreakerConfig, logger)
		require.NoError(t, err)

		_, err = p.Generate(ctx, "plan my day")
		assert.True(t, IsQuotaExceeded(err))
	})

	t.Run("error body without error object is provider error", func(t *testing.T) {
		srv, rec := fakeEndpoint(t, http.StatusServiceUnavailable, `{"message":"upstream overloaded"}`)
		p, err := NewGeminiProvider(ctx, ProviderConfig{APIKey: "g-test", BaseURL: srv.URL + "/"}, DefaultBreakerConfig, logger)
		require.NoError(t, err)

		require.NotPanics(t, func() {
			_, err = p.Generate(ctx, "plan my day")
		})
		var pErr *ProviderError
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, ProviderGemini, pErr.Provider)
		assert.Equal(t, 1, rec.Hits())
	})

	t.Run("prose is malformed", func(t *testing.T) {
		srv, _ := fakeEndpoint(t, http.StatusOK, geminiBody("Sure! Here you go."))
		p, err := NewGeminiProvider(ctx, ProviderConfig{APIKey: "g-test", BaseURL: srv.URL}, DefaultBreakerConfig, logger)
		require.NoError(t, err)

		_, err = p.Generate(ctx, "plan my day")
		var mErr *MalformedJSONError
		assert.ErrorAs(t, err, &mErr)
	})

	t.Run("missing key", func(t *testing.T) {
		p, err := NewGeminiProvider(ctx, ProviderConfig{}, DefaultBreakerConfig, logger)
		require.NoError(t, err)
		_, err = p.Generate(ctx, "plan my day")
		assert.ErrorIs(t, err, ErrMissingCredential)
	})
}

func TestAnthropicProvider(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()

	t.Run("text block is parsed", func(t *testing.T) {
		srv, rec := fakeEndpoint(t, http.StatusOK, anthropicBody(itineraryJSON))
		p := NewAnthropicProvider(ProviderConfig{APIKey: "a-test", BaseURL: srv.URL}, DefaultBreakerConfig, logger)

		raw, err := p.Generate(ctx, "plan my day")
		require.NoError(t, err)
		assert.JSONEq(t, itineraryJSON, string(raw))
		assert.Equal(t, 1, rec.Hits())
		assert.Contains(t, string(rec.Body()), SystemInstruction)
	})

	t.Run("server error is provider error", func(t *testing.T) {
		srv, _ := fakeEndpoint(t, http.StatusInternalServerError,
			`{"type":"error","error":{"type":"api_error","message":"overloaded"}}`)
		p := NewAnthropicProvider(ProviderConfig{APIKey: "a-test", BaseURL: srv.URL}, DefaultBreakerConfig, logger)

		_, err := p.Generate(ctx, "plan my day")
		var pErr *ProviderError
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, http.StatusInternalServerError, pErr.Status)
	})
}

func TestRegistry(t *testing.T) {
	logger := slog.Default()
	openai := NewOpenAIProvider(ProviderConfig{APIKey: "sk"}, DefaultBreakerConfig, logger)
	gemini := newClient(ProviderGemini, "g", false, nil, DefaultBreakerConfig, logger)
	anthropic := NewAnthropicProvider(ProviderConfig{}, DefaultBreakerConfig, logger)

	t.Run("primary then secondary", func(t *testing.T) {
		r, err := newRegistry(ProviderGemini, ProviderOpenAI, openai, gemini, anthropic)
		require.NoError(t, err)
		chain := r.Chain()
		require.Len(t, chain, 2)
		assert.Equal(t, ProviderGemini, chain[0].Name())
		assert.Equal(t, ProviderOpenAI, chain[1].Name())
	})

	t.Run("same provider twice is one attempt", func(t *testing.T) {
		r, err := newRegistry(ProviderOpenAI, ProviderOpenAI, openai, gemini, anthropic)
		require.NoError(t, err)
		assert.Len(t, r.Chain(), 1)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := newRegistry("mistral", "", openai, gemini, anthropic)
		assert.Error(t, err)
	})

	t.Run("status never exposes keys", func(t *testing.T) {
		r, err := newRegistry("", ProviderGemini, openai, gemini, anthropic)
		require.NoError(t, err)
		status := r.Status()
		require.Len(t, status, 3)
		assert.Equal(t, "openai", status[0].Name)
		assert.True(t, status[0].Configured)
		assert.Equal(t, "primary", status[0].Role)
		assert.Equal(t, "secondary", status[1].Role)
		assert.False(t, status[1].Configured)
		assert.Equal(t, "unused", status[2].Role)
	})
}
