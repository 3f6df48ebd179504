package ocr

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlertaAI_ReplyAssistant/internal/config"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func TestPickMIME(t *testing.T) {
	assert.Equal(t, "image/png", PickMIME("", pngHeader))
	assert.Equal(t, "image/jpeg", PickMIME("", []byte{0xFF, 0xD8, 0xFF, 0xE0}))
	assert.Equal(t, "image/webp", PickMIME("Image/WebP; charset=binary", nil))
	assert.Equal(t, "application/octet-stream", PickMIME("", nil))
}

func TestCleanTranscript(t *testing.T) {
	in := "```\nAna: oi\n\n  Eu: tudo bem?  \n```"
	assert.Equal(t, "Ana: oi\nEu: tudo bem?", CleanTranscript(in))
}

func TestNew(t *testing.T) {
	cfg := config.DefaultConfig()
	e, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, e)

	cfg.OCR.Provider = "openai"
	_, err = New(cfg)
	assert.Error(t, err)

	cfg.LLM.OpenAIAPIKey = "sk-test"
	e, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", e.Name())

	cfg.OCR.Provider = "gemini"
	cfg.LLM.GeminiAPIKey = "g-test"
	e, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "gemini", e.Name())
	assert.Equal(t, cfg.LLM.GeminiModel, e.(*GeminiEngine).model)
}

func TestOpenAIEngine_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(raw), `"type":"input_image"`)
		assert.Contains(t, string(raw), "data:image/png;base64,")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"output": []any{
				map[string]any{
					"type": "message",
					"content": []any{
						map[string]any{"type": "output_text", "text": "Ana: oi, tudo bem?\nEu: tudo ótimo"},
					},
				},
			},
		})
	}))
	defer srv.Close()

	e := NewOpenAIEngine(srv.URL, "sk-test", "", srv.Client())
	text, err := e.Extract(context.Background(), pngHeader, "")
	require.NoError(t, err)
	assert.Equal(t, "Ana: oi, tudo bem?\nEu: tudo ótimo", text)
}

func TestOpenAIEngine_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := NewOpenAIEngine(srv.URL, "sk-test", "", srv.Client())
	_, err := e.Extract(context.Background(), pngHeader, "image/png")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "429"))

	_, err = e.Extract(context.Background(), []byte("plain text"), "")
	assert.ErrorIs(t, err, ErrUnsupportedMIME)
}
