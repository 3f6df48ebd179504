package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"FlertaAI_ReplyAssistant/internal/config"
)

func TestOpenAIClient_Complete(t *testing.T) {
	var got openAIChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-4o-mini-2024","choices":[{"message":{"role":"assistant","content":"Bora sim! 😄"}}],"usage":{"prompt_tokens":10,"completion_tokens":4,"total_tokens":14}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL+"/", "sk-test", "", srv.Client())
	out, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "oi"}}, Options{
		MaxTokens:        100,
		Temperature:      0.8,
		PresencePenalty:  0.3,
		FrequencyPenalty: 0.3,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bora sim! 😄", out.Text)
	assert.Equal(t, "gpt-4o-mini-2024", out.Model)
	require.NotNil(t, out.Usage)
	assert.Equal(t, 14, out.Usage.TotalTokens)

	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, 100, got.MaxTokens)
	assert.Equal(t, 0.8, got.Temperature)
}

func TestOpenAIClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	core, logs := observer.New(zap.WarnLevel)
	c := NewOpenAIClient(srv.URL, "sk-test", "gpt-4o-mini", srv.Client()).WithLogger(zap.New(core))
	_, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "oi"}}, Options{})
	require.Error(t, err)
	assert.Equal(t, "OpenAI API error: 429", err.Error())

	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].ContextMap()["body"], "rate limited")
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "sk-test", "gpt-4o-mini", srv.Client())
	_, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "oi"}}, Options{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOllamaClient_Complete(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3.1","message":{"role":"assistant","content":"  Show! E você?  "},"prompt_eval_count":7,"eval_count":3}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "llama3.1", srv.Client())
	out, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "oi"}}, Options{MaxTokens: 60, Temperature: 0.9})
	require.NoError(t, err)

	assert.Equal(t, "Show! E você?", out.Text)
	assert.Equal(t, 10, out.Usage.TotalTokens)
	assert.False(t, got.Stream)
	assert.Equal(t, 60, got.Options.NumPredict)
}

func TestWithPersona(t *testing.T) {
	msgs := WithPersona([]Message{{Role: RoleUser, Content: "oi"}}, 250)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "FlertaAI")
	assert.Contains(t, msgs[0].Content, "Máximo 250 tokens")
	assert.Equal(t, "oi", msgs[1].Content)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(config.LLMConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = NewProvider(config.LLMConfig{Provider: "openai"}, nil)
	assert.Error(t, err)

	p, err = NewProvider(config.LLMConfig{Provider: "openai", OpenAIAPIKey: "sk", Timeout: "5s"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	p, err = NewProvider(config.LLMConfig{Provider: "gemini", GeminiAPIKey: "g", GeminiModel: "gemini-2.5-flash"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())

	p, err = NewProvider(config.LLMConfig{Provider: "ollama", OllamaURL: "http://localhost:11434"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	_, err = NewProvider(config.LLMConfig{Provider: "claude"}, nil)
	assert.Error(t, err)
}

func TestRecognitionConfigFor(t *testing.T) {
	cfg, err := RecognitionConfigFor("audio/webm;codecs=opus", "pt-BR")
	require.NoError(t, err)
	assert.Equal(t, speechpb.RecognitionConfig_WEBM_OPUS, cfg.Encoding)
	assert.Equal(t, int32(48000), cfg.SampleRateHertz)
	assert.Equal(t, "pt-BR", cfg.LanguageCode)

	cfg, err = RecognitionConfigFor("audio/wav", "en-US")
	require.NoError(t, err)
	assert.Equal(t, speechpb.RecognitionConfig_LINEAR16, cfg.Encoding)

	_, err = RecognitionConfigFor("video/mp4", "pt-BR")
	assert.ErrorIs(t, err, ErrUnsupportedAudio)
}

func TestSynthesizeRequest(t *testing.T) {
	req := SynthesizeRequest("Oi!", "pt-BR-Wavenet-A")
	assert.Equal(t, "pt-BR", req.Voice.LanguageCode)
	assert.Equal(t, "pt-BR-Wavenet-A", req.Voice.Name)
	assert.True(t, strings.HasPrefix(req.GetInput().GetText(), "Oi"))
}
