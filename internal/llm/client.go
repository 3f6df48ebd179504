/**
* Name: 			client.go
* Description: 		LLM 채팅 공통 타입과 provider 생성
* Workflow: 		config의 provider 이름으로 OpenAI / Gemini / Ollama 클라이언트 선택
 */

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"FlertaAI_ReplyAssistant/internal/config"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	DefaultModel     = "gpt-4o-mini"
	DefaultMaxTokens = 500
)

var (
	ErrNotConfigured = errors.New("LLM provider not configured")
	ErrEmptyResponse = errors.New("empty response from LLM")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// 생성 옵션 (0 값은 provider 기본값 사용)
type Options struct {
	Model            string
	MaxTokens        int
	Temperature      float64
	PresencePenalty  float64
	FrequencyPenalty float64
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Completion struct {
	Text  string `json:"text"`
	Model string `json:"model"`
	Usage *Usage `json:"usage,omitempty"`
}

// Provider 채팅 완성 API
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []Message, opts Options) (Completion, error)
}

// NewProvider provider가 비어있으면 (nil, nil) 반환 -> 템플릿만 사용
func NewProvider(cfg config.LLMConfig, logger *zap.Logger) (Provider, error) {
	timeout := config.Duration(cfg.Timeout, 60*time.Second)
	switch cfg.Provider {
	case "":
		return nil, nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("NewProvider(): OPENAI_API_KEY is empty")
		}
		return NewOpenAIClient(cfg.OpenAIURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, newHTTPClient(timeout)).WithLogger(logger), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("NewProvider(): GEMINI_API_KEY is empty")
		}
		return NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel), nil
	case "ollama":
		return NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel, newHTTPClient(timeout)).WithLogger(logger), nil
	default:
		return nil, fmt.Errorf("NewProvider(): unknown provider %q", cfg.Provider)
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
