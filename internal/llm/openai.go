package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

type openAIChatRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	MaxTokens        int       `json:"max_tokens,omitempty"`
	Temperature      float64   `json:"temperature"`
	PresencePenalty  float64   `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64   `json:"frequency_penalty,omitempty"`
}

type openAIChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

func NewOpenAIClient(baseURL, apiKey, model string, httpClient *http.Client) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
		logger:     zap.NewNop(),
	}
}

// WithLogger 오류 응답 본문은 로그로만 남김
func (c *OpenAIClient) WithLogger(logger *zap.Logger) *OpenAIClient {
	if logger != nil {
		c.logger = logger
	}
	return c
}

func (c *OpenAIClient) Name() string { return "openai" }

// Complete /chat/completions 호출
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, opts Options) (Completion, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	reqBody, err := json.Marshal(openAIChatRequest{
		Model:            model,
		Messages:         messages,
		MaxTokens:        opts.MaxTokens,
		Temperature:      opts.Temperature,
		PresencePenalty:  opts.PresencePenalty,
		FrequencyPenalty: opts.FrequencyPenalty,
	})
	if err != nil {
		return Completion{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return Completion{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Completion{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("llm upstream error",
			zap.String("provider", c.Name()),
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(bytes.TrimSpace(body), 512)),
		)
		return Completion{}, fmt.Errorf("OpenAI API error: %d", resp.StatusCode)
	}

	var chatResp openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return Completion{}, fmt.Errorf("OpenAI API: bad JSON: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return Completion{}, ErrEmptyResponse
	}
	if chatResp.Model == "" {
		chatResp.Model = model
	}
	return Completion{
		Text:  chatResp.Choices[0].Message.Content,
		Model: chatResp.Model,
		Usage: chatResp.Usage,
	}, nil
}
