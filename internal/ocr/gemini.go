package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiEngine generative-ai-go 이미지 입력
type GeminiEngine struct {
	apiKey string
	model  string
}

func NewGeminiEngine(apiKey, model string) *GeminiEngine {
	return &GeminiEngine{apiKey: strings.TrimSpace(apiKey), model: strings.TrimSpace(model)}
}

func (e *GeminiEngine) Name() string { return "gemini" }

func (e *GeminiEngine) Extract(ctx context.Context, image []byte, mime string) (string, error) {
	mime, err := prepare(image, mime)
	if err != nil {
		return "", err
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.apiKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.model)
	m.SetTemperature(0)

	resp, err := m.GenerateContent(ctx,
		genai.Text(transcribePrompt),
		&genai.Blob{MIMEType: mime, Data: image},
	)
	if err != nil {
		return "", fmt.Errorf("gemini OCR: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyText
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	text := CleanTranscript(b.String())
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}
