package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"FlertaAI_ReplyAssistant/internal/llm"
)

type ChatInput struct {
	Messages  []llm.Message `json:"messages"`
	Model     string        `json:"model"`
	MaxTokens int           `json:"maxTokens"`
}

// Chat 페르소나 시스템 프롬프트를 붙여 LLM 호출
func (s *Service) Chat(ctx context.Context, in ChatInput) (llm.Completion, error) {
	if s.llm == nil {
		return llm.Completion{}, ErrLLMNotConfigured
	}
	if len(in.Messages) == 0 {
		return llm.Completion{}, ErrMessagesRequired
	}
	for _, m := range in.Messages {
		switch m.Role {
		case llm.RoleUser, llm.RoleAssistant, llm.RoleSystem:
		default:
			return llm.Completion{}, invalid("invalid message role %q", m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			return llm.Completion{}, invalid("message content is required")
		}
	}
	maxTokens := in.MaxTokens
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxTokens
	}

	out, err := s.llm.Complete(ctx, llm.WithPersona(in.Messages, maxTokens), llm.Options{
		Model:            in.Model,
		MaxTokens:        maxTokens,
		Temperature:      0.8,
		PresencePenalty:  0.3,
		FrequencyPenalty: 0.3,
	})
	if err != nil {
		return llm.Completion{}, fmt.Errorf("%s chat: %w", s.llm.Name(), err)
	}
	s.logger.Info("chat completed",
		zap.String("provider", s.llm.Name()),
		zap.String("model", out.Model),
		zap.Int("messages", len(in.Messages)),
		zap.Int("length", len(out.Text)),
	)
	return out, nil
}
