package suggest

import (
	"context"
	"fmt"
	"strings"

	"FlertaAI_ReplyAssistant/internal/llm"
	"FlertaAI_ReplyAssistant/internal/models"
)

const (
	phraseMaxTokens   = 120
	phraseHistorySize = 8
)

// LLMPhraser llm.Provider 기반 Phraser
type LLMPhraser struct {
	provider llm.Provider
}

func NewLLMPhraser(provider llm.Provider) *LLMPhraser {
	return &LLMPhraser{provider: provider}
}

func (p *LLMPhraser) Phrase(ctx context.Context, req PhraseRequest) (string, error) {
	messages := llm.WithPersona([]llm.Message{
		{Role: llm.RoleUser, Content: BuildPhrasePrompt(req)},
	}, phraseMaxTokens)

	out, err := p.provider.Complete(ctx, messages, llm.Options{
		MaxTokens:        phraseMaxTokens,
		Temperature:      0.8,
		PresencePenalty:  0.3,
		FrequencyPenalty: 0.3,
	})
	if err != nil {
		return "", err
	}
	return CleanReply(out.Text), nil
}

// BuildPhrasePrompt 최근 대화, 말투 설정, 금지 주제를 포함한 요청문
func BuildPhrasePrompt(req PhraseRequest) string {
	var b strings.Builder
	b.WriteString("Conversa recente:\n")
	history := req.History
	if len(history) > phraseHistorySize {
		history = history[len(history)-phraseHistorySize:]
	}
	for _, turn := range history {
		who := "Outra pessoa"
		if turn.Speaker == models.SpeakerMe {
			who = "Eu"
		}
		fmt.Fprintf(&b, "%s: %s\n", who, turn.Text)
	}

	fmt.Fprintf(&b, "\nÚltima mensagem da outra pessoa: %q\n", req.LastMessage)
	fmt.Fprintf(&b, "Estilo da resposta: %s (%s). %s\n", req.Style.Key, req.Style.Tone, req.Style.Description)
	fmt.Fprintf(&b, "Preferências de tom (0-100): humor %d, sutileza %d, ousadia %d.\n",
		req.Tone.Humor, req.Tone.Subtlety, req.Tone.Boldness)
	fmt.Fprintf(&b, "Tamanho da mensagem: %s.\n", lengthHint(req.Tone.MessageLength))
	if len(req.BlockedTopics) > 0 {
		fmt.Fprintf(&b, "Nunca mencione: %s.\n", strings.Join(req.BlockedTopics, ", "))
	}
	fmt.Fprintf(&b, "Exemplo de resposta nesse estilo: %q\n", req.Draft)
	b.WriteString("Escreva UMA mensagem de resposta pronta para enviar. Responda apenas com a mensagem, sem aspas nem explicações.")
	return b.String()
}

// CleanReply 따옴표, 접두어, 여러 줄 응답 정리
func CleanReply(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	text = strings.Trim(text, `"“”'`)
	text = strings.TrimSpace(strings.TrimPrefix(text, "Eu:"))
	text = strings.Trim(text, `"“”'`)
	return strings.TrimSpace(text)
}

func lengthHint(messageLength string) string {
	switch messageLength {
	case "short":
		return "curta, uma frase"
	case "long":
		return "mais longa, até três frases"
	default:
		return "média, uma ou duas frases"
	}
}
