package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlertaAI_ReplyAssistant/internal/llm"
	"FlertaAI_ReplyAssistant/internal/models"
)

type fakeProvider struct {
	messages []llm.Message
	opts     llm.Options
	text     string
	err      error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, messages []llm.Message, opts llm.Options) (llm.Completion, error) {
	f.messages = messages
	f.opts = opts
	return llm.Completion{Text: f.text}, f.err
}

func TestLLMPhraser_Phrase(t *testing.T) {
	provider := &fakeProvider{text: "\"Eu: Bora sim! Que horas?\"\nExplicação: tom leve"}
	style, _ := GetStyle("engaging")

	out, err := NewLLMPhraser(provider).Phrase(context.Background(), PhraseRequest{
		Style:       style,
		Draft:       "E como isso começou?",
		LastMessage: "Vamos no show sábado?",
		Tone:        models.Tone{Humor: 70, Subtlety: 60, Boldness: 50, MessageLength: "short"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bora sim! Que horas?", out)
	require.Len(t, provider.messages, 2)
	assert.Equal(t, llm.RoleSystem, provider.messages[0].Role)
	assert.Equal(t, 0.8, provider.opts.Temperature)
	assert.Equal(t, phraseMaxTokens, provider.opts.MaxTokens)
}

func TestLLMPhraser_Error(t *testing.T) {
	provider := &fakeProvider{err: errors.New("down")}
	_, err := NewLLMPhraser(provider).Phrase(context.Background(), PhraseRequest{})
	assert.Error(t, err)
}

func TestBuildPhrasePrompt(t *testing.T) {
	history := make([]models.Turn, 0, 12)
	for i := 0; i < 12; i++ {
		speaker := models.SpeakerOther
		if i%2 == 1 {
			speaker = models.SpeakerMe
		}
		history = append(history, models.Turn{Speaker: speaker, Text: string(rune('a' + i))})
	}
	style, _ := GetStyle("flirty")

	prompt := BuildPhrasePrompt(PhraseRequest{
		Style:         style,
		Draft:         "Que interessante você 😉",
		LastMessage:   "k",
		History:       history,
		Tone:          models.Tone{Humor: 10, Subtlety: 20, Boldness: 30, MessageLength: "long"},
		BlockedTopics: []string{"ex", "política"},
	})

	// 최근 8턴만 포함
	assert.NotContains(t, prompt, "Outra pessoa: a\n")
	assert.Contains(t, prompt, "Outra pessoa: e\n")
	assert.Contains(t, prompt, "Eu: l\n")
	assert.Contains(t, prompt, "flirty (envolvente)")
	assert.Contains(t, prompt, "humor 10, sutileza 20, ousadia 30")
	assert.Contains(t, prompt, "até três frases")
	assert.Contains(t, prompt, "Nunca mencione: ex, política.")
}

func TestCleanReply(t *testing.T) {
	assert.Equal(t, "Show!", CleanReply("  “Show!”  "))
	assert.Equal(t, "Bora", CleanReply("Eu: Bora\nsegunda linha"))
}
