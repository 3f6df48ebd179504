package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlertaAI_ReplyAssistant/internal/models"
)

// 15:00 UTC = 12:00 em São Paulo
var noon = func() time.Time { return time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC) }

func newTestGenerator(opts ...Option) *Generator {
	base := []Option{WithClock(noon), WithRand(rand.New(rand.NewPCG(42, 7)))}
	return NewGenerator(append(base, opts...)...)
}

func TestGenerate_DefaultStyles(t *testing.T) {
	g := newTestGenerator()
	out, err := g.Generate(context.Background(), Request{LastMessage: "Onde você mora?"})
	require.NoError(t, err)
	require.Len(t, out, 5)

	for i, style := range Styles() {
		c := out[i]
		assert.Equal(t, style.Key, c.Style)
		// 질문 템플릿에는 치환 대상 단어가 없음
		assert.Contains(t, templates[categoryQuestion][style.Key], c.Text)
		assert.GreaterOrEqual(t, c.Confidence, 0.7)
		assert.Less(t, c.Confidence, 1.0)
		assert.Equal(t, TimingNow, c.Timing)
		assert.Empty(t, c.Explanation)
	}
}

func TestGenerate_CoachMode(t *testing.T) {
	g := newTestGenerator()
	out, err := g.Generate(context.Background(), Request{LastMessage: "Quando a gente se vê?", CoachMode: true})
	require.NoError(t, err)

	assert.Contains(t, out[0].Explanation, "💡 Esta resposta usa um tom descontraído, demonstra interesse genuíno.")
	assert.Contains(t, out[4].Explanation, "tom questionador")
}

func TestGenerate_Options(t *testing.T) {
	g := newTestGenerator()

	opts, err := ParseOptions(json.RawMessage(`{"styles":["funny","casual","funny"],"count":1,"mood":"x"}`))
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), Request{LastMessage: "Você é muito gata", Options: opts})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "funny", out[0].Style)
}

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, Options{}, opts)

	_, err = ParseOptions(json.RawMessage(`null`))
	assert.NoError(t, err)

	_, err = ParseOptions(json.RawMessage(`{"styles":["romantic"]}`))
	assert.ErrorIs(t, err, ErrUnknownStyle)

	_, err = ParseOptions(json.RawMessage(`{"count":9}`))
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = ParseOptions(json.RawMessage(`"casual"`))
	assert.Error(t, err)
}

func TestGenerate_LateNightTiming(t *testing.T) {
	g := newTestGenerator(WithClock(func() time.Time {
		return time.Date(2025, 3, 14, 4, 0, 0, 0, time.UTC) // 01:00 em São Paulo
	}))
	out, err := g.Generate(context.Background(), Request{LastMessage: "boa noite", Timezone: "America/Sao_Paulo"})
	require.NoError(t, err)
	for _, c := range out {
		assert.Equal(t, TimingMorning, c.Timing)
	}
}

type fakePhraser struct {
	mu      sync.Mutex
	calls   []PhraseRequest
	replies map[string]string
	errs    map[string]error
}

func (f *fakePhraser) Phrase(ctx context.Context, req PhraseRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := f.errs[req.Style.Key]; err != nil {
		return "", err
	}
	return f.replies[req.Style.Key], nil
}

func TestGenerate_WithPhraser(t *testing.T) {
	phraser := &fakePhraser{
		replies: map[string]string{
			"casual":     "Oi sumida, tudo bem?",
			"flirty":     "  Bora marcar um café pra você me contar? ☕  ",
			"thoughtful": "Como anda o trabalho?",
			"engaging":   "",
		},
		errs: map[string]error{"funny": errors.New("boom")},
	}
	g := newTestGenerator(WithPhraser(phraser))

	history := []models.Turn{{Speaker: "other", Text: "Adoro café"}}
	out, err := g.Generate(context.Background(), Request{
		LastMessage:   "Adoro café",
		History:       history,
		Tone:          models.Tone{Humor: 80},
		BlockedTopics: []string{"Trabalho"},
		CoachMode:     true,
	})
	require.NoError(t, err)
	require.Len(t, out, 5)
	assert.Len(t, phraser.calls, 5)

	// 클리셰, 오류, 금지 주제, 빈 응답은 템플릿 유지
	assert.NotEqual(t, "Oi sumida, tudo bem?", out[0].Text)
	assert.Equal(t, "Bora marcar um café pra você me contar? ☕", out[1].Text)
	assert.NotEmpty(t, out[2].Text)
	assert.NotEqual(t, "Como anda o trabalho?", out[3].Text)
	assert.NotEmpty(t, out[4].Text)

	// 코치 설명은 최종 문장을 기준으로 작성
	assert.Contains(t, out[1].Explanation, "A pergunta incentiva")

	for _, call := range phraser.calls {
		assert.Equal(t, "Adoro café", call.LastMessage)
		assert.Equal(t, 80, call.Tone.Humor)
		assert.NotEmpty(t, call.Draft)
	}
}

func TestGenerate_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := newTestGenerator(WithPhraser(&fakePhraser{}))
	_, err := g.Generate(ctx, Request{LastMessage: "oi"})
	assert.ErrorIs(t, err, context.Canceled)
}
