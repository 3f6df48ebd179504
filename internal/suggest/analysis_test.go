package suggest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    MessageContext
	}{
		{
			name:    "question mark",
			message: "Bora sair sexta?",
			want:    MessageContext{IsQuestion: true, Sentiment: SentimentNeutral, Length: 16},
		},
		{
			name:    "question keyword without mark",
			message: "Como foi seu dia",
			want:    MessageContext{IsQuestion: true, Sentiment: SentimentNeutral, Length: 16},
		},
		{
			name:    "compliment",
			message: "Você é muito linda",
			want:    MessageContext{IsCompliment: true, Sentiment: SentimentNeutral, Length: 18},
		},
		{
			name:    "emoji",
			message: "haha 😂",
			want:    MessageContext{IsEmoji: true, Sentiment: SentimentNeutral, Length: 6},
		},
		{
			name:    "negative wins over positive",
			message: "Tô triste, nada legal",
			want:    MessageContext{Sentiment: SentimentNegative, Length: 21},
		},
		{
			name:    "positive",
			message: "Muito feliz hoje",
			want:    MessageContext{Sentiment: SentimentPositive, Length: 16},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyzeMessage(tt.message))
		})
	}
}

func TestMessageContext_CategoryPrecedence(t *testing.T) {
	assert.Equal(t, categoryQuestion, MessageContext{IsQuestion: true, IsCompliment: true, IsEmoji: true}.category())
	assert.Equal(t, categoryCompliment, MessageContext{IsCompliment: true, IsEmoji: true}.category())
	assert.Equal(t, categoryEmoji, MessageContext{IsEmoji: true}.category())
	assert.Equal(t, categoryGeneral, MessageContext{}.category())
}

func TestTimingAdvice(t *testing.T) {
	at := func(hour int) time.Time { return time.Date(2025, 3, 14, hour, 0, 0, 0, time.UTC) }

	// America/Sao_Paulo = UTC-3
	assert.Equal(t, TimingMorning, TimingAdvice(at(2), "America/Sao_Paulo")) // 23h
	assert.Equal(t, TimingMorning, TimingAdvice(at(9), "America/Sao_Paulo")) // 06h
	assert.Equal(t, TimingGood, TimingAdvice(at(10), "America/Sao_Paulo"))   // 07h
	assert.Equal(t, TimingNow, TimingAdvice(at(12), "America/Sao_Paulo"))    // 09h
	assert.Equal(t, TimingNow, TimingAdvice(at(21), "America/Sao_Paulo"))    // 18h
	assert.Equal(t, TimingGood, TimingAdvice(at(22), "America/Sao_Paulo"))   // 19h

	// 잘못되거나 빈 시간대는 America/Sao_Paulo
	assert.Equal(t, TimingGood, TimingAdvice(at(10), "Not/AZone"))
	assert.Equal(t, TimingGood, TimingAdvice(at(10), ""))
	assert.Equal(t, TimingNow, TimingAdvice(at(10), "UTC"))
}

func TestCoachExplanation(t *testing.T) {
	got := CoachExplanation("E você, o que acha?", "questionador", MessageContext{IsQuestion: true})
	assert.Equal(t, "💡 Esta resposta usa um tom questionador, demonstra interesse genuíno. A pergunta incentiva a pessoa a continuar falando.", got)

	got = CoachExplanation("Que fofo, obrigada! 😊", "descontraído", MessageContext{IsCompliment: true})
	assert.Equal(t, "💡 Esta resposta usa um tom descontraído, retribui o carinho de forma equilibrada. O emoji transmite leveza e bom humor.", got)

	got = CoachExplanation("Nossa, não acredito!", "divertido", MessageContext{})
	assert.Equal(t, "💡 Esta resposta usa um tom divertido, mantém a conversa fluindo naturalmente. A resposta é direta mas acolhedora.", got)
}
