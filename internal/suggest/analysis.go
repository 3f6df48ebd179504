package suggest

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"FlertaAI_ReplyAssistant/internal/models"
)

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// 이모티콘, 기타 기호, 교통, 국기(regional indicator)
var emojiRegexp = regexp.MustCompile(`[\x{1F600}-\x{1F64F}]|[\x{1F300}-\x{1F5FF}]|[\x{1F680}-\x{1F6FF}]|[\x{1F1E0}-\x{1F1FF}]`)

// 상대방 메시지 분석 결과
type MessageContext struct {
	IsQuestion   bool   `json:"isQuestion"`
	IsCompliment bool   `json:"isCompliment"`
	IsEmoji      bool   `json:"isEmoji"`
	Sentiment    string `json:"sentiment"`
	Length       int    `json:"length"`
}

// AnalyzeMessage 키워드 기반의 단순 분석
func AnalyzeMessage(message string) MessageContext {
	lower := strings.ToLower(message)

	sentiment := SentimentNeutral
	switch {
	case containsAny(lower, "triste", "chate"):
		sentiment = SentimentNegative
	case containsAny(lower, "feliz", "legal"):
		sentiment = SentimentPositive
	}

	return MessageContext{
		IsQuestion:   strings.Contains(message, "?") || containsAny(lower, "como", "quando", "onde"),
		IsCompliment: containsAny(lower, "bonit", "lind", "gat", "charm"),
		IsEmoji:      emojiRegexp.MatchString(message),
		Sentiment:    sentiment,
		Length:       utf8.RuneCountInString(message),
	}
}

// 템플릿 분류 (질문 > 칭찬 > 이모지 > 일반)
func (m MessageContext) category() string {
	switch {
	case m.IsQuestion:
		return categoryQuestion
	case m.IsCompliment:
		return categoryCompliment
	case m.IsEmoji:
		return categoryEmoji
	default:
		return categoryGeneral
	}
}

// 답장 타이밍 조언
const (
	TimingMorning = "Talvez seja melhor responder de manhã"
	TimingGood    = "Bom horário para responder"
	TimingNow     = "OK para responder agora"
)

// TimingAdvice 사용자 시간대 기준 현재 시각으로 판단 (잘못된 시간대는 DefaultTimezone)
func TimingAdvice(now time.Time, timezone string) string {
	hour := now.In(models.Location(timezone)).Hour()
	isWorkingHours := hour >= 9 && hour <= 18
	isLateNight := hour >= 23 || hour <= 6

	switch {
	case isLateNight:
		return TimingMorning
	case !isWorkingHours:
		return TimingGood
	default:
		return TimingNow
	}
}

// CoachExplanation 코치 모드에서 답변 의도를 설명
func CoachExplanation(suggestion, tone string, ctx MessageContext) string {
	intent := "mantém a conversa fluindo naturalmente"
	switch {
	case ctx.IsQuestion:
		intent = "demonstra interesse genuíno"
	case ctx.IsCompliment:
		intent = "retribui o carinho de forma equilibrada"
	}

	device := "A resposta é direta mas acolhedora."
	switch {
	case strings.Contains(suggestion, "?"):
		device = "A pergunta incentiva a pessoa a continuar falando."
	case strings.Contains(suggestion, "😊") || strings.Contains(suggestion, "😄"):
		device = "O emoji transmite leveza e bom humor."
	}

	return "💡 Esta resposta usa um tom " + tone + ", " + intent + ". " + device
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
