package models

import "time"

// 화자 구분
const (
	SpeakerMe    = "me"
	SpeakerOther = "other"
)

// 대화 한 줄 (화자 + 본문)
type Turn struct {
	Speaker      string `json:"speaker"`
	Text         string `json:"text"`
	Timestamp    string `json:"timestamp"`
	OriginalLine string `json:"originalLine"`
}

// 텍스트 분석 결과 (chat_parses)
type ChatParse struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	UploadID          string    `json:"upload_id,omitempty"`
	RawText           string    `json:"raw_text"`
	Turns             []Turn    `json:"turns"`
	SpeakerConfidence float64   `json:"speaker_confidence"`
	NeedsConfirmation bool      `json:"needs_confirmation"`
	CreatedAt         time.Time `json:"created_at"`
}

// LastFrom 해당 화자의 마지막 발화
func (p *ChatParse) LastFrom(speaker string) (Turn, bool) {
	for i := len(p.Turns) - 1; i >= 0; i-- {
		if p.Turns[i].Speaker == speaker {
			return p.Turns[i], true
		}
	}
	return Turn{}, false
}
