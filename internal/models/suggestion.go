package models

import (
	"encoding/json"
	"time"
)

// 저장된 답변 제안
type Suggestion struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	ParseID    string          `json:"parse_id"`
	Style      json.RawMessage `json:"style,omitempty"`
	Suggestion string          `json:"suggestion"`
	Accepted   *bool           `json:"accepted"`
	TTSPath    string          `json:"tts_path,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// 제안 사용 결과 피드백
type ConversationOutcome struct {
	ID            string    `json:"id"`
	SuggestionID  string    `json:"suggestion_id"`
	Outcome       string    `json:"outcome"`
	FeedbackScore int       `json:"feedback_score"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}
