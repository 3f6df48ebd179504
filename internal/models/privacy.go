package models

import (
	"encoding/json"
	"time"
)

// 개인정보 관련 작업 감사 로그
type PrivacyLog struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	Meta      json.RawMessage `json:"meta,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
