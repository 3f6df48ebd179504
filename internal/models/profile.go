package models

import (
	"time"
	_ "time/tzdata" // 슬림 컨테이너에서도 사용자 시간대 계산
)

const (
	DefaultTimezone = "America/Sao_Paulo"
	DefaultLocale   = "pt-BR"
)

// 온보딩에서 설정하는 말투 슬라이더 (0-100)
type Tone struct {
	Humor         int    `json:"humor"`
	Subtlety      int    `json:"subtlety"`
	Boldness      int    `json:"boldness"`
	MessageLength string `json:"messageLength"`
}

// 사용자 개인화 프로필
type Profile struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	DisplayName   string    `json:"display_name"`
	Tone          Tone      `json:"tone"`
	TZ            string    `json:"tz"`
	Locale        string    `json:"locale"`
	BlockedTopics []string  `json:"blocked_topics"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DefaultProfile 프로필이 없는 사용자용
func DefaultProfile(userID string) Profile {
	return Profile{
		UserID: userID,
		Tone: Tone{
			Humor:         70,
			Subtlety:      60,
			Boldness:      50,
			MessageLength: "medium",
		},
		TZ:     DefaultTimezone,
		Locale: DefaultLocale,
	}
}

// Location 사용자 시간대, 비어있거나 잘못되면 DefaultTimezone
func Location(tz string) *time.Location {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}
