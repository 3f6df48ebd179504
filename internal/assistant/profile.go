package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"FlertaAI_ReplyAssistant/internal/models"
	"FlertaAI_ReplyAssistant/internal/storage"
)

const maxBlockedTopics = 20

type ProfileInput struct {
	DisplayName   string      `json:"display_name"`
	Tone          models.Tone `json:"tone"`
	TZ            string      `json:"tz"`
	Locale        string      `json:"locale"`
	BlockedTopics []string    `json:"blocked_topics"`
}

// GetProfile 저장된 프로필, 없으면 기본값
func (s *Service) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	return s.profileFor(ctx, userID)
}

// UpdateProfile 온보딩 설정 저장 (슬라이더 0-100으로 보정)
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (models.Profile, error) {
	tone := in.Tone
	tone.Humor = clamp(tone.Humor)
	tone.Subtlety = clamp(tone.Subtlety)
	tone.Boldness = clamp(tone.Boldness)
	switch tone.MessageLength {
	case "":
		tone.MessageLength = "medium"
	case "short", "medium", "long":
	default:
		return models.Profile{}, invalid("messageLength must be short, medium or long")
	}

	tz := strings.TrimSpace(in.TZ)
	if tz == "" {
		tz = models.DefaultTimezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return models.Profile{}, invalid("invalid timezone %q", tz)
	}
	locale := strings.TrimSpace(in.Locale)
	if locale == "" {
		locale = models.DefaultLocale
	}

	topics, err := cleanTopics(in.BlockedTopics)
	if err != nil {
		return models.Profile{}, err
	}

	now := s.now()
	p := models.Profile{
		ID:            uuid.NewString(),
		UserID:        userID,
		DisplayName:   strings.TrimSpace(in.DisplayName),
		Tone:          tone,
		TZ:            tz,
		Locale:        locale,
		BlockedTopics: topics,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.UpsertProfile(ctx, &p); err != nil {
		return models.Profile{}, fmt.Errorf("UpdateProfile(): %w", err)
	}

	saved, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return p, nil
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("UpdateProfile(): %w", err)
	}
	return *saved, nil
}

func clamp(v int) int {
	return min(max(v, 0), 100)
}

// 공백 제거, 대소문자 무시 중복 제거
func cleanTopics(topics []string) ([]string, error) {
	out := make([]string, 0, len(topics))
	seen := make(map[string]bool, len(topics))
	for _, t := range topics {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	if len(out) > maxBlockedTopics {
		return nil, invalid("at most %d blocked topics", maxBlockedTopics)
	}
	return out, nil
}
