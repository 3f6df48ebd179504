package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"FlertaAI_ReplyAssistant/internal/models"
)

// GetProfile 없으면 ErrNotFound, 호출 측에서 기본 프로필 사용
func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	var name, tone, tz, locale, blocked sql.NullString
	var created, updated string
	err := s.queryRow(ctx, `SELECT id, user_id, display_name, tone, tz, locale, blocked_topics, created_at, updated_at
		FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.ID, &p.UserID, &name, &tone, &tz, &locale, &blocked, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	def := models.DefaultProfile(userID)
	p.DisplayName = name.String
	p.Tone, p.TZ, p.Locale = def.Tone, def.TZ, def.Locale
	if tz.String != "" {
		p.TZ = tz.String
	}
	if locale.String != "" {
		p.Locale = locale.String
	}
	if tone.String != "" {
		if err := json.Unmarshal([]byte(tone.String), &p.Tone); err != nil {
			return nil, fmt.Errorf("GetProfile(): corrupted tone for %s: %w", userID, err)
		}
	}
	p.BlockedTopics = []string{}
	if blocked.String != "" {
		if err := json.Unmarshal([]byte(blocked.String), &p.BlockedTopics); err != nil {
			return nil, fmt.Errorf("GetProfile(): corrupted blocked topics for %s: %w", userID, err)
		}
	}
	p.CreatedAt, p.UpdatedAt = parseTime(created), parseTime(updated)
	return &p, nil
}

// UpsertProfile user_id 기준 생성 또는 갱신 (id, created_at은 최초 값 유지)
func (s *Store) UpsertProfile(ctx context.Context, p *models.Profile) error {
	tone, err := json.Marshal(p.Tone)
	if err != nil {
		return err
	}
	topics := p.BlockedTopics
	if topics == nil {
		topics = []string{}
	}
	blocked, err := json.Marshal(topics)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, `INSERT INTO profiles (id, user_id, display_name, tone, tz, locale, blocked_topics, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = excluded.display_name,
			tone = excluded.tone,
			tz = excluded.tz,
			locale = excluded.locale,
			blocked_topics = excluded.blocked_topics,
			updated_at = excluded.updated_at`,
		p.ID, p.UserID, p.DisplayName, string(tone), p.TZ, p.Locale, string(blocked),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	return err
}
