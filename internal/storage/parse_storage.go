package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"FlertaAI_ReplyAssistant/internal/models"
)

const UsageKindParse = "parse"

func (s *Store) CreateParse(ctx context.Context, p *models.ChatParse) error {
	turns, err := json.Marshal(p.Turns)
	if err != nil {
		return fmt.Errorf("CreateParse(): failed to encode turns: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("CreateParse(): %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO chat_parses (id, user_id, upload_id, raw_text, turns, speaker_confidence, needs_confirmation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.UserID, nullString(p.UploadID), p.RawText, string(turns), p.SpeakerConfidence, p.NeedsConfirmation, formatTime(p.CreatedAt)); err != nil {
		return err
	}
	// 분석 횟수는 분석 행과 별도로 남김
	if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO usage_events (id, user_id, kind, created_at) VALUES (?, ?, ?, ?)`),
		p.ID, p.UserID, UsageKindParse, formatTime(p.CreatedAt)); err != nil {
		return err
	}
	return tx.Commit()
}

// GetParse 다른 사용자의 분석은 ErrNotFound
func (s *Store) GetParse(ctx context.Context, id, userID string) (*models.ChatParse, error) {
	row := s.queryRow(ctx, `SELECT id, user_id, upload_id, raw_text, turns, speaker_confidence, needs_confirmation, created_at
		FROM chat_parses WHERE id = ? AND user_id = ?`, id, userID)
	p, err := scanParse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// UpdateParseTurns 화자 확인 후 대화 갱신
func (s *Store) UpdateParseTurns(ctx context.Context, p *models.ChatParse) error {
	turns, err := json.Marshal(p.Turns)
	if err != nil {
		return fmt.Errorf("UpdateParseTurns(): failed to encode turns: %w", err)
	}
	res, err := s.exec(ctx, `UPDATE chat_parses SET turns = ?, speaker_confidence = ?, needs_confirmation = ?
		WHERE id = ? AND user_id = ?`,
		string(turns), p.SpeakerConfidence, p.NeedsConfirmation, p.ID, p.UserID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) ListParses(ctx context.Context, userID string, limit int) ([]models.ChatParse, error) {
	rows, err := s.query(ctx, `SELECT id, user_id, upload_id, raw_text, turns, speaker_confidence, needs_confirmation, created_at
		FROM chat_parses WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parses []models.ChatParse
	for rows.Next() {
		p, err := scanParse(rows)
		if err != nil {
			return nil, err
		}
		parses = append(parses, *p)
	}
	return parses, rows.Err()
}

// CountAnalysesSince 일일 분석 횟수 제한용, 삭제된 분석도 포함
func (s *Store) CountAnalysesSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM usage_events WHERE user_id = ? AND kind = ? AND created_at >= ?`,
		userID, UsageKindParse, formatTime(since)).Scan(&n)
	return n, err
}

func scanParse(row scanner) (*models.ChatParse, error) {
	var p models.ChatParse
	var uploadID, raw, turns sql.NullString
	var conf sql.NullFloat64
	var needs sql.NullBool
	var created string
	if err := row.Scan(&p.ID, &p.UserID, &uploadID, &raw, &turns, &conf, &needs, &created); err != nil {
		return nil, err
	}
	p.UploadID, p.RawText = uploadID.String, raw.String
	p.SpeakerConfidence, p.NeedsConfirmation = conf.Float64, needs.Bool
	p.CreatedAt = parseTime(created)
	p.Turns = []models.Turn{}
	if turns.Valid && turns.String != "" {
		if err := json.Unmarshal([]byte(turns.String), &p.Turns); err != nil {
			return nil, fmt.Errorf("scanParse(): corrupted turns for %s: %w", p.ID, err)
		}
	}
	return &p, nil
}

func (s *Store) CountParses(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM chat_parses WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}
