package storage

import (
	"context"
	"database/sql"
	"fmt"

	"FlertaAI_ReplyAssistant/internal/models"
)

// 삭제 결과 (행 수 + 지워야 할 파일 경로)
type PurgeResult struct {
	Uploads     int64    `json:"uploads"`
	Parses      int64    `json:"parses"`
	Suggestions int64    `json:"suggestions"`
	Outcomes    int64    `json:"outcomes"`
	VoiceNotes  int64    `json:"voice_notes"`
	Profiles    int64    `json:"profiles"`
	Files       []string `json:"-"`
}

func (s *Store) CreatePrivacyLog(ctx context.Context, l *models.PrivacyLog) error {
	var meta sql.NullString
	if len(l.Meta) > 0 {
		meta = sql.NullString{String: string(l.Meta), Valid: true}
	}
	_, err := s.exec(ctx, `INSERT INTO privacy_logs (id, user_id, action, entity, meta, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, l.UserID, l.Action, nullString(l.Entity), meta, formatTime(l.CreatedAt))
	return err
}

func (s *Store) ListPrivacyLogs(ctx context.Context, userID string) ([]models.PrivacyLog, error) {
	rows, err := s.query(ctx, `SELECT id, user_id, action, entity, meta, created_at
		FROM privacy_logs WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.PrivacyLog
	for rows.Next() {
		var l models.PrivacyLog
		var entity, meta sql.NullString
		var created string
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &entity, &meta, &created); err != nil {
			return nil, err
		}
		l.Entity = entity.String
		if meta.Valid {
			l.Meta = []byte(meta.String)
		}
		l.CreatedAt = parseTime(created)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// PurgeUser 사용자의 모든 행을 한 트랜잭션으로 삭제 (privacy_logs, subscriptions, usage_events 제외)
func (s *Store) PurgeUser(ctx context.Context, userID string) (*PurgeResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("PurgeUser(): %w", err)
	}
	defer tx.Rollback()

	res := &PurgeResult{}
	files, err := s.collectPaths(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("PurgeUser(): %w", err)
	}
	res.Files = files

	steps := []struct {
		query string
		count *int64
	}{
		{`DELETE FROM conversation_outcomes WHERE suggestion_id IN (SELECT id FROM suggestions WHERE user_id = ?)`, &res.Outcomes},
		{`DELETE FROM suggestions WHERE user_id = ?`, &res.Suggestions},
		{`DELETE FROM chat_parses WHERE user_id = ?`, &res.Parses},
		{`DELETE FROM voice_notes WHERE user_id = ?`, &res.VoiceNotes},
		{`DELETE FROM uploads WHERE user_id = ?`, &res.Uploads},
		{`DELETE FROM profiles WHERE user_id = ?`, &res.Profiles},
	}
	for _, step := range steps {
		r, err := tx.ExecContext(ctx, s.rebind(step.query), userID)
		if err != nil {
			return nil, fmt.Errorf("PurgeUser(): %w", err)
		}
		if *step.count, err = r.RowsAffected(); err != nil {
			return nil, fmt.Errorf("PurgeUser(): %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("PurgeUser(): %w", err)
	}
	return res, nil
}

func (s *Store) collectPaths(ctx context.Context, tx *sql.Tx, userID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, s.rebind(`SELECT storage_path FROM uploads WHERE user_id = ? AND storage_path IS NOT NULL
		UNION ALL
		SELECT tts_path FROM suggestions WHERE user_id = ? AND tts_path IS NOT NULL`), userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, rows.Err()
}
