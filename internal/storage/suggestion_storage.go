package storage

import (
	"context"
	"database/sql"
	"errors"

	"FlertaAI_ReplyAssistant/internal/models"
)

const suggestionColumns = `id, user_id, parse_id, style, suggestion, accepted, tts_path, created_at`

func (s *Store) CreateSuggestion(ctx context.Context, sg *models.Suggestion) error {
	_, err := s.exec(ctx, `INSERT INTO suggestions (`+suggestionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sg.ID, sg.UserID, nullString(sg.ParseID), nullString(string(sg.Style)), sg.Suggestion,
		nullBool(sg.Accepted), nullString(sg.TTSPath), formatTime(sg.CreatedAt))
	return err
}

func (s *Store) GetSuggestion(ctx context.Context, id, userID string) (*models.Suggestion, error) {
	row := s.queryRow(ctx, `SELECT `+suggestionColumns+` FROM suggestions WHERE id = ? AND user_id = ?`, id, userID)
	sg, err := scanSuggestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sg, err
}

func (s *Store) ListSuggestionsByParse(ctx context.Context, parseID, userID string) ([]models.Suggestion, error) {
	return s.listSuggestions(ctx, `SELECT `+suggestionColumns+` FROM suggestions
		WHERE parse_id = ? AND user_id = ? ORDER BY created_at ASC`, parseID, userID)
}

func (s *Store) ListSuggestions(ctx context.Context, userID string, limit int) ([]models.Suggestion, error) {
	return s.listSuggestions(ctx, `SELECT `+suggestionColumns+` FROM suggestions
		WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
}

func (s *Store) listSuggestions(ctx context.Context, query string, args ...any) ([]models.Suggestion, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Suggestion
	for rows.Next() {
		sg, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sg)
	}
	return out, rows.Err()
}

// SetAccepted 사용자가 제안을 사용했는지 기록
func (s *Store) SetAccepted(ctx context.Context, id, userID string, accepted bool) error {
	res, err := s.exec(ctx, `UPDATE suggestions SET accepted = ? WHERE id = ? AND user_id = ?`, accepted, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) SetTTSPath(ctx context.Context, id, userID, path string) error {
	res, err := s.exec(ctx, `UPDATE suggestions SET tts_path = ? WHERE id = ? AND user_id = ?`, path, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// SuggestionStats 전체 제안 수, 채택 수
func (s *Store) SuggestionStats(ctx context.Context, userID string) (total, accepted int, err error) {
	var acc sql.NullInt64
	err = s.queryRow(ctx, `SELECT COUNT(*), SUM(CASE WHEN accepted THEN 1 ELSE 0 END)
		FROM suggestions WHERE user_id = ?`, userID).Scan(&total, &acc)
	return total, int(acc.Int64), err
}

func (s *Store) CreateOutcome(ctx context.Context, o *models.ConversationOutcome) error {
	_, err := s.exec(ctx, `INSERT INTO conversation_outcomes (id, suggestion_id, outcome, feedback_score, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID, o.SuggestionID, o.Outcome, o.FeedbackScore, nullString(o.Notes), formatTime(o.CreatedAt))
	return err
}

func scanSuggestion(row scanner) (*models.Suggestion, error) {
	var sg models.Suggestion
	var parseID, style, tts sql.NullString
	var accepted sql.NullBool
	var created string
	if err := row.Scan(&sg.ID, &sg.UserID, &parseID, &style, &sg.Suggestion, &accepted, &tts, &created); err != nil {
		return nil, err
	}
	sg.ParseID, sg.TTSPath = parseID.String, tts.String
	if style.Valid && style.String != "" {
		sg.Style = []byte(style.String)
	}
	if accepted.Valid {
		v := accepted.Bool
		sg.Accepted = &v
	}
	sg.CreatedAt = parseTime(created)
	return &sg, nil
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
