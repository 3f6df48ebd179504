package storage

import (
	"context"
	"database/sql"
	"errors"

	"FlertaAI_ReplyAssistant/internal/models"
)

func (s *Store) CreateUpload(ctx context.Context, u *models.Upload) error {
	_, err := s.exec(ctx, `INSERT INTO uploads (id, user_id, kind, mime, size_bytes, storage_path, sha, redacted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.UserID, u.Kind, nullString(u.Mime), u.SizeBytes, nullString(u.StoragePath), nullString(u.SHA), u.Redacted, formatTime(u.CreatedAt))
	return err
}

// GetUpload 소유자 확인 포함
func (s *Store) GetUpload(ctx context.Context, id, userID string) (*models.Upload, error) {
	row := s.queryRow(ctx, `SELECT id, user_id, kind, mime, size_bytes, storage_path, sha, redacted, created_at
		FROM uploads WHERE id = ? AND user_id = ?`, id, userID)
	u, err := scanUpload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *Store) ListUploads(ctx context.Context, userID string, limit int) ([]models.Upload, error) {
	rows, err := s.query(ctx, `SELECT id, user_id, kind, mime, size_bytes, storage_path, sha, redacted, created_at
		FROM uploads WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uploads []models.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, *u)
	}
	return uploads, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(row scanner) (*models.Upload, error) {
	var u models.Upload
	var mime, path, sha sql.NullString
	var size sql.NullInt64
	var created string
	if err := row.Scan(&u.ID, &u.UserID, &u.Kind, &mime, &size, &path, &sha, &u.Redacted, &created); err != nil {
		return nil, err
	}
	u.Mime, u.StoragePath, u.SHA = mime.String, path.String, sha.String
	u.SizeBytes = size.Int64
	u.CreatedAt = parseTime(created)
	return &u, nil
}

func (s *Store) CreateVoiceNote(ctx context.Context, v *models.VoiceNote) error {
	_, err := s.exec(ctx, `INSERT INTO voice_notes (id, user_id, upload_id, transcript, lang, duration_sec, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, nullString(v.UploadID), v.Transcript, v.Lang, v.DurationSec, formatTime(v.CreatedAt))
	return err
}

func (s *Store) CountUploads(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM uploads WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}
