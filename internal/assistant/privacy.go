package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"FlertaAI_ReplyAssistant/internal/models"
	"FlertaAI_ReplyAssistant/internal/storage"
)

// PurgeMyData 사용자의 모든 행과 파일 삭제 후 감사 로그 기록
func (s *Service) PurgeMyData(ctx context.Context, userID string) (*storage.PurgeResult, error) {
	res, err := s.store.PurgeUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	failed := 0
	for _, key := range res.Files {
		if err := s.files.Delete(key); err != nil {
			failed++
			s.logger.Warn("failed to delete file", zap.String("key", key), zap.Error(err))
		}
	}
	if err := s.files.DeleteUser(userID); err != nil {
		s.logger.Warn("failed to delete user directory", zap.String("user_id", userID), zap.Error(err))
	}

	meta, err := json.Marshal(map[string]any{
		"uploads":      res.Uploads,
		"parses":       res.Parses,
		"suggestions":  res.Suggestions,
		"outcomes":     res.Outcomes,
		"voice_notes":  res.VoiceNotes,
		"profiles":     res.Profiles,
		"files":        len(res.Files),
		"files_failed": failed,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.CreatePrivacyLog(ctx, &models.PrivacyLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    "purge",
		Entity:    "all",
		Meta:      meta,
		CreatedAt: s.now(),
	}); err != nil {
		return nil, fmt.Errorf("PurgeMyData(): %w", err)
	}
	s.logger.Info("user data purged", zap.String("user_id", userID), zap.Int64("parses", res.Parses))
	return res, nil
}
