package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"FlertaAI_ReplyAssistant/internal/conversation"
	"FlertaAI_ReplyAssistant/internal/models"
)

type ParseInput struct {
	FileID string `json:"fileId"`
	Text   string `json:"text"`
}

// ParseConversation 업로드 또는 텍스트에서 대화 턴 추출 후 저장
func (s *Service) ParseConversation(ctx context.Context, userID string, in ParseInput) (*models.ChatParse, error) {
	profile, err := s.profileFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.billing.CheckQuota(ctx, userID, profile.TZ); err != nil {
		return nil, err
	}

	text := in.Text
	if in.FileID != "" {
		upload, err := s.store.GetUpload(ctx, in.FileID, userID)
		if err != nil {
			return nil, notFound(err, ErrUploadNotFound)
		}
		extracted, err := s.extractText(ctx, upload, in.Text)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(extracted) != "" {
			text = extracted
		}
	}

	result, err := s.parser.Parse(text, s.now())
	if err != nil {
		return nil, err
	}

	parse := &models.ChatParse{
		ID:                uuid.NewString(),
		UserID:            userID,
		UploadID:          in.FileID,
		RawText:           result.RawText,
		Turns:             result.Turns,
		SpeakerConfidence: result.SpeakerConfidence,
		NeedsConfirmation: result.NeedsConfirmation,
		CreatedAt:         s.now(),
	}
	if err := s.store.CreateParse(ctx, parse); err != nil {
		return nil, fmt.Errorf("Failed to save parse result: %w", err)
	}

	s.logger.Info("parse completed",
		zap.String("parse_id", parse.ID),
		zap.Int("turns", len(parse.Turns)),
		zap.Float64("confidence", parse.SpeakerConfidence),
		zap.Bool("needs_confirmation", parse.NeedsConfirmation),
	)
	return parse, nil
}

// extractText 업로드 종류별 텍스트 추출
// 스크린샷 OCR이 없으면 함께 온 텍스트로 대체
func (s *Service) extractText(ctx context.Context, upload *models.Upload, fallback string) (string, error) {
	switch upload.Kind {
	case models.UploadKindText:
		data, err := s.files.ReadAll(upload.StoragePath)
		if err != nil {
			return "", fmt.Errorf("extractText(): %w", err)
		}
		return string(data), nil
	case models.UploadKindScreenshot:
		if s.ocr == nil {
			if strings.TrimSpace(fallback) != "" {
				return fallback, nil
			}
			return "", ErrOCRNotConfigured
		}
		data, err := s.files.ReadAll(upload.StoragePath)
		if err != nil {
			return "", fmt.Errorf("extractText(): %w", err)
		}
		text, err := s.ocr.Extract(ctx, data, upload.Mime)
		if err != nil {
			if strings.TrimSpace(fallback) != "" {
				s.logger.Warn("ocr failed, using provided text", zap.String("upload_id", upload.ID), zap.Error(err))
				return fallback, nil
			}
			return "", fmt.Errorf("OCR failed: %w", err)
		}
		return text, nil
	case models.UploadKindVoice:
		return "", invalid("Use /api/voice-notes para transcrever áudio")
	default:
		return "", invalid("unknown upload kind %q", upload.Kind)
	}
}

// GetParse 본인 분석만 조회
func (s *Service) GetParse(ctx context.Context, userID, parseID string) (*models.ChatParse, error) {
	p, err := s.store.GetParse(ctx, parseID, userID)
	if err != nil {
		return nil, notFound(err, ErrParseNotFound)
	}
	return p, nil
}

// ConfirmSpeakers 사용자가 화자를 확정하면 신뢰도 1
func (s *Service) ConfirmSpeakers(ctx context.Context, userID, parseID string, speakers []string) (*models.ChatParse, error) {
	p, err := s.GetParse(ctx, userID, parseID)
	if err != nil {
		return nil, err
	}
	turns, err := conversation.ConfirmSpeakers(p.Turns, speakers)
	if err != nil {
		return nil, err
	}
	p.Turns = turns
	p.SpeakerConfidence = 1
	p.NeedsConfirmation = false
	if err := s.store.UpdateParseTurns(ctx, p); err != nil {
		return nil, notFound(err, ErrParseNotFound)
	}
	return p, nil
}
