package assistant

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"FlertaAI_ReplyAssistant/internal/billing"
	"FlertaAI_ReplyAssistant/internal/filestore"
	"FlertaAI_ReplyAssistant/internal/models"
)

// 업로드 종류별 허용 MIME -> 확장자
var allowedMIME = map[string]map[string]string{
	models.UploadKindScreenshot: {
		"image/png":  ".png",
		"image/jpeg": ".jpg",
		"image/webp": ".webp",
	},
	models.UploadKindVoice: {
		"audio/webm": ".webm",
		"audio/ogg":  ".ogg",
		"audio/wav":  ".wav",
		"audio/mpeg": ".mp3",
	},
	models.UploadKindText: {
		"text/plain": ".txt",
	},
}

type UploadInput struct {
	Kind string
	Mime string
	Size int64 // 모르면 -1
	Body io.Reader
}

// CreateUpload 파일 저장 후 uploads 행 생성
func (s *Service) CreateUpload(ctx context.Context, userID string, in UploadInput) (*models.Upload, error) {
	exts, ok := allowedMIME[in.Kind]
	if !ok {
		return nil, invalid("kind must be screenshot, voice or text")
	}
	if in.Size > s.maxUpload {
		return nil, invalid("Arquivo muito grande (máximo %d MiB)", s.maxUpload>>20)
	}

	br := bufio.NewReaderSize(in.Body, 512)
	mime := normalizeMIME(in.Mime)
	if mime == "" || mime == "application/octet-stream" {
		head, _ := br.Peek(512)
		mime = normalizeMIME(http.DetectContentType(head))
	}
	ext, ok := exts[mime]
	if !ok {
		return nil, invalid("unsupported %s type %q", in.Kind, mime)
	}

	key := filestore.NewKey(userID, in.Kind, ext)
	size, digest, err := s.files.Save(key, br, s.maxUpload)
	if errors.Is(err, filestore.ErrTooLarge) {
		return nil, invalid("Arquivo muito grande (máximo %d MiB)", s.maxUpload>>20)
	}
	if err != nil {
		return nil, fmt.Errorf("CreateUpload(): %w", err)
	}

	upload := &models.Upload{
		ID:          uuid.NewString(),
		UserID:      userID,
		Kind:        in.Kind,
		Mime:        mime,
		SizeBytes:   size,
		StoragePath: key,
		SHA:         digest,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateUpload(ctx, upload); err != nil {
		_ = s.files.Delete(key)
		return nil, fmt.Errorf("CreateUpload(): %w", err)
	}
	return upload, nil
}

func normalizeMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case "audio/x-wav", "audio/wave":
		return "audio/wav"
	case "audio/mp3":
		return "audio/mpeg"
	case "image/jpg":
		return "image/jpeg"
	}
	return mime
}

type VoiceNoteInput struct {
	UploadID string `json:"uploadId"`
	Lang     string `json:"lang"`
}

// TranscribeVoiceNote 음성 업로드를 텍스트로 변환 (유료 기능)
func (s *Service) TranscribeVoiceNote(ctx context.Context, userID string, in VoiceNoteInput) (*models.VoiceNote, error) {
	if err := s.billing.RequireFeature(ctx, userID, billing.FeatureVoiceNote); err != nil {
		return nil, err
	}
	if s.stt == nil {
		return nil, ErrSTTNotConfigured
	}
	upload, err := s.store.GetUpload(ctx, in.UploadID, userID)
	if err != nil {
		return nil, notFound(err, ErrUploadNotFound)
	}
	if upload.Kind != models.UploadKindVoice {
		return nil, invalid("upload is not a voice note")
	}
	lang := in.Lang
	if lang == "" {
		lang = s.speechLang
	}

	audio, err := s.files.ReadAll(upload.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("TranscribeVoiceNote(): %w", err)
	}
	tr, err := s.stt.Transcribe(ctx, audio, upload.Mime, lang)
	if err != nil {
		return nil, err
	}

	note := &models.VoiceNote{
		ID:          uuid.NewString(),
		UserID:      userID,
		UploadID:    upload.ID,
		Transcript:  tr.Text,
		Lang:        lang,
		DurationSec: tr.DurationSec,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateVoiceNote(ctx, note); err != nil {
		return nil, fmt.Errorf("TranscribeVoiceNote(): %w", err)
	}
	return note, nil
}

// SynthesizeSuggestion 제안 문장을 음성으로 변환, 이미 있으면 재사용 (유료 기능)
func (s *Service) SynthesizeSuggestion(ctx context.Context, userID, suggestionID string) (*models.Suggestion, error) {
	if err := s.billing.RequireFeature(ctx, userID, billing.FeatureTTS); err != nil {
		return nil, err
	}
	if s.tts == nil {
		return nil, ErrTTSNotConfigured
	}
	sg, err := s.store.GetSuggestion(ctx, suggestionID, userID)
	if err != nil {
		return nil, notFound(err, ErrSuggestionNotFound)
	}
	if sg.TTSPath != "" {
		return sg, nil
	}

	audio, err := s.tts.Synthesize(ctx, sg.Suggestion)
	if err != nil {
		return nil, err
	}
	key := filestore.NewKey(userID, "tts", ".mp3")
	if _, _, err := s.files.Save(key, bytes.NewReader(audio), 0); err != nil {
		return nil, fmt.Errorf("SynthesizeSuggestion(): %w", err)
	}
	if err := s.store.SetTTSPath(ctx, sg.ID, userID, key); err != nil {
		_ = s.files.Delete(key)
		return nil, notFound(err, ErrSuggestionNotFound)
	}
	sg.TTSPath = key
	s.logger.Info("suggestion synthesized", zap.String("suggestion_id", sg.ID), zap.Int("bytes", len(audio)))
	return sg, nil
}

// SuggestionAudio 저장된 TTS 파일 (호출 측에서 Close)
func (s *Service) SuggestionAudio(ctx context.Context, userID, suggestionID string) (*os.File, error) {
	sg, err := s.store.GetSuggestion(ctx, suggestionID, userID)
	if err != nil {
		return nil, notFound(err, ErrSuggestionNotFound)
	}
	if sg.TTSPath == "" {
		return nil, ErrAudioNotFound
	}
	f, err := s.files.Open(sg.TTSPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrAudioNotFound
	}
	return f, err
}
