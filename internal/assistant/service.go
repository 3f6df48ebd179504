/**
* Name: 			service.go
* Description: 		대화 분석, 답변 제안, 업로드, 음성, 프로필, 대시보드를 묶는 서비스 계층
* Workflow: 		handler -> Service -> (parser / generator / llm / ocr / billing) -> storage, filestore
 */

package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"FlertaAI_ReplyAssistant/internal/billing"
	"FlertaAI_ReplyAssistant/internal/conversation"
	"FlertaAI_ReplyAssistant/internal/filestore"
	"FlertaAI_ReplyAssistant/internal/llm"
	"FlertaAI_ReplyAssistant/internal/models"
	"FlertaAI_ReplyAssistant/internal/ocr"
	"FlertaAI_ReplyAssistant/internal/storage"
	"FlertaAI_ReplyAssistant/internal/suggest"
)

// ValidationError 사용자 입력 또는 소유권 오류, 메시지를 그대로 응답
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

var (
	ErrUploadNotFound     error = &ValidationError{Msg: "Upload not found or unauthorized"}
	ErrParseNotFound      error = &ValidationError{Msg: "Parse not found or unauthorized"}
	ErrSuggestionNotFound error = &ValidationError{Msg: "Suggestion not found or unauthorized"}
	ErrNoTurns            error = &ValidationError{Msg: "No conversation turns found"}
	ErrNoOtherMessage     error = &ValidationError{Msg: "No message from other person found"}
	ErrMessagesRequired   error = &ValidationError{Msg: "Messages array is required"}
	ErrAudioNotFound      error = &ValidationError{Msg: "Audio not generated for this suggestion"}

	// 외부 서비스 미설정
	ErrLLMNotConfigured = errors.New("OpenAI API key not configured")
	ErrOCRNotConfigured = ocr.ErrNotConfigured
	ErrSTTNotConfigured = errors.New("speech-to-text not configured")
	ErrTTSNotConfigured = errors.New("text-to-speech not configured")
)

// Deps 선택 항목(LLM, OCR, STT, TTS)은 nil 가능
type Deps struct {
	Store      *storage.Store
	Files      *filestore.Store
	Parser     *conversation.Parser
	Generator  *suggest.Generator
	Billing    *billing.Service
	LLM        llm.Provider
	OCR        ocr.Engine
	STT        llm.Transcriber
	TTS        llm.Synthesizer
	Logger     *zap.Logger
	MaxUpload  int64
	SpeechLang string
	Now        func() time.Time
}

type Service struct {
	store      *storage.Store
	files      *filestore.Store
	parser     *conversation.Parser
	generator  *suggest.Generator
	billing    *billing.Service
	llm        llm.Provider
	ocr        ocr.Engine
	stt        llm.Transcriber
	tts        llm.Synthesizer
	logger     *zap.Logger
	maxUpload  int64
	speechLang string
	now        func() time.Time
}

func New(d Deps) *Service {
	s := &Service{
		store:      d.Store,
		files:      d.Files,
		parser:     d.Parser,
		generator:  d.Generator,
		billing:    d.Billing,
		llm:        d.LLM,
		ocr:        d.OCR,
		stt:        d.STT,
		tts:        d.TTS,
		logger:     d.Logger,
		maxUpload:  d.MaxUpload,
		speechLang: d.SpeechLang,
		now:        d.Now,
	}
	if s.parser == nil {
		s.parser = conversation.NewParser(nil)
	}
	if s.generator == nil {
		s.generator = suggest.NewGenerator()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 10 << 20
	}
	if s.speechLang == "" {
		s.speechLang = models.DefaultLocale
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.billing == nil {
		s.billing = billing.NewService(d.Store).WithClock(s.now)
	}
	return s
}

// HasLLM 채팅/문장 다듬기 사용 가능 여부
func (s *Service) HasLLM() bool {
	return s.llm != nil
}

// Ping DB 연결 확인
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// profileFor 저장된 프로필, 없으면 기본값
func (s *Service) profileFor(ctx context.Context, userID string) (models.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.DefaultProfile(userID), nil
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("profileFor(): %w", err)
	}
	return *p, nil
}

func notFound(err, replacement error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return replacement
	}
	return err
}
