/**
* Name: 			handler.go
* Description: 		Gin HTTP 핸들러 공통 (응답 형식, 오류 매핑, JSON 바인딩)
* Workflow: 		요청 바인딩 -> assistant.Service 호출 -> {success, ..., requestId} 응답
 */

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"FlertaAI_ReplyAssistant/internal/assistant"
	"FlertaAI_ReplyAssistant/internal/billing"
	"FlertaAI_ReplyAssistant/internal/conversation"
	"FlertaAI_ReplyAssistant/internal/llm"
	"FlertaAI_ReplyAssistant/internal/middleware"
	"FlertaAI_ReplyAssistant/internal/ocr"
	"FlertaAI_ReplyAssistant/internal/suggest"
)

type ErrorResponse struct {
	Success   bool   `json:"success" example:"false"`
	Error     string `json:"error" example:"Parse not found or unauthorized"`
	RequestID string `json:"requestId" example:"5f0c6a8e-2b1d-4d7e-9a57-0f4f7a3b2c11"`
}

type Handler struct {
	svc    *assistant.Service
	logger *zap.Logger

	// 웹소켓 세션별 프레임 제한 (rps <= 0 이면 제한 없음)
	liveRPS   float64
	liveBurst int
}

func New(svc *assistant.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// 응답 본문에 success, requestId 추가
func ok(c *gin.Context, body gin.H) {
	body["success"] = true
	body["requestId"] = middleware.RequestID(c)
	c.JSON(http.StatusOK, body)
}

// errorStatus 오류 종류별 HTTP 상태와 사용자 메시지
func errorStatus(err error) (int, string) {
	var ve *assistant.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Msg
	case errors.Is(err, conversation.ErrTooShort),
		errors.Is(err, conversation.ErrSpeakerMismatch),
		errors.Is(err, conversation.ErrInvalidSpeaker),
		errors.Is(err, suggest.ErrUnknownStyle),
		errors.Is(err, suggest.ErrInvalidCount),
		errors.Is(err, ocr.ErrUnsupportedMIME),
		errors.Is(err, ocr.ErrEmptyText),
		errors.Is(err, llm.ErrUnsupportedAudio),
		errors.Is(err, assistant.ErrOCRNotConfigured):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, billing.ErrQuotaExceeded):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, billing.ErrFeatureLocked):
		return http.StatusForbidden, billing.ErrFeatureLocked.Error()
	case errors.Is(err, assistant.ErrSTTNotConfigured),
		errors.Is(err, assistant.ErrTTSNotConfigured),
		errors.Is(err, assistant.ErrLLMNotConfigured):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.Error(err)
	c.JSON(status, ErrorResponse{Success: false, Error: msg, RequestID: middleware.RequestID(c)})
}

func (h *Handler) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: msg, RequestID: middleware.RequestID(c)})
}

// bindJSON 본문이 비어있으면 zero value 유지
func bindJSON(c *gin.Context, dst any) error {
	rawData, err := c.GetRawData()
	if err != nil {
		return err
	}
	if len(rawData) == 0 {
		return nil
	}
	return json.Unmarshal(rawData, dst)
}
