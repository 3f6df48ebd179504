package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"FlertaAI_ReplyAssistant/internal/assistant"
	"FlertaAI_ReplyAssistant/internal/middleware"
	"FlertaAI_ReplyAssistant/internal/models"
)

type ParseRequest struct {
	FileID string `json:"fileId" example:"0b6f3d0e-8f5a-4a4e-b1f5-7d1c2e3f4a5b"`
	Text   string `json:"text" example:"Ana: oi, tudo bem?\nEu: tudo sim e você?"`
}

type ParseResponse struct {
	Success           bool          `json:"success"`
	ParseID           string        `json:"parseId"`
	Turns             []models.Turn `json:"turns"`
	SpeakerConfidence float64       `json:"speakerConfidence"`
	NeedsConfirmation bool          `json:"needsConfirmation"`
	RequestID         string        `json:"requestId"`
}

type ConfirmSpeakersRequest struct {
	Speakers []string `json:"speakers" example:"other,me"`
}

func parseResponse(c *gin.Context, p *models.ChatParse) ParseResponse {
	return ParseResponse{
		Success:           true,
		ParseID:           p.ID,
		Turns:             p.Turns,
		SpeakerConfidence: p.SpeakerConfidence,
		NeedsConfirmation: p.NeedsConfirmation,
		RequestID:         middleware.RequestID(c),
	}
}

// ParseConversation godoc
// @Summary      대화 분석
// @Description  업로드(fileId) 또는 붙여넣은 텍스트에서 대화 턴을 추출하고 화자(me/other)와 신뢰도를 계산합니다.
// @Description  스크린샷은 OCR 엔진으로 전사하며, 무료 플랜은 하루 5회로 제한됩니다.
// @Tags         Conversation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handler.ParseRequest true "fileId 또는 text"
// @Success      200 {object} handler.ParseResponse
// @Failure      400 {object} handler.ErrorResponse "텍스트 부족, 업로드 없음 등"
// @Failure      401 {object} handler.ErrorResponse "인증 실패"
// @Failure      429 {object} handler.ErrorResponse "일일 분석 한도 초과"
// @Router       /api/parse [post]
func (h *Handler) ParseConversation(c *gin.Context) {
	var req ParseRequest
	if err := bindJSON(c, &req); err != nil {
		h.badRequest(c, "Invalid request")
		return
	}
	p, err := h.svc.ParseConversation(c.Request.Context(), middleware.UserID(c), assistant.ParseInput{
		FileID: req.FileID,
		Text:   req.Text,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, parseResponse(c, p))
}

// GetParse godoc
// @Summary      분석 결과 조회
// @Tags         Conversation
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "parse id"
// @Success      200 {object} handler.ParseResponse
// @Failure      400 {object} handler.ErrorResponse "없거나 다른 사용자의 분석"
// @Router       /api/parses/{id} [get]
func (h *Handler) GetParse(c *gin.Context) {
	p, err := h.svc.GetParse(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, parseResponse(c, p))
}

// ConfirmSpeakers godoc
// @Summary      화자 확인
// @Description  턴 순서대로 화자(me/other)를 확정합니다. 확정 후 신뢰도는 1입니다.
// @Tags         Conversation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                         true "parse id"
// @Param        request body handler.ConfirmSpeakersRequest true "턴 수와 같은 길이의 화자 배열"
// @Success      200 {object} handler.ParseResponse
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/parses/{id}/speakers [put]
func (h *Handler) ConfirmSpeakers(c *gin.Context) {
	var req ConfirmSpeakersRequest
	if err := bindJSON(c, &req); err != nil {
		h.badRequest(c, "Invalid request")
		return
	}
	p, err := h.svc.ConfirmSpeakers(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Speakers)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, parseResponse(c, p))
}
