package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"FlertaAI_ReplyAssistant/internal/assistant"
	"FlertaAI_ReplyAssistant/internal/middleware"
)

type SuggestRequest struct {
	ParseID   string          `json:"parseId" example:"0b6f3d0e-8f5a-4a4e-b1f5-7d1c2e3f4a5b"`
	Style     json.RawMessage `json:"style,omitempty" swaggertype:"object"`
	CoachMode bool            `json:"coachMode"`
}

type SuggestResponse struct {
	Success     bool                       `json:"success"`
	Suggestions []assistant.SuggestionView `json:"suggestions"`
	LastMessage string                     `json:"lastMessage"`
	RequestID   string                     `json:"requestId"`
}

type AcceptRequest struct {
	Accepted bool `json:"accepted"`
}

// SuggestReplies godoc
// @Summary      답변 제안 생성
// @Description  상대방의 마지막 메시지에 대해 스타일별(casual, flirty, funny, thoughtful, engaging) 답변을 생성하고 저장합니다.
// @Description  style 객체로 {"styles": [...], "count": n} 지정 가능, coachMode는 유료 플랜 전용입니다.
// @Tags         Suggestions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handler.SuggestRequest true "parseId, style, coachMode"
// @Success      200 {object} handler.SuggestResponse
// @Failure      400 {object} handler.ErrorResponse "분석 없음, 상대 메시지 없음 등"
// @Failure      403 {object} handler.ErrorResponse "유료 기능"
// @Router       /api/suggest [post]
func (h *Handler) SuggestReplies(c *gin.Context) {
	var req SuggestRequest
	if err := bindJSON(c, &req); err != nil {
		h.badRequest(c, "Invalid request")
		return
	}
	out, err := h.svc.SuggestReplies(c.Request.Context(), middleware.UserID(c), assistant.SuggestInput{
		ParseID:   req.ParseID,
		Style:     req.Style,
		CoachMode: req.CoachMode,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SuggestResponse{
		Success:     true,
		Suggestions: out.Suggestions,
		LastMessage: out.LastMessage,
		RequestID:   middleware.RequestID(c),
	})
}

// SetAccepted godoc
// @Summary      제안 사용 여부 기록
// @Tags         Suggestions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                true "suggestion id"
// @Param        request body handler.AcceptRequest true "accepted"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/suggestions/{id} [patch]
func (h *Handler) SetAccepted(c *gin.Context) {
	var req AcceptRequest
	if err := bindJSON(c, &req); err != nil {
		h.badRequest(c, "Invalid request")
		return
	}
	if err := h.svc.SetAccepted(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Accepted); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"id": c.Param("id"), "accepted": req.Accepted})
}

// RecordOutcome godoc
// @Summary      대화 결과 피드백
// @Description  제안을 보낸 뒤의 결과와 1-5 점수를 기록합니다.
// @Tags         Suggestions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                 true "suggestion id"
// @Param        request body assistant.OutcomeInput true "outcome, feedbackScore, notes"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/suggestions/{id}/outcome [post]
func (h *Handler) RecordOutcome(c *gin.Context) {
	var req assistant.OutcomeInput
	if err := bindJSON(c, &req); err != nil {
		h.badRequest(c, "Invalid request")
		return
	}
	o, err := h.svc.RecordOutcome(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"outcome": o})
}

// SynthesizeSuggestion godoc
// @Summary      제안 음성 생성 (TTS)
// @Description  제안 문장을 pt-BR 음성(MP3)으로 변환해 저장합니다. 유료 플랜 전용입니다.
// @Tags         Suggestions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "suggestion id"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} handler.ErrorResponse
// @Failure      403 {object} handler.ErrorResponse "유료 기능"
// @Failure      503 {object} handler.ErrorResponse "TTS 미설정"
// @Router       /api/suggestions/{id}/tts [post]
func (h *Handler) SynthesizeSuggestion(c *gin.Context) {
	sg, err := h.svc.SynthesizeSuggestion(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"id": sg.ID, "audioUrl": "/api/suggestions/" + sg.ID + "/audio"})
}

// StreamSuggestionAudio godoc
// @Summary      제안 음성 재생
// @Description  **인증 방법:** Header `Authorization: Bearer {token}` 또는 Query `?token={token}` (HTML audio 태그용)
// @Tags         Suggestions
// @Produce      audio/mpeg
// @Security     BearerAuth
// @Param        id    path  string true  "suggestion id"
// @Param        token query string false "JWT 토큰 (헤더 사용 시 생략 가능)"
// @Success      200 {file} file "MP3 스트림"
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/suggestions/{id}/audio [get]
func (h *Handler) StreamSuggestionAudio(c *gin.Context) {
	f, err := h.svc.SuggestionAudio(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	var size int64 = -1
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}
	c.DataFromReader(http.StatusOK, size, "audio/mpeg", io.Reader(f), nil)
}
