package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"FlertaAI_ReplyAssistant/internal/assistant"
	"FlertaAI_ReplyAssistant/internal/llm"
	"FlertaAI_ReplyAssistant/internal/middleware"
)

type ChatRequest struct {
	Messages  []llm.Message `json:"messages"`
	Model     string        `json:"model" example:"gpt-4o-mini"`
	MaxTokens int           `json:"maxTokens" example:"500"`
}

type ChatResponse struct {
	Success   bool       `json:"success"`
	Text      string     `json:"text"`
	Model     string     `json:"model"`
	Usage     *llm.Usage `json:"usage,omitempty"`
	RequestID string     `json:"requestId"`
}

// Chat godoc
// @Summary      자유 대화 (LLM)
// @Description  FlertaAI 페르소나 시스템 프롬프트를 앞에 붙여 LLM에 전달합니다. 모든 오류는 500으로 응답합니다.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handler.ChatRequest true "messages, model, maxTokens"
// @Success      200 {object} handler.ChatResponse
// @Failure      500 {object} handler.ErrorResponse
// @Router       /api/chat [post]
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Success: false, Error: "Invalid request", RequestID: middleware.RequestID(c)})
		return
	}
	out, err := h.svc.Chat(c.Request.Context(), assistant.ChatInput{
		Messages:  req.Messages,
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Success: false, Error: err.Error(), RequestID: middleware.RequestID(c)})
		return
	}
	c.JSON(http.StatusOK, ChatResponse{
		Success:   true,
		Text:      out.Text,
		Model:     out.Model,
		Usage:     out.Usage,
		RequestID: middleware.RequestID(c),
	})
}
