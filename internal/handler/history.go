package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"FlertaAI_ReplyAssistant/internal/middleware"
)

// GetHistory godoc
// @Summary      분석 기록 조회
// @Description  최근 분석 순으로 각 분석의 제안 목록을 함께 반환합니다.
// @Tags         Conversation
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "최대 개수 (기본 20, 최대 100)"
// @Success      200 {object} map[string]interface{}
// @Failure      401 {object} handler.ErrorResponse
// @Router       /api/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.svc.History(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"history": entries, "count": len(entries)})
}
