package handler

import (
	"github.com/gin-gonic/gin"

	"FlertaAI_ReplyAssistant/internal/assistant"
	"FlertaAI_ReplyAssistant/internal/middleware"
)

// GetProfile godoc
// @Summary      내 프로필 조회
// @Description  저장된 프로필이 없으면 기본값(톤 50, America/Sao_Paulo, pt-BR)을 반환합니다.
// @Tags         Profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{}
// @Failure      401 {object} handler.ErrorResponse
// @Router       /api/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.svc.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"profile": p})
}

// UpdateProfile godoc
// @Summary      내 프로필 수정
// @Description  톤 값은 0-100으로 보정, 금지 주제는 최대 20개입니다.
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body assistant.ProfileInput true "프로필"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req assistant.ProfileInput
	if err := bindJSON(c, &req); err != nil {
		h.badRequest(c, "Invalid request")
		return
	}
	p, err := h.svc.UpdateProfile(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"profile": p})
}

// Dashboard godoc
// @Summary      대시보드 통계
// @Tags         Profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{}
// @Router       /api/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"dashboard": d})
}

// Plans godoc
// @Summary      요금제 목록
// @Tags         Billing
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /plans [get]
func (h *Handler) Plans(c *gin.Context) {
	plans, err := h.svc.Plans(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"plans": plans})
}

// Subscription godoc
// @Summary      현재 구독과 오늘 사용량
// @Tags         Billing
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{}
// @Router       /api/subscription [get]
func (h *Handler) Subscription(c *gin.Context) {
	v, err := h.svc.Subscription(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"plan": v.Plan, "subscription": v.Subscription, "usage": v.Usage})
}

// PurgeMyData godoc
// @Summary      내 데이터 전체 삭제
// @Description  업로드, 분석, 제안, 피드백, 음성 메모, 프로필과 저장 파일을 모두 삭제하고 감사 로그를 남깁니다.
// @Tags         Privacy
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{}
// @Router       /api/me/data [delete]
func (h *Handler) PurgeMyData(c *gin.Context) {
	res, err := h.svc.PurgeMyData(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"deleted": res})
}
