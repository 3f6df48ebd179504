package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"FlertaAI_ReplyAssistant/internal/auth"
	"FlertaAI_ReplyAssistant/internal/config"
	"FlertaAI_ReplyAssistant/internal/middleware"
)

// NewRouter 미들웨어와 전체 라우트 등록
func NewRouter(h *Handler, tokens *auth.Manager, cfg *config.Config, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))

	corsConfig := cors.DefaultConfig()
	if len(cfg.HTTP.CORSOrigins) == 0 || (len(cfg.HTTP.CORSOrigins) == 1 && cfg.HTTP.CORSOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.HTTP.CORSOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "x-client-info", "apikey", middleware.RequestIDHeader)
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", h.Health)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/plans", h.Plans)

	limiter := middleware.RateLimitMiddleware(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	h.liveRPS, h.liveBurst = cfg.HTTP.RateLimitRPS, max(cfg.HTTP.RateLimitBurst, 1)
	clientKey := middleware.ClientKeyMiddleware(cfg.Auth.ClientKey)

	protected := router.Group("/api")
	protected.Use(clientKey, middleware.AuthMiddleware(tokens), limiter)
	{
		protected.POST("/parse", h.ParseConversation)
		protected.GET("/parses/:id", h.GetParse)
		protected.PUT("/parses/:id/speakers", h.ConfirmSpeakers)
		protected.POST("/suggest", h.SuggestReplies)
		protected.POST("/chat", h.Chat)

		protected.POST("/uploads", h.CreateUpload)
		protected.POST("/voice-notes", h.TranscribeVoiceNote)

		protected.PATCH("/suggestions/:id", h.SetAccepted)
		protected.POST("/suggestions/:id/outcome", h.RecordOutcome)
		protected.POST("/suggestions/:id/tts", h.SynthesizeSuggestion)
		protected.GET("/suggestions/:id/audio", h.StreamSuggestionAudio)

		protected.GET("/profile", h.GetProfile)
		protected.PUT("/profile", h.UpdateProfile)
		protected.GET("/dashboard", h.Dashboard)
		protected.GET("/history", h.GetHistory)
		protected.GET("/subscription", h.Subscription)
		protected.DELETE("/me/data", h.PurgeMyData)
	}

	router.GET("/ws/live", clientKey, middleware.AuthMiddleware(tokens), limiter, h.HandleLiveSession)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Success: false, Error: "Not found", RequestID: middleware.RequestID(c)})
	})
	return router
}

// Health godoc
// @Summary      상태 확인
// @Description  서버와 DB 연결 상태를 반환합니다.
// @Tags         System
// @Produce      json
// @Success      200 {object} map[string]string "status: ok"
// @Failure      503 {object} map[string]string "DB 연결 실패"
// @Router       /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
