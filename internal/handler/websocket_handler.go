package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"FlertaAI_ReplyAssistant/internal/middleware"
)

// Upgrade HTTP connection to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleLiveSession godoc
// @Summary      실시간 분석 WebSocket 연결
// @Description  대화 텍스트를 보내면 분석 결과를, 분석 id를 보내면 답변 제안을 바로 돌려주는 WebSocket 세션을 시작합니다.
// @Description  <br>
// @Description  **참고: 이것은 표준 HTTP API가 아닙니다.**
// @Description  클라이언트는 `ws://` 또는 `wss://` 스킴을 사용하여 이 엔드포인트에 연결해야 합니다.
// @Description  브라우저에서는 헤더 대신 **쿼리 파라미터('token')**로 인증합니다.
// @Description  <br>
// @Description  송신 프레임: `{"type":"text","text":"..."}`, `{"type":"suggest","parseId":"...","coachMode":false}`, `{"type":"ping"}`
// @Description  수신 프레임: `ready`, `parse`, `suggestions`, `pong`, `error`
// @Tags         WebSocket (Live)
// @Param        token  query    string true  "JWT 토큰"
// @Param        apikey query    string false "앱 공개 키 (설정된 경우 필수)"
// @Success      101    {string} string "101 Switching Protocols (WebSocket으로 프로토콜 전환 성공)"
// @Failure      401    {object} handler.ErrorResponse "토큰 누락 또는 유효하지 않은 토큰"
// @Failure      403    {object} handler.ErrorResponse "앱 공개 키 불일치"
// @Failure      429    {object} handler.ErrorResponse "요청 한도 초과"
// @Router       /ws/live [get]
func (h *Handler) HandleLiveSession(c *gin.Context) {
	userID := middleware.UserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade to websocket", zap.String("user_id", userID), zap.Error(err))
		return
	}
	h.logger.Info("live session connected", zap.String("user_id", userID))

	h.manageLiveSession(context.Background(), conn, userID)

	h.logger.Info("live session ended", zap.String("user_id", userID))
}
