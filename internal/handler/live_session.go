/**
* Name: 			live_session.go
* Description: 		WebSocket 실시간 세션 (읽기 / 처리 / 쓰기 고루틴 분리)
* Workflow: 		readPump -> inChan -> orchestrate(분석, 제안) -> outChan -> writePump
 */

package handler

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"FlertaAI_ReplyAssistant/internal/assistant"
	"FlertaAI_ReplyAssistant/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 64 << 10
	liveBufferSize = 16
)

// 클라이언트 -> 서버 프레임
type liveRequest struct {
	Type      string          `json:"type"` // text, suggest, ping
	Text      string          `json:"text,omitempty"`
	ParseID   string          `json:"parseId,omitempty"`
	CoachMode bool            `json:"coachMode,omitempty"`
	Style     json.RawMessage `json:"style,omitempty"`
}

// 서버 -> 클라이언트 프레임
type liveResponse struct {
	Type              string                     `json:"type"` // ready, parse, suggestions, pong, error
	ParseID           string                     `json:"parseId,omitempty"`
	Turns             []models.Turn              `json:"turns,omitempty"`
	SpeakerConfidence float64                    `json:"speakerConfidence,omitempty"`
	NeedsConfirmation bool                       `json:"needsConfirmation,omitempty"`
	Suggestions       []assistant.SuggestionView `json:"suggestions,omitempty"`
	LastMessage       string                     `json:"lastMessage,omitempty"`
	Error             string                     `json:"error,omitempty"`
}

func (h *Handler) manageLiveSession(parentCtx context.Context, conn *websocket.Conn, userID string) {
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(3)

	inChan := make(chan liveRequest, liveBufferSize)
	outChan := make(chan liveResponse, liveBufferSize)

	// Client -> Server, 읽기 전담
	go func() {
		defer wg.Done()
		defer cancel()
		h.liveReadPump(ctx, conn, userID, inChan)
	}()

	// Server -> Client, 쓰기 전담 (종료 시 conn.Close로 읽기 해제)
	go func() {
		defer wg.Done()
		defer cancel()
		defer conn.Close()
		h.liveWritePump(ctx, conn, userID, outChan)
	}()

	// 분석 / 제안
	go func() {
		defer wg.Done()
		defer cancel()
		h.orchestrateLive(ctx, userID, inChan, outChan)
	}()

	wg.Wait()
}

func (h *Handler) liveReadPump(ctx context.Context, conn *websocket.Conn, userID string, inChan chan<- liveRequest) {
	defer close(inChan)

	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("live read failed", zap.String("user_id", userID), zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var req liveRequest
		if messageType != websocket.TextMessage || json.Unmarshal(message, &req) != nil {
			req = liveRequest{Type: "invalid"}
		}
		select {
		case inChan <- req:
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) liveWritePump(ctx context.Context, conn *websocket.Conn, userID string, outChan <-chan liveResponse) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case frame := <-outChan:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				h.logger.Warn("live write failed", zap.String("user_id", userID), zap.Error(err))
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *Handler) orchestrateLive(ctx context.Context, userID string, inChan <-chan liveRequest, outChan chan<- liveResponse) {
	send := func(frame liveResponse) bool {
		select {
		case outChan <- frame:
			return true
		case <-ctx.Done():
			return false
		}
	}

	// /api 와 같은 속도로 분석/제안 프레임 제한
	var limiter *rate.Limiter
	if h.liveRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(h.liveRPS), h.liveBurst)
	}

	if !send(liveResponse{Type: "ready"}) {
		return
	}
	for {
		var req liveRequest
		var ok bool
		select {
		case <-ctx.Done():
			return
		case req, ok = <-inChan:
			if !ok {
				return
			}
		}
		frame := liveResponse{Type: "error", Error: "Muitas requisições. Tente novamente em instantes"}
		if req.Type == "ping" || limiter == nil || limiter.Allow() {
			frame = h.handleLiveRequest(ctx, userID, req)
		}
		if !send(frame) {
			return
		}
	}
}

func (h *Handler) handleLiveRequest(ctx context.Context, userID string, req liveRequest) liveResponse {
	switch req.Type {
	case "ping":
		return liveResponse{Type: "pong"}

	case "text":
		p, err := h.svc.ParseConversation(ctx, userID, assistant.ParseInput{Text: req.Text})
		if err != nil {
			return h.liveError(userID, err)
		}
		return liveResponse{
			Type:              "parse",
			ParseID:           p.ID,
			Turns:             p.Turns,
			SpeakerConfidence: p.SpeakerConfidence,
			NeedsConfirmation: p.NeedsConfirmation,
		}

	case "suggest":
		out, err := h.svc.SuggestReplies(ctx, userID, assistant.SuggestInput{
			ParseID:   req.ParseID,
			Style:     req.Style,
			CoachMode: req.CoachMode,
		})
		if err != nil {
			return h.liveError(userID, err)
		}
		return liveResponse{
			Type:        "suggestions",
			ParseID:     req.ParseID,
			Suggestions: out.Suggestions,
			LastMessage: out.LastMessage,
		}
	}
	return liveResponse{Type: "error", Error: "Unsupported frame type"}
}

func (h *Handler) liveError(userID string, err error) liveResponse {
	_, msg := errorStatus(err)
	h.logger.Debug("live request failed", zap.String("user_id", userID), zap.Error(err))
	return liveResponse{Type: "error", Error: msg}
}
