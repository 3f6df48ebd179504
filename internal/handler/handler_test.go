package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"FlertaAI_ReplyAssistant/internal/assistant"
	"FlertaAI_ReplyAssistant/internal/auth"
	"FlertaAI_ReplyAssistant/internal/config"
	"FlertaAI_ReplyAssistant/internal/filestore"
	"FlertaAI_ReplyAssistant/internal/storage"
	"FlertaAI_ReplyAssistant/internal/suggest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const sampleChat = "Ana: oi, tudo bem?\nEu: tudo sim e você?\nAna: que legal, vamos sair sábado?"

var testNow = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

type testServer struct {
	router http.Handler
	tokens *auth.Manager
	store  *storage.Store
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.Open(storage.DriverSQLite, filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	files, err := filestore.New(filepath.Join(dir, "blobs"))
	require.NoError(t, err)

	now := func() time.Time { return testNow }
	svc := assistant.New(assistant.Deps{
		Store:     store,
		Files:     files,
		Generator: suggest.NewGenerator(suggest.WithClock(now), suggest.WithRand(rand.New(rand.NewPCG(3, 4)))),
		MaxUpload: 1 << 10,
		Now:       now,
	})

	cfg := config.DefaultConfig()
	cfg.HTTP.RateLimitRPS = 0
	if mutate != nil {
		mutate(cfg)
	}
	tokens := auth.NewManager("test-secret", "test")
	return &testServer{
		router: NewRouter(New(svc, zap.NewNop()), tokens, cfg, zap.NewNop()),
		tokens: tokens,
		store:  store,
	}
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := s.tokens.GenerateToken(userID, userID+"@example.com")
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r *bytes.Reader
	switch b := body.(type) {
	case nil:
		r = bytes.NewReader(nil)
	case string:
		r = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func TestHealthAndPlans(t *testing.T) {
	s := newTestServer(t, nil)

	w, body := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	w, body = s.do(t, http.MethodGet, "/plans", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	plans := body["plans"].([]any)
	require.Len(t, plans, 4)
	assert.Equal(t, "free", plans[0].(map[string]any)["code"])
}

func TestParseAndSuggestFlow(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "u1")

	w, body := s.do(t, http.MethodPost, "/api/parse", tok, gin.H{"text": sampleChat})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["requestId"])
	assert.Equal(t, w.Header().Get("X-Request-ID"), body["requestId"])
	parseID, _ := body["parseId"].(string)
	require.NotEmpty(t, parseID)
	turns := body["turns"].([]any)
	require.Len(t, turns, 3)
	assert.Equal(t, "other", turns[0].(map[string]any)["speaker"])

	w, body = s.do(t, http.MethodGet, "/api/parses/"+parseID, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, parseID, body["parseId"])

	w, body = s.do(t, http.MethodPost, "/api/suggest", tok, gin.H{"parseId": parseID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "que legal, vamos sair sábado?", body["lastMessage"])
	sgs := body["suggestions"].([]any)
	require.NotEmpty(t, sgs)
	first := sgs[0].(map[string]any)
	assert.NotEmpty(t, first["id"])
	assert.NotEmpty(t, first["text"])

	sgID := first["id"].(string)
	w, body = s.do(t, http.MethodPatch, "/api/suggestions/"+sgID, tok, gin.H{"accepted": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["accepted"])

	w, _ = s.do(t, http.MethodPost, "/api/suggestions/"+sgID+"/outcome", tok, gin.H{"outcome": "replied", "feedbackScore": 5})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, body = s.do(t, http.MethodGet, "/api/history", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])

	w, body = s.do(t, http.MethodGet, "/api/dashboard", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := body["dashboard"].(map[string]any)
	assert.EqualValues(t, 1, dash["acceptedSuggestions"])
}

func TestParseOwnership(t *testing.T) {
	s := newTestServer(t, nil)

	w, body := s.do(t, http.MethodPost, "/api/parse", s.token(t, "owner"), gin.H{"text": sampleChat})
	require.Equal(t, http.StatusOK, w.Code)
	parseID := body["parseId"].(string)

	w, body = s.do(t, http.MethodGet, "/api/parses/"+parseID, s.token(t, "intruder"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Parse not found or unauthorized", body["error"])

	w, _ = s.do(t, http.MethodPost, "/api/suggest", s.token(t, "intruder"), gin.H{"parseId": parseID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseErrors(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "u1")

	w, body := s.do(t, http.MethodPost, "/api/parse", tok, gin.H{"text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])

	w, body = s.do(t, http.MethodPost, "/api/parse", tok, "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request", body["error"])

	w, _ = s.do(t, http.MethodPost, "/api/parse", tok, gin.H{"fileId": "missing"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFreeQuota(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "u1")

	for i := 0; i < 5; i++ {
		w, _ := s.do(t, http.MethodPost, "/api/parse", tok, gin.H{"text": sampleChat})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, body := s.do(t, http.MethodPost, "/api/parse", tok, gin.H{"text": sampleChat})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, nil)

	w, body := s.do(t, http.MethodPost, "/api/parse", "", gin.H{"text": sampleChat})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])

	w, _ = s.do(t, http.MethodGet, "/api/profile", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClientKey(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.Auth.ClientKey = "app-key" })
	tok := s.token(t, "u1")

	w, _ := s.do(t, http.MethodGet, "/api/profile", tok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("apikey", "app-key")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChatWithoutProvider(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "u1")

	w, body := s.do(t, http.MethodPost, "/api/chat", tok, gin.H{
		"messages": []gin.H{{"role": "user", "content": "oi"}},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "OpenAI API key not configured", body["error"])
	assert.Equal(t, false, body["success"])
}

func TestPaidFeaturesLocked(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "u1")

	w, body := s.do(t, http.MethodPost, "/api/voice-notes", tok, gin.H{"uploadId": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, false, body["success"])

	w, _ = s.do(t, http.MethodPost, "/api/suggestions/x/tts", tok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProfileAndSubscription(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "u1")

	w, body := s.do(t, http.MethodGet, "/api/profile", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "America/Sao_Paulo", body["profile"].(map[string]any)["tz"])

	w, body = s.do(t, http.MethodPut, "/api/profile", tok, gin.H{
		"display_name": "Lia",
		"tone":         gin.H{"humor": 150, "subtlety": 20, "boldness": -5, "messageLength": "short"},
		"tz":           "Europe/Lisbon",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tone := body["profile"].(map[string]any)["tone"].(map[string]any)
	assert.EqualValues(t, 100, tone["humor"])
	assert.EqualValues(t, 0, tone["boldness"])

	w, _ = s.do(t, http.MethodPut, "/api/profile", tok, gin.H{"tz": "Mars/Olympus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = s.do(t, http.MethodGet, "/api/subscription", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "free", body["plan"])
	usage := body["usage"].(map[string]any)
	assert.EqualValues(t, 5, usage["limit"])
}

func TestUploadAndParse(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "u1")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("kind", "text"))
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="chat.txt"`)
	hdr.Set("Content-Type", "text/plain")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte(sampleChat))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var up map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &up))
	fileID := up["fileId"].(string)
	require.NotEmpty(t, fileID)

	rec, body := s.do(t, http.MethodPost, "/api/parse", tok, gin.H{"fileId": fileID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, body["turns"].([]any), 3)
}

func TestUploadMissingFile(t *testing.T) {
	s := newTestServer(t, nil)
	w, body := s.do(t, http.MethodPost, "/api/uploads", s.token(t, "u1"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file is required", body["error"])
}

func TestPurgeMyData(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.token(t, "u1")

	w, _ := s.do(t, http.MethodPost, "/api/parse", tok, gin.H{"text": sampleChat})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := s.do(t, http.MethodDelete, "/api/me/data", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, body["deleted"].(map[string]any)["parses"])

	n, err := s.store.CountParses(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNoRoute(t *testing.T) {
	s := newTestServer(t, nil)
	w, body := s.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestLiveSession(t *testing.T) {
	s := newTestServer(t, nil)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/live?token=" + s.token(t, "u1")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var frame liveResponse
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "ready", frame.Type)

	require.NoError(t, conn.WriteJSON(liveRequest{Type: "ping"}))
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "pong", frame.Type)

	require.NoError(t, conn.WriteJSON(liveRequest{Type: "text", Text: sampleChat}))
	frame = liveResponse{}
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "parse", frame.Type, frame.Error)
	require.Len(t, frame.Turns, 3)

	require.NoError(t, conn.WriteJSON(liveRequest{Type: "suggest", ParseID: frame.ParseID}))
	frame = liveResponse{}
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "suggestions", frame.Type, frame.Error)
	assert.NotEmpty(t, frame.Suggestions)
	assert.Equal(t, "que legal, vamos sair sábado?", frame.LastMessage)

	require.NoError(t, conn.WriteJSON(liveRequest{Type: "suggest", ParseID: "missing"}))
	frame = liveResponse{}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "error", frame.Type)
	assert.Equal(t, "Parse not found or unauthorized", frame.Error)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	frame = liveResponse{}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "error", frame.Type)
}

func TestLiveSessionRequiresToken(t *testing.T) {
	s := newTestServer(t, nil)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/live", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLiveSessionClientKey(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.Auth.ClientKey = "app-key" })
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/live?token=" + s.token(t, "u1")
	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(base+"&apikey=app-key", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var frame liveResponse
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "ready", frame.Type)
}

func TestLiveSessionFrameRateLimit(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.HTTP.RateLimitRPS = 0.001
		cfg.HTTP.RateLimitBurst = 2
	})
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/live?token=" + s.token(t, "u1")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var frame liveResponse
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "ready", frame.Type)

	errs := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		require.NoError(t, conn.WriteJSON(liveRequest{Type: "suggest", ParseID: "missing"}))
		frame = liveResponse{}
		require.NoError(t, conn.ReadJSON(&frame))
		errs = append(errs, frame.Error)
	}
	assert.Equal(t, []string{
		"Parse not found or unauthorized",
		"Parse not found or unauthorized",
		"Muitas requisições. Tente novamente em instantes",
	}, errs)

	require.NoError(t, conn.WriteJSON(liveRequest{Type: "ping"}))
	frame = liveResponse{}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "pong", frame.Type)
}
