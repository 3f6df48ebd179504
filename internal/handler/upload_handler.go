package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"FlertaAI_ReplyAssistant/internal/assistant"
	"FlertaAI_ReplyAssistant/internal/middleware"
)

// CreateUpload godoc
// @Summary      파일 업로드
// @Description  스크린샷(png/jpeg/webp), 음성(webm/ogg/wav/mp3), 텍스트 파일을 저장합니다.
// @Tags         Uploads
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        kind formData string true "screenshot | voice | text"
// @Param        file formData file   true "업로드 파일"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} handler.ErrorResponse "형식/크기 오류"
// @Router       /api/uploads [post]
func (h *Handler) CreateUpload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.badRequest(c, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.badRequest(c, "Invalid file")
		return
	}
	defer f.Close()

	upload, err := h.svc.CreateUpload(c.Request.Context(), middleware.UserID(c), assistant.UploadInput{
		Kind: c.PostForm("kind"),
		Mime: fh.Header.Get("Content-Type"),
		Size: fh.Size,
		Body: f,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"fileId": upload.ID, "upload": upload})
}

// TranscribeVoiceNote godoc
// @Summary      음성 메모 전사 (STT)
// @Description  voice 업로드를 텍스트로 변환합니다. 유료 플랜 전용이며 기본 언어는 pt-BR입니다.
// @Tags         Uploads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body assistant.VoiceNoteInput true "uploadId, lang"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} handler.ErrorResponse
// @Failure      403 {object} handler.ErrorResponse "유료 기능"
// @Failure      503 {object} handler.ErrorResponse "STT 미설정"
// @Router       /api/voice-notes [post]
func (h *Handler) TranscribeVoiceNote(c *gin.Context) {
	var req assistant.VoiceNoteInput
	if err := bindJSON(c, &req); err != nil {
		h.badRequest(c, "Invalid request")
		return
	}
	note, err := h.svc.TranscribeVoiceNote(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"voiceNote":  note,
		"transcript": note.Transcript,
		"requestId":  middleware.RequestID(c),
	})
}
