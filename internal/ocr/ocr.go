/**
* Name: 			ocr.go
* Description: 		채팅 스크린샷 텍스트 추출
* Workflow: 		이미지 MIME 확인 -> 엔진(OpenAI / Gemini)에 전사 요청 -> "이름: 메시지" 줄 단위 텍스트
 */

package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"FlertaAI_ReplyAssistant/internal/config"
)

var (
	ErrNotConfigured   = errors.New("OCR not configured")
	ErrUnsupportedMIME = errors.New("unsupported image type")
	ErrEmptyText       = errors.New("no text found in image")
)

// 오른쪽 말풍선 = 본인(Eu:), 왼쪽 = 상대(<이름>:) 형식으로 받아야 파서의 라벨 규칙이 동작
const transcribePrompt = `Você recebe a captura de tela de uma conversa de aplicativo de mensagens ou de namoro.
Transcreva as mensagens na ordem em que aparecem, uma mensagem por linha.
Mensagens do dono do celular (balões à direita) começam com "Eu: ".
Mensagens da outra pessoa (balões à esquerda) começam com o nome dela seguido de ": " (use "Match: " se o nome não aparecer).
Ignore horários, status de leitura, botões e a barra do sistema.
Responda apenas com a transcrição, sem comentários.`

// Engine 이미지 -> 대화 텍스트
type Engine interface {
	Name() string
	Extract(ctx context.Context, image []byte, mime string) (string, error)
}

// New provider가 비어있으면 (nil, nil)
func New(cfg *config.Config) (Engine, error) {
	switch cfg.OCR.Provider {
	case "":
		return nil, nil
	case "openai":
		if cfg.LLM.OpenAIAPIKey == "" {
			return nil, errors.New("ocr.New(): OPENAI_API_KEY is empty")
		}
		timeout := config.Duration(cfg.LLM.Timeout, 60*time.Second)
		return NewOpenAIEngine(cfg.LLM.OpenAIURL, cfg.LLM.OpenAIAPIKey, cfg.OCR.Model, &http.Client{Timeout: timeout}), nil
	case "gemini":
		if cfg.LLM.GeminiAPIKey == "" {
			return nil, errors.New("ocr.New(): GEMINI_API_KEY is empty")
		}
		model := cfg.OCR.Model
		if model == "" || strings.HasPrefix(model, "gpt") {
			model = cfg.LLM.GeminiModel
		}
		return NewGeminiEngine(cfg.LLM.GeminiAPIKey, model), nil
	default:
		return nil, fmt.Errorf("ocr.New(): unknown provider %q", cfg.OCR.Provider)
	}
}

// PickMIME 명시된 MIME 우선, 없으면 바이트로 판별
func PickMIME(explicit string, data []byte) string {
	if m := strings.TrimSpace(explicit); m != "" {
		if i := strings.IndexByte(m, ';'); i >= 0 {
			m = strings.TrimSpace(m[:i])
		}
		return strings.ToLower(m)
	}
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	return "application/octet-stream"
}

func IsImageMIME(mime string) bool {
	switch mime {
	case "image/png", "image/jpeg", "image/webp":
		return true
	}
	return false
}

func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// CleanTranscript 코드 펜스, 빈 줄 제거
func CleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func prepare(image []byte, mime string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image", ErrUnsupportedMIME)
	}
	mime = PickMIME(mime, image)
	if !IsImageMIME(mime) {
		return "", fmt.Errorf("%w: %s (need image/jpeg|png|webp)", ErrUnsupportedMIME, mime)
	}
	return mime, nil
}
