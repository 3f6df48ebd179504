/**
* Name: 			tts.go
* Description: 		답변 제안 음성 합성 (Google Text-to-Speech)
* Workflow: 		텍스트 전송, MP3 오디오 수신
 */

package llm

import (
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// Synthesizer 텍스트 -> MP3
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// TTS 연결 정보
type TTSClient struct {
	client *texttospeech.Client
	voice  string
}

// TTS 클라이언트 초기화
func NewTTSClient(ctx context.Context, credentialsFile, voice string) (*TTSClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewTTSClient(): failed to create TTS client: %w", err)
	}
	return &TTSClient{client: client, voice: voice}, nil
}

// SynthesizeRequest 음성 이름("pt-BR-Wavenet-A")에서 언어 코드를 추출
func SynthesizeRequest(text, voice string) *texttospeechpb.SynthesizeSpeechRequest {
	lang := "pt-BR"
	if parts := strings.SplitN(voice, "-", 3); len(parts) == 3 {
		lang = parts[0] + "-" + parts[1]
	}
	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: lang,
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}
}

// 텍스트를 오디오로 변환
func (t *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := t.client.SynthesizeSpeech(ctx, SynthesizeRequest(text, t.voice))
	if err != nil {
		return nil, fmt.Errorf("Synthesize(): SynthesizeSpeech failed: %w", err)
	}
	return resp.AudioContent, nil
}

// TTS 클라이언트 종료
func (t *TTSClient) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}
