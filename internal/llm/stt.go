/**
* Name: 			stt.go
* Description: 		음성 메모 STT (Google Speech-to-Text)
* Workflow: 		MIME으로 인코딩 결정, Recognize 호출, 결과 텍스트 결합
 */

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

var ErrUnsupportedAudio = errors.New("unsupported audio format")

type Transcript struct {
	Text        string
	Lang        string
	DurationSec float64
}

// Transcriber 음성 -> 텍스트
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mime, lang string) (Transcript, error)
}

type SpeechClient struct {
	client *speech.Client
}

// STT 클라이언트 초기화
func NewSpeechClient(ctx context.Context, credentialsFile string) (*SpeechClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewSpeechClient(): failed to create speech client: %w", err)
	}
	return &SpeechClient{client: client}, nil
}

// RecognitionConfigFor 업로드 MIME에 맞는 인코딩 설정
func RecognitionConfigFor(mime, lang string) (*speechpb.RecognitionConfig, error) {
	config := &speechpb.RecognitionConfig{
		LanguageCode:               lang,
		EnableAutomaticPunctuation: true,
	}
	switch strings.ToLower(strings.TrimSpace(strings.Split(mime, ";")[0])) {
	case "audio/webm":
		config.Encoding = speechpb.RecognitionConfig_WEBM_OPUS
		config.SampleRateHertz = 48000
	case "audio/ogg":
		config.Encoding = speechpb.RecognitionConfig_OGG_OPUS
		config.SampleRateHertz = 48000
	case "audio/wav", "audio/x-wav", "audio/wave":
		// WAV 헤더에서 샘플레이트를 읽음
		config.Encoding = speechpb.RecognitionConfig_LINEAR16
	case "audio/flac", "audio/x-flac":
		config.Encoding = speechpb.RecognitionConfig_FLAC
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAudio, mime)
	}
	return config, nil
}

// Transcribe 1분 이하 음성 메모 동기 인식
func (s *SpeechClient) Transcribe(ctx context.Context, audio []byte, mime, lang string) (Transcript, error) {
	config, err := RecognitionConfigFor(mime, lang)
	if err != nil {
		return Transcript{}, err
	}
	resp, err := s.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: config,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return Transcript{}, fmt.Errorf("Transcribe(): recognize failed: %w", err)
	}

	var parts []string
	var duration float64
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, strings.TrimSpace(result.Alternatives[0].Transcript))
		}
		if end := result.GetResultEndTime(); end != nil {
			duration = end.AsDuration().Seconds()
		}
	}
	return Transcript{
		Text:        strings.Join(parts, " "),
		Lang:        lang,
		DurationSec: duration,
	}, nil
}

// STT 클라이언트 종료
func (s *SpeechClient) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
