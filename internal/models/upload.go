package models

import "time"

// 업로드 종류
const (
	UploadKindScreenshot = "screenshot"
	UploadKindVoice      = "voice"
	UploadKindText       = "text"
)

// 사용자가 올린 원본 파일 (스크린샷, 음성, 텍스트)
type Upload struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Kind        string    `json:"kind"`
	Mime        string    `json:"mime"`
	SizeBytes   int64     `json:"size_bytes"`
	StoragePath string    `json:"storage_path"`
	SHA         string    `json:"sha"`
	Redacted    bool      `json:"redacted"`
	CreatedAt   time.Time `json:"created_at"`
}

// 음성 메모 STT 결과
type VoiceNote struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	UploadID    string    `json:"upload_id"`
	Transcript  string    `json:"transcript"`
	Lang        string    `json:"lang"`
	DurationSec float64   `json:"duration_sec"`
	CreatedAt   time.Time `json:"created_at"`
}
