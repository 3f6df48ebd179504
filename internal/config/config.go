/**
* Name: 			config.go
* Description: 		서버 설정 로드 (기본값 -> YAML -> .env -> 환경 변수)
* Workflow: 		Load() 호출 후 Validate()로 검증
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 서버 전체 설정
type Config struct {
	Port       string `yaml:"port"`
	Production bool   `yaml:"production"`
	Debug      bool   `yaml:"debug"`

	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	LLM      LLMConfig      `yaml:"llm"`
	OCR      OCRConfig      `yaml:"ocr"`
	Google   GoogleConfig   `yaml:"google"`
	Storage  StorageConfig  `yaml:"storage"`
	HTTP     HTTPConfig     `yaml:"http"`
	Parser   ParserConfig   `yaml:"parser"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, pgx
	DSN    string `yaml:"dsn"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	ClientKey string `yaml:"client_key"` // 설정 시 apikey 헤더 필수
}

// LLMConfig 답변 생성용 LLM 설정 (provider가 비어있으면 템플릿만 사용)
type LLMConfig struct {
	Provider     string `yaml:"provider"` // openai, gemini, ollama
	OpenAIAPIKey string `yaml:"openai_api_key"`
	OpenAIModel  string `yaml:"openai_model"`
	OpenAIURL    string `yaml:"openai_url"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`
	OllamaURL    string `yaml:"ollama_url"`
	OllamaModel  string `yaml:"ollama_model"`
	Timeout      string `yaml:"timeout"`
}

type OCRConfig struct {
	Provider string `yaml:"provider"` // openai, gemini
	Model    string `yaml:"model"`
}

// GoogleConfig STT/TTS 설정
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpeechLanguage  string `yaml:"speech_language"`
	TTSVoice        string `yaml:"tts_voice"`
}

type StorageConfig struct {
	Dir          string `yaml:"dir"`
	MaxUploadMiB int    `yaml:"max_upload_mib"`
}

type HTTPConfig struct {
	CORSOrigins    []string `yaml:"cors_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`
	ReadTimeout    string   `yaml:"read_timeout"`
	WriteTimeout   string   `yaml:"write_timeout"`
}

type ParserConfig struct {
	SelfLabels []string `yaml:"self_labels"`
}

var (
	knownLLMProviders = map[string]bool{"": true, "openai": true, "gemini": true, "ollama": true}
	knownOCRProviders = map[string]bool{"": true, "openai": true, "gemini": true}
)

// DefaultConfig 기본값
func DefaultConfig() *Config {
	return &Config{
		Port: "8080",
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "./flertaai.db",
		},
		Auth: AuthConfig{
			Issuer: "FlertaAI-api",
		},
		LLM: LLMConfig{
			OpenAIModel: "gpt-4o-mini",
			OpenAIURL:   "https://api.openai.com/v1",
			GeminiModel: "gemini-2.5-flash",
			OllamaURL:   "http://localhost:11434",
			OllamaModel: "llama3.1",
			Timeout:     "60s",
		},
		OCR: OCRConfig{
			Model: "gpt-4.1-mini",
		},
		Google: GoogleConfig{
			SpeechLanguage: "pt-BR",
			TTSVoice:       "pt-BR-Wavenet-A",
		},
		Storage: StorageConfig{
			Dir:          "data/uploads",
			MaxUploadMiB: 10,
		},
		HTTP: HTTPConfig{
			CORSOrigins:    []string{"*"},
			RateLimitRPS:   2,
			RateLimitBurst: 10,
			ReadTimeout:    "15s",
			WriteTimeout:   "60s",
		},
		Parser: ParserConfig{
			SelfLabels: []string{"Você", "Eu"},
		},
	}
}

// Load 설정 파일(선택)과 .env, 환경 변수를 순서대로 적용
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("FLERTA_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// .env 파일이 없으면 무시
	_ = godotenv.Load()

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Port, "PORT")
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.Production = v == "release"
	}
	if v := os.Getenv("DEBUG"); v != "" {
		c.Debug, _ = strconv.ParseBool(v)
	}

	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.Auth.JWTSecret, "JWT_SECRET_KEY")
	setString(&c.Auth.ClientKey, "CLIENT_API_KEY")

	setString(&c.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.LLM.OpenAIModel, "OPENAI_MODEL")
	setString(&c.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.LLM.GeminiModel, "GEMINI_MODEL")
	setString(&c.LLM.OllamaURL, "OLLAMA_URL")
	setString(&c.LLM.OllamaModel, "OLLAMA_MODEL")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	// 키만 있고 provider 지정이 없으면 키로 추론
	if c.LLM.Provider == "" {
		switch {
		case c.LLM.OpenAIAPIKey != "":
			c.LLM.Provider = "openai"
		case c.LLM.GeminiAPIKey != "":
			c.LLM.Provider = "gemini"
		}
	}

	setString(&c.OCR.Provider, "OCR_PROVIDER")
	setString(&c.OCR.Model, "OCR_MODEL")
	setString(&c.Google.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&c.Storage.Dir, "STORAGE_DIR")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.HTTP.CORSOrigins = origins
	}
	if v, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64); err == nil {
		c.HTTP.RateLimitRPS = v
	}
	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST")); err == nil {
		c.HTTP.RateLimitBurst = v
	}
}

// Validate 실행 불가능한 설정 조합 검사
func (c *Config) Validate() error {
	var errs []error
	if c.Production && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required in release mode"))
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "pgx" {
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	if !knownLLMProviders[c.LLM.Provider] {
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}
	if !knownOCRProviders[c.OCR.Provider] {
		errs = append(errs, fmt.Errorf("unknown ocr provider %q", c.OCR.Provider))
	}
	if c.Storage.MaxUploadMiB <= 0 {
		errs = append(errs, errors.New("storage.max_upload_mib must be positive"))
	}
	if _, err := time.ParseDuration(c.LLM.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("llm.timeout: %w", err))
	}
	return errors.Join(errs...)
}

// MaxUploadBytes 업로드 최대 크기 (bytes)
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Storage.MaxUploadMiB) << 20
}

// Duration 잘못된 값이면 fallback 반환
func Duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
