// @title           FlertaAI Reply Assistant API
// @version         1.0
// @description     대화 스크린샷/텍스트 분석과 답변 제안 API
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     "Bearer {token}" 형식
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "FlertaAI_ReplyAssistant/docs"
	"FlertaAI_ReplyAssistant/internal/config"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "flertaai",
		Short:         "FlertaAI reply assistant server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("FLERTA_CONFIG"), "YAML 설정 파일 경로")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "HTTP/WebSocket 서버 실행",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "DB 스키마 생성과 기본 요금제 등록",
			RunE:  runMigrate,
		},
		&cobra.Command{
			Use:   "parse [file]",
			Short: "대화 텍스트를 분석해 JSON으로 출력 (파일이 없으면 stdin)",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runParse,
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
