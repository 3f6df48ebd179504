package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"FlertaAI_ReplyAssistant/internal/assistant"
	"FlertaAI_ReplyAssistant/internal/auth"
	"FlertaAI_ReplyAssistant/internal/config"
	"FlertaAI_ReplyAssistant/internal/conversation"
	"FlertaAI_ReplyAssistant/internal/filestore"
	"FlertaAI_ReplyAssistant/internal/handler"
	"FlertaAI_ReplyAssistant/internal/llm"
	"FlertaAI_ReplyAssistant/internal/logging"
	"FlertaAI_ReplyAssistant/internal/ocr"
	"FlertaAI_ReplyAssistant/internal/storage"
	"FlertaAI_ReplyAssistant/internal/suggest"
)

const shutdownTimeout = 15 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Production, cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	files, err := filestore.New(cfg.Storage.Dir)
	if err != nil {
		return err
	}

	deps := assistant.Deps{
		Store:      store,
		Files:      files,
		Parser:     conversation.NewParser(cfg.Parser.SelfLabels),
		Logger:     logger,
		MaxUpload:  cfg.MaxUploadBytes(),
		SpeechLang: cfg.Google.SpeechLanguage,
	}

	provider, err := llm.NewProvider(cfg.LLM, logger)
	if err != nil {
		return err
	}
	genOpts := []suggest.Option{suggest.WithLogger(logger)}
	if provider != nil {
		deps.LLM = provider
		genOpts = append(genOpts, suggest.WithPhraser(suggest.NewLLMPhraser(provider)))
		logger.Info("llm provider enabled", zap.String("provider", provider.Name()))
	} else {
		logger.Warn("llm provider not configured, using templates only")
	}
	deps.Generator = suggest.NewGenerator(genOpts...)

	engine, err := ocr.New(cfg)
	if err != nil {
		return err
	}
	if engine != nil {
		deps.OCR = engine
		logger.Info("ocr engine enabled", zap.String("engine", engine.Name()))
	}

	if cfg.Google.CredentialsFile != "" {
		stt, err := llm.NewSpeechClient(ctx, cfg.Google.CredentialsFile)
		if err != nil {
			return err
		}
		defer stt.Close()
		deps.STT = stt

		tts, err := llm.NewTTSClient(ctx, cfg.Google.CredentialsFile, cfg.Google.TTSVoice)
		if err != nil {
			return err
		}
		defer tts.Close()
		deps.TTS = tts
		logger.Info("google speech enabled", zap.String("voice", cfg.Google.TTSVoice))
	}

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT_SECRET_KEY is empty, using development secret")
	}
	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	svc := assistant.New(deps)
	router := handler.NewRouter(handler.New(svc, logger), tokens, cfg, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       config.Duration(cfg.HTTP.ReadTimeout, 15*time.Second),
		WriteTimeout:      config.Duration(cfg.HTTP.WriteTimeout, 60*time.Second),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (*storage.Store, error) {
	store, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	cmd.Printf("database migrated (%s)\n", cfg.Database.Driver)
	return nil
}
