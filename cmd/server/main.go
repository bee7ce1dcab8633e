package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/david/opportunity-finder/internal/ai"
	"github.com/david/opportunity-finder/internal/api"
	"github.com/david/opportunity-finder/internal/config"
	"github.com/david/opportunity-finder/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger config yet; a bootstrap logger is enough to report the failure.
		zap.NewExample().Fatal("configuration failed", zap.Error(err))
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, err := ai.NewGeminiClient(ctx, cfg.Credential(), cfg.GeminiBaseURL, cfg.Profile.Model)
	if err != nil {
		logger.Fatal("failed to create model client", zap.Error(err))
	}
	gen, err := ai.NewGenerator(model, cfg.Profile, cfg.GenerationTimeout, logger.Named("ai"))
	if err != nil {
		logger.Fatal("failed to create generator", zap.Error(err))
	}

	sess := session.New(gen, logger.Named("session"), session.WithDateLayout(cfg.Profile.DateLayout))
	srv := api.NewServer(sess, logger.Named("api"), cfg.CORSOrigins)

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("model", model.Name()))
		if err := srv.Start(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	zc := zap.NewProductionConfig()
	if cfg.Development() {
		zc = zap.NewDevelopmentConfig()
	}
	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
