package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AngelCh415/insightchat-go/internal/config"
	"github.com/AngelCh415/insightchat-go/internal/httpx"
	"github.com/AngelCh415/insightchat-go/internal/insights"
	"github.com/AngelCh415/insightchat-go/internal/llm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	client, err := llm.New(llm.Config{
		APIKey:  cfg.APIKey,
		ModelID: cfg.ModelID,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.HTTPTimeout(),
	})
	if err != nil {
		logger.Error("completion client", slog.String("err", err.Error()))
		os.Exit(1)
	}

	svc := insights.NewService(client, logger, insights.Paths{
		Dataset:        cfg.DatasetPath,
		AnalysisPrompt: cfg.AnalysisPromptPath,
		ChatPrompt:     cfg.ChatPromptPath,
	})

	r := httpx.NewRouter(logger, svc, httpx.Options{
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		LLMConfigured:      cfg.APIKey != "",
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server",
			slog.String("port", cfg.Port),
			slog.String("model", cfg.ModelID),
			slog.String("dataset", cfg.DatasetPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// in-flight requests may be waiting on a completion call
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout()+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.String("err", err.Error()))
	}
}
