package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"copywriter/internal/config"
	"copywriter/internal/generation"
	"copywriter/internal/httpserver"
	"copywriter/internal/llm"
	"copywriter/internal/metrics"
	"copywriter/internal/render"
	"copywriter/internal/transport"
	"copywriter/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.LogLevel)

	// Дедлайн вызова задает контекст, клиентский таймаут только страхует.
	httpClient := transport.NewHTTPClient(cfg.LLM.Timeout+5*time.Second, transport.DefaultUserAgent)

	var dispatcher llm.Dispatcher
	switch cfg.LLM.Dispatcher {
	case config.DispatcherSDK:
		dispatcher = llm.NewSDKClient(cfg.LLM, httpClient, logger)
	default:
		dispatcher = llm.NewMoonshotClient(cfg.LLM, httpClient, logger)
	}

	recorder := metrics.New()
	service := generation.NewService(generation.Deps{
		Dispatcher: dispatcher,
		LLM:        cfg.LLM,
		Metrics:    recorder,
		Logger:     logger,
	})

	handler := web.NewHandler(web.Deps{
		Generator:    service,
		Renderer:     render.NewRenderer(cfg.LLM.Timeout),
		Logger:       logger,
		DefaultModel: cfg.LLM.DefaultModel,
	})

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Logger:      logger,
		Pages:       handler,
		API:         handler,
		Metrics:     recorder.Handler(),
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("dispatcher", cfg.LLM.Dispatcher),
			slog.String("model", cfg.LLM.DefaultModel),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

func newLogger(level string) *slog.Logger {
	slogLevel := slog.LevelInfo
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
}
