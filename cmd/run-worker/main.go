// Package main 内容生成任务执行器入口（run-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"content-factory-api/internal/config"
	"content-factory-api/internal/infrastructure/eino/callback"
	"content-factory-api/internal/wire"
	"content-factory-api/pkg/logger"
	"content-factory-api/pkg/tracer"

	"github.com/joho/godotenv"
)

// dlqAlertThreshold 死信队列告警水位
const dlqAlertThreshold = 100

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()
	log := logger.FromContext(ctx)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "run-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	// 初始化 Eino 全局 callbacks（追踪）
	callback.Init()

	worker, err := wire.InitializeWorker(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize worker", err)
	}
	defer worker.Close()

	if err := worker.RunConsumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start run consumer", err)
	}
	if err := worker.VoiceConsumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start voice consumer", err)
	}

	go worker.RunConsumer.MonitorDLQ(ctx, dlqAlertThreshold)
	go worker.VoiceConsumer.MonitorDLQ(ctx, dlqAlertThreshold)

	log.Info("run-worker started",
		"env", cfg.App.Env,
		"content_stream", "stream:content:gen",
		"voice_stream", "stream:voice:ingest",
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	worker.Close()
	log.Info("worker exited")
}
