package wire

import (
	"context"
	"fmt"
	"os"

	"content-factory-api/internal/application/content"
	"content-factory-api/internal/application/quality"
	"content-factory-api/internal/application/voice"
	"content-factory-api/internal/config"
	"content-factory-api/internal/infrastructure/llm"
	"content-factory-api/internal/infrastructure/messaging"
	"content-factory-api/pkg/logger"
)

// Worker 后台任务进程依赖容器
type Worker struct {
	Runner  *content.Runner
	Indexer *voice.Indexer

	RunConsumer   *messaging.Consumer
	VoiceConsumer *messaging.Consumer

	data *DataLayer
}

// Close 释放任务进程资源
func (w *Worker) Close() {
	if w.RunConsumer != nil {
		w.RunConsumer.Stop()
	}
	if w.VoiceConsumer != nil {
		w.VoiceConsumer.Stop()
	}
	if w.data != nil {
		w.data.Close()
	}
}

// InitializeWorker 装配后台任务进程：生成执行器、语调索引器与流消费者
func InitializeWorker(ctx context.Context, cfg *config.Config) (*Worker, error) {
	data, err := InitializeDataLayer(ctx, cfg)
	if err != nil {
		return nil, err
	}

	embedder := newEmbedder(ctx, cfg)
	vectorRepo := newVoiceVectorRepo(data)
	voiceEngine := voice.NewEngine(embedder, vectorRepo)
	indexer := voice.NewIndexer(embedder, vectorRepo, cfg.Embedding.BatchSize)

	llmClient := llm.NewClient(cfg, llm.NewEinoFactory(cfg))
	contentPipeline := newContentPipeline(cfg, llmClient, voiceEngine)

	runner := content.NewRunner(
		data.RunRepo,
		data.ContentRepo,
		data.MetricsRepo,
		data.TxManager,
		contentPipeline,
		quality.NewMetricsEvaluator(),
		quality.NewMetricsAggregator(&cfg.Quality),
	)

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "worker"
	}

	streamCfg := cfg.Messaging.RedisStream
	backoff := messaging.BackoffConfig{
		Initial:    streamCfg.RetryBackoff.Initial,
		Max:        streamCfg.RetryBackoff.Max,
		Multiplier: streamCfg.RetryBackoff.Multiplier,
	}
	runConsumer := messaging.NewConsumer(data.RedisClient.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamContentGen,
		Group:         messaging.ConsumerGroupRunWorker,
		ConsumerName:  fmt.Sprintf("%s-run", hostname),
		BlockTimeout:  streamCfg.BlockTimeout,
		ClaimInterval: streamCfg.ClaimInterval,
		RetryLimit:    streamCfg.RetryLimit,
		Backoff:       backoff,
	})
	runConsumer.RegisterHandler(messaging.MessageTypeContentGen, func(ctx context.Context, msg *messaging.Message) error {
		var payload messaging.ContentGenPayload
		if err := msg.UnmarshalPayload(&payload); err != nil {
			logger.Warn(ctx, "invalid content generation payload, dropping", "message_id", msg.ID, "error", err.Error())
			return nil
		}
		return runner.Execute(ctx, payload.RunID)
	})

	voiceConsumer := messaging.NewConsumer(data.RedisClient.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamVoiceIngest,
		Group:         messaging.ConsumerGroupVoiceIndexer,
		ConsumerName:  fmt.Sprintf("%s-voice", hostname),
		BlockTimeout:  streamCfg.BlockTimeout,
		ClaimInterval: streamCfg.ClaimInterval,
		RetryLimit:    streamCfg.RetryLimit,
		Backoff:       backoff,
	})
	voiceConsumer.RegisterHandler(messaging.MessageTypeVoiceIngest, func(ctx context.Context, msg *messaging.Message) error {
		var payload messaging.VoiceIngestPayload
		if err := msg.UnmarshalPayload(&payload); err != nil {
			logger.Warn(ctx, "invalid voice ingest payload, dropping", "message_id", msg.ID, "error", err.Error())
			return nil
		}
		chunks, err := indexer.IndexSample(ctx, voice.SampleInput{
			BrandID: payload.BrandID,
			Title:   payload.Title,
			Source:  payload.Source,
			Text:    payload.Text,
		})
		if err != nil {
			return err
		}
		logger.Info(ctx, "voice sample indexed", "brand_id", payload.BrandID, "chunks", chunks)
		return nil
	})

	return &Worker{
		Runner:        runner,
		Indexer:       indexer,
		RunConsumer:   runConsumer,
		VoiceConsumer: voiceConsumer,
		data:          data,
	}, nil
}
