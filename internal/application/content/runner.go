package content

import (
	"context"
	"time"

	"github.com/google/uuid"

	"content-factory-api/internal/application/pipeline"
	"content-factory-api/internal/application/quality"
	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/domain/repository"
	"content-factory-api/pkg/logger"
	"content-factory-api/pkg/metrics"
)

// Runner 在后台执行生成运行：驱动流水线、评估质量并落库。
// 每次运行独占自己的状态，多个运行可以并发执行而无需加锁。
type Runner struct {
	runRepo     repository.RunRepository
	contentRepo repository.ContentRepository
	metricsRepo repository.MetricsRepository
	tx          repository.Transactor
	pipeline    *pipeline.ContentPipeline
	evaluator   *quality.MetricsEvaluator
	aggregator  *quality.MetricsAggregator
}

// NewRunner 创建运行执行器
func NewRunner(
	runRepo repository.RunRepository,
	contentRepo repository.ContentRepository,
	metricsRepo repository.MetricsRepository,
	tx repository.Transactor,
	contentPipeline *pipeline.ContentPipeline,
	evaluator *quality.MetricsEvaluator,
	aggregator *quality.MetricsAggregator,
) *Runner {
	return &Runner{
		runRepo:     runRepo,
		contentRepo: contentRepo,
		metricsRepo: metricsRepo,
		tx:          tx,
		pipeline:    contentPipeline,
		evaluator:   evaluator,
		aggregator:  aggregator,
	}
}

// Execute 执行一次生成运行。
// 终态之后的重复投递直接忽略，保证消息重试不会重复生成。
func (r *Runner) Execute(ctx context.Context, runID string) error {
	ctx = logger.WithContext(ctx, logger.RunIDKey, runID)
	log := logger.FromContext(ctx)

	run, err := r.runRepo.GetByID(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		log.Warn("run not found, skipping", "run_id", runID)
		return nil
	}
	if run.Status.IsTerminal() {
		log.Info("run already finished, skipping", "run_id", runID, "status", string(run.Status))
		return nil
	}

	req, err := run.Request()
	if err != nil {
		run.Fail("invalid run parameters")
		return r.runRepo.Update(ctx, run)
	}

	run.Start()
	if err := r.runRepo.Update(ctx, run); err != nil {
		return err
	}

	metrics.ActiveRuns.Inc()
	defer metrics.ActiveRuns.Dec()

	contentType := string(req.ContentType)
	start := time.Now()

	onProgress := func(ctx context.Context, progress int, message string) {
		run.UpdateProgress(progress, message)
		if err := r.runRepo.UpdateProgress(ctx, run.ID, run.Progress, run.Message); err != nil {
			log.Warn("failed to persist progress", "error", err)
		}
	}

	result, err := r.pipeline.Run(ctx, req, onProgress)
	elapsed := time.Since(start)
	metrics.ContentGenerationDuration.WithLabelValues(contentType).Observe(elapsed.Seconds())

	if err != nil {
		metrics.ContentGenerationTotal.WithLabelValues(contentType, "error").Inc()
		log.Error("generation run failed", "error", err, "elapsed", elapsed.String())
		run.Fail(err.Error())
		return r.runRepo.Update(ctx, run)
	}

	report := r.evaluator.Evaluate(result.Article, req, result.Exemplars, elapsed.Seconds())
	r.aggregator.Aggregate(report)

	verdict := "fail"
	if report.Pass {
		verdict = "pass"
	}
	metrics.QualityScore.WithLabelValues(contentType).Observe(report.QualityScore)
	metrics.QualityEvaluationTotal.WithLabelValues(contentType, verdict).Inc()
	metrics.ContentWordCount.WithLabelValues(contentType).Observe(float64(result.Article.WordCount))

	item, err := entity.NewContentItem(uuid.NewString(), run.ID, req, result.Article, report)
	if err != nil {
		run.Fail("failed to encode content")
		return r.runRepo.Update(ctx, run)
	}
	// 内容落库与运行终态在同一事务内提交，重投递时不会产生重复内容
	run.Complete(item.ID)
	txErr := r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := r.contentRepo.Create(ctx, item); err != nil {
			return err
		}
		return r.runRepo.Update(ctx, run)
	})
	if txErr != nil {
		log.Error("failed to persist generation result", "error", txErr)
		run.ContentID = ""
		run.Fail("failed to persist content")
		return r.runRepo.Update(ctx, run)
	}

	record := entity.NewMetricsRecord(uuid.NewString(), run.ID, item.ID, req.ContentType, report)
	if err := r.metricsRepo.Create(ctx, record); err != nil {
		// 历史记录失败不影响运行结果
		log.Warn("failed to persist metrics record", "error", err)
	}

	metrics.ContentGenerationTotal.WithLabelValues(contentType, "success").Inc()

	log.Info("generation run completed",
		"run_id", run.ID,
		"content_id", item.ID,
		"word_count", result.Article.WordCount,
		"quality_score", report.QualityScore,
		"pass", report.Pass,
	)
	return nil
}
