// Package content 提供内容生成运行与内容库的应用服务
package content

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/domain/repository"
	apperrors "content-factory-api/pkg/errors"
	"content-factory-api/pkg/logger"
)

// JobQueue 定义服务层对任务队列的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Redis Stream 生产者）。
type JobQueue interface {
	PublishContentGen(ctx context.Context, runID string) (string, error)
}

// Cache 定义服务层对缓存的依赖（port），终态运行与看板聚合走缓存
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
	InvalidateContent(ctx context.Context, contentID string) error
}

const (
	summaryCacheKey = "analytics:summary"
	summaryCacheTTL = 30 * time.Second

	// 终态运行不再变化，缓存只为挡住完成后的轮询风暴
	runCacheTTL = 5 * time.Minute
)

func runCacheKey(runID string) string {
	return "run:" + runID
}

// Service 生成运行与内容库服务
type Service struct {
	runRepo     repository.RunRepository
	contentRepo repository.ContentRepository
	metricsRepo repository.MetricsRepository
	queue       JobQueue
	cache       Cache
}

// NewService 创建内容服务，cache 为 nil 时所有查询直接落库
func NewService(
	runRepo repository.RunRepository,
	contentRepo repository.ContentRepository,
	metricsRepo repository.MetricsRepository,
	queue JobQueue,
	cache Cache,
) *Service {
	return &Service{
		runRepo:     runRepo,
		contentRepo: contentRepo,
		metricsRepo: metricsRepo,
		queue:       queue,
		cache:       cache,
	}
}

// StartRun 创建一次生成运行并投递到队列，立即返回运行标识供轮询
func (s *Service) StartRun(ctx context.Context, req *entity.GenerationRequest) (*entity.GenerationRun, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidParam, "invalid generation request")
	}

	params, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to encode request")
	}

	run := entity.NewGenerationRun(uuid.NewString(), params)
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create run")
	}

	if _, err := s.queue.PublishContentGen(ctx, run.ID); err != nil {
		// 入队失败直接标记运行失败，避免留下永远 pending 的运行
		run.Fail("failed to enqueue generation job")
		_ = s.runRepo.Update(ctx, run)
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to enqueue run")
	}

	logger.Info(ctx, "generation run queued", "run_id", run.ID, "topic", req.Topic)
	return run, nil
}

// GetRun 查询运行状态（轮询接口）。终态运行走缓存，进行中的运行直接落库
func (s *Service) GetRun(ctx context.Context, runID string) (*entity.GenerationRun, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, runCacheKey(runID)); err == nil {
			var cached entity.GenerationRun
			if json.Unmarshal(raw, &cached) == nil && cached.Status.IsTerminal() {
				return &cached, nil
			}
		}
	}

	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get run")
	}
	if run == nil {
		return nil, apperrors.ErrRunNotFound
	}

	if s.cache != nil && run.Status.IsTerminal() {
		if err := s.cache.Set(ctx, runCacheKey(runID), run, runCacheTTL); err != nil {
			logger.Warn(ctx, "failed to cache terminal run", "run_id", runID, "error", err)
		}
	}
	return run, nil
}

// RunResult 获取运行产出，仅在运行完成后有效
func (s *Service) RunResult(ctx context.Context, runID string) (*entity.ContentItem, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status != entity.RunStatusCompleted {
		return nil, apperrors.ErrRunNotFinished
	}

	item, err := s.contentRepo.GetByRunID(ctx, runID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get run result")
	}
	if item == nil {
		return nil, apperrors.ErrContentNotFound
	}
	return item, nil
}

// ListRuns 获取运行列表
func (s *Service) ListRuns(ctx context.Context, filter *repository.RunFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationRun], error) {
	result, err := s.runRepo.List(ctx, filter, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list runs")
	}
	return result, nil
}

// RunStats 获取运行统计
func (s *Service) RunStats(ctx context.Context) (*repository.RunStats, error) {
	stats, err := s.runRepo.GetStats(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get run stats")
	}
	return stats, nil
}

// GetContent 获取单篇内容
func (s *Service) GetContent(ctx context.Context, contentID string) (*entity.ContentItem, error) {
	item, err := s.contentRepo.GetByID(ctx, contentID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get content")
	}
	if item == nil {
		return nil, apperrors.ErrContentNotFound
	}
	return item, nil
}

// ListContent 获取内容库列表
func (s *Service) ListContent(ctx context.Context, filter *repository.ContentFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.ContentItem], error) {
	result, err := s.contentRepo.List(ctx, filter, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list content")
	}
	return result, nil
}

// UpdateContentStatus 更新内容发布状态
func (s *Service) UpdateContentStatus(ctx context.Context, contentID string, status entity.ContentStatus) (*entity.ContentItem, error) {
	if !status.IsValid() {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "unknown content status")
	}

	item, err := s.GetContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if err := s.contentRepo.UpdateStatus(ctx, item.ID, status); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update content status")
	}
	item.Status = status

	if s.cache != nil {
		if err := s.cache.InvalidateContent(ctx, item.ID); err != nil {
			logger.Warn(ctx, "failed to invalidate content cache", "content_id", item.ID, "error", err)
		}
	}
	return item, nil
}

// DeleteContent 删除内容
func (s *Service) DeleteContent(ctx context.Context, contentID string) error {
	item, err := s.GetContent(ctx, contentID)
	if err != nil {
		return err
	}
	if err := s.contentRepo.Delete(ctx, item.ID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete content")
	}
	if s.cache != nil {
		if err := s.cache.InvalidateContent(ctx, item.ID); err != nil {
			logger.Warn(ctx, "failed to invalidate content cache", "content_id", item.ID, "error", err)
		}
	}
	return nil
}

// MetricsSummary 聚合历史评估数据（分析看板），结果短时缓存
func (s *Service) MetricsSummary(ctx context.Context) (*repository.MetricsSummary, error) {
	if s.cache == nil {
		summary, err := s.metricsRepo.GetSummary(ctx)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get metrics summary")
		}
		return summary, nil
	}

	raw, err := s.cache.GetOrLoadSafe(ctx, summaryCacheKey, summaryCacheTTL, func() (interface{}, error) {
		return s.metricsRepo.GetSummary(ctx)
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get metrics summary")
	}

	var summary repository.MetricsSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to decode metrics summary")
	}
	return &summary, nil
}

// ListMetrics 按时间倒序获取历史评估记录
func (s *Service) ListMetrics(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.MetricsRecord], error) {
	result, err := s.metricsRepo.List(ctx, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list metrics records")
	}
	return result, nil
}
