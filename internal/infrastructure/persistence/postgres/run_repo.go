// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/domain/repository"
)

// RunRepository 生成运行仓储实现
type RunRepository struct {
	client *Client
}

// NewRunRepository 创建生成运行仓储
func NewRunRepository(client *Client) *RunRepository {
	return &RunRepository{client: client}
}

var _ repository.RunRepository = (*RunRepository)(nil)

// Create 创建运行
func (r *RunRepository) Create(ctx context.Context, run *entity.GenerationRun) error {
	ctx, span := tracer.Start(ctx, "postgres.RunRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(run).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取运行
func (r *RunRepository) GetByID(ctx context.Context, id string) (*entity.GenerationRun, error) {
	ctx, span := tracer.Start(ctx, "postgres.RunRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var run entity.GenerationRun
	if err := db.First(&run, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// Update 更新运行
func (r *RunRepository) Update(ctx context.Context, run *entity.GenerationRun) error {
	ctx, span := tracer.Start(ctx, "postgres.RunRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(run).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// Delete 删除运行
func (r *RunRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.RunRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.GenerationRun{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// List 获取运行列表
func (r *RunRepository) List(ctx context.Context, filter *repository.RunFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationRun], error) {
	ctx, span := tracer.Start(ctx, "postgres.RunRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.GenerationRun{})

	// 应用过滤条件
	if filter != nil && filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	// 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	// 获取列表
	var runs []*entity.GenerationRun
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&runs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return repository.NewPagedResult(runs, total, pagination), nil
}

// UpdateProgress 更新运行进度
func (r *RunRepository) UpdateProgress(ctx context.Context, id string, progress int, message string) error {
	ctx, span := tracer.Start(ctx, "postgres.RunRepository.UpdateProgress")
	defer span.End()

	db := getDB(ctx, r.client.db)
	// 进度只允许前进，落后的更新直接忽略
	if err := db.Model(&entity.GenerationRun{}).
		Where("id = ? AND progress <= ?", id, progress).
		Updates(map[string]interface{}{
			"progress": progress,
			"message":  message,
		}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update run progress: %w", err)
	}
	return nil
}

// GetStats 获取运行统计信息
func (r *RunRepository) GetStats(ctx context.Context) (*repository.RunStats, error) {
	ctx, span := tracer.Start(ctx, "postgres.RunRepository.GetStats")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var stats repository.RunStats

	db.Model(&entity.GenerationRun{}).Count(&stats.TotalRuns)
	db.Model(&entity.GenerationRun{}).Where("status = ?", entity.RunStatusPending).Count(&stats.PendingRuns)
	db.Model(&entity.GenerationRun{}).Where("status = ?", entity.RunStatusRunning).Count(&stats.RunningRuns)
	db.Model(&entity.GenerationRun{}).Where("status = ?", entity.RunStatusCompleted).Count(&stats.CompletedRuns)
	db.Model(&entity.GenerationRun{}).Where("status = ?", entity.RunStatusError).Count(&stats.ErrorRuns)

	return &stats, nil
}
