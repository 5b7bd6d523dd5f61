// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"content-factory-api/internal/domain/entity"
)

// RunFilter 运行过滤条件
type RunFilter struct {
	Status entity.RunStatus
}

// RunRepository 生成运行仓储接口
type RunRepository interface {
	// Create 创建运行
	Create(ctx context.Context, run *entity.GenerationRun) error

	// GetByID 根据 ID 获取运行
	GetByID(ctx context.Context, id string) (*entity.GenerationRun, error)

	// Update 更新运行
	Update(ctx context.Context, run *entity.GenerationRun) error

	// Delete 删除运行
	Delete(ctx context.Context, id string) error

	// List 获取运行列表
	List(ctx context.Context, filter *RunFilter, pagination Pagination) (*PagedResult[*entity.GenerationRun], error)

	// UpdateProgress 更新运行进度（0-100）
	UpdateProgress(ctx context.Context, id string, progress int, message string) error

	// GetStats 获取运行统计信息
	GetStats(ctx context.Context) (*RunStats, error)
}

// RunStats 运行统计信息
type RunStats struct {
	TotalRuns     int64 `json:"total_runs"`
	PendingRuns   int64 `json:"pending_runs"`
	RunningRuns   int64 `json:"running_runs"`
	CompletedRuns int64 `json:"completed_runs"`
	ErrorRuns     int64 `json:"error_runs"`
}
