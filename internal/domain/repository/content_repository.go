// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"content-factory-api/internal/domain/entity"
)

// ContentFilter 内容过滤条件
type ContentFilter struct {
	ContentType entity.ContentType
	Status      entity.ContentStatus
	Keyword     string
	PassOnly    bool
}

// ContentRepository 内容库仓储接口
type ContentRepository interface {
	// Create 保存内容
	Create(ctx context.Context, item *entity.ContentItem) error

	// GetByID 根据 ID 获取内容
	GetByID(ctx context.Context, id string) (*entity.ContentItem, error)

	// GetByRunID 根据运行 ID 获取内容
	GetByRunID(ctx context.Context, runID string) (*entity.ContentItem, error)

	// Update 更新内容
	Update(ctx context.Context, item *entity.ContentItem) error

	// UpdateStatus 更新内容发布状态
	UpdateStatus(ctx context.Context, id string, status entity.ContentStatus) error

	// Delete 删除内容
	Delete(ctx context.Context, id string) error

	// List 获取内容列表
	List(ctx context.Context, filter *ContentFilter, pagination Pagination) (*PagedResult[*entity.ContentItem], error)
}
