// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/domain/repository"
)

// ContentRepository 内容库仓储实现
type ContentRepository struct {
	client *Client
}

// NewContentRepository 创建内容库仓储
func NewContentRepository(client *Client) *ContentRepository {
	return &ContentRepository{client: client}
}

var _ repository.ContentRepository = (*ContentRepository)(nil)

// Create 保存内容
func (r *ContentRepository) Create(ctx context.Context, item *entity.ContentItem) error {
	ctx, span := tracer.Start(ctx, "postgres.ContentRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(item).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create content: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取内容
func (r *ContentRepository) GetByID(ctx context.Context, id string) (*entity.ContentItem, error) {
	ctx, span := tracer.Start(ctx, "postgres.ContentRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var item entity.ContentItem
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return &item, nil
}

// GetByRunID 根据运行 ID 获取内容
func (r *ContentRepository) GetByRunID(ctx context.Context, runID string) (*entity.ContentItem, error) {
	ctx, span := tracer.Start(ctx, "postgres.ContentRepository.GetByRunID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var item entity.ContentItem
	if err := db.First(&item, "run_id = ?", runID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get content by run: %w", err)
	}
	return &item, nil
}

// Update 更新内容
func (r *ContentRepository) Update(ctx context.Context, item *entity.ContentItem) error {
	ctx, span := tracer.Start(ctx, "postgres.ContentRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(item).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update content: %w", err)
	}
	return nil
}

// UpdateStatus 更新内容发布状态
func (r *ContentRepository) UpdateStatus(ctx context.Context, id string, status entity.ContentStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.ContentRepository.UpdateStatus")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.ContentItem{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update content status: %w", result.Error)
	}
	return nil
}

// Delete 删除内容
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ContentRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.ContentItem{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete content: %w", err)
	}
	return nil
}

// List 获取内容列表
func (r *ContentRepository) List(ctx context.Context, filter *repository.ContentFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.ContentItem], error) {
	ctx, span := tracer.Start(ctx, "postgres.ContentRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.ContentItem{})

	// 应用过滤条件
	if filter != nil {
		if filter.ContentType != "" {
			query = query.Where("content_type = ?", filter.ContentType)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Keyword != "" {
			query = query.Where("target_keyword = ?", filter.Keyword)
		}
		if filter.PassOnly {
			query = query.Where("pass = ?", true)
		}
	}

	// 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count content: %w", err)
	}

	// 获取列表
	var items []*entity.ContentItem
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&items).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list content: %w", err)
	}

	return repository.NewPagedResult(items, total, pagination), nil
}
