// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/domain/repository"
)

// MetricsRepository 评估历史仓储实现
type MetricsRepository struct {
	client *Client
}

// NewMetricsRepository 创建评估历史仓储
func NewMetricsRepository(client *Client) *MetricsRepository {
	return &MetricsRepository{client: client}
}

var _ repository.MetricsRepository = (*MetricsRepository)(nil)

// Create 保存评估记录
func (r *MetricsRepository) Create(ctx context.Context, record *entity.MetricsRecord) error {
	ctx, span := tracer.Start(ctx, "postgres.MetricsRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(record).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create metrics record: %w", err)
	}
	return nil
}

// List 按时间倒序获取评估记录
func (r *MetricsRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.MetricsRecord], error) {
	ctx, span := tracer.Start(ctx, "postgres.MetricsRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.MetricsRecord{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count metrics records: %w", err)
	}

	var records []*entity.MetricsRecord
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&records).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list metrics records: %w", err)
	}

	return repository.NewPagedResult(records, total, pagination), nil
}

// GetSummary 聚合历史评估数据
func (r *MetricsRepository) GetSummary(ctx context.Context) (*repository.MetricsSummary, error) {
	ctx, span := tracer.Start(ctx, "postgres.MetricsRepository.GetSummary")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var summary repository.MetricsSummary

	db.Model(&entity.MetricsRecord{}).Count(&summary.TotalEvaluations)
	db.Model(&entity.MetricsRecord{}).Where("pass = ?", true).Count(&summary.PassedEvaluations)

	if summary.TotalEvaluations == 0 {
		return &summary, nil
	}
	summary.PassRatePercent = float64(summary.PassedEvaluations) / float64(summary.TotalEvaluations) * 100

	// 均值聚合
	type averages struct {
		AvgQuality     *float64
		AvgReadability *float64
		AvgDensity     *float64
		AvgAccuracy    *float64
		AvgGenTime     *float64
	}
	var avg averages
	if err := db.Model(&entity.MetricsRecord{}).
		Select(`AVG(quality_score) AS avg_quality,
			AVG(readability_score) AS avg_readability,
			AVG(keyword_density_percent) AS avg_density,
			AVG(word_count_accuracy_percent) AS avg_accuracy,
			AVG(generation_time_seconds) AS avg_gen_time`).
		Scan(&avg).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to aggregate metrics: %w", err)
	}

	if avg.AvgQuality != nil {
		summary.AvgQualityScore = *avg.AvgQuality
	}
	if avg.AvgReadability != nil {
		summary.AvgReadabilityScore = *avg.AvgReadability
	}
	if avg.AvgDensity != nil {
		summary.AvgKeywordDensity = *avg.AvgDensity
	}
	if avg.AvgAccuracy != nil {
		summary.AvgWordCountAccuracy = *avg.AvgAccuracy
	}
	if avg.AvgGenTime != nil {
		summary.AvgGenerationTime = *avg.AvgGenTime
	}

	return &summary, nil
}
