// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"content-factory-api/internal/domain/entity"
)

// MetricsRepository 评估历史仓储接口
type MetricsRepository interface {
	// Create 保存评估记录
	Create(ctx context.Context, record *entity.MetricsRecord) error

	// List 按时间倒序获取评估记录
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.MetricsRecord], error)

	// GetSummary 聚合历史评估数据
	GetSummary(ctx context.Context) (*MetricsSummary, error)
}

// MetricsSummary 历史评估聚合结果
type MetricsSummary struct {
	TotalEvaluations     int64   `json:"total_evaluations"`
	PassedEvaluations    int64   `json:"passed_evaluations"`
	PassRatePercent      float64 `json:"pass_rate_percent"`
	AvgQualityScore      float64 `json:"avg_quality_score"`
	AvgReadabilityScore  float64 `json:"avg_readability_score"`
	AvgKeywordDensity    float64 `json:"avg_keyword_density"`
	AvgWordCountAccuracy float64 `json:"avg_word_count_accuracy"`
	AvgGenerationTime    float64 `json:"avg_generation_time_seconds"`
}
