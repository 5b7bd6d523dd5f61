// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/domain/repository"
)

// MetricsSummaryResponse 质量分析汇总响应
type MetricsSummaryResponse struct {
	TotalEvaluations     int64   `json:"total_evaluations"`
	PassedEvaluations    int64   `json:"passed_evaluations"`
	PassRatePercent      float64 `json:"pass_rate_percent"`
	AvgQualityScore      float64 `json:"avg_quality_score"`
	AvgReadabilityScore  float64 `json:"avg_readability_score"`
	AvgKeywordDensity    float64 `json:"avg_keyword_density"`
	AvgWordCountAccuracy float64 `json:"avg_word_count_accuracy"`
	AvgGenerationTime    float64 `json:"avg_generation_time_seconds"`
}

// MetricsRecordResponse 单条历史评估记录响应
type MetricsRecordResponse struct {
	ID                       string    `json:"id"`
	RunID                    string    `json:"run_id"`
	ContentID                string    `json:"content_id"`
	ContentType              string    `json:"content_type"`
	QualityScore             float64   `json:"quality_score"`
	BrandVoiceSimilarity     float64   `json:"brand_voice_similarity"`
	KeywordDensityPercent    float64   `json:"keyword_density_percent"`
	ReadabilityScore         float64   `json:"readability_score"`
	WordCountAccuracyPercent float64   `json:"word_count_accuracy_percent"`
	HeadingStructureScore    float64   `json:"heading_structure_score"`
	SEORequirementsScore     float64   `json:"seo_requirements_score"`
	GenerationTimeSeconds    float64   `json:"generation_time_seconds"`
	Pass                     bool      `json:"pass"`
	CreatedAt                time.Time `json:"created_at"`
}

// MetricsListResponse 历史评估记录列表响应
type MetricsListResponse struct {
	Records []*MetricsRecordResponse `json:"records"`
}

// ToMetricsSummaryResponse 将汇总统计转换为响应 DTO
func ToMetricsSummaryResponse(s *repository.MetricsSummary) *MetricsSummaryResponse {
	if s == nil {
		return nil
	}
	return &MetricsSummaryResponse{
		TotalEvaluations:     s.TotalEvaluations,
		PassedEvaluations:    s.PassedEvaluations,
		PassRatePercent:      s.PassRatePercent,
		AvgQualityScore:      s.AvgQualityScore,
		AvgReadabilityScore:  s.AvgReadabilityScore,
		AvgKeywordDensity:    s.AvgKeywordDensity,
		AvgWordCountAccuracy: s.AvgWordCountAccuracy,
		AvgGenerationTime:    s.AvgGenerationTime,
	}
}

// ToMetricsRecordResponse 将领域实体转换为响应 DTO
func ToMetricsRecordResponse(r *entity.MetricsRecord) *MetricsRecordResponse {
	if r == nil {
		return nil
	}
	return &MetricsRecordResponse{
		ID:                       r.ID,
		RunID:                    r.RunID,
		ContentID:                r.ContentID,
		ContentType:              string(r.ContentType),
		QualityScore:             r.QualityScore,
		BrandVoiceSimilarity:     r.BrandVoiceSimilarity,
		KeywordDensityPercent:    r.KeywordDensityPercent,
		ReadabilityScore:         r.ReadabilityScore,
		WordCountAccuracyPercent: r.WordCountAccuracyPercent,
		HeadingStructureScore:    r.HeadingStructureScore,
		SEORequirementsScore:     r.SEORequirementsScore,
		GenerationTimeSeconds:    r.GenerationTimeSeconds,
		Pass:                     r.Pass,
		CreatedAt:                r.CreatedAt,
	}
}

// ToMetricsListResponse 将分页记录转换为响应 DTO
func ToMetricsListResponse(paged *repository.PagedResult[*entity.MetricsRecord]) *MetricsListResponse {
	records := make([]*MetricsRecordResponse, 0, len(paged.Items))
	for _, r := range paged.Items {
		records = append(records, ToMetricsRecordResponse(r))
	}
	return &MetricsListResponse{Records: records}
}
