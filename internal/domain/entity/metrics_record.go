package entity

import "time"

// MetricsRecord 历史评估记录，供分析看板聚合
type MetricsRecord struct {
	ID                       string    `json:"id"`
	RunID                    string    `json:"run_id"`
	ContentID                string    `json:"content_id"`
	ContentType              ContentType `json:"content_type"`
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

// TableName 指定表名
func (MetricsRecord) TableName() string {
	return "metrics_records"
}

// NewMetricsRecord 从评估报告构建历史记录
func NewMetricsRecord(id, runID, contentID string, contentType ContentType, report *MetricsReport) *MetricsRecord {
	return &MetricsRecord{
		ID:                       id,
		RunID:                    runID,
		ContentID:                contentID,
		ContentType:              contentType,
		QualityScore:             report.QualityScore,
		BrandVoiceSimilarity:     report.BrandVoiceSimilarity,
		KeywordDensityPercent:    report.KeywordDensityPercent,
		ReadabilityScore:         report.ReadabilityScore,
		WordCountAccuracyPercent: report.WordCountAccuracyPercent,
		HeadingStructureScore:    report.HeadingStructureScore,
		SEORequirementsScore:     report.SEORequirementsScore,
		GenerationTimeSeconds:    report.GenerationTimeSeconds,
		Pass:                     report.Pass,
		CreatedAt:                time.Now(),
	}
}
