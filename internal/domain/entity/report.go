package entity

import "time"

// SEOChecklist SEO 检查项明细
type SEOChecklist struct {
	KeywordInFirstWords  bool `json:"keyword_in_first_words"`
	MetaDescriptionOK    bool `json:"meta_description_ok"`
	KeywordInBodyHeading bool `json:"keyword_in_body_heading"`
}

// ReportDetails 评估明细
type ReportDetails struct {
	ActualWordCount    int          `json:"actual_word_count"`
	TargetWordCount    int          `json:"target_word_count"`
	KeywordOccurrences int          `json:"keyword_occurrences"`
	HeadingIssues      []string     `json:"heading_issues,omitempty"`
	SEOChecklist       SEOChecklist `json:"seo_checklist"`
}

// MetricsReport 质量评估报告，每次成功运行仅计算一次，计算后不可变
type MetricsReport struct {
	QualityScore             float64       `json:"quality_score"`              // 0-100
	BrandVoiceSimilarity     float64       `json:"brand_voice_similarity"`     // 0-100
	KeywordDensityPercent    float64       `json:"keyword_density_percent"`    // 原始百分比
	ReadabilityScore         float64       `json:"readability_score"`          // 0-100
	WordCountAccuracyPercent float64       `json:"word_count_accuracy_percent"` // 0-100
	HeadingStructureScore    float64       `json:"heading_structure_score"`    // 0-100
	SEORequirementsScore     float64       `json:"seo_requirements_score"`     // 0-100
	GenerationTimeSeconds    float64       `json:"generation_time_seconds"`
	Pass                     bool          `json:"pass"`
	Failures                 []string      `json:"failures,omitempty"`
	Details                  ReportDetails `json:"details"`
	EvaluatedAt              time.Time     `json:"evaluated_at"`
}
