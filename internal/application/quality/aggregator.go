package quality

import (
	"fmt"

	"content-factory-api/internal/config"
	"content-factory-api/internal/domain/entity"
)

// MetricsAggregator 把各项子分合并为综合分与通过判定。
// 综合分是纯加权和，对加项顺序不敏感；单项必选子分低于下限时
// 即使综合分达标也判不通过，避免单一强项掩盖结构性缺陷。
type MetricsAggregator struct {
	cfg *config.QualityConfig
}

// NewMetricsAggregator 创建评分聚合器
func NewMetricsAggregator(cfg *config.QualityConfig) *MetricsAggregator {
	return &MetricsAggregator{cfg: cfg}
}

// Aggregate 补全报告的综合分、通过判定与失败原因
func (a *MetricsAggregator) Aggregate(report *entity.MetricsReport) {
	if report == nil {
		return
	}

	w := a.cfg.Weights
	densityScore := a.DensityScore(report.KeywordDensityPercent)

	total := densityScore*w.KeywordDensity +
		report.WordCountAccuracyPercent*w.WordCountAccuracy +
		report.ReadabilityScore*w.Readability +
		report.HeadingStructureScore*w.HeadingStructure +
		report.SEORequirementsScore*w.SEORequirements +
		report.BrandVoiceSimilarity*w.BrandVoice

	weightSum := w.KeywordDensity + w.WordCountAccuracy + w.Readability +
		w.HeadingStructure + w.SEORequirements + w.BrandVoice
	if weightSum <= 0 {
		weightSum = 100
	}
	report.QualityScore = total / weightSum

	failures := make([]string, 0, 3)
	if report.QualityScore < a.cfg.PassThreshold {
		failures = append(failures, fmt.Sprintf("quality score %.1f below threshold %.0f", report.QualityScore, a.cfg.PassThreshold))
	}
	if report.SEORequirementsScore < a.cfg.SubScoreFloor {
		failures = append(failures, fmt.Sprintf("seo requirements score %.1f below floor %.0f", report.SEORequirementsScore, a.cfg.SubScoreFloor))
	}
	if report.HeadingStructureScore < a.cfg.SubScoreFloor {
		failures = append(failures, fmt.Sprintf("heading structure score %.1f below floor %.0f", report.HeadingStructureScore, a.cfg.SubScoreFloor))
	}

	report.Failures = failures
	report.Pass = len(failures) == 0
}

// DensityScore 把关键词密度百分比映射到 0-100 子分。
// 落在 [DensityMin, DensityMax] 区间内得满分，偏低按比例衰减，
// 偏高按超出幅度衰减到 0。
func (a *MetricsAggregator) DensityScore(density float64) float64 {
	minD := a.cfg.DensityMin
	maxD := a.cfg.DensityMax
	if minD <= 0 {
		minD = 1.0
	}
	if maxD <= minD {
		maxD = minD * 2
	}

	switch {
	case density < 0:
		return 0
	case density < minD:
		return 100 * density / minD
	case density <= maxD:
		return 100
	default:
		score := 100 * (1 - (density-maxD)/maxD)
		if score < 0 {
			return 0
		}
		return score
	}
}
