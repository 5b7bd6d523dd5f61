package quality

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"content-factory-api/internal/config"
	"content-factory-api/internal/domain/entity"
)

func testQualityConfig() *config.QualityConfig {
	return &config.QualityConfig{
		Weights: config.QualityWeights{
			KeywordDensity:    15,
			WordCountAccuracy: 15,
			Readability:       20,
			HeadingStructure:  20,
			SEORequirements:   20,
			BrandVoice:        10,
		},
		PassThreshold: 70,
		SubScoreFloor: 50,
		DensityMin:    1.0,
		DensityMax:    2.0,
	}
}

func TestAggregatePass(t *testing.T) {
	agg := NewMetricsAggregator(testQualityConfig())
	report := &entity.MetricsReport{
		KeywordDensityPercent:    1.5, // 落在理想区间，密度子分 100
		WordCountAccuracyPercent: 95,
		ReadabilityScore:         70,
		HeadingStructureScore:    100,
		SEORequirementsScore:     100,
		BrandVoiceSimilarity:     60,
	}

	agg.Aggregate(report)

	want := (100*15.0 + 95*15 + 70*20 + 100*20 + 100*20 + 60*10) / 100
	assert.InDelta(t, want, report.QualityScore, 0.001)
	assert.True(t, report.Pass)
	assert.Empty(t, report.Failures)
}

func TestAggregateFailsBelowThreshold(t *testing.T) {
	agg := NewMetricsAggregator(testQualityConfig())
	report := &entity.MetricsReport{
		KeywordDensityPercent:    0.1,
		WordCountAccuracyPercent: 40,
		ReadabilityScore:         30,
		HeadingStructureScore:    60,
		SEORequirementsScore:     66.7,
		BrandVoiceSimilarity:     0,
	}

	agg.Aggregate(report)

	assert.False(t, report.Pass)
	assert.NotEmpty(t, report.Failures)
}

func TestAggregateFloorOverridesHighAggregate(t *testing.T) {
	// 综合分达标但必选子分低于下限时仍判不通过
	agg := NewMetricsAggregator(testQualityConfig())
	report := &entity.MetricsReport{
		KeywordDensityPercent:    1.5,
		WordCountAccuracyPercent: 100,
		ReadabilityScore:         100,
		HeadingStructureScore:    40, // 低于下限 50
		SEORequirementsScore:     100,
		BrandVoiceSimilarity:     100,
	}

	agg.Aggregate(report)

	assert.GreaterOrEqual(t, report.QualityScore, 70.0)
	assert.False(t, report.Pass)
	assert.Len(t, report.Failures, 1)
}

func TestAggregateCommutative(t *testing.T) {
	// 综合分是纯加权和，子分赋值顺序不影响结果
	agg := NewMetricsAggregator(testQualityConfig())
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		scores := []float64{
			rng.Float64() * 100,
			rng.Float64() * 100,
			rng.Float64() * 100,
			rng.Float64() * 100,
			rng.Float64() * 100,
			rng.Float64() * 3,
		}

		a := &entity.MetricsReport{
			KeywordDensityPercent:    scores[5],
			WordCountAccuracyPercent: scores[0],
			ReadabilityScore:         scores[1],
			HeadingStructureScore:    scores[2],
			SEORequirementsScore:     scores[3],
			BrandVoiceSimilarity:     scores[4],
		}
		b := &entity.MetricsReport{
			BrandVoiceSimilarity:     scores[4],
			SEORequirementsScore:     scores[3],
			HeadingStructureScore:    scores[2],
			ReadabilityScore:         scores[1],
			WordCountAccuracyPercent: scores[0],
			KeywordDensityPercent:    scores[5],
		}

		agg.Aggregate(a)
		agg.Aggregate(b)
		assert.Equal(t, a.QualityScore, b.QualityScore)
		assert.Equal(t, a.Pass, b.Pass)
	}
}

func TestDensityScore(t *testing.T) {
	agg := NewMetricsAggregator(testQualityConfig())

	assert.Equal(t, 100.0, agg.DensityScore(1.0))
	assert.Equal(t, 100.0, agg.DensityScore(1.5))
	assert.Equal(t, 100.0, agg.DensityScore(2.0))

	assert.InDelta(t, 50.0, agg.DensityScore(0.5), 0.001)
	assert.Equal(t, 0.0, agg.DensityScore(0))

	// 超出上限按幅度衰减
	assert.InDelta(t, 50.0, agg.DensityScore(3.0), 0.001)
	assert.Equal(t, 0.0, agg.DensityScore(4.5))
}
