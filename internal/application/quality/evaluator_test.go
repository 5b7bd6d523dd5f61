package quality

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-factory-api/internal/domain/entity"
)

// buildArticle 构造一篇结构完整、可控词数与关键词出现次数的文章
func buildArticle(totalWords, keywordOccurrences int, keyword string) *entity.Article {
	filler := "word"
	var b strings.Builder
	b.WriteString("# Test Article\n\n")

	keywordWords := len(strings.Fields(keyword)) * keywordOccurrences
	remaining := totalWords - keywordWords

	// 先写关键词，保证落在前 100 词内
	for i := 0; i < keywordOccurrences; i++ {
		b.WriteString(keyword)
		b.WriteString(". ")
	}
	for i := 0; i < remaining; i++ {
		b.WriteString(filler)
		b.WriteString(" ")
	}
	// 正文标题只含关键词的近似变体，避免干扰密度统计
	b.WriteString("\n\n## Choosing the right e-bike\n\ncontent here.\n\n## Conclusion\n\nall done.")

	body := b.String()
	return &entity.Article{
		Title:           "Test Article",
		MetaDescription: keyword + ": a useful summary of the article for search engines.",
		BodyMarkdown:    body,
		WordCount:       len(strings.Fields(body)),
		SectionCount:    1,
	}
}

func TestWordCountAccuracy(t *testing.T) {
	assert.Equal(t, 100.0, WordCountAccuracy(800, 800))

	// 偏差越大分数严格越低
	prev := 100.0
	for _, actual := range []int{850, 900, 1000, 1200, 1500} {
		score := WordCountAccuracy(actual, 800)
		assert.Less(t, score, prev, "accuracy should strictly decrease for actual=%d", actual)
		prev = score
	}

	// 偏差达到目标本身时落到 0
	assert.Equal(t, 0.0, WordCountAccuracy(1600, 800))
	assert.Equal(t, 0.0, WordCountAccuracy(0, 800))
	assert.Equal(t, 0.0, WordCountAccuracy(2000, 800))
}

func TestEvaluateKeywordDensityScenario(t *testing.T) {
	// 800 词文章，关键词恰好出现 4 次 -> 密度约 0.5%
	evaluator := NewMetricsEvaluator()
	req := &entity.GenerationRequest{
		Topic:           "electric bikes",
		TargetKeyword:   "electric bike",
		TargetWordCount: 800,
		ContentType:     entity.ContentTypeGuide,
	}
	article := buildArticle(800, 4, "electric bike")

	report := evaluator.Evaluate(article, req, nil, 12.5)

	assert.Equal(t, 4, report.Details.KeywordOccurrences)
	assert.InDelta(t, 0.5, report.KeywordDensityPercent, 0.05)
	assert.InDelta(t, WordCountAccuracy(report.Details.ActualWordCount, 800), report.WordCountAccuracyPercent, 0.001)
	assert.Equal(t, 12.5, report.GenerationTimeSeconds)
}

func TestEvaluateIdempotent(t *testing.T) {
	evaluator := NewMetricsEvaluator()
	req := &entity.GenerationRequest{
		Topic:           "electric bikes",
		TargetKeyword:   "electric bike",
		TargetWordCount: 500,
		ContentType:     entity.ContentTypeBlogPost,
	}
	exemplars := []entity.VoiceExemplar{{Score: 0.8}, {Score: 0.6}}
	article := buildArticle(500, 3, "electric bike")

	first := evaluator.Evaluate(article, req, exemplars, 7.0)
	second := evaluator.Evaluate(article, req, exemplars, 7.0)

	// 除评估时间戳外完全一致
	second.EvaluatedAt = first.EvaluatedAt
	assert.Equal(t, first, second)
}

func TestEvaluateMissingMetaDescription(t *testing.T) {
	evaluator := NewMetricsEvaluator()
	req := &entity.GenerationRequest{
		Topic:           "electric bikes",
		TargetKeyword:   "electric bike",
		TargetWordCount: 500,
		ContentType:     entity.ContentTypeBlogPost,
	}
	article := buildArticle(500, 3, "electric bike")
	article.MetaDescription = ""

	report := evaluator.Evaluate(article, req, nil, 1.0)

	// 清单中恰好一项未通过
	checklist := report.Details.SEOChecklist
	assert.True(t, checklist.KeywordInFirstWords)
	assert.False(t, checklist.MetaDescriptionOK)
	assert.True(t, checklist.KeywordInBodyHeading)
	assert.InDelta(t, 100.0*2/3, report.SEORequirementsScore, 0.001)
}

func TestEvaluateDegeneratesToZero(t *testing.T) {
	evaluator := NewMetricsEvaluator()
	req := &entity.GenerationRequest{
		Topic:           "topic",
		TargetKeyword:   "keyword",
		TargetWordCount: 500,
	}
	article := &entity.Article{BodyMarkdown: ""}

	report := evaluator.Evaluate(article, req, nil, 0)

	assert.Equal(t, 0.0, report.KeywordDensityPercent)
	assert.Equal(t, 0.0, report.ReadabilityScore)
	assert.Equal(t, 0.0, report.WordCountAccuracyPercent)
	assert.Equal(t, 0.0, report.BrandVoiceSimilarity)
	assert.NotEmpty(t, report.Details.HeadingIssues)
}

func TestBrandVoiceSimilarity(t *testing.T) {
	assert.Equal(t, 0.0, BrandVoiceSimilarity(nil))

	exemplars := []entity.VoiceExemplar{{Score: 0.9}, {Score: 0.7}, {Score: 0.5}}
	assert.InDelta(t, 70.0, BrandVoiceSimilarity(exemplars), 0.001)
}

func TestHeadingIssues(t *testing.T) {
	good := "# Title\n\nintro text.\n\n## First\n\ntext.\n\n## Second\n\ntext.\n\n## Conclusion\n\ndone."
	require.Empty(t, headingIssues(good, 2))

	assert.Contains(t, headingIssues("plain text without any structure", 2), "no headings found")

	noH1 := "## First\n\ntext.\n\n## Conclusion\n\ndone."
	assert.Contains(t, headingIssues(noH1, 1), "missing top-level title")

	twoH1 := "# One\n\n# Two\n\n## First\n\ntext.\n\n## Conclusion\n\ndone."
	assert.Contains(t, headingIssues(twoH1, 1), "multiple top-level titles")

	dup := "# Title\n\n## Same\n\ntext.\n\n## Same\n\ntext.\n\n## Conclusion\n\ndone."
	assert.Contains(t, headingIssues(dup, 2), "duplicated headings")

	mismatch := "# Title\n\n## Only\n\ntext.\n\n## Conclusion\n\ndone."
	assert.Contains(t, headingIssues(mismatch, 3), fmt.Sprintf("expected %d body headings, found %d", 3, 1))
}

func TestCountOccurrencesWholePhrase(t *testing.T) {
	text := "An electric bike is fun. Electric bikes differ. ELECTRIC BIKE again. bikeelectric bike nope?"
	// 整词短语匹配：大小写不敏感，"bikeelectric bike" 不算
	assert.Equal(t, 2, countOccurrences(text, "electric bike"))
}
