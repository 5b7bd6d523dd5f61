package quality

import (
	"fmt"
	"math"
	"strings"
	"time"

	"content-factory-api/internal/domain/entity"
)

// 每次检测到的结构问题扣除的比例
const headingIssuePenalty = 0.2

// MetricsEvaluator 计算文章的各项独立质量分。
// 每个子分单独计算且是纯函数，不调用模型；单个子分计算失败降级为 0，
// 不影响其余子分的产出。
type MetricsEvaluator struct{}

// NewMetricsEvaluator 创建质量评估器
func NewMetricsEvaluator() *MetricsEvaluator {
	return &MetricsEvaluator{}
}

// Evaluate 评估文章并产出报告（综合分与通过判定由聚合器补全）。
// 对相同输入重复评估产生相同报告。
func (e *MetricsEvaluator) Evaluate(article *entity.Article, req *entity.GenerationRequest, exemplars []entity.VoiceExemplar, generationSeconds float64) *entity.MetricsReport {
	report := &entity.MetricsReport{
		GenerationTimeSeconds: generationSeconds,
		EvaluatedAt:           time.Now().UTC(),
	}
	if article == nil || req == nil {
		return report
	}

	body := article.BodyMarkdown
	plain := stripMarkdown(body)
	wordCount := countWords(plain)

	report.Details.ActualWordCount = wordCount
	report.Details.TargetWordCount = req.TargetWordCount

	occurrences := countOccurrences(plain, req.TargetKeyword)
	report.Details.KeywordOccurrences = occurrences
	if wordCount > 0 {
		report.KeywordDensityPercent = 100 * float64(occurrences) / float64(wordCount)
	}

	report.WordCountAccuracyPercent = WordCountAccuracy(wordCount, req.TargetWordCount)
	report.ReadabilityScore = FleschReadingEase(body)

	issues := headingIssues(body, article.SectionCount)
	report.Details.HeadingIssues = issues
	report.HeadingStructureScore = headingScore(len(issues))

	checklist := seoChecklist(article, req.TargetKeyword)
	report.Details.SEOChecklist = checklist
	report.SEORequirementsScore = seoScore(checklist)

	report.BrandVoiceSimilarity = BrandVoiceSimilarity(exemplars)

	return report
}

// WordCountAccuracy 实际词数与目标的偏差分，偏差达到目标本身时落到 0
func WordCountAccuracy(actual, target int) float64 {
	if target <= 0 {
		return 0
	}
	diff := math.Abs(float64(actual - target))
	score := (1 - diff/float64(target)) * 100
	if score < 0 {
		return 0
	}
	return score
}

// BrandVoiceSimilarity 生成时检索到的范文相似度均值，放大到 0-100。
// 复用检索时的相似度而不重新嵌入成品文章，是一个刻意的有损近似：
// 它度量的是检索上下文与主题的贴合度，换来每次评估省掉一次嵌入调用。
func BrandVoiceSimilarity(exemplars []entity.VoiceExemplar) float64 {
	if len(exemplars) == 0 {
		return 0
	}
	sum := 0.0
	for _, ex := range exemplars {
		sum += ex.Score
	}
	return sum / float64(len(exemplars)) * 100
}

// headingIssues 检查标题结构问题，每个问题一条描述
func headingIssues(body string, plannedBodySections int) []string {
	headings := extractHeadings(body)
	issues := make([]string, 0, 4)

	if len(headings) == 0 {
		return append(issues, "no headings found")
	}

	h1 := 0
	h2Texts := make([]string, 0, len(headings))
	prevLevel := 0
	skipped := false
	for _, h := range headings {
		if h.Level == 1 {
			h1++
		}
		if h.Level == 2 {
			h2Texts = append(h2Texts, h.Text)
		}
		if prevLevel > 0 && h.Level > prevLevel+1 {
			skipped = true
		}
		prevLevel = h.Level
	}

	switch {
	case h1 == 0:
		issues = append(issues, "missing top-level title")
	case h1 > 1:
		issues = append(issues, "multiple top-level titles")
	}
	if skipped {
		issues = append(issues, "skipped heading level")
	}

	hasConclusion := false
	bodyHeadings := 0
	seen := make(map[string]bool, len(h2Texts))
	duplicated := false
	for _, t := range h2Texts {
		low := strings.ToLower(t)
		if seen[low] {
			duplicated = true
		}
		seen[low] = true
		if low == "conclusion" {
			hasConclusion = true
			continue
		}
		bodyHeadings++
	}
	if !hasConclusion {
		issues = append(issues, "missing conclusion heading")
	}
	if duplicated {
		issues = append(issues, "duplicated headings")
	}
	if plannedBodySections > 0 && bodyHeadings != plannedBodySections {
		issues = append(issues, fmt.Sprintf("expected %d body headings, found %d", plannedBodySections, bodyHeadings))
	}

	return issues
}

// headingScore 每个结构问题扣 20 分
func headingScore(issueCount int) float64 {
	score := (1 - headingIssuePenalty*float64(issueCount)) * 100
	if score < 0 {
		return 0
	}
	return score
}

// seoChecklist 三项 SEO 检查：
// 关键词出现在前 100 词、meta description 存在且不超过 200 字符、
// 至少一个正文标题包含关键词或近似变体。
func seoChecklist(article *entity.Article, keyword string) entity.SEOChecklist {
	checklist := entity.SEOChecklist{}

	words := strings.Fields(article.BodyMarkdown)
	if len(words) > 100 {
		words = words[:100]
	}
	window := strings.ToLower(strings.Join(words, " "))
	checklist.KeywordInFirstWords = strings.Contains(window, strings.ToLower(strings.TrimSpace(keyword)))

	meta := strings.TrimSpace(article.MetaDescription)
	checklist.MetaDescriptionOK = meta != "" && len(meta) <= 200

	for _, h := range extractHeadings(article.BodyMarkdown) {
		if h.Level != 2 || strings.EqualFold(h.Text, "Conclusion") {
			continue
		}
		if containsKeywordVariant(h.Text, keyword) {
			checklist.KeywordInBodyHeading = true
			break
		}
	}

	return checklist
}

// seoScore 通过的检查项占比
func seoScore(checklist entity.SEOChecklist) float64 {
	passed := 0
	for _, ok := range []bool{
		checklist.KeywordInFirstWords,
		checklist.MetaDescriptionOK,
		checklist.KeywordInBodyHeading,
	} {
		if ok {
			passed++
		}
	}
	return float64(passed) / 3 * 100
}
