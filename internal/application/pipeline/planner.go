package pipeline

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"content-factory-api/internal/config"
	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/domain/service"
	"content-factory-api/internal/workflow/prompt"
	"content-factory-api/pkg/logger"
)

// 段落标题中允许的最小长度（rune 数），更短的行视为噪声
const minHeadingRunes = 5

var (
	headingNumberingRe = regexp.MustCompile(`^\s*(?:\d+[.)、]?\s*|[-*•]\s*)+`)
	headingMarkupRe    = regexp.MustCompile("[#*_`\"]+")
)

// 模型返回的大纲不足时用于补齐的通用标题
var fallbackHeadings = []string{
	"Key Considerations",
	"Practical Tips",
	"Common Mistakes to Avoid",
	"Expert Recommendations",
	"Frequently Asked Questions",
}

// SectionPlanner 为一次生成运行规划大纲。
// 规划结果对相同 content_type 是确定的阶段模板，正文标题由模型给出，
// 数量不符时截断或用通用标题补齐，这是可恢复情况而不是失败。
type SectionPlanner struct {
	llm     LanguageModel
	prompts *prompt.Registry
	cfg     *config.PipelineConfig
}

// NewSectionPlanner 创建大纲规划器
func NewSectionPlanner(llmClient LanguageModel, prompts *prompt.Registry, cfg *config.PipelineConfig) *SectionPlanner {
	return &SectionPlanner{
		llm:     llmClient,
		prompts: prompts,
		cfg:     cfg,
	}
}

// Plan 规划大纲。仅在请求不满足前置条件时失败。
func (p *SectionPlanner) Plan(ctx context.Context, req *entity.GenerationRequest) (*entity.Outline, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	count := p.sectionCount(req.TargetWordCount)
	headings := p.requestHeadings(ctx, req, count)
	headings = normalizeHeadings(headings, count, req.TargetKeyword)

	introWords := int(math.Round(float64(req.TargetWordCount) * p.cfg.IntroWordRatio))
	conclusionWords := int(math.Round(float64(req.TargetWordCount) * p.cfg.ConclusionWordRatio))
	bodyWords := req.TargetWordCount - introWords - conclusionWords
	if bodyWords < count {
		bodyWords = count
	}
	perSection := bodyWords / count
	bodyShare := (1 - p.cfg.IntroWordRatio - p.cfg.ConclusionWordRatio) / float64(count)

	sections := make([]entity.SectionSpec, 0, count+3)
	sections = append(sections, entity.SectionSpec{
		Heading:   "Introduction",
		Purpose:   entity.SectionPurposeIntro,
		WordShare: p.cfg.IntroWordRatio,
		Words:     introWords,
	})
	for i, h := range headings {
		words := perSection
		if i == count-1 {
			// 整除余数归入最后一个正文段落
			words = bodyWords - perSection*(count-1)
		}
		sections = append(sections, entity.SectionSpec{
			Heading:   h,
			Purpose:   entity.SectionPurposeBody,
			WordShare: bodyShare,
			Words:     words,
		})
	}
	sections = append(sections,
		entity.SectionSpec{
			Heading:   "Conclusion",
			Purpose:   entity.SectionPurposeConclusion,
			WordShare: p.cfg.ConclusionWordRatio,
			Words:     conclusionWords,
		},
		entity.SectionSpec{
			Heading: "Call to Action",
			Purpose: entity.SectionPurposeCTA,
		},
	)

	return &entity.Outline{Sections: sections}, nil
}

// sectionCount 正文段落数量随目标字数伸缩
func (p *SectionPlanner) sectionCount(targetWords int) int {
	count := int(math.Round(float64(targetWords) / float64(p.cfg.WordsPerSection)))
	if count < p.cfg.MinSections {
		count = p.cfg.MinSections
	}
	if count > p.cfg.MaxSections {
		count = p.cfg.MaxSections
	}
	return count
}

// requestHeadings 调用模型获取正文标题，失败时返回空列表由补齐逻辑兜底
func (p *SectionPlanner) requestHeadings(ctx context.Context, req *entity.GenerationRequest, count int) []string {
	ctx = service.WithWorkflow(ctx, "outline")

	tpl, err := p.prompts.ChatTemplate(prompt.PromptOutlineV1)
	if err != nil {
		logger.Warn(ctx, "outline prompt unavailable, using fallback headings", "error", err.Error())
		return nil
	}

	audience := req.TargetAudience
	if audience == "" {
		audience = "general readers"
	}

	msgs, err := tpl.Format(ctx, map[string]any{
		"section_count": count,
		"content_type":  string(req.ContentType),
		"topic":         req.Topic,
		"keyword":       req.TargetKeyword,
		"audience":      audience,
	})
	if err != nil {
		logger.Warn(ctx, "outline prompt format failed, using fallback headings", "error", err.Error())
		return nil
	}

	raw, err := p.llm.Complete(ctx, msgs, callOptions(p.cfg, stageKindOutline, 0))
	if err != nil {
		logger.Warn(ctx, "outline generation failed, using fallback headings", "error", err.Error())
		return nil
	}
	return parseOutline(raw)
}

// parseOutline 将模型输出逐行解析为标题列表
func parseOutline(raw string) []string {
	lines := strings.Split(raw, "\n")
	headings := make([]string, 0, len(lines))
	for _, line := range lines {
		h := headingNumberingRe.ReplaceAllString(line, "")
		h = headingMarkupRe.ReplaceAllString(h, "")
		h = strings.TrimSpace(h)
		if utf8.RuneCountInString(h) <= minHeadingRunes {
			continue
		}
		headings = append(headings, h)
	}
	return headings
}

// normalizeHeadings 截断超出数量的标题，不足时用通用标题补齐
func normalizeHeadings(headings []string, count int, keyword string) []string {
	if len(headings) > count {
		return headings[:count]
	}

	seen := make(map[string]bool, len(headings))
	for _, h := range headings {
		seen[strings.ToLower(h)] = true
	}

	for _, fallback := range fallbackHeadings {
		if len(headings) >= count {
			break
		}
		if seen[strings.ToLower(fallback)] {
			continue
		}
		headings = append(headings, fallback)
		seen[strings.ToLower(fallback)] = true
	}
	for i := 1; len(headings) < count; i++ {
		h := fmt.Sprintf("Additional Insights on %s", keyword)
		if i > 1 {
			h = fmt.Sprintf("%s (%d)", h, i)
		}
		headings = append(headings, h)
	}
	return headings
}
