package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"content-factory-api/internal/domain/entity"
)

const (
	// meta description 长度控制：软上限 160，硬上限 200，短于 120 时补齐
	metaSoftLimit = 160
	metaHardLimit = 200
	metaMinLength = 120

	// 关键词必须出现在正文前 100 词内
	keywordWindowWords = 100
)

var (
	blankLinesRe    = regexp.MustCompile(`\n{3,}`)
	metaPrefixRe    = regexp.MustCompile(`(?i)^\s*(meta\s*description|description)\s*[:：]\s*`)
	metaMarkupRe    = regexp.MustCompile("[#*_`]+")
	keywordSplitRe  = regexp.MustCompile(`[,\n;]+`)
	keywordPrefixRe = regexp.MustCompile(`^\s*(?:\d+[.)]\s*|[-*•]\s*)+`)
)

// metaPadding 过短 meta description 的补齐文案
const metaPadding = " Discover practical guidance, proven tips, and clear next steps inside."

// ArticleAssembler 将各阶段输出拼装为最终文章并做 SEO 后处理。
// 除空段落列表外不会失败，meta 草稿缺失时退化为截取导语。
type ArticleAssembler struct{}

// NewArticleAssembler 创建文章组装器
func NewArticleAssembler() *ArticleAssembler {
	return &ArticleAssembler{}
}

// Assemble 组装文章。
// metaDraft 与 keywordsDraft 是模型生成的候选，允许为空。
func (a *ArticleAssembler) Assemble(state *GenerationState, metaDraft, keywordsDraft string) (*entity.Article, error) {
	if state == nil || len(state.Sections) == 0 {
		return nil, fmt.Errorf("no generated sections to assemble")
	}

	req := state.Request
	keyword := req.TargetKeyword

	body := buildBody(req.Topic, state.Sections)

	// 关键词必须出现在前 100 词内，缺失时给导语加一个关键词引子
	if !keywordInFirstWords(body, keyword, keywordWindowWords) {
		patched := make([]GeneratedSection, len(state.Sections))
		copy(patched, state.Sections)
		for i := range patched {
			if patched[i].Spec.Purpose == entity.SectionPurposeIntro {
				patched[i].Text = prependKeywordClause(patched[i].Text, keyword)
				break
			}
		}
		body = buildBody(req.Topic, patched)
	}

	intro := state.SectionText(entity.SectionPurposeIntro)
	meta := buildMetaDescription(metaDraft, intro, keyword)
	metaKeywords := parseMetaKeywords(keywordsDraft, keyword, req.Topic)

	return &entity.Article{
		Title:           req.Topic,
		MetaDescription: meta,
		MetaKeywords:    metaKeywords,
		BodyMarkdown:    body,
		WordCount:       len(strings.Fields(body)),
		SectionCount:    bodySectionCount(state.Sections),
	}, nil
}

// buildBody 按大纲顺序拼接，正文段落带标题，导语与 CTA 不带
func buildBody(title string, sections []GeneratedSection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", strings.TrimSpace(title))

	for _, sec := range sections {
		text := strings.TrimSpace(sec.Text)
		if text == "" {
			continue
		}
		switch sec.Spec.Purpose {
		case entity.SectionPurposeIntro:
			b.WriteString(text)
		case entity.SectionPurposeBody:
			b.WriteString(ensureHeading(text, sec.Spec.Heading))
		case entity.SectionPurposeConclusion:
			b.WriteString(ensureHeading(text, "Conclusion"))
		case entity.SectionPurposeCTA:
			b.WriteString("---\n\n")
			b.WriteString(text)
		}
		b.WriteString("\n\n")
	}

	body := strings.TrimSpace(b.String())
	return blankLinesRe.ReplaceAllString(body, "\n\n")
}

// ensureHeading 段落缺少二级标题时补上
func ensureHeading(text, heading string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "## ") {
		return trimmed
	}
	return fmt.Sprintf("## %s\n\n%s", heading, trimmed)
}

// bodySectionCount 正文段落数量
func bodySectionCount(sections []GeneratedSection) int {
	n := 0
	for _, sec := range sections {
		if sec.Spec.Purpose == entity.SectionPurposeBody {
			n++
		}
	}
	return n
}

// keywordInFirstWords 检查关键词（不区分大小写的短语匹配）是否出现在前 n 词内
func keywordInFirstWords(body, keyword string, n int) bool {
	words := strings.Fields(body)
	if len(words) > n {
		words = words[:n]
	}
	window := strings.ToLower(strings.Join(words, " "))
	return strings.Contains(window, strings.ToLower(strings.TrimSpace(keyword)))
}

// prependKeywordClause 在导语首句前加一个带关键词的引子
func prependKeywordClause(intro, keyword string) string {
	intro = strings.TrimSpace(intro)
	if intro == "" {
		return fmt.Sprintf("When it comes to %s, the details matter.", keyword)
	}
	return fmt.Sprintf("When it comes to %s, %s", keyword, lowerFirst(intro))
}

func lowerFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// buildMetaDescription 清洗模型生成的 meta 草稿：
// 保证关键词出现，短于下限补齐，超出软上限按词边界截断，硬上限 200。
func buildMetaDescription(draft, intro, keyword string) string {
	meta := cleanMetaText(draft)
	if meta == "" {
		meta = cleanMetaText(firstSentences(intro, 2))
	}
	if meta == "" {
		meta = fmt.Sprintf("Everything you need to know about %s.", keyword)
	}

	// 关键词优先于长度上限：截断不允许丢掉关键词，所以放在句首
	if !strings.Contains(strings.ToLower(meta), strings.ToLower(keyword)) {
		meta = fmt.Sprintf("%s: %s", keyword, meta)
	}

	if len(meta) < metaMinLength {
		meta += metaPadding
	}
	if len(meta) > metaSoftLimit {
		meta = truncateAtWordBoundary(meta, metaSoftLimit-3) + "..."
	}
	if len(meta) > metaHardLimit {
		meta = truncateAtWordBoundary(meta, metaHardLimit-3) + "..."
	}
	return meta
}

// cleanMetaText 去掉模型输出里的前缀、引号和标记符号
func cleanMetaText(text string) string {
	text = strings.TrimSpace(text)
	text = metaPrefixRe.ReplaceAllString(text, "")
	text = metaMarkupRe.ReplaceAllString(text, "")
	text = strings.Trim(text, `"'“”`)
	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(text)
}

// firstSentences 取文本前 n 句
func firstSentences(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	count := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			count++
			if count >= n {
				return text[:i+1]
			}
		}
	}
	return text
}

// truncateAtWordBoundary 在不超过 limit 的最后一个词边界截断
func truncateAtWordBoundary(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,;:")
}

// parseMetaKeywords 解析逗号分隔的关键词列表，保证目标关键词在列且总数在 5-10 之间
func parseMetaKeywords(draft, keyword, topic string) []string {
	seen := make(map[string]bool)
	keywords := make([]string, 0, 10)

	add := func(k string) {
		k = keywordPrefixRe.ReplaceAllString(strings.TrimSpace(k), "")
		k = strings.Trim(k, `"'`)
		k = strings.TrimSpace(k)
		if k == "" {
			return
		}
		low := strings.ToLower(k)
		if seen[low] {
			return
		}
		seen[low] = true
		keywords = append(keywords, k)
	}

	add(keyword)
	for _, part := range keywordSplitRe.Split(draft, -1) {
		if len(keywords) >= 10 {
			break
		}
		add(part)
	}

	// 模型给得不够时用主题派生词补足
	fallbacks := []string{
		topic,
		keyword + " guide",
		keyword + " tips",
		"best " + keyword,
		"how to choose " + keyword,
	}
	for _, f := range fallbacks {
		if len(keywords) >= 5 {
			break
		}
		add(f)
	}

	if len(keywords) > 10 {
		keywords = keywords[:10]
	}
	return keywords
}
