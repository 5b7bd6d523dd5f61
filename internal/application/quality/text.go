// Package quality 实现文章质量评估与综合评分
package quality

import (
	"regexp"
	"strings"
)

var (
	headingMarkerRe = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	linkRe          = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	inlineMarkupRe  = regexp.MustCompile("[*_`]")
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	headingLineRe   = regexp.MustCompile(`(?m)^(#{1,6})\s+(.*)$`)
)

// stripMarkdown 去掉标题标记、链接语法和行内标记，保留可读文本
func stripMarkdown(text string) string {
	text = headingMarkerRe.ReplaceAllString(text, "")
	text = linkRe.ReplaceAllString(text, "$1")
	text = inlineMarkupRe.ReplaceAllString(text, "")
	return text
}

// countWords 按空白分隔统计词数
func countWords(text string) int {
	return len(strings.Fields(text))
}

// countSentences 按句末标点统计句数
func countSentences(text string) int {
	parts := sentenceSplitRe.Split(text, -1)
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

// countOccurrences 统计关键词短语出现次数，整词匹配且不区分大小写
func countOccurrences(text, keyword string) int {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return 0
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	if err != nil {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

// heading 正文中的一个标题
type heading struct {
	Level int
	Text  string
}

// extractHeadings 按出现顺序提取 Markdown 标题
func extractHeadings(body string) []heading {
	matches := headingLineRe.FindAllStringSubmatch(body, -1)
	headings := make([]heading, 0, len(matches))
	for _, m := range matches {
		headings = append(headings, heading{
			Level: len(m[1]),
			Text:  strings.TrimSpace(m[2]),
		})
	}
	return headings
}

// containsKeywordVariant 检查标题是否包含关键词或其近似变体。
// 完整短语命中即通过；否则短语中任一长度大于 3 的词命中也算变体。
func containsKeywordVariant(text, keyword string) bool {
	low := strings.ToLower(text)
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return false
	}
	if strings.Contains(low, kw) {
		return true
	}
	for _, part := range strings.Fields(kw) {
		if len(part) > 3 && strings.Contains(low, part) {
			return true
		}
	}
	return false
}
