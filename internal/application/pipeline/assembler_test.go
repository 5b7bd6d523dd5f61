package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-factory-api/internal/domain/entity"
)

func assembledState(introText string) *GenerationState {
	req := testRequest()
	outline := &entity.Outline{Sections: []entity.SectionSpec{
		{Heading: "Introduction", Purpose: entity.SectionPurposeIntro},
		{Heading: "Motor Types", Purpose: entity.SectionPurposeBody},
		{Heading: "Battery Range", Purpose: entity.SectionPurposeBody},
		{Heading: "Conclusion", Purpose: entity.SectionPurposeConclusion},
		{Heading: "Call to Action", Purpose: entity.SectionPurposeCTA},
	}}
	state := NewGenerationState(req, outline)
	state.Append(outline.Sections[0], introText)
	state.Append(outline.Sections[1], "Motors vary widely in power.")
	state.Append(outline.Sections[2], "## Battery Range\n\nRange depends on capacity.")
	state.Append(outline.Sections[3], "To sum up, choose carefully.")
	state.Append(outline.Sections[4], "Try one today.")
	return state
}

func TestAssemblePreservesOrder(t *testing.T) {
	assembler := NewArticleAssembler()
	state := assembledState("An electric bike changes commuting.")

	article, err := assembler.Assemble(state, "", "")
	require.NoError(t, err)

	body := article.BodyMarkdown
	intro := strings.Index(body, "changes commuting")
	motor := strings.Index(body, "Motors vary")
	battery := strings.Index(body, "Range depends")
	conclusion := strings.Index(body, "To sum up")
	cta := strings.Index(body, "Try one today")

	require.NotEqual(t, -1, intro)
	assert.Less(t, intro, motor)
	assert.Less(t, motor, battery)
	assert.Less(t, battery, conclusion)
	assert.Less(t, conclusion, cta)
}

func TestAssembleHeadingPlacement(t *testing.T) {
	assembler := NewArticleAssembler()
	state := assembledState("An electric bike changes commuting.")

	article, err := assembler.Assemble(state, "", "")
	require.NoError(t, err)

	body := article.BodyMarkdown
	assert.True(t, strings.HasPrefix(body, "# electric bikes"))
	// 缺少标题的正文段落被补上，已带标题的不重复
	assert.Contains(t, body, "## Motor Types")
	assert.Equal(t, 1, strings.Count(body, "## Battery Range"))
	assert.Contains(t, body, "## Conclusion")
	// CTA 用分隔线而不是标题
	assert.Contains(t, body, "---")
	assert.Equal(t, 2, article.SectionCount)
}

func TestAssemblePrependsKeywordWhenMissing(t *testing.T) {
	assembler := NewArticleAssembler()
	// 标题和导语都不含关键词
	req := &entity.GenerationRequest{
		Topic:           "city commuting options",
		TargetKeyword:   "electric bike",
		TargetWordCount: 1000,
		ContentType:     entity.ContentTypeBlogPost,
	}
	outline := &entity.Outline{Sections: []entity.SectionSpec{
		{Heading: "Introduction", Purpose: entity.SectionPurposeIntro},
		{Heading: "Daily Costs", Purpose: entity.SectionPurposeBody},
		{Heading: "Conclusion", Purpose: entity.SectionPurposeConclusion},
	}}
	state := NewGenerationState(req, outline)
	state.Append(outline.Sections[0], "Commuting habits are changing fast across cities.")
	state.Append(outline.Sections[1], "Costs vary by mode of transport.")
	state.Append(outline.Sections[2], "Choose what fits your routine.")

	article, err := assembler.Assemble(state, "", "")
	require.NoError(t, err)

	words := strings.Fields(article.BodyMarkdown)
	if len(words) > 100 {
		words = words[:100]
	}
	window := strings.ToLower(strings.Join(words, " "))
	assert.Contains(t, window, "electric bike")
	assert.Contains(t, article.BodyMarkdown, "When it comes to electric bike,")
}

func TestAssembleCollapsesBlankLines(t *testing.T) {
	assembler := NewArticleAssembler()
	state := assembledState("An electric bike changes commuting.\n\n\n\nExtra spacing here.")

	article, err := assembler.Assemble(state, "", "")
	require.NoError(t, err)
	assert.NotContains(t, article.BodyMarkdown, "\n\n\n")
}

func TestAssembleFailsOnEmptySections(t *testing.T) {
	assembler := NewArticleAssembler()
	state := NewGenerationState(testRequest(), &entity.Outline{})

	_, err := assembler.Assemble(state, "", "")
	assert.Error(t, err)
}

func TestAssembleWordCount(t *testing.T) {
	assembler := NewArticleAssembler()
	state := assembledState("An electric bike changes commuting.")

	article, err := assembler.Assemble(state, "", "")
	require.NoError(t, err)
	assert.Equal(t, len(strings.Fields(article.BodyMarkdown)), article.WordCount)
	assert.Greater(t, article.WordCount, 0)
}

func TestBuildMetaDescription(t *testing.T) {
	intro := "An electric bike changes how people commute. It saves money and time."

	// 草稿可用：清洗后保留
	meta := buildMetaDescription(`Meta description: "Electric bike buying advice for commuters who want to save money."`, intro, "electric bike")
	assert.Contains(t, meta, "Electric bike buying advice")
	assert.NotContains(t, meta, `"`)
	assert.NotContains(t, meta, "Meta description:")
	assert.LessOrEqual(t, len(meta), 200)

	// 草稿为空：退化为导语截取
	meta = buildMetaDescription("", intro, "electric bike")
	assert.Contains(t, strings.ToLower(meta), "electric bike")
	assert.GreaterOrEqual(t, len(meta), 120)

	// 关键词缺失时优先保关键词
	meta = buildMetaDescription("A summary without the phrase anywhere in it at all.", intro, "electric bike")
	assert.True(t, strings.HasPrefix(strings.ToLower(meta), "electric bike"))

	// 超长草稿按词边界截断到软上限以内
	long := strings.Repeat("electric bike advice keeps going on and on ", 10)
	meta = buildMetaDescription(long, intro, "electric bike")
	assert.LessOrEqual(t, len(meta), 160)
	assert.True(t, strings.HasSuffix(meta, "..."))
}

func TestParseMetaKeywords(t *testing.T) {
	got := parseMetaKeywords("electric bike, e-bike commuting, battery range, motor power, bike maintenance, charging tips", "electric bike", "electric bikes")
	assert.GreaterOrEqual(t, len(got), 5)
	assert.LessOrEqual(t, len(got), 10)
	assert.Equal(t, "electric bike", got[0])

	// 去重不区分大小写
	got = parseMetaKeywords("Electric Bike, electric bike, ELECTRIC BIKE", "electric bike", "electric bikes")
	count := 0
	for _, k := range got {
		if strings.EqualFold(k, "electric bike") {
			count++
		}
	}
	assert.Equal(t, 1, count)

	// 草稿为空时用派生词补足到至少 5 个
	got = parseMetaKeywords("", "electric bike", "electric bikes")
	assert.GreaterOrEqual(t, len(got), 5)
}
