package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/workflow/prompt"
)

func countPurpose(outline *entity.Outline, purpose entity.SectionPurpose) int {
	n := 0
	for _, s := range outline.Sections {
		if s.Purpose == purpose {
			n++
		}
	}
	return n
}

func TestPlanBlogPostStructure(t *testing.T) {
	model := &stubModel{script: []stubStep{{text: "1. Choosing a Motor\n2. Battery Range Basics\n3. Maintenance Essentials\n4. Budget and Value"}}}
	planner := NewSectionPlanner(model, prompt.NewRegistry(), testPipelineConfig())

	outline, err := planner.Plan(context.Background(), testRequest())
	require.NoError(t, err)

	// 1000 词 blog_post：正文 3-7 个，导语/结论/CTA 各一个
	body := countPurpose(outline, entity.SectionPurposeBody)
	assert.GreaterOrEqual(t, body, 3)
	assert.LessOrEqual(t, body, 7)
	assert.Equal(t, 1, countPurpose(outline, entity.SectionPurposeIntro))
	assert.Equal(t, 1, countPurpose(outline, entity.SectionPurposeConclusion))
	assert.Equal(t, 1, countPurpose(outline, entity.SectionPurposeCTA))

	// 顺序固定：导语在首，CTA 在尾
	assert.Equal(t, entity.SectionPurposeIntro, outline.Sections[0].Purpose)
	assert.Equal(t, entity.SectionPurposeCTA, outline.Sections[outline.Len()-1].Purpose)
}

func TestPlanSectionCountScalesWithWordCount(t *testing.T) {
	planner := NewSectionPlanner(&stubModel{}, prompt.NewRegistry(), testPipelineConfig())

	cases := map[int]int{
		300:  3, // round(300/250)=1，下限兜底
		1000: 4,
		1500: 6,
		5000: 7, // 上限封顶
	}
	for words, want := range cases {
		assert.Equal(t, want, planner.sectionCount(words), "target words %d", words)
	}
}

func TestPlanTruncatesExcessHeadings(t *testing.T) {
	model := &stubModel{script: []stubStep{{text: "1. First Heading Here\n2. Second Heading Here\n3. Third Heading Here\n4. Fourth Heading Here\n5. Fifth Heading Here\n6. Sixth Heading Here"}}}
	planner := NewSectionPlanner(model, prompt.NewRegistry(), testPipelineConfig())

	req := testRequest() // 1000 词 -> 4 个正文段落
	outline, err := planner.Plan(context.Background(), req)
	require.NoError(t, err)

	headings := outline.BodyHeadings()
	require.Len(t, headings, 4)
	assert.Equal(t, "First Heading Here", headings[0])
	assert.Equal(t, "Fourth Heading Here", headings[3])
}

func TestPlanPadsMissingHeadings(t *testing.T) {
	// 模型只给了一个有效标题，其余用通用标题补齐，属于可恢复情况
	model := &stubModel{script: []stubStep{{text: "Only One Real Heading\nno\n--"}}}
	planner := NewSectionPlanner(model, prompt.NewRegistry(), testPipelineConfig())

	outline, err := planner.Plan(context.Background(), testRequest())
	require.NoError(t, err)

	headings := outline.BodyHeadings()
	require.Len(t, headings, 4)
	assert.Equal(t, "Only One Real Heading", headings[0])
	assert.Contains(t, headings, "Key Considerations")
}

func TestPlanFallsBackWhenModelFails(t *testing.T) {
	model := &stubModel{script: []stubStep{{err: transientErr()}}}
	planner := NewSectionPlanner(model, prompt.NewRegistry(), testPipelineConfig())

	outline, err := planner.Plan(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Len(t, outline.BodyHeadings(), 4)
}

func TestPlanRejectsInvalidRequest(t *testing.T) {
	planner := NewSectionPlanner(&stubModel{}, prompt.NewRegistry(), testPipelineConfig())

	_, err := planner.Plan(context.Background(), &entity.GenerationRequest{
		Topic:           "",
		TargetKeyword:   "kw",
		TargetWordCount: 1000,
		ContentType:     entity.ContentTypeBlogPost,
	})
	assert.ErrorIs(t, err, entity.ErrEmptyTopic)

	_, err = planner.Plan(context.Background(), &entity.GenerationRequest{
		Topic:           "topic",
		TargetKeyword:   "kw",
		TargetWordCount: -5,
		ContentType:     entity.ContentTypeBlogPost,
	})
	assert.ErrorIs(t, err, entity.ErrInvalidWordCount)
}

func TestPlanWordBudget(t *testing.T) {
	model := &stubModel{script: []stubStep{{text: "1. Heading Number One\n2. Heading Number Two\n3. Heading Number Three\n4. Heading Number Four"}}}
	planner := NewSectionPlanner(model, prompt.NewRegistry(), testPipelineConfig())

	outline, err := planner.Plan(context.Background(), testRequest())
	require.NoError(t, err)

	var intro, body, conclusion int
	for _, s := range outline.Sections {
		switch s.Purpose {
		case entity.SectionPurposeIntro:
			intro = s.Words
		case entity.SectionPurposeBody:
			body += s.Words
		case entity.SectionPurposeConclusion:
			conclusion = s.Words
		}
	}

	assert.Equal(t, 120, intro)      // 1000 * 0.12
	assert.Equal(t, 100, conclusion) // 1000 * 0.10
	assert.Equal(t, 780, body)       // 剩余全部给正文
}

func TestParseOutlineStripsNoise(t *testing.T) {
	raw := "Here is your outline:\n1. **First Heading**\n- Second Heading Here\n2) Third Heading Here\nok\n\n## Fourth Heading Here"
	headings := parseOutline(raw)

	assert.Contains(t, headings, "First Heading")
	assert.Contains(t, headings, "Second Heading Here")
	assert.Contains(t, headings, "Third Heading Here")
	assert.Contains(t, headings, "Fourth Heading Here")
	assert.NotContains(t, headings, "ok")
}
