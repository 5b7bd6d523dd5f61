package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-factory-api/internal/application/voice"
	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/workflow/prompt"
)

const outlineText = "1. Motor and Power Basics\n2. Battery Range Explained\n3. Maintenance Essentials\n4. Budget and Value"

func newTestPipeline(model *stubModel, retriever ExemplarRetriever) *ContentPipeline {
	cfg := testPipelineConfig()
	registry := prompt.NewRegistry()
	return NewContentPipeline(
		NewSectionPlanner(model, registry, cfg),
		NewStageGenerator(model, registry, cfg),
		NewArticleAssembler(),
		retriever,
		model,
		registry,
		cfg,
	)
}

// stubRetriever 固定返回一组范文
type stubRetriever struct {
	out *voice.SearchOutput
}

func (r *stubRetriever) Search(_ context.Context, _ voice.SearchInput) (*voice.SearchOutput, error) {
	return r.out, nil
}

type progressRecord struct {
	Progress int
	Message  string
}

func TestPipelineRunCompletes(t *testing.T) {
	model := &stubModel{
		script:      []stubStep{{text: outlineText}},
		defaultText: "Generated electric bike text with several words in it.",
	}
	p := newTestPipeline(model, nil)

	var records []progressRecord
	onProgress := func(_ context.Context, progress int, message string) {
		records = append(records, progressRecord{progress, message})
	}

	result, err := p.Run(context.Background(), testRequest(), onProgress)
	require.NoError(t, err)
	require.NotNil(t, result.Article)

	// 大纲共 7 个阶段：导语 + 4 正文 + 结论 + CTA
	assert.Equal(t, 7, result.Outline.Len())
	require.Len(t, records, 7)

	// 进度单调不减且最终到 100
	prev := 0
	for _, r := range records {
		assert.GreaterOrEqual(t, r.Progress, prev)
		prev = r.Progress
	}
	assert.Equal(t, 100, records[len(records)-1].Progress)

	assert.Greater(t, result.Article.WordCount, 0)
	assert.Equal(t, 4, result.Article.SectionCount)
	assert.NotEmpty(t, result.Article.MetaDescription)
}

func TestPipelineSectionOrderMatchesOutline(t *testing.T) {
	model := &stubModel{script: []stubStep{
		{text: outlineText},
		{text: "INTRO-MARKER electric bike text."},
		{text: "BODY-ONE text."},
		{text: "BODY-TWO text."},
		{text: "BODY-THREE text."},
		{text: "BODY-FOUR text."},
		{text: "CONCLUSION-MARKER text."},
		{text: "CTA-MARKER text."},
	}, defaultText: "meta text"}
	p := newTestPipeline(model, nil)

	result, err := p.Run(context.Background(), testRequest(), nil)
	require.NoError(t, err)

	body := result.Article.BodyMarkdown
	markers := []string{"INTRO-MARKER", "BODY-ONE", "BODY-TWO", "BODY-THREE", "BODY-FOUR", "CONCLUSION-MARKER", "CTA-MARKER"}
	prev := -1
	for _, m := range markers {
		idx := strings.Index(body, m)
		require.NotEqual(t, -1, idx, "marker %s missing", m)
		assert.Greater(t, idx, prev, "marker %s out of order", m)
		prev = idx
	}
}

func TestPipelineRetriesThenCompletes(t *testing.T) {
	// 某阶段超时两次、第三次成功：运行最终完成且无错误
	model := &stubModel{
		script: []stubStep{
			{text: outlineText},
			{err: transientErr()},
			{err: transientErr()},
		},
		defaultText: "Recovered electric bike text.",
	}
	p := newTestPipeline(model, nil)

	result, err := p.Run(context.Background(), testRequest(), nil)
	require.NoError(t, err)
	assert.NotNil(t, result.Article)
}

func TestPipelineFailsAfterExhaustedRetries(t *testing.T) {
	// 某阶段三次尝试全部超时：运行失败，错误信息带上该阶段标题
	model := &stubModel{script: []stubStep{
		{text: outlineText},
		{err: transientErr()},
		{err: transientErr()},
		{err: transientErr()},
	}}
	p := newTestPipeline(model, nil)

	var lastProgress int
	onProgress := func(_ context.Context, progress int, _ string) {
		lastProgress = progress
	}

	_, err := p.Run(context.Background(), testRequest(), onProgress)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Introduction")
	// 没有任何阶段成功，进度停留在 0
	assert.Equal(t, 0, lastProgress)
}

func TestPipelinePermanentFailureFailsFast(t *testing.T) {
	model := &stubModel{script: []stubStep{
		{text: outlineText},
		{err: permanentErr()},
	}}
	p := newTestPipeline(model, nil)

	_, err := p.Run(context.Background(), testRequest(), nil)
	require.Error(t, err)
	// 永久失败只调用一次：大纲 + 失败的阶段
	assert.Len(t, model.calls, 2)
}

func TestPipelineUsesExemplars(t *testing.T) {
	retriever := &stubRetriever{out: &voice.SearchOutput{
		Exemplars: []entity.VoiceExemplar{
			{Text: "BRAND-VOICE-SAMPLE text.", Score: 0.85},
		},
	}}
	model := &stubModel{
		script:      []stubStep{{text: outlineText}},
		defaultText: "Generated electric bike text.",
	}
	p := newTestPipeline(model, retriever)

	result, err := p.Run(context.Background(), testRequest(), nil)
	require.NoError(t, err)
	require.Len(t, result.Exemplars, 1)

	// 范文逐字出现在生成阶段的提示词里
	found := false
	for _, call := range model.calls {
		for _, msg := range call.Msgs {
			if strings.Contains(msg.Content, "BRAND-VOICE-SAMPLE") {
				found = true
			}
		}
	}
	assert.True(t, found)
}

