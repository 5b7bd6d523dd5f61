package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-factory-api/internal/config"
	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/infrastructure/llm"
	"content-factory-api/internal/workflow/prompt"
)

// stubCall 一次调用的记录
type stubCall struct {
	Msgs []*schema.Message
	Opts llm.CallOptions
}

// stubModel 可编排的 LLM 替身：按脚本依次返回结果并记录每次调用
type stubModel struct {
	mu     sync.Mutex
	script []stubStep
	calls  []stubCall

	// defaultText 脚本耗尽后的兜底响应
	defaultText string
}

type stubStep struct {
	text string
	err  error
}

func (m *stubModel) Complete(_ context.Context, msgs []*schema.Message, opts llm.CallOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, stubCall{Msgs: msgs, Opts: opts})

	if len(m.script) > 0 {
		step := m.script[0]
		m.script = m.script[1:]
		return step.text, step.err
	}
	if m.defaultText != "" {
		return m.defaultText, nil
	}
	return "generated text", nil
}

func transientErr() error {
	return &llm.CallError{Kind: llm.FailureTransient, Err: errors.New("context deadline exceeded")}
}

func permanentErr() error {
	return &llm.CallError{Kind: llm.FailurePermanent, Err: errors.New("request rejected")}
}

func testPipelineConfig() *config.PipelineConfig {
	return &config.PipelineConfig{
		WordsPerSection:     250,
		MinSections:         3,
		MaxSections:         7,
		IntroWordRatio:      0.12,
		ConclusionWordRatio: 0.10,
		KeywordInterval:     300,
		StageRetries:        2,
		ExemplarTopK:        3,
		PriorContextWindow:  2,
		DraftTemperature:    0.45,
		CreativeTemperature: 0.6,
		OutlineTemperature:  0.7,
	}
}

func testRequest() *entity.GenerationRequest {
	req := &entity.GenerationRequest{
		Topic:           "electric bikes",
		TargetKeyword:   "electric bike",
		TargetWordCount: 1000,
		ContentType:     entity.ContentTypeBlogPost,
	}
	req.Normalize()
	return req
}

func bodyStage(heading string, words int) entity.SectionSpec {
	return entity.SectionSpec{Heading: heading, Purpose: entity.SectionPurposeBody, Words: words}
}

func TestGenerateSucceedsFirstAttempt(t *testing.T) {
	model := &stubModel{script: []stubStep{{text: "section body text"}}}
	gen := NewStageGenerator(model, prompt.NewRegistry(), testPipelineConfig())
	state := NewGenerationState(testRequest(), &entity.Outline{})

	res := gen.Generate(context.Background(), bodyStage("Range and Battery", 250), state, nil)

	require.Equal(t, StageSuccess, res.Outcome)
	assert.Equal(t, "section body text", res.Text)
	assert.Equal(t, 1, res.Attempts)
	assert.NoError(t, res.Err)
}

func TestGenerateRetriesTransientThenSucceeds(t *testing.T) {
	// 两次瞬时失败后第三次成功，运行不报错
	model := &stubModel{script: []stubStep{
		{err: transientErr()},
		{err: transientErr()},
		{text: "third time works"},
	}}
	gen := NewStageGenerator(model, prompt.NewRegistry(), testPipelineConfig())
	state := NewGenerationState(testRequest(), &entity.Outline{})

	res := gen.Generate(context.Background(), bodyStage("Range and Battery", 250), state, nil)

	require.Equal(t, StageSuccess, res.Outcome)
	assert.Equal(t, "third time works", res.Text)
	assert.Equal(t, 3, res.Attempts)
}

func TestGenerateRetriesWithUnchangedPrompt(t *testing.T) {
	model := &stubModel{script: []stubStep{
		{err: transientErr()},
		{err: transientErr()},
		{text: "done"},
	}}
	gen := NewStageGenerator(model, prompt.NewRegistry(), testPipelineConfig())
	state := NewGenerationState(testRequest(), &entity.Outline{})

	res := gen.Generate(context.Background(), bodyStage("Range and Battery", 250), state, nil)

	require.Equal(t, StageSuccess, res.Outcome)
	require.Len(t, model.calls, 3)
	// 重试使用完全相同的提示词
	for i := 1; i < len(model.calls); i++ {
		assert.Equal(t, model.calls[0].Msgs, model.calls[i].Msgs)
		assert.Equal(t, model.calls[0].Opts, model.calls[i].Opts)
	}
}

func TestGenerateExhaustsRetries(t *testing.T) {
	model := &stubModel{script: []stubStep{
		{err: transientErr()},
		{err: transientErr()},
		{err: transientErr()},
	}}
	gen := NewStageGenerator(model, prompt.NewRegistry(), testPipelineConfig())
	state := NewGenerationState(testRequest(), &entity.Outline{})

	res := gen.Generate(context.Background(), bodyStage("Range and Battery", 250), state, nil)

	require.Equal(t, StageTransientFailure, res.Outcome)
	assert.Equal(t, 3, res.Attempts)
	assert.Error(t, res.Err)
	assert.Len(t, model.calls, 3)
}

func TestGeneratePermanentFailureNoRetry(t *testing.T) {
	model := &stubModel{script: []stubStep{{err: permanentErr()}}}
	gen := NewStageGenerator(model, prompt.NewRegistry(), testPipelineConfig())
	state := NewGenerationState(testRequest(), &entity.Outline{})

	res := gen.Generate(context.Background(), bodyStage("Range and Battery", 250), state, nil)

	require.Equal(t, StagePermanentFailure, res.Outcome)
	assert.Equal(t, 1, res.Attempts)
	assert.Len(t, model.calls, 1)
}

func TestGeneratePromptIncludesPriorContext(t *testing.T) {
	model := &stubModel{defaultText: "ok"}
	gen := NewStageGenerator(model, prompt.NewRegistry(), testPipelineConfig())

	state := NewGenerationState(testRequest(), &entity.Outline{})
	state.Append(entity.SectionSpec{Heading: "Introduction", Purpose: entity.SectionPurposeIntro},
		"First paragraph.\n\nIntro closing thought.")
	state.Append(bodyStage("Motor Types", 250),
		"Opening paragraph.\n\nBody closing thought.")

	res := gen.Generate(context.Background(), bodyStage("Range and Battery", 250), state, nil)
	require.Equal(t, StageSuccess, res.Outcome)

	require.Len(t, model.calls, 1)
	var userContent string
	for _, msg := range model.calls[0].Msgs {
		if msg.Role == schema.User {
			userContent = msg.Content
		}
	}
	// 只带最近两个段落的末段
	assert.Contains(t, userContent, "Intro closing thought.")
	assert.Contains(t, userContent, "Body closing thought.")
	assert.NotContains(t, userContent, "First paragraph.")
	assert.Contains(t, userContent, "Range and Battery")
}

func TestFormatExemplarsOrderAndLimit(t *testing.T) {
	exemplars := []entity.VoiceExemplar{
		{Text: "highest", Score: 0.9},
		{Text: "middle", Score: 0.7},
		{Text: "lower", Score: 0.5},
		{Text: "ignored", Score: 0.1},
	}
	block := formatExemplars(exemplars)
	assert.Contains(t, block, "highest")
	assert.Contains(t, block, "lower")
	assert.NotContains(t, block, "ignored")
	assert.Less(t, strings.Index(block, "highest"), strings.Index(block, "middle"))
}

func TestKeywordTarget(t *testing.T) {
	assert.Equal(t, 1, keywordTarget(100, 300))
	assert.Equal(t, 1, keywordTarget(300, 300))
	assert.Equal(t, 2, keywordTarget(650, 300))
	assert.Equal(t, 1, keywordTarget(250, 0))
}
