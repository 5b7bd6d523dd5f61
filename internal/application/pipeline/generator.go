package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"content-factory-api/internal/config"
	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/domain/service"
	"content-factory-api/internal/infrastructure/llm"
	"content-factory-api/internal/workflow/prompt"
	"content-factory-api/pkg/logger"
	"content-factory-api/pkg/metrics"
)

// StageOutcome 单阶段生成结果的显式分类。
// 重试次数与升级路径由状态机可见地驱动，而不是藏在异常处理里。
type StageOutcome int

const (
	StageSuccess          StageOutcome = iota // 生成成功
	StageTransientFailure                     // 重试耗尽后的瞬时失败
	StagePermanentFailure                     // 不可重试的失败
)

// StageResult 单阶段生成结果
type StageResult struct {
	Outcome  StageOutcome
	Text     string
	Attempts int
	Err      error
}

// Failed 是否未能产出文本
func (r StageResult) Failed() bool {
	return r.Outcome != StageSuccess
}

// stageKind 阶段的提示词/温度档位
type stageKind int

const (
	stageKindOutline stageKind = iota
	stageKindDraft
	stageKindCreative
)

// callOptions 按阶段档位生成调用参数
func callOptions(cfg *config.PipelineConfig, kind stageKind, words int) llm.CallOptions {
	opts := llm.CallOptions{}
	switch kind {
	case stageKindOutline:
		opts.Temperature = float32(cfg.OutlineTemperature)
		opts.MaxTokens = 400
	case stageKindCreative:
		opts.Temperature = float32(cfg.CreativeTemperature)
		opts.MaxTokens = 400
	default:
		opts.Temperature = float32(cfg.DraftTemperature)
		// 词数到 token 的粗略上界，留出改写余量
		opts.MaxTokens = words*3 + 200
	}
	return opts
}

// StageGenerator 生成流水线中单个阶段的文本。
// 对状态是纯函数：只返回文本，不修改 GenerationState，追加由编排器完成。
type StageGenerator struct {
	llm     LanguageModel
	prompts *prompt.Registry
	cfg     *config.PipelineConfig
}

// NewStageGenerator 创建阶段生成器
func NewStageGenerator(llmClient LanguageModel, prompts *prompt.Registry, cfg *config.PipelineConfig) *StageGenerator {
	return &StageGenerator{
		llm:     llmClient,
		prompts: prompts,
		cfg:     cfg,
	}
}

// Generate 生成单阶段文本。
// 瞬时失败（超时、空响应）以不变的提示词重试 cfg.StageRetries 次，
// 永久失败立即上抛不重试。
func (g *StageGenerator) Generate(ctx context.Context, stage entity.SectionSpec, state *GenerationState, exemplars []entity.VoiceExemplar) StageResult {
	ctx = service.WithWorkflow(ctx, "stage."+string(stage.Purpose))

	msgs, err := g.buildPrompt(ctx, stage, state, exemplars)
	if err != nil {
		return StageResult{Outcome: StagePermanentFailure, Err: err}
	}

	kind := stageKindDraft
	if stage.Purpose == entity.SectionPurposeCTA {
		kind = stageKindCreative
	}
	opts := callOptions(g.cfg, kind, stage.Words)

	maxAttempts := g.cfg.StageRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, callErr := g.llm.Complete(ctx, msgs, opts)
		if callErr == nil {
			return StageResult{Outcome: StageSuccess, Text: text, Attempts: attempt}
		}

		lastErr = callErr
		if !llm.IsTransient(callErr) {
			return StageResult{Outcome: StagePermanentFailure, Attempts: attempt, Err: callErr}
		}
		if attempt < maxAttempts {
			metrics.StageRetryTotal.WithLabelValues(string(stage.Purpose)).Inc()
			logger.Warn(ctx, "stage generation retrying",
				"stage", stage.Heading,
				"attempt", attempt,
				"error", callErr.Error(),
			)
		}
	}

	return StageResult{Outcome: StageTransientFailure, Attempts: maxAttempts, Err: lastErr}
}

// buildPrompt 按阶段用途渲染提示词
func (g *StageGenerator) buildPrompt(ctx context.Context, stage entity.SectionSpec, state *GenerationState, exemplars []entity.VoiceExemplar) ([]*schema.Message, error) {
	keyword := state.Request.TargetKeyword
	exemplarBlock := formatExemplars(exemplars)

	var id prompt.PromptID
	vars := map[string]any{}

	switch stage.Purpose {
	case entity.SectionPurposeIntro:
		id = prompt.PromptIntroV1
		vars["words"] = stage.Words
		vars["keyword"] = keyword
		vars["exemplars"] = exemplarBlock
	case entity.SectionPurposeBody:
		id = prompt.PromptSectionV1
		vars["words"] = stage.Words
		vars["heading"] = stage.Heading
		vars["keyword"] = keyword
		vars["keyword_count"] = keywordTarget(stage.Words, g.cfg.KeywordInterval)
		vars["prior_context"] = priorContext(state.Sections, g.cfg.PriorContextWindow)
		vars["exemplars"] = exemplarBlock
	case entity.SectionPurposeConclusion:
		id = prompt.PromptConclusionV1
		vars["words"] = stage.Words
		vars["keyword"] = keyword
		vars["key_points"] = keyPoints(state.Outline)
		vars["exemplars"] = exemplarBlock
	case entity.SectionPurposeCTA:
		id = prompt.PromptCTAV1
		vars["keyword"] = keyword
	default:
		return nil, fmt.Errorf("unknown stage purpose: %s", stage.Purpose)
	}

	tpl, err := g.prompts.ChatTemplate(id)
	if err != nil {
		return nil, err
	}
	return tpl.Format(ctx, vars)
}

// keywordTarget 目标关键词出现次数，约每 interval 词一次
func keywordTarget(words, interval int) int {
	if interval <= 0 {
		interval = 300
	}
	n := words / interval
	if n < 1 {
		n = 1
	}
	return n
}

// formatExemplars 按相似度从高到低拼接品牌范文，最多取 3 篇
func formatExemplars(exemplars []entity.VoiceExemplar) string {
	if len(exemplars) == 0 {
		return "(no brand voice samples available)"
	}
	limit := len(exemplars)
	if limit > 3 {
		limit = 3
	}
	var b strings.Builder
	for i := 0; i < limit; i++ {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Example %d:\n%s", i+1, exemplars[i].Text)
	}
	return b.String()
}

// priorContext 取最近 window 个段落的末段，约束提示词长度的同时保持连贯
func priorContext(sections []GeneratedSection, window int) string {
	if window <= 0 {
		window = 2
	}
	if len(sections) == 0 {
		return "(nothing yet, this is the first section)"
	}

	start := len(sections) - window
	if start < 0 {
		start = 0
	}

	parts := make([]string, 0, window)
	for _, sec := range sections[start:] {
		paragraphs := strings.Split(strings.TrimSpace(sec.Text), "\n\n")
		if len(paragraphs) == 0 {
			continue
		}
		tail := strings.TrimSpace(paragraphs[len(paragraphs)-1])
		if tail == "" {
			continue
		}
		parts = append(parts, tail)
	}
	if len(parts) == 0 {
		return "(nothing yet, this is the first section)"
	}
	return strings.Join(parts, "\n\n")
}

// keyPoints 将正文标题拼成结论阶段的要点列表
func keyPoints(outline *entity.Outline) string {
	headings := outline.BodyHeadings()
	var b strings.Builder
	for i, h := range headings {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s", h)
	}
	return b.String()
}
