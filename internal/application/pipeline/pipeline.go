package pipeline

import (
	"context"
	"fmt"
	"math"

	"content-factory-api/internal/application/voice"
	"content-factory-api/internal/config"
	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/domain/service"
	"content-factory-api/internal/workflow/prompt"
	apperrors "content-factory-api/pkg/errors"
	"content-factory-api/pkg/logger"
)

// Result 一次成功运行的产出
type Result struct {
	Article   *entity.Article
	Outline   *entity.Outline
	Exemplars []entity.VoiceExemplar
}

// ContentPipeline 内容生成编排器。
// 各阶段严格按大纲顺序串行执行：每个阶段的提示词依赖之前阶段的文本，
// 单次运行内没有可并行的空间。不同运行各自持有独立状态，互不共享。
type ContentPipeline struct {
	planner   *SectionPlanner
	generator *StageGenerator
	assembler *ArticleAssembler
	retriever ExemplarRetriever
	llm       LanguageModel
	prompts   *prompt.Registry
	cfg       *config.PipelineConfig
}

// NewContentPipeline 创建内容生成编排器。retriever 允许为 nil（向量能力缺失时降级）。
func NewContentPipeline(
	planner *SectionPlanner,
	generator *StageGenerator,
	assembler *ArticleAssembler,
	retriever ExemplarRetriever,
	llmClient LanguageModel,
	prompts *prompt.Registry,
	cfg *config.PipelineConfig,
) *ContentPipeline {
	return &ContentPipeline{
		planner:   planner,
		generator: generator,
		assembler: assembler,
		retriever: retriever,
		llm:       llmClient,
		prompts:   prompts,
		cfg:       cfg,
	}
}

// Run 执行一次完整的生成运行。
// 进度通过 onProgress 上报且只前进；任一阶段重试耗尽即整体失败，
// 已生成的部分段落直接丢弃，不作为半成品文章返回。
func (p *ContentPipeline) Run(ctx context.Context, req *entity.GenerationRequest, onProgress ProgressFunc) (*Result, error) {
	if onProgress == nil {
		onProgress = func(context.Context, int, string) {}
	}

	// 品牌范文整次运行只检索一次
	exemplars := p.retrieveExemplars(ctx, req)

	outline, err := p.planner.Plan(ctx, req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidParam, "invalid generation request")
	}

	state := NewGenerationState(req, outline)
	total := outline.Len()

	for i, stage := range outline.Sections {
		res := p.generator.Generate(ctx, stage, state, exemplars)
		if res.Failed() {
			return nil, apperrors.Wrap(res.Err, apperrors.CodeGenerationFailed,
				fmt.Sprintf("stage %q failed after %d attempts", stage.Heading, res.Attempts))
		}
		state.Append(stage, res.Text)

		progress := int(math.Round(100 * float64(i+1) / float64(total)))
		onProgress(ctx, progress, stageMessage(stage))
	}

	metaDraft := p.generateMetaDescription(ctx, req, state)
	keywordsDraft := p.generateMetaKeywords(ctx, req)

	article, err := p.assembler.Assemble(state, metaDraft, keywordsDraft)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "article assembly failed")
	}

	return &Result{
		Article:   article,
		Outline:   outline,
		Exemplars: exemplars,
	}, nil
}

// retrieveExemplars 检索品牌范文，失败或未启用时返回空并继续
func (p *ContentPipeline) retrieveExemplars(ctx context.Context, req *entity.GenerationRequest) []entity.VoiceExemplar {
	if p.retriever == nil {
		return nil
	}

	topK := p.cfg.ExemplarTopK
	if topK <= 0 {
		topK = 3
	}
	out, err := p.retriever.Search(ctx, voiceSearchInput(req, topK))
	if err != nil {
		logger.Warn(ctx, "exemplar retrieval failed, continuing without brand voice", "error", err.Error())
		return nil
	}
	if out.DisabledReason != "" {
		logger.Info(ctx, "brand voice retrieval disabled", "reason", out.DisabledReason)
	}
	return out.Exemplars
}

// generateMetaDescription 生成 meta description 草稿，失败时返回空由组装器兜底
func (p *ContentPipeline) generateMetaDescription(ctx context.Context, req *entity.GenerationRequest, state *GenerationState) string {
	ctx = service.WithWorkflow(ctx, "meta.description")

	tpl, err := p.prompts.ChatTemplate(prompt.PromptMetaDescriptionV1)
	if err != nil {
		return ""
	}

	intro := firstSentences(state.SectionText(entity.SectionPurposeIntro), 3)
	msgs, err := tpl.Format(ctx, map[string]any{
		"keyword": req.TargetKeyword,
		"intro":   intro,
	})
	if err != nil {
		return ""
	}

	draft, err := p.llm.Complete(ctx, msgs, callOptions(p.cfg, stageKindCreative, 0))
	if err != nil {
		logger.Warn(ctx, "meta description generation failed, falling back to intro excerpt", "error", err.Error())
		return ""
	}
	return draft
}

// generateMetaKeywords 生成 meta keywords 草稿，失败时返回空由组装器兜底
func (p *ContentPipeline) generateMetaKeywords(ctx context.Context, req *entity.GenerationRequest) string {
	ctx = service.WithWorkflow(ctx, "meta.keywords")

	tpl, err := p.prompts.ChatTemplate(prompt.PromptMetaKeywordsV1)
	if err != nil {
		return ""
	}

	msgs, err := tpl.Format(ctx, map[string]any{
		"topic":   req.Topic,
		"keyword": req.TargetKeyword,
	})
	if err != nil {
		return ""
	}

	draft, err := p.llm.Complete(ctx, msgs, callOptions(p.cfg, stageKindCreative, 0))
	if err != nil {
		logger.Warn(ctx, "meta keywords generation failed, falling back to derived keywords", "error", err.Error())
		return ""
	}
	return draft
}

// voiceSearchInput 用主题和关键词构造检索查询
func voiceSearchInput(req *entity.GenerationRequest, topK int) voice.SearchInput {
	return voice.SearchInput{
		BrandID: req.BrandID,
		Query:   req.Topic + " " + req.TargetKeyword,
		TopK:    topK,
	}
}

// stageMessage 阶段完成后的用户可读描述
func stageMessage(stage entity.SectionSpec) string {
	switch stage.Purpose {
	case entity.SectionPurposeIntro:
		return "Wrote the introduction"
	case entity.SectionPurposeConclusion:
		return "Wrote the conclusion"
	case entity.SectionPurposeCTA:
		return "Wrote the call to action"
	default:
		return fmt.Sprintf("Wrote section: %s", stage.Heading)
	}
}
