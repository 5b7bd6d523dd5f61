package content

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-factory-api/internal/application/pipeline"
	"content-factory-api/internal/application/quality"
	"content-factory-api/internal/config"
	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/infrastructure/llm"
	"content-factory-api/internal/workflow/prompt"
)

const plannerOutline = "1. Motor and Power Basics\n2. Battery Range Explained\n3. Maintenance Essentials\n4. Budget and Value"

type scriptedReply struct {
	text string
	err  error
}

type scriptedModel struct {
	mu          sync.Mutex
	script      []scriptedReply
	defaultText string
	calls       int
}

func (m *scriptedModel) Complete(_ context.Context, _ []*schema.Message, _ llm.CallOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if len(m.script) > 0 {
		reply := m.script[0]
		m.script = m.script[1:]
		return reply.text, reply.err
	}
	return m.defaultText, nil
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

func testQualityConfig() *config.QualityConfig {
	return &config.QualityConfig{
		Weights: config.QualityWeights{
			KeywordDensity:    15,
			WordCountAccuracy: 15,
			Readability:       20,
			HeadingStructure:  20,
			SEORequirements:   20,
			BrandVoice:        10,
		},
		PassThreshold: 70,
		SubScoreFloor: 50,
		DensityMin:    1.0,
		DensityMax:    2.0,
	}
}

type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type runnerFixture struct {
	runRepo     *fakeRunRepo
	contentRepo *fakeContentRepo
	metricsRepo *fakeMetricsRepo
	model       *scriptedModel
	runner      *Runner
}

func newRunnerFixture(model *scriptedModel) *runnerFixture {
	cfg := testPipelineConfig()
	registry := prompt.NewRegistry()
	contentPipeline := pipeline.NewContentPipeline(
		pipeline.NewSectionPlanner(model, registry, cfg),
		pipeline.NewStageGenerator(model, registry, cfg),
		pipeline.NewArticleAssembler(),
		nil,
		model,
		registry,
		cfg,
	)

	f := &runnerFixture{
		runRepo:     newFakeRunRepo(),
		contentRepo: newFakeContentRepo(),
		metricsRepo: &fakeMetricsRepo{},
		model:       model,
	}
	f.runner = NewRunner(
		f.runRepo,
		f.contentRepo,
		f.metricsRepo,
		fakeTx{},
		contentPipeline,
		quality.NewMetricsEvaluator(),
		quality.NewMetricsAggregator(testQualityConfig()),
	)
	return f
}

func (f *runnerFixture) createRun(t *testing.T) *entity.GenerationRun {
	t.Helper()
	req := validRequest()
	req.Normalize()
	params, err := json.Marshal(req)
	require.NoError(t, err)

	run := entity.NewGenerationRun("run-1", params)
	require.NoError(t, f.runRepo.Create(context.Background(), run))
	return run
}

func TestRunnerExecuteCompletesRun(t *testing.T) {
	model := &scriptedModel{
		script:      []scriptedReply{{text: plannerOutline}},
		defaultText: "The electric bike market keeps growing each year as commuters look for cheaper ways to travel.",
	}
	f := newRunnerFixture(model)
	f.createRun(t)

	require.NoError(t, f.runner.Execute(context.Background(), "run-1"))

	run, err := f.runRepo.GetByID(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusCompleted, run.Status)
	assert.Equal(t, 100, run.Progress)
	assert.NotEmpty(t, run.ContentID)

	item, err := f.contentRepo.GetByRunID(context.Background(), "run-1")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, run.ContentID, item.ID)
	assert.Equal(t, entity.ContentStatusDraft, item.Status)
	assert.Positive(t, item.WordCount)
	assert.NotEmpty(t, item.Report)

	require.Len(t, f.metricsRepo.records, 1)
	assert.Equal(t, item.ID, f.metricsRepo.records[0].ContentID)
}

func TestRunnerExecuteSkipsFinishedRuns(t *testing.T) {
	model := &scriptedModel{defaultText: "text"}
	f := newRunnerFixture(model)
	run := f.createRun(t)

	run.Start()
	run.Complete("content-1")
	require.NoError(t, f.runRepo.Update(context.Background(), run))
	updatesBefore := f.runRepo.updateCalls

	// 消息重复投递时终态运行必须原样跳过
	require.NoError(t, f.runner.Execute(context.Background(), "run-1"))

	assert.Equal(t, 0, model.calls)
	assert.Equal(t, updatesBefore, f.runRepo.updateCalls)
	assert.Empty(t, f.contentRepo.items)
}

func TestRunnerExecuteUnknownRunIsDropped(t *testing.T) {
	model := &scriptedModel{defaultText: "text"}
	f := newRunnerFixture(model)

	require.NoError(t, f.runner.Execute(context.Background(), "missing"))
	assert.Equal(t, 0, model.calls)
}

func TestRunnerExecuteFailureDiscardsPartialContent(t *testing.T) {
	model := &scriptedModel{
		script: []scriptedReply{
			{text: plannerOutline},
			{err: transientCallError()},
			{err: transientCallError()},
			{err: transientCallError()},
		},
	}
	f := newRunnerFixture(model)
	f.createRun(t)

	require.NoError(t, f.runner.Execute(context.Background(), "run-1"))

	run, err := f.runRepo.GetByID(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusError, run.Status)
	assert.NotEmpty(t, run.ErrorMessage)
	assert.Equal(t, 0, run.Progress)

	// 失败运行不留下半成品
	assert.Empty(t, f.contentRepo.items)
	assert.Empty(t, f.metricsRepo.records)
}

func TestRunnerExecuteInvalidParamsFailsRun(t *testing.T) {
	model := &scriptedModel{defaultText: "text"}
	f := newRunnerFixture(model)

	run := entity.NewGenerationRun("run-1", []byte("{not json"))
	require.NoError(t, f.runRepo.Create(context.Background(), run))

	require.NoError(t, f.runner.Execute(context.Background(), "run-1"))

	stored, err := f.runRepo.GetByID(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusError, stored.Status)
	assert.Equal(t, 0, model.calls)
}

func transientCallError() error {
	return &llm.CallError{Kind: llm.FailureTransient, Err: context.DeadlineExceeded}
}
