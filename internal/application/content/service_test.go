package content

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/domain/repository"
	apperrors "content-factory-api/pkg/errors"
)

type fakeRunRepo struct {
	mu   sync.Mutex
	runs map[string]*entity.GenerationRun

	updateCalls int
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{runs: make(map[string]*entity.GenerationRun)}
}

func (r *fakeRunRepo) Create(_ context.Context, run *entity.GenerationRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *run
	r.runs[run.ID] = &clone
	return nil
}

func (r *fakeRunRepo) GetByID(_ context.Context, id string) (*entity.GenerationRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, nil
	}
	clone := *run
	return &clone, nil
}

func (r *fakeRunRepo) Update(_ context.Context, run *entity.GenerationRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	clone := *run
	r.runs[run.ID] = &clone
	return nil
}

func (r *fakeRunRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.runs, id)
	return nil
}

func (r *fakeRunRepo) List(_ context.Context, filter *repository.RunFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationRun], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*entity.GenerationRun
	for _, run := range r.runs {
		if filter != nil && filter.Status != "" && run.Status != filter.Status {
			continue
		}
		clone := *run
		items = append(items, &clone)
	}
	return repository.NewPagedResult(items, int64(len(items)), pagination), nil
}

func (r *fakeRunRepo) UpdateProgress(_ context.Context, id string, progress int, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil
	}
	if progress > run.Progress {
		run.Progress = progress
	}
	if message != "" {
		run.Message = message
	}
	return nil
}

func (r *fakeRunRepo) GetStats(_ context.Context) (*repository.RunStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &repository.RunStats{}
	for _, run := range r.runs {
		stats.TotalRuns++
		switch run.Status {
		case entity.RunStatusPending:
			stats.PendingRuns++
		case entity.RunStatusRunning:
			stats.RunningRuns++
		case entity.RunStatusCompleted:
			stats.CompletedRuns++
		case entity.RunStatusError:
			stats.ErrorRuns++
		}
	}
	return stats, nil
}

type fakeContentRepo struct {
	mu    sync.Mutex
	items map[string]*entity.ContentItem
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{items: make(map[string]*entity.ContentItem)}
}

func (r *fakeContentRepo) Create(_ context.Context, item *entity.ContentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *fakeContentRepo) GetByID(_ context.Context, id string) (*entity.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	clone := *item
	return &clone, nil
}

func (r *fakeContentRepo) GetByRunID(_ context.Context, runID string) (*entity.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.RunID == runID {
			clone := *item
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeContentRepo) Update(_ context.Context, item *entity.ContentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *fakeContentRepo) UpdateStatus(_ context.Context, id string, status entity.ContentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[id]; ok {
		item.Status = status
	}
	return nil
}

func (r *fakeContentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeContentRepo) List(_ context.Context, filter *repository.ContentFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.ContentItem], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*entity.ContentItem
	for _, item := range r.items {
		if filter != nil {
			if filter.ContentType != "" && item.ContentType != filter.ContentType {
				continue
			}
			if filter.Status != "" && item.Status != filter.Status {
				continue
			}
			if filter.PassOnly && !item.Pass {
				continue
			}
		}
		clone := *item
		items = append(items, &clone)
	}
	return repository.NewPagedResult(items, int64(len(items)), pagination), nil
}

type fakeMetricsRepo struct {
	mu           sync.Mutex
	records      []*entity.MetricsRecord
	summaryCalls int
}

func (r *fakeMetricsRepo) Create(_ context.Context, record *entity.MetricsRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *fakeMetricsRepo) List(_ context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.MetricsRecord], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return repository.NewPagedResult(r.records, int64(len(r.records)), pagination), nil
}

func (r *fakeMetricsRepo) GetSummary(_ context.Context) (*repository.MetricsSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaryCalls++
	return &repository.MetricsSummary{TotalEvaluations: int64(len(r.records))}, nil
}

type fakeQueue struct {
	mu     sync.Mutex
	runIDs []string
	err    error
}

func (q *fakeQueue) PublishContentGen(_ context.Context, runID string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.runIDs = append(q.runIDs, runID)
	return "msg-" + runID, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if raw, ok := c.entries[key]; ok {
		return raw, nil
	}
	return nil, errors.New("cache miss")
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *fakeCache) GetOrLoadSafe(_ context.Context, key string, _ time.Duration, loader func() (interface{}, error)) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if raw, ok := c.entries[key]; ok {
		return raw, nil
	}
	data, err := loader()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	c.entries[key] = raw
	return raw, nil
}

func (c *fakeCache) InvalidateContent(_ context.Context, contentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, "analytics:summary")
	for key := range c.entries {
		if strings.HasPrefix(key, "content:"+contentID) {
			delete(c.entries, key)
		}
	}
	return nil
}

type serviceFixture struct {
	runRepo     *fakeRunRepo
	contentRepo *fakeContentRepo
	metricsRepo *fakeMetricsRepo
	queue       *fakeQueue
	cache       *fakeCache
	service     *Service
}

func newServiceFixture(cache *fakeCache) *serviceFixture {
	f := &serviceFixture{
		runRepo:     newFakeRunRepo(),
		contentRepo: newFakeContentRepo(),
		metricsRepo: &fakeMetricsRepo{},
		queue:       &fakeQueue{},
		cache:       cache,
	}
	var c Cache
	if cache != nil {
		c = cache
	}
	f.service = NewService(f.runRepo, f.contentRepo, f.metricsRepo, f.queue, c)
	return f
}

func validRequest() *entity.GenerationRequest {
	return &entity.GenerationRequest{
		Topic:           "electric bikes",
		TargetKeyword:   "electric bike",
		TargetWordCount: 1000,
		ContentType:     entity.ContentTypeBlogPost,
	}
}

func TestStartRunQueuesPendingRun(t *testing.T) {
	f := newServiceFixture(nil)

	run, err := f.service.StartRun(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, entity.RunStatusPending, run.Status)
	assert.Equal(t, 0, run.Progress)

	stored, err := f.runRepo.GetByID(context.Background(), run.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, []string{run.ID}, f.queue.runIDs)
}

func TestStartRunRejectsEmptyTopic(t *testing.T) {
	f := newServiceFixture(nil)
	req := validRequest()
	req.Topic = "   "

	_, err := f.service.StartRun(context.Background(), req)
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeInvalidParam, appErr.Code)
	assert.Empty(t, f.queue.runIDs)
}

func TestStartRunEnqueueFailureMarksRunFailed(t *testing.T) {
	f := newServiceFixture(nil)
	f.queue.err = errors.New("stream unavailable")

	_, err := f.service.StartRun(context.Background(), validRequest())
	require.Error(t, err)

	// 入队失败的运行不能停留在 pending
	require.Len(t, f.runRepo.runs, 1)
	for _, run := range f.runRepo.runs {
		assert.Equal(t, entity.RunStatusError, run.Status)
	}
}

func TestGetRunNotFound(t *testing.T) {
	f := newServiceFixture(nil)

	_, err := f.service.GetRun(context.Background(), "missing")
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.ErrRunNotFound.Code, appErr.Code)
}

func TestGetRunCachesTerminalRuns(t *testing.T) {
	f := newServiceFixture(newFakeCache())

	run, err := f.service.StartRun(context.Background(), validRequest())
	require.NoError(t, err)

	stored, _ := f.runRepo.GetByID(context.Background(), run.ID)
	stored.Start()
	stored.Complete("content-1")
	require.NoError(t, f.runRepo.Update(context.Background(), stored))

	got, err := f.service.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusCompleted, got.Status)

	// 终态已进缓存，删除底层记录后仍可读到
	require.NoError(t, f.runRepo.Delete(context.Background(), run.ID))
	got, err = f.service.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusCompleted, got.Status)
	assert.Equal(t, "content-1", got.ContentID)
}

func TestGetRunDoesNotCacheActiveRuns(t *testing.T) {
	f := newServiceFixture(newFakeCache())

	run, err := f.service.StartRun(context.Background(), validRequest())
	require.NoError(t, err)

	got, err := f.service.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusPending, got.Status)
	assert.Empty(t, f.cache.entries)
}

func TestRunResultBeforeCompletion(t *testing.T) {
	f := newServiceFixture(nil)

	run, err := f.service.StartRun(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = f.service.RunResult(context.Background(), run.ID)
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.ErrRunNotFinished.Code, appErr.Code)
}

func TestRunResultReturnsStoredContent(t *testing.T) {
	f := newServiceFixture(nil)

	run, err := f.service.StartRun(context.Background(), validRequest())
	require.NoError(t, err)

	item := &entity.ContentItem{ID: "content-1", RunID: run.ID, Status: entity.ContentStatusDraft, Title: "Electric Bikes"}
	require.NoError(t, f.contentRepo.Create(context.Background(), item))

	stored, _ := f.runRepo.GetByID(context.Background(), run.ID)
	stored.Start()
	stored.Complete(item.ID)
	require.NoError(t, f.runRepo.Update(context.Background(), stored))

	got, err := f.service.RunResult(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, "content-1", got.ID)
	assert.Equal(t, "Electric Bikes", got.Title)
}

func TestUpdateContentStatus(t *testing.T) {
	f := newServiceFixture(nil)
	item := &entity.ContentItem{ID: "content-1", Status: entity.ContentStatusDraft}
	require.NoError(t, f.contentRepo.Create(context.Background(), item))

	updated, err := f.service.UpdateContentStatus(context.Background(), "content-1", entity.ContentStatusPublished)
	require.NoError(t, err)
	assert.Equal(t, entity.ContentStatusPublished, updated.Status)

	stored, _ := f.contentRepo.GetByID(context.Background(), "content-1")
	assert.Equal(t, entity.ContentStatusPublished, stored.Status)
}

func TestUpdateContentStatusRejectsUnknownStatus(t *testing.T) {
	f := newServiceFixture(nil)
	item := &entity.ContentItem{ID: "content-1", Status: entity.ContentStatusDraft}
	require.NoError(t, f.contentRepo.Create(context.Background(), item))

	_, err := f.service.UpdateContentStatus(context.Background(), "content-1", entity.ContentStatus("archived"))
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeInvalidParam, appErr.Code)
}

func TestMetricsSummaryCachesAggregation(t *testing.T) {
	f := newServiceFixture(newFakeCache())

	_, err := f.service.MetricsSummary(context.Background())
	require.NoError(t, err)
	_, err = f.service.MetricsSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.metricsRepo.summaryCalls)
}
