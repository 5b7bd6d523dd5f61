// Package wire 提供依赖注入装配
package wire

import (
	"context"
	"sync"

	einoembedding "github.com/cloudwego/eino/components/embedding"

	"content-factory-api/internal/application/content"
	"content-factory-api/internal/application/pipeline"
	"content-factory-api/internal/application/voice"
	"content-factory-api/internal/config"
	infraembedding "content-factory-api/internal/infrastructure/embedding"
	"content-factory-api/internal/infrastructure/llm"
	"content-factory-api/internal/infrastructure/messaging"
	"content-factory-api/internal/infrastructure/persistence/milvus"
	"content-factory-api/internal/infrastructure/persistence/postgres"
	"content-factory-api/internal/infrastructure/persistence/redis"
	"content-factory-api/internal/workflow/prompt"
	"content-factory-api/pkg/logger"
)

// DataLayer 数据层依赖容器
type DataLayer struct {
	// PostgreSQL
	PgClient    *postgres.Client
	TxManager   *postgres.TxManager
	RunRepo     *postgres.RunRepository
	ContentRepo *postgres.ContentRepository
	MetricsRepo *postgres.MetricsRepository

	// Redis
	RedisClient *redis.Client
	Cache       *redis.Cache
	RateLimiter *redis.RateLimiter

	// Messaging
	Producer *messaging.Producer

	// Milvus（可选，不可达时保持 nil）
	MilvusClient *milvus.Client
	VectorRepo   *milvus.Repository

	cleanups  []func()
	closeOnce sync.Once
}

// Close 逆序释放数据层资源，重复调用只生效一次
func (d *DataLayer) Close() {
	d.closeOnce.Do(func() {
		for i := len(d.cleanups) - 1; i >= 0; i-- {
			d.cleanups[i]()
		}
	})
}

// InitializeDataLayer 初始化数据层。
// PostgreSQL 与 Redis 是硬依赖，Milvus 不可达时降级为 nil。
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, error) {
	d := &DataLayer{}

	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	d.PgClient = pgClient
	d.cleanups = append(d.cleanups, func() { _ = pgClient.Close() })

	d.TxManager = postgres.NewTxManager(pgClient)
	d.RunRepo = postgres.NewRunRepository(pgClient)
	d.ContentRepo = postgres.NewContentRepository(pgClient)
	d.MetricsRepo = postgres.NewMetricsRepository(pgClient)

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.RedisClient = redisClient
	d.cleanups = append(d.cleanups, func() { _ = redisClient.Close() })

	d.Cache = redis.NewCache(redisClient)
	d.RateLimiter = redis.NewRateLimiter(redisClient)

	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	d.Producer = messaging.NewProducer(redisClient.Redis(), int64(maxLen))

	if cfg.Vector.Milvus.Host != "" {
		milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
		if err != nil {
			logger.Warn(ctx, "milvus not available, brand voice features disabled", "error", err.Error())
		} else {
			d.MilvusClient = milvusClient
			d.cleanups = append(d.cleanups, func() { _ = milvusClient.Close() })
			d.VectorRepo = milvus.NewRepository(milvusClient)
			if err := d.VectorRepo.EnsureVoiceSamplesCollection(ctx); err != nil {
				logger.Warn(ctx, "voice samples collection bootstrap failed", "error", err.Error())
			}
		}
	}

	return d, nil
}

// newEmbedder 构建 Embedder，不可用时返回 nil 使语调能力整体降级
func newEmbedder(ctx context.Context, cfg *config.Config) einoembedding.Embedder {
	embedder, err := infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Warn(ctx, "embedding not available, brand voice features disabled", "error", err.Error())
		return nil
	}
	return embedder
}

// newVoiceVectorRepo 将 Milvus 仓储适配为语调向量端口
func newVoiceVectorRepo(d *DataLayer) voice.VectorRepository {
	if d.VectorRepo == nil {
		return nil
	}
	return milvus.NewVoiceVectorRepository(d.VectorRepo)
}

// newContentPipeline 装配内容生成流水线
func newContentPipeline(cfg *config.Config, llmClient *llm.Client, engine *voice.Engine) *pipeline.ContentPipeline {
	prompts := prompt.NewRegistry()
	planner := pipeline.NewSectionPlanner(llmClient, prompts, &cfg.Pipeline)
	generator := pipeline.NewStageGenerator(llmClient, prompts, &cfg.Pipeline)
	assembler := pipeline.NewArticleAssembler()

	var retriever pipeline.ExemplarRetriever
	if engine != nil && engine.Enabled() {
		retriever = engine
	}
	return pipeline.NewContentPipeline(planner, generator, assembler, retriever, llmClient, prompts, &cfg.Pipeline)
}

var _ content.JobQueue = (*messaging.Producer)(nil)

var _ content.Cache = (*redis.Cache)(nil)
