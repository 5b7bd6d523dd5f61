package wire

import (
	"context"

	"github.com/gin-gonic/gin"

	"content-factory-api/internal/application/content"
	"content-factory-api/internal/application/voice"
	"content-factory-api/internal/config"
	"content-factory-api/internal/interfaces/http/handler"
	"content-factory-api/internal/interfaces/http/middleware"
	"content-factory-api/internal/interfaces/http/router"
)

// App API 服务依赖容器
type App struct {
	Router *router.Router

	data *DataLayer
}

// Close 释放应用资源
func (a *App) Close() {
	if a.data != nil {
		a.data.Close()
	}
}

// InitializeApp 装配 API 服务：数据层、应用服务、HTTP 处理器与路由
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, error) {
	data, err := InitializeDataLayer(ctx, cfg)
	if err != nil {
		return nil, err
	}

	embedder := newEmbedder(ctx, cfg)
	voiceEngine := voice.NewEngine(embedder, newVoiceVectorRepo(data))

	contentService := content.NewService(data.RunRepo, data.ContentRepo, data.MetricsRepo, data.Producer, data.Cache)

	handlers := router.Handlers{
		Health:    handler.NewHealthHandler(data.PgClient, data.RedisClient, data.MilvusClient),
		Run:       handler.NewRunHandler(contentService),
		Content:   handler.NewContentHandler(contentService),
		Voice:     handler.NewVoiceHandler(voiceEngine, data.Producer),
		Analytics: handler.NewAnalyticsHandler(contentService),
	}

	rateLimit := newRateLimitMiddleware(cfg, data)

	return &App{
		Router: router.New(cfg, handlers, rateLimit),
		data:   data,
	}, nil
}

// newRateLimitMiddleware 构建限流中间件，未启用时返回 nil
func newRateLimitMiddleware(cfg *config.Config, data *DataLayer) gin.HandlerFunc {
	if !cfg.Security.RateLimit.Enabled {
		return nil
	}
	return middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: cfg.Security.RateLimit.RequestsPerSecond,
		Burst:             cfg.Security.RateLimit.Burst,
	}, data.RateLimiter)
}
