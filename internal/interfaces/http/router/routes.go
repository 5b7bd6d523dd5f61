// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h Handlers) {
	// 生成运行
	runs := v1.Group("/runs")
	{
		runs.POST("", h.Run.StartRun)
		runs.GET("", h.Run.ListRuns)
		runs.GET("/stats", h.Run.RunStats)
		runs.GET("/:rid", h.Run.GetRun)
		runs.GET("/:rid/result", h.Run.GetRunResult)
	}

	// 内容库
	content := v1.Group("/content")
	{
		content.GET("", h.Content.ListContent)
		content.GET("/:cid", h.Content.GetContent)
		content.PATCH("/:cid/status", h.Content.UpdateContentStatus)
		content.DELETE("/:cid", h.Content.DeleteContent)
	}

	// 品牌语调
	voice := v1.Group("/voice")
	{
		voice.POST("/samples", h.Voice.IngestSample)
		voice.POST("/search", h.Voice.SearchExemplars)
	}

	// 质量分析
	analytics := v1.Group("/analytics")
	{
		analytics.GET("/summary", h.Analytics.Summary)
		analytics.GET("/records", h.Analytics.ListRecords)
	}
}
