// Package handler 提供 HTTP 请求处理器
package handler

import (
	"content-factory-api/internal/application/content"
	"content-factory-api/internal/domain/repository"
	"content-factory-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler 质量分析处理器
type AnalyticsHandler struct {
	contentService *content.Service
}

// NewAnalyticsHandler 创建质量分析处理器
func NewAnalyticsHandler(contentService *content.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		contentService: contentService,
	}
}

// Summary 质量指标汇总
// @Summary 质量指标汇总
// @Description 返回历史评估的均值与通过率
// @Tags Analytics
// @Produce json
// @Success 200 {object} dto.Response[dto.MetricsSummaryResponse]
// @Router /v1/analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := h.contentService.MetricsSummary(ctx)
	if err != nil {
		respondError(c, err, "failed to get metrics summary")
		return
	}

	dto.Success(c, dto.ToMetricsSummaryResponse(summary))
}

// ListRecords 分页列出历史评估记录
// @Summary 列出评估记录
// @Tags Analytics
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[dto.MetricsListResponse]
// @Router /v1/analytics/records [get]
func (h *AnalyticsHandler) ListRecords(c *gin.Context) {
	ctx := c.Request.Context()
	page := dto.BindPage(c)

	paged, err := h.contentService.ListMetrics(ctx, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		respondError(c, err, "failed to list metrics records")
		return
	}

	meta := dto.NewPageMeta(paged.Page, paged.PageSize, int(paged.Total))
	dto.SuccessWithPage(c, dto.ToMetricsListResponse(paged), meta)
}
