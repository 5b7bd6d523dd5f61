// Package handler 提供 HTTP 请求处理器
package handler

import (
	"content-factory-api/internal/application/content"
	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/domain/repository"
	"content-factory-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// RunHandler 生成运行处理器
type RunHandler struct {
	contentService *content.Service
}

// NewRunHandler 创建生成运行处理器
func NewRunHandler(contentService *content.Service) *RunHandler {
	return &RunHandler{
		contentService: contentService,
	}
}

// StartRun 发起一次内容生成运行
// @Summary 发起生成运行
// @Description 校验请求并入队生成任务，立即返回运行 ID 供轮询
// @Tags Runs
// @Accept json
// @Produce json
// @Param request body dto.StartRunRequest true "生成请求"
// @Success 202 {object} dto.Response[dto.RunResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/runs [post]
func (h *RunHandler) StartRun(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	run, err := h.contentService.StartRun(ctx, req.ToGenerationRequest())
	if err != nil {
		respondError(c, err, "failed to start generation run")
		return
	}

	dto.Accepted(c, dto.ToRunResponse(run))
}

// GetRun 查询运行状态与进度
// @Summary 查询运行状态
// @Tags Runs
// @Produce json
// @Param rid path string true "运行 ID"
// @Success 200 {object} dto.Response[dto.RunResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/runs/{rid} [get]
func (h *RunHandler) GetRun(c *gin.Context) {
	ctx := c.Request.Context()
	runID := dto.BindRunID(c)

	run, err := h.contentService.GetRun(ctx, runID)
	if err != nil {
		respondError(c, err, "failed to get run")
		return
	}

	dto.Success(c, dto.ToRunResponse(run))
}

// GetRunResult 获取已完成运行的生成内容
// @Summary 获取运行结果
// @Description 运行未完成时返回 409
// @Tags Runs
// @Produce json
// @Param rid path string true "运行 ID"
// @Success 200 {object} dto.Response[dto.ContentResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "运行尚未完成"
// @Router /v1/runs/{rid}/result [get]
func (h *RunHandler) GetRunResult(c *gin.Context) {
	ctx := c.Request.Context()
	runID := dto.BindRunID(c)

	item, err := h.contentService.RunResult(ctx, runID)
	if err != nil {
		respondError(c, err, "failed to get run result")
		return
	}

	dto.Success(c, dto.ToContentResponse(item))
}

// ListRuns 分页列出运行
// @Summary 列出运行
// @Tags Runs
// @Produce json
// @Param status query string false "按状态过滤 (pending/running/completed/error)"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[dto.RunListResponse]
// @Router /v1/runs [get]
func (h *RunHandler) ListRuns(c *gin.Context) {
	ctx := c.Request.Context()
	page := dto.BindPage(c)

	filter := &repository.RunFilter{
		Status: entity.RunStatus(c.Query("status")),
	}

	paged, err := h.contentService.ListRuns(ctx, filter, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		respondError(c, err, "failed to list runs")
		return
	}

	meta := dto.NewPageMeta(paged.Page, paged.PageSize, int(paged.Total))
	dto.SuccessWithPage(c, dto.ToRunListResponse(paged), meta)
}

// RunStats 运行状态统计
// @Summary 运行统计
// @Tags Runs
// @Produce json
// @Success 200 {object} dto.Response[dto.RunStatsResponse]
// @Router /v1/runs/stats [get]
func (h *RunHandler) RunStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.contentService.RunStats(ctx)
	if err != nil {
		respondError(c, err, "failed to get run stats")
		return
	}

	dto.Success(c, dto.ToRunStatsResponse(stats))
}
