// Package handler 提供 HTTP 请求处理器
package handler

import (
	"content-factory-api/internal/application/content"
	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/domain/repository"
	"content-factory-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// ContentHandler 内容库处理器
type ContentHandler struct {
	contentService *content.Service
}

// NewContentHandler 创建内容库处理器
func NewContentHandler(contentService *content.Service) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
	}
}

// GetContent 获取内容详情
// @Summary 获取内容详情
// @Description 返回完整正文、元信息与质量评估报告
// @Tags Content
// @Produce json
// @Param cid path string true "内容 ID"
// @Success 200 {object} dto.Response[dto.ContentResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/content/{cid} [get]
func (h *ContentHandler) GetContent(c *gin.Context) {
	ctx := c.Request.Context()
	contentID := dto.BindContentID(c)

	item, err := h.contentService.GetContent(ctx, contentID)
	if err != nil {
		respondError(c, err, "failed to get content")
		return
	}

	dto.Success(c, dto.ToContentResponse(item))
}

// ListContent 分页列出内容库条目
// @Summary 列出内容
// @Description 列表项不含正文，按创建时间倒序
// @Tags Content
// @Produce json
// @Param content_type query string false "按内容类型过滤"
// @Param status query string false "按发布状态过滤"
// @Param keyword query string false "按目标关键词过滤"
// @Param pass_only query bool false "只看通过质量线的内容"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[dto.ContentListResponse]
// @Router /v1/content [get]
func (h *ContentHandler) ListContent(c *gin.Context) {
	ctx := c.Request.Context()
	page := dto.BindPage(c)

	filter := &repository.ContentFilter{
		ContentType: entity.ContentType(c.Query("content_type")),
		Status:      entity.ContentStatus(c.Query("status")),
		Keyword:     c.Query("keyword"),
		PassOnly:    c.Query("pass_only") == "true",
	}

	paged, err := h.contentService.ListContent(ctx, filter, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		respondError(c, err, "failed to list content")
		return
	}

	meta := dto.NewPageMeta(paged.Page, paged.PageSize, int(paged.Total))
	dto.SuccessWithPage(c, dto.ToContentListResponse(paged), meta)
}

// UpdateContentStatus 更新内容发布状态
// @Summary 更新内容状态
// @Description 在 draft / review / published 之间流转
// @Tags Content
// @Accept json
// @Produce json
// @Param cid path string true "内容 ID"
// @Param request body dto.UpdateContentStatusRequest true "目标状态"
// @Success 200 {object} dto.Response[dto.ContentResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/content/{cid}/status [patch]
func (h *ContentHandler) UpdateContentStatus(c *gin.Context) {
	ctx := c.Request.Context()
	contentID := dto.BindContentID(c)

	var req dto.UpdateContentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid status update request: "+err.Error())
		return
	}

	item, err := h.contentService.UpdateContentStatus(ctx, contentID, entity.ContentStatus(req.Status))
	if err != nil {
		respondError(c, err, "failed to update content status")
		return
	}

	dto.Success(c, dto.ToContentSummary(item))
}

// DeleteContent 删除内容库条目
// @Summary 删除内容
// @Tags Content
// @Produce json
// @Param cid path string true "内容 ID"
// @Success 204 "删除成功"
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/content/{cid} [delete]
func (h *ContentHandler) DeleteContent(c *gin.Context) {
	ctx := c.Request.Context()
	contentID := dto.BindContentID(c)

	if err := h.contentService.DeleteContent(ctx, contentID); err != nil {
		respondError(c, err, "failed to delete content")
		return
	}

	dto.NoContent(c)
}
