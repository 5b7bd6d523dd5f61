// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"content-factory-api/internal/application/voice"
	"content-factory-api/internal/infrastructure/messaging"
	"content-factory-api/internal/interfaces/http/dto"
	"content-factory-api/pkg/logger"
)

// VoiceHandler 品牌语调处理器
type VoiceHandler struct {
	engine   *voice.Engine
	producer *messaging.Producer
}

// NewVoiceHandler 创建品牌语调处理器
func NewVoiceHandler(engine *voice.Engine, producer *messaging.Producer) *VoiceHandler {
	return &VoiceHandler{
		engine:   engine,
		producer: producer,
	}
}

// IngestSample 提交品牌范文入库
// @Summary 提交品牌范文
// @Description 范文入队后由后台任务切分、向量化并写入向量库
// @Tags Voice
// @Accept json
// @Produce json
// @Param request body dto.VoiceIngestRequest true "范文内容"
// @Success 202 {object} dto.Response[dto.VoiceIngestResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse "向量检索未启用"
// @Router /v1/voice/samples [post]
func (h *VoiceHandler) IngestSample(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.VoiceIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if h.engine == nil || !h.engine.Enabled() {
		dto.ServiceUnavailable(c, "brand voice retrieval is not enabled")
		return
	}

	msgID, err := h.producer.PublishVoiceIngest(ctx, uuid.NewString(), &messaging.VoiceIngestPayload{
		BrandID: req.BrandID,
		Title:   req.Title,
		Source:  req.Source,
		Text:    req.Text,
	})
	if err != nil {
		logger.Error(ctx, "failed to enqueue voice sample", err)
		dto.InternalError(c, "failed to enqueue voice sample")
		return
	}

	dto.Accepted(c, &dto.VoiceIngestResponse{
		BrandID:   req.BrandID,
		MessageID: msgID,
		Queued:    true,
	})
}

// SearchExemplars 检索品牌范文
// @Summary 检索品牌范文
// @Description 按语义相似度返回品牌下最相近的范文片段
// @Tags Voice
// @Accept json
// @Produce json
// @Param request body dto.VoiceSearchRequest true "检索条件"
// @Success 200 {object} dto.Response[dto.VoiceSearchResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/voice/search [post]
func (h *VoiceHandler) SearchExemplars(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.VoiceSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if h.engine == nil {
		dto.Success(c, dto.ToVoiceSearchResponse(&voice.SearchOutput{
			DisabledReason: voice.ErrVectorDisabled.Error(),
		}))
		return
	}

	out, err := h.engine.Search(ctx, voice.SearchInput{
		BrandID: req.BrandID,
		Query:   req.Query,
		TopK:    req.TopK,
	})
	if err != nil {
		respondError(c, err, "failed to search brand voice exemplars")
		return
	}

	dto.Success(c, dto.ToVoiceSearchResponse(out))
}
