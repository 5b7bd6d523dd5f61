package handler

import (
	"content-factory-api/internal/interfaces/http/dto"
	"content-factory-api/pkg/errors"
	"content-factory-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// respondError 将应用错误映射为 HTTP 响应。
// 非 AppError 的错误一律按 500 处理并记录日志。
func respondError(c *gin.Context, err error, fallbackMsg string) {
	if errors.IsAppError(err) {
		appErr := errors.AsAppError(err)
		c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
			Code:    appErr.HTTPStatus,
			Message: appErr.Message,
			Error: &dto.ErrorDetail{
				ErrorCode: string(appErr.Code),
				Details:   appErr.Detail,
			},
			TraceID: c.GetString("trace_id"),
		})
		return
	}
	logger.Error(c.Request.Context(), fallbackMsg, err)
	dto.InternalError(c, fallbackMsg)
}
