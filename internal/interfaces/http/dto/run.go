// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/domain/repository"
)

// StartRunRequest 发起生成运行请求
type StartRunRequest struct {
	Topic           string `json:"topic" binding:"required"`
	TargetKeyword   string `json:"target_keyword" binding:"required"`
	TargetWordCount int    `json:"target_word_count,omitempty"`
	TargetAudience  string `json:"target_audience,omitempty"`
	ContentType     string `json:"content_type,omitempty"`
	BrandID         string `json:"brand_id,omitempty"`
}

// ToGenerationRequest 转换为领域请求
func (r *StartRunRequest) ToGenerationRequest() *entity.GenerationRequest {
	return &entity.GenerationRequest{
		Topic:           r.Topic,
		TargetKeyword:   r.TargetKeyword,
		TargetWordCount: r.TargetWordCount,
		TargetAudience:  r.TargetAudience,
		ContentType:     entity.ContentType(r.ContentType),
		BrandID:         r.BrandID,
	}
}

// RunResponse 生成运行响应
type RunResponse struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	Message      string     `json:"message,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ContentID    string     `json:"content_id,omitempty"`
	DurationMs   int        `json:"duration_ms,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// RunListResponse 运行列表响应
type RunListResponse struct {
	Runs []*RunResponse `json:"runs"`
}

// RunStatsResponse 运行统计响应
type RunStatsResponse struct {
	TotalRuns     int64 `json:"total_runs"`
	PendingRuns   int64 `json:"pending_runs"`
	RunningRuns   int64 `json:"running_runs"`
	CompletedRuns int64 `json:"completed_runs"`
	ErrorRuns     int64 `json:"error_runs"`
}

// ToRunResponse 将领域实体转换为响应 DTO
func ToRunResponse(r *entity.GenerationRun) *RunResponse {
	if r == nil {
		return nil
	}
	return &RunResponse{
		ID:           r.ID,
		Status:       string(r.Status),
		Progress:     r.Progress,
		Message:      r.Message,
		ErrorMessage: r.ErrorMessage,
		ContentID:    r.ContentID,
		DurationMs:   r.DurationMs,
		CreatedAt:    r.CreatedAt,
		StartedAt:    r.StartedAt,
		CompletedAt:  r.CompletedAt,
	}
}

// ToRunListResponse 将分页运行结果转换为响应 DTO
func ToRunListResponse(paged *repository.PagedResult[*entity.GenerationRun]) *RunListResponse {
	runs := make([]*RunResponse, 0, len(paged.Items))
	for _, r := range paged.Items {
		runs = append(runs, ToRunResponse(r))
	}
	return &RunListResponse{Runs: runs}
}

// ToRunStatsResponse 将统计转换为响应 DTO
func ToRunStatsResponse(s *repository.RunStats) *RunStatsResponse {
	if s == nil {
		return nil
	}
	return &RunStatsResponse{
		TotalRuns:     s.TotalRuns,
		PendingRuns:   s.PendingRuns,
		RunningRuns:   s.RunningRuns,
		CompletedRuns: s.CompletedRuns,
		ErrorRuns:     s.ErrorRuns,
	}
}
