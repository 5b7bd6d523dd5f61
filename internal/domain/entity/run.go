package entity

import (
	"encoding/json"
	"time"
)

// RunStatus 生成运行状态
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusError     RunStatus = "error"
)

// IsTerminal 终态之后不再发生状态迁移
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusError
}

// GenerationRun 一次内容生成运行
// 状态机: pending -> running -> {completed | error}
type GenerationRun struct {
	ID           string          `json:"id"`
	Status       RunStatus       `json:"status"`
	Progress     int             `json:"progress"` // 运行进度 (0-100)，单调不减
	Message      string          `json:"message,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	InputParams  json.RawMessage `json:"input_params"`
	ContentID    string          `json:"content_id,omitempty"`
	DurationMs   int             `json:"duration_ms,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// TableName 指定表名
func (GenerationRun) TableName() string {
	return "generation_runs"
}

// NewGenerationRun 创建新运行
func NewGenerationRun(id string, inputParams json.RawMessage) *GenerationRun {
	return &GenerationRun{
		ID:          id,
		Status:      RunStatusPending,
		Progress:    0,
		Message:     "Queued",
		InputParams: inputParams,
		CreatedAt:   time.Now(),
	}
}

// Request 解析运行的生成请求
func (r *GenerationRun) Request() (*GenerationRequest, error) {
	var req GenerationRequest
	if err := json.Unmarshal(r.InputParams, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Start 进入 running 状态
func (r *GenerationRun) Start() {
	now := time.Now()
	r.Status = RunStatusRunning
	r.Message = "Generating content"
	r.StartedAt = &now
}

// Complete 运行成功结束
func (r *GenerationRun) Complete(contentID string) {
	now := time.Now()
	r.Status = RunStatusCompleted
	r.Progress = 100
	r.Message = "Content generation complete"
	r.ContentID = contentID
	r.CompletedAt = &now
	if r.StartedAt != nil {
		r.DurationMs = int(now.Sub(*r.StartedAt).Milliseconds())
	}
}

// Fail 运行失败，进度保留在最后一个成功阶段的值
func (r *GenerationRun) Fail(errMsg string) {
	now := time.Now()
	r.Status = RunStatusError
	r.ErrorMessage = errMsg
	r.Message = "Content generation failed"
	r.CompletedAt = &now
	if r.StartedAt != nil {
		r.DurationMs = int(now.Sub(*r.StartedAt).Milliseconds())
	}
}

// UpdateProgress 更新运行进度，只允许前进
func (r *GenerationRun) UpdateProgress(progress int, message string) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	if progress > r.Progress {
		r.Progress = progress
	}
	if message != "" {
		r.Message = message
	}
}
