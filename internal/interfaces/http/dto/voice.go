// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"content-factory-api/internal/application/voice"
	"content-factory-api/internal/domain/entity"
)

// VoiceIngestRequest 品牌范文入库请求
type VoiceIngestRequest struct {
	BrandID string `json:"brand_id" binding:"required"`
	Title   string `json:"title,omitempty"`
	Source  string `json:"source,omitempty"`
	Text    string `json:"text" binding:"required"`
}

// ToSampleInput 转换为应用层入库输入
func (r *VoiceIngestRequest) ToSampleInput() voice.SampleInput {
	return voice.SampleInput{
		BrandID: r.BrandID,
		Title:   r.Title,
		Source:  r.Source,
		Text:    r.Text,
	}
}

// VoiceIngestResponse 范文入库响应
type VoiceIngestResponse struct {
	BrandID   string `json:"brand_id"`
	MessageID string `json:"message_id,omitempty"`
	Queued    bool   `json:"queued"`
}

// VoiceSearchRequest 品牌范文检索请求
type VoiceSearchRequest struct {
	BrandID string `json:"brand_id" binding:"required"`
	Query   string `json:"query" binding:"required"`
	TopK    int    `json:"top_k,omitempty"`
}

// VoiceExemplarResponse 单条范文检索结果
type VoiceExemplarResponse struct {
	ID    string  `json:"id"`
	Title string  `json:"title,omitempty"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// VoiceSearchResponse 范文检索响应
type VoiceSearchResponse struct {
	Exemplars      []*VoiceExemplarResponse `json:"exemplars"`
	DisabledReason string                   `json:"disabled_reason,omitempty"`
}

// ToVoiceSearchResponse 将检索输出转换为响应 DTO
func ToVoiceSearchResponse(out *voice.SearchOutput) *VoiceSearchResponse {
	resp := &VoiceSearchResponse{Exemplars: make([]*VoiceExemplarResponse, 0)}
	if out == nil {
		return resp
	}
	resp.DisabledReason = out.DisabledReason
	for _, e := range out.Exemplars {
		resp.Exemplars = append(resp.Exemplars, toVoiceExemplarResponse(e))
	}
	return resp
}

func toVoiceExemplarResponse(e entity.VoiceExemplar) *VoiceExemplarResponse {
	return &VoiceExemplarResponse{
		ID:    e.ID,
		Title: e.Title,
		Text:  e.Text,
		Score: e.Score,
	}
}
