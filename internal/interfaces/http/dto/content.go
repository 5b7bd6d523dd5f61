// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"encoding/json"
	"time"

	"content-factory-api/internal/domain/entity"
	"content-factory-api/internal/domain/repository"
)

// ContentResponse 内容库条目响应
type ContentResponse struct {
	ID              string          `json:"id"`
	RunID           string          `json:"run_id"`
	Topic           string          `json:"topic"`
	TargetKeyword   string          `json:"target_keyword"`
	ContentType     string          `json:"content_type"`
	Status          string          `json:"status"`
	Title           string          `json:"title"`
	MetaDescription string          `json:"meta_description"`
	MetaKeywords    []string        `json:"meta_keywords,omitempty"`
	BodyMarkdown    string          `json:"body_markdown,omitempty"`
	WordCount       int             `json:"word_count"`
	SectionCount    int             `json:"section_count"`
	QualityScore    float64         `json:"quality_score"`
	Pass            bool            `json:"pass"`
	Report          json.RawMessage `json:"report,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ContentListResponse 内容列表响应。列表项不带正文与完整报告。
type ContentListResponse struct {
	Items []*ContentResponse `json:"items"`
}

// UpdateContentStatusRequest 内容发布状态更新请求
type UpdateContentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft review published"`
}

// ToContentResponse 将领域实体转换为响应 DTO
func ToContentResponse(item *entity.ContentItem) *ContentResponse {
	if item == nil {
		return nil
	}
	article := item.Article()
	return &ContentResponse{
		ID:              item.ID,
		RunID:           item.RunID,
		Topic:           item.Topic,
		TargetKeyword:   item.TargetKeyword,
		ContentType:     string(item.ContentType),
		Status:          string(item.Status),
		Title:           item.Title,
		MetaDescription: item.MetaDescription,
		MetaKeywords:    article.MetaKeywords,
		BodyMarkdown:    item.BodyMarkdown,
		WordCount:       item.WordCount,
		SectionCount:    item.SectionCount,
		QualityScore:    item.QualityScore,
		Pass:            item.Pass,
		Report:          item.Report,
		CreatedAt:       item.CreatedAt,
	}
}

// ToContentSummary 转换为不带正文的列表项
func ToContentSummary(item *entity.ContentItem) *ContentResponse {
	resp := ToContentResponse(item)
	if resp == nil {
		return nil
	}
	resp.BodyMarkdown = ""
	resp.Report = nil
	return resp
}

// ToContentListResponse 将分页内容结果转换为响应 DTO
func ToContentListResponse(paged *repository.PagedResult[*entity.ContentItem]) *ContentListResponse {
	items := make([]*ContentResponse, 0, len(paged.Items))
	for _, item := range paged.Items {
		items = append(items, ToContentSummary(item))
	}
	return &ContentListResponse{Items: items}
}
