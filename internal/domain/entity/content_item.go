package entity

import (
	"encoding/json"
	"time"
)

// ContentStatus 内容库条目的发布状态
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusReview    ContentStatus = "review"
	ContentStatusPublished ContentStatus = "published"
)

// IsValid 校验发布状态取值
func (s ContentStatus) IsValid() bool {
	switch s {
	case ContentStatusDraft, ContentStatusReview, ContentStatusPublished:
		return true
	}
	return false
}

// ContentItem 内容库条目，保存组装完成的文章及其评估报告
type ContentItem struct {
	ID              string          `json:"id"`
	RunID           string          `json:"run_id"`
	Topic           string          `json:"topic"`
	TargetKeyword   string          `json:"target_keyword"`
	ContentType     ContentType     `json:"content_type"`
	Status          ContentStatus   `json:"status"`
	Title           string          `json:"title"`
	MetaDescription string          `json:"meta_description"`
	MetaKeywords    string          `json:"meta_keywords,omitempty"`
	BodyMarkdown    string          `json:"body_markdown"`
	WordCount       int             `json:"word_count"`
	SectionCount    int             `json:"section_count"`
	QualityScore    float64         `json:"quality_score"`
	Pass            bool            `json:"pass"`
	Report          json.RawMessage `json:"report,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName 指定表名
func (ContentItem) TableName() string {
	return "content_items"
}

// NewContentItem 从文章与评估报告构建内容库条目
func NewContentItem(id, runID string, req *GenerationRequest, article *Article, report *MetricsReport) (*ContentItem, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	keywords := ""
	if len(article.MetaKeywords) > 0 {
		kw, err := json.Marshal(article.MetaKeywords)
		if err != nil {
			return nil, err
		}
		keywords = string(kw)
	}
	return &ContentItem{
		ID:              id,
		RunID:           runID,
		Topic:           req.Topic,
		TargetKeyword:   req.TargetKeyword,
		ContentType:     req.ContentType,
		Status:          ContentStatusDraft,
		Title:           article.Title,
		MetaDescription: article.MetaDescription,
		MetaKeywords:    keywords,
		BodyMarkdown:    article.BodyMarkdown,
		WordCount:       article.WordCount,
		SectionCount:    article.SectionCount,
		QualityScore:    report.QualityScore,
		Pass:            report.Pass,
		Report:          reportJSON,
		CreatedAt:       time.Now(),
	}, nil
}

// Article 从条目还原文章
func (c *ContentItem) Article() *Article {
	var keywords []string
	if c.MetaKeywords != "" {
		// 解析失败时保留空列表
		_ = json.Unmarshal([]byte(c.MetaKeywords), &keywords)
	}
	return &Article{
		Title:           c.Title,
		MetaDescription: c.MetaDescription,
		MetaKeywords:    keywords,
		BodyMarkdown:    c.BodyMarkdown,
		WordCount:       c.WordCount,
		SectionCount:    c.SectionCount,
	}
}

// MetricsReport 从条目还原评估报告
func (c *ContentItem) MetricsReport() (*MetricsReport, error) {
	var report MetricsReport
	if err := json.Unmarshal(c.Report, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
