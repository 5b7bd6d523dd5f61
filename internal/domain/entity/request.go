// Package entity 定义领域实体
package entity

import "strings"

// ContentType 内容类型
type ContentType string

const (
	ContentTypeBlogPost   ContentType = "blog_post"
	ContentTypeGuide      ContentType = "guide"
	ContentTypeListicle   ContentType = "listicle"
	ContentTypeComparison ContentType = "comparison"
	ContentTypeOther      ContentType = "other"
)

// IsValid 检查内容类型是否合法
func (t ContentType) IsValid() bool {
	switch t {
	case ContentTypeBlogPost, ContentTypeGuide, ContentTypeListicle, ContentTypeComparison, ContentTypeOther:
		return true
	}
	return false
}

// GenerationRequest 内容生成请求，创建后不可变
type GenerationRequest struct {
	Topic           string      `json:"topic"`
	TargetKeyword   string      `json:"target_keyword"`
	TargetWordCount int         `json:"target_word_count"`
	TargetAudience  string      `json:"target_audience,omitempty"`
	ContentType     ContentType `json:"content_type"`
	BrandID         string      `json:"brand_id,omitempty"`
}

// Normalize 填充默认值
func (r *GenerationRequest) Normalize() {
	r.Topic = strings.TrimSpace(r.Topic)
	r.TargetKeyword = strings.TrimSpace(r.TargetKeyword)
	if r.TargetWordCount == 0 {
		r.TargetWordCount = 1000
	}
	if r.ContentType == "" {
		r.ContentType = ContentTypeBlogPost
	}
}

// Validate 校验请求前置条件，失败的请求不会进入流水线
func (r *GenerationRequest) Validate() error {
	if r.Topic == "" {
		return ErrEmptyTopic
	}
	if r.TargetKeyword == "" {
		return ErrEmptyKeyword
	}
	if r.TargetWordCount <= 0 {
		return ErrInvalidWordCount
	}
	if !r.ContentType.IsValid() {
		return ErrInvalidContentType
	}
	return nil
}
