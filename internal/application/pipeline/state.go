package pipeline

import "content-factory-api/internal/domain/entity"

// GeneratedSection 单个阶段的生成结果，追加后不再修改
type GeneratedSection struct {
	Spec entity.SectionSpec
	Text string
}

// GenerationState 单次运行的可变累加器，由流水线独占，运行结束即丢弃。
// Sections 的追加顺序始终等于大纲顺序。
type GenerationState struct {
	Request  *entity.GenerationRequest
	Outline  *entity.Outline
	Sections []GeneratedSection
}

// NewGenerationState 创建运行状态
func NewGenerationState(req *entity.GenerationRequest, outline *entity.Outline) *GenerationState {
	return &GenerationState{
		Request:  req,
		Outline:  outline,
		Sections: make([]GeneratedSection, 0, outline.Len()),
	}
}

// Append 追加一个阶段的生成结果
func (s *GenerationState) Append(spec entity.SectionSpec, text string) {
	s.Sections = append(s.Sections, GeneratedSection{Spec: spec, Text: text})
}

// SectionText 按指定用途返回第一个匹配段落的文本
func (s *GenerationState) SectionText(purpose entity.SectionPurpose) string {
	for _, sec := range s.Sections {
		if sec.Spec.Purpose == purpose {
			return sec.Text
		}
	}
	return ""
}
