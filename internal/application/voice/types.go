package voice

import "content-factory-api/internal/domain/entity"

// SearchInput 品牌范文检索输入。
type SearchInput struct {
	BrandID string
	Query   string
	TopK    int

	IncludeEmbedding bool
}

// SearchOutput 品牌范文检索输出。
type SearchOutput struct {
	Exemplars []entity.VoiceExemplar

	DisabledReason string
	QueryEmbedding []float32
}

// SampleInput 范文入库输入。
type SampleInput struct {
	BrandID string
	Title   string
	Source  string
	Text    string
}
