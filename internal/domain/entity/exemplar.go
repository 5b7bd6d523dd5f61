package entity

// VoiceExemplar 品牌语调范文，检索获得，只读
type VoiceExemplar struct {
	ID    string  `json:"id"`
	Title string  `json:"title,omitempty"`
	Text  string  `json:"text"`
	Score float64 `json:"score"` // 检索相似度 [0,1]
}
