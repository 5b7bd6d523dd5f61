package entity

// Article 组装完成的文章，构建后不可变
type Article struct {
	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_description"`
	MetaKeywords    []string `json:"meta_keywords,omitempty"`
	BodyMarkdown    string   `json:"body_markdown"`
	WordCount       int      `json:"word_count"`
	SectionCount    int      `json:"section_count"`
}
