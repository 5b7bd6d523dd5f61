package entity

// SectionPurpose 段落用途
type SectionPurpose string

const (
	SectionPurposeIntro      SectionPurpose = "intro"
	SectionPurposeBody       SectionPurpose = "body"
	SectionPurposeConclusion SectionPurpose = "conclusion"
	SectionPurposeCTA        SectionPurpose = "cta"
)

// SectionSpec 单个生成阶段的规划
type SectionSpec struct {
	Heading   string         `json:"heading"`
	Purpose   SectionPurpose `json:"purpose"`
	WordShare float64        `json:"word_share"`
	Words     int            `json:"words"`
}

// Outline 一次生成运行的阶段规划，规划完成后不可变
type Outline struct {
	Sections []SectionSpec `json:"sections"`
}

// BodyCount 返回正文段落数量
func (o *Outline) BodyCount() int {
	n := 0
	for _, s := range o.Sections {
		if s.Purpose == SectionPurposeBody {
			n++
		}
	}
	return n
}

// BodyHeadings 按顺序返回正文段落标题
func (o *Outline) BodyHeadings() []string {
	headings := make([]string, 0, len(o.Sections))
	for _, s := range o.Sections {
		if s.Purpose == SectionPurposeBody {
			headings = append(headings, s.Heading)
		}
	}
	return headings
}

// Len 返回阶段总数
func (o *Outline) Len() int {
	return len(o.Sections)
}
