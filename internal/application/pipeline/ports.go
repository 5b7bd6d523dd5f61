// Package pipeline 实现分阶段的内容生成流水线
package pipeline

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"content-factory-api/internal/application/voice"
	"content-factory-api/internal/infrastructure/llm"
)

// LanguageModel 定义流水线对 LLM 的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Eino ChatModel）。
type LanguageModel interface {
	Complete(ctx context.Context, msgs []*schema.Message, opts llm.CallOptions) (string, error)
}

// ExemplarRetriever 定义流水线对品牌范文检索的最小依赖（port）。
type ExemplarRetriever interface {
	Search(ctx context.Context, in voice.SearchInput) (*voice.SearchOutput, error)
}

// ProgressFunc 阶段完成后的进度回调
type ProgressFunc func(ctx context.Context, progress int, message string)
