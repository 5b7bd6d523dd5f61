package voice

import "context"

// VectorRepository 定义应用层对“向量存储/检索”的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Milvus）。
type VectorRepository interface {
	EnsureVoiceSamplesCollection(ctx context.Context) error
	SearchVoiceSamples(ctx context.Context, params *VectorSearchParams) ([]*VectorSearchResult, error)
	DeleteVoiceSamplesByBrand(ctx context.Context, brandID string) error
	InsertVoiceSamples(ctx context.Context, brandID string, samples []*VectorVoiceSample) error
}

type VectorSearchParams struct {
	BrandID     string
	QueryVector []float32
	TopK        int
}

type VectorSearchResult struct {
	ID          string
	Score       float32
	Title       string
	TextContent string
}

type VectorVoiceSample struct {
	ID          string
	BrandID     string
	Title       string
	Source      string
	TextContent string
	Vector      []float32
}
