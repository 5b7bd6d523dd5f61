package voice

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	"content-factory-api/internal/domain/entity"
)

// Engine 品牌语调检索引擎，向量能力缺失时整体降级而不是报错
type Engine struct {
	embedder embedding.Embedder
	vector   VectorRepository
}

func NewEngine(embedder embedding.Embedder, vectorRepo VectorRepository) *Engine {
	return &Engine{
		embedder: embedder,
		vector:   vectorRepo,
	}
}

func (e *Engine) Enabled() bool {
	return e != nil && e.embedder != nil && e.vector != nil
}

func (e *Engine) ensureReady(ctx context.Context) error {
	if e == nil || e.vector == nil {
		return ErrVectorDisabled
	}
	return e.vector.EnsureVoiceSamplesCollection(ctx)
}

// Search 按语义检索最相近的品牌范文
func (e *Engine) Search(ctx context.Context, in SearchInput) (*SearchOutput, error) {
	if in.TopK <= 0 {
		in.TopK = 3
	}
	if in.TopK > 20 {
		in.TopK = 20
	}
	in.Query = strings.TrimSpace(in.Query)
	in.BrandID = strings.TrimSpace(in.BrandID)
	if in.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	out := &SearchOutput{}

	if !e.Enabled() {
		out.DisabledReason = ErrVectorDisabled.Error()
		return out, nil
	}
	if err := e.ensureReady(ctx); err != nil {
		out.DisabledReason = err.Error()
		return out, nil
	}

	emb, err := e.embedQuery(ctx, in.Query)
	if err != nil {
		out.DisabledReason = err.Error()
		return out, nil
	}
	if in.IncludeEmbedding {
		out.QueryEmbedding = emb
	}

	results, err := e.vector.SearchVoiceSamples(ctx, &VectorSearchParams{
		BrandID:     in.BrandID,
		QueryVector: emb,
		TopK:        in.TopK,
	})
	if err != nil {
		out.DisabledReason = err.Error()
		return out, nil
	}

	out.Exemplars = make([]entity.VoiceExemplar, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		out.Exemplars = append(out.Exemplars, entity.VoiceExemplar{
			ID:    strings.TrimSpace(r.ID),
			Title: strings.TrimSpace(r.Title),
			Text:  strings.TrimSpace(r.TextContent),
			Score: clampScore(1 - float64(r.Score)), // 将“距离”转换为更直观的相似度（COSINE: distance=1-cos）
		})
	}
	return out, nil
}

func (e *Engine) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if e == nil || e.embedder == nil {
		return nil, ErrVectorDisabled
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("query is empty")
	}
	v64, err := e.embedder.EmbedStrings(ctx, []string{q})
	if err != nil {
		return nil, err
	}
	if len(v64) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	vec := v64[0]
	out := make([]float32, 0, len(vec))
	for _, x := range vec {
		out = append(out, float32(x))
	}
	return out, nil
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
