package voice

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/uuid"
)

const (
	defaultChunkSizeRunes    = 800
	defaultChunkOverlapRunes = 80
	defaultEmbeddingBatch    = 32
)

// Indexer 将审定范文切片、向量化并写入向量库
type Indexer struct {
	embedder embedding.Embedder
	vector   VectorRepository

	embeddingBatchSize int
	chunkSizeRunes     int
	chunkOverlapRunes  int
}

func NewIndexer(embedder embedding.Embedder, vectorRepo VectorRepository, embeddingBatchSize int) *Indexer {
	bs := embeddingBatchSize
	if bs <= 0 {
		bs = defaultEmbeddingBatch
	}
	return &Indexer{
		embedder:           embedder,
		vector:             vectorRepo,
		embeddingBatchSize: bs,
		chunkSizeRunes:     defaultChunkSizeRunes,
		chunkOverlapRunes:  defaultChunkOverlapRunes,
	}
}

func (i *Indexer) Enabled() bool {
	return i != nil && i.embedder != nil && i.vector != nil
}

func (i *Indexer) ensureReady(ctx context.Context) error {
	if i == nil || i.vector == nil {
		return ErrVectorDisabled
	}
	return i.vector.EnsureVoiceSamplesCollection(ctx)
}

// IndexSample 索引单篇范文，长文切片后逐片入库
func (i *Indexer) IndexSample(ctx context.Context, in SampleInput) (int, error) {
	in.BrandID = strings.TrimSpace(in.BrandID)
	in.Text = strings.TrimSpace(in.Text)
	if in.BrandID == "" {
		return 0, fmt.Errorf("brand_id is required")
	}
	if in.Text == "" {
		return 0, fmt.Errorf("text is required")
	}
	if !i.Enabled() {
		return 0, ErrVectorDisabled
	}
	if err := i.ensureReady(ctx); err != nil {
		return 0, err
	}

	chunks := splitByRunes(in.Text, i.chunkSizeRunes, i.chunkOverlapRunes)
	if len(chunks) == 0 {
		return 0, nil
	}

	embedInputs := make([]string, 0, len(chunks))
	samples := make([]*VectorVoiceSample, 0, len(chunks))
	for _, chunk := range chunks {
		embedText := chunk
		if t := strings.TrimSpace(in.Title); t != "" {
			embedText = t + "\n" + embedText
		}
		embedInputs = append(embedInputs, embedText)
		samples = append(samples, &VectorVoiceSample{
			ID:          uuid.NewString(),
			BrandID:     in.BrandID,
			Title:       strings.TrimSpace(in.Title),
			Source:      strings.TrimSpace(in.Source),
			TextContent: chunk,
		})
	}

	vectors, err := i.embedBatch(ctx, embedInputs)
	if err != nil {
		return 0, err
	}
	for idx := range samples {
		samples[idx].Vector = vectors[idx]
	}
	if err := i.vector.InsertVoiceSamples(ctx, in.BrandID, samples); err != nil {
		return 0, err
	}
	return len(samples), nil
}

// DeleteBrand 删除品牌的全部范文索引
func (i *Indexer) DeleteBrand(ctx context.Context, brandID string) error {
	brandID = strings.TrimSpace(brandID)
	if brandID == "" {
		return fmt.Errorf("brand_id is required")
	}
	if !i.Enabled() {
		return ErrVectorDisabled
	}
	return i.vector.DeleteVoiceSamplesByBrand(ctx, brandID)
}

func (i *Indexer) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if i == nil || i.embedder == nil {
		return nil, ErrVectorDisabled
	}
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += i.embeddingBatchSize {
		end := start + i.embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		v64, err := i.embedder.EmbedStrings(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		for _, vec := range v64 {
			f32 := make([]float32, 0, len(vec))
			for _, x := range vec {
				f32 = append(f32, float32(x))
			}
			out = append(out, f32)
		}
	}
	return out, nil
}
