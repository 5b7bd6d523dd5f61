package milvus

import (
	"context"

	"content-factory-api/internal/application/voice"
)

type VoiceVectorRepository struct {
	repo *Repository
}

func NewVoiceVectorRepository(repo *Repository) *VoiceVectorRepository {
	return &VoiceVectorRepository{repo: repo}
}

var _ voice.VectorRepository = (*VoiceVectorRepository)(nil)

func (r *VoiceVectorRepository) EnsureVoiceSamplesCollection(ctx context.Context) error {
	if r == nil || r.repo == nil {
		return voice.ErrVectorDisabled
	}
	return r.repo.EnsureVoiceSamplesCollection(ctx)
}

func (r *VoiceVectorRepository) SearchVoiceSamples(ctx context.Context, params *voice.VectorSearchParams) ([]*voice.VectorSearchResult, error) {
	if r == nil || r.repo == nil {
		return nil, voice.ErrVectorDisabled
	}
	if params == nil {
		return nil, nil
	}

	out, err := r.repo.SearchVoiceSamples(ctx, &SearchParams{
		BrandID:     params.BrandID,
		QueryVector: params.QueryVector,
		TopK:        params.TopK,
	})
	if err != nil {
		return nil, err
	}

	results := make([]*voice.VectorSearchResult, 0, len(out))
	for i := range out {
		v := out[i]
		if v == nil {
			continue
		}
		results = append(results, &voice.VectorSearchResult{
			ID:          v.ID,
			Score:       v.Score,
			Title:       v.Title,
			TextContent: v.TextContent,
		})
	}
	return results, nil
}

func (r *VoiceVectorRepository) DeleteVoiceSamplesByBrand(ctx context.Context, brandID string) error {
	if r == nil || r.repo == nil {
		return voice.ErrVectorDisabled
	}
	return r.repo.DeleteVoiceSamplesByBrand(ctx, brandID)
}

func (r *VoiceVectorRepository) InsertVoiceSamples(ctx context.Context, brandID string, samples []*voice.VectorVoiceSample) error {
	if r == nil || r.repo == nil {
		return voice.ErrVectorDisabled
	}
	if len(samples) == 0 {
		return nil
	}

	out := make([]*VoiceSample, 0, len(samples))
	for i := range samples {
		s := samples[i]
		if s == nil {
			continue
		}
		out = append(out, &VoiceSample{
			ID:          s.ID,
			BrandID:     s.BrandID,
			Title:       s.Title,
			Source:      s.Source,
			TextContent: s.TextContent,
			Vector:      s.Vector,
		})
	}
	return r.repo.InsertVoiceSamples(ctx, brandID, out)
}
